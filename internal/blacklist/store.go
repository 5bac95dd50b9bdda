// Package blacklist keeps the set of session tokens revoked by logout
// before their natural expiry. Entries are keyed by SHA-256 hash of the
// raw token and carry the token's own expiration so a periodic sweep can
// drop rows that no longer matter.
package blacklist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/nmbsms/scholarship-backend/internal/database/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// HashToken returns the hex SHA-256 of a raw token, the ledger key.
func HashToken(tokenStr string) string {
	sum := sha256.Sum256([]byte(tokenStr))
	return hex.EncodeToString(sum[:])
}

// Revoke inserts a blacklist entry for the token. Revoking an
// already-revoked token is a no-op, so logout stays idempotent and
// concurrent revokes of the same token cannot conflict.
func (s *Store) Revoke(ctx context.Context, tokenStr string, expiresAt time.Time) error {
	entry := model.RevokedToken{
		TokenHash: HashToken(tokenStr),
		ExpiresAt: expiresAt,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_hash"}},
			DoNothing: true,
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// IsRevoked reports blacklist membership for the raw token.
func (s *Store) IsRevoked(ctx context.Context, tokenStr string) (bool, error) {
	var entry model.RevokedToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", HashToken(tokenStr)).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return true, nil
}

// SweepExpired hard-deletes every entry whose own token expired before now
// and returns the number removed. Entries expiring at or after now are
// never touched, so a sweep can run concurrently with Revoke without
// losing a live revocation.
func (s *Store) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&model.RevokedToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("sweeping expired tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
