package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserClaims carries the session identity. Subject is the account email;
// BatchNo rides along so the frontend can scope queries without a second
// round trip.
type UserClaims struct {
	BatchNo *int `json:"batch_no,omitempty"`
	jwt.RegisteredClaims
}

func NewUserClaims(email string, batchNo *int, duration time.Duration) (*UserClaims, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	return &UserClaims{
		BatchNo: batchNo,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID.String(),
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
		},
	}, nil
}
