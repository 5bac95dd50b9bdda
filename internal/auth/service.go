// Package auth owns the account lifecycle: the invite-driven sign-up state
// machine, login/logout, and the password side channels. An account's
// stage is encoded in its fields — invite token present means invited,
// password present means the token was consumed, profile present means
// fully provisioned — so every transition survives restarts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nmbsms/scholarship-backend/internal/blacklist"
	"github.com/nmbsms/scholarship-backend/internal/database/model"
	"github.com/nmbsms/scholarship-backend/internal/token"
	"github.com/nmbsms/scholarship-backend/internal/util"
	"gorm.io/gorm"
)

// Profile carries the fields written by the final sign-up step.
type Profile struct {
	Name                     string
	Sex                      string
	PhoneNumber              string
	UniversityName           string
	UniversityRegistrationID string
	CourseProgrammeName      string
	EnrolledYear             string
	BatchNo                  int
}

type Service struct {
	db        *gorm.DB
	maker     *token.JWTMaker
	blacklist *blacklist.Store
}

func NewService(db *gorm.DB, maker *token.JWTMaker, bl *blacklist.Store) *Service {
	return &Service{db: db, maker: maker, blacklist: bl}
}

// InitialSignUp gates the first provisioning step: both the submitted
// email and invite token must exactly match a stored account. An empty
// token never matches — a consumed (cleared) token cannot be replayed.
func (s *Service) InitialSignUp(ctx context.Context, email, inviteToken string) error {
	email = normalizeEmail(email)
	if email == "" || inviteToken == "" {
		return ErrInvalidCredentials
	}

	var account model.Account
	err := s.db.WithContext(ctx).
		Where("email = ? AND token = ?", email, inviteToken).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("looking up invite: %w", err)
	}
	return nil
}

// SetPassword stores the bcrypt hash and consumes the invite token. The
// authorized stage is not a persisted flag, so the only guard is that the
// account exists; a cleared token simply makes InitialSignUp unrepeatable.
func (s *Service) SetPassword(ctx context.Context, email, rawPassword string) error {
	email = normalizeEmail(email)
	if email == "" || rawPassword == "" {
		return ErrInvalidCredentials
	}

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := util.HashPassword(rawPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	account.Password = hash
	account.Token = nil
	if err := s.db.WithContext(ctx).Save(account).Error; err != nil {
		return fmt.Errorf("saving password: %w", err)
	}
	return nil
}

// CompleteSignUp writes the profile, activates enrollment and assigns the
// STUDENT role. This is the terminal provisioning stage.
func (s *Service) CompleteSignUp(ctx context.Context, email string, profile Profile) error {
	email = normalizeEmail(email)

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	active := "Active"
	account.Name = &profile.Name
	account.Sex = &profile.Sex
	account.PhoneNumber = &profile.PhoneNumber
	account.UniversityName = &profile.UniversityName
	account.UniversityRegistrationID = &profile.UniversityRegistrationID
	account.CourseProgrammeName = &profile.CourseProgrammeName
	account.EnrolledYear = &profile.EnrolledYear
	account.BatchNo = &profile.BatchNo
	account.EnrollmentStatus = &active
	account.Role = model.RoleStudent

	if err := s.db.WithContext(ctx).Save(account).Error; err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// ResetPassword rehashes and overwrites the password from any stage. It
// does not touch the invite token or the profile.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) error {
	email = normalizeEmail(email)

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := util.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	account.Password = hash
	if err := s.db.WithContext(ctx).Save(account).Error; err != nil {
		return fmt.Errorf("saving password: %w", err)
	}
	return nil
}

// ChangePassword verifies the current password before storing a new one.
func (s *Service) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	email = normalizeEmail(email)

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	if util.CheckPasswordHash(currentPassword, account.Password) != nil {
		return ErrInvalidCredentials
	}
	return s.ResetPassword(ctx, email, newPassword)
}

// Login verifies credentials and mints a session token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.Account, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	account, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if account.Password == "" || util.CheckPasswordHash(password, account.Password) != nil {
		return "", nil, ErrInvalidCredentials
	}

	tokenStr, _, err := s.maker.CreateToken(account.Email, account.BatchNo)
	if err != nil {
		return "", nil, fmt.Errorf("creating session token: %w", err)
	}
	return tokenStr, account, nil
}

// Logout blacklists the token under its own expiration. The signature is
// checked first: logging out with a garbage token is a client error, not
// a silent success. Already-revoked and already-expired tokens both pass.
func (s *Service) Logout(ctx context.Context, tokenStr string) error {
	expiresAt, err := s.maker.ExtractExpiration(tokenStr)
	if err != nil {
		return err
	}
	return s.blacklist.Revoke(ctx, tokenStr, expiresAt)
}

// AccountByEmail fetches the full account record, e.g. for the identity
// echo after the middleware has authenticated the subject.
func (s *Service) AccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	return s.findByEmail(ctx, normalizeEmail(email))
}

// EnrollmentStatus returns the account's enrollment status, empty when
// the profile has not been completed yet.
func (s *Service) EnrollmentStatus(ctx context.Context, email string) (string, error) {
	account, err := s.findByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	if account.EnrollmentStatus == nil {
		return "", nil
	}
	return *account.EnrollmentStatus, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	return &account, nil
}

// Emails are trimmed of surrounding whitespace and otherwise compared
// byte-for-byte as stored; no case folding.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}
