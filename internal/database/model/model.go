package model

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAdmin   Role = "ADMIN"
)

// Account is one row of the sign_up table. A student account moves through
// provisioning stages that are encoded entirely in the presence of fields:
// invite token set and password empty means the account is still invited,
// a password with no profile means sign-up is half done, and a filled
// profile is the normal operating state. Admin accounts are seeded at boot
// with null profile fields.
type Account struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Email    string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password string `gorm:"type:varchar(100)"`
	// Token is the one-time invite secret. Cleared when the password is
	// set; once cleared it can never match again.
	Token *string `gorm:"type:varchar(100)"`

	Name                     *string `gorm:"type:varchar(100)"`
	Sex                      *string `gorm:"type:varchar(10)"`
	PhoneNumber              *string `gorm:"type:varchar(20)"`
	UniversityName           *string `gorm:"type:varchar(255)"`
	UniversityRegistrationID *string `gorm:"type:varchar(100)"`
	CourseProgrammeName      *string `gorm:"type:varchar(255)"`
	EnrolledYear             *string `gorm:"type:varchar(10)"`
	BatchNo                  *int
	EnrollmentStatus         *string `gorm:"type:varchar(20)"`
	Role                     Role    `gorm:"type:varchar(10)"`
}

func (Account) TableName() string {
	return "sign_up"
}

// ProfileCompleted mirrors the flag the frontend keys off after login.
func (a *Account) ProfileCompleted() bool {
	return a.Name != nil && *a.Name != ""
}

// RevokedToken is a blacklist entry for a session token invalidated by
// logout before its natural expiry. Tokens are stored by SHA-256 hash so
// the table never holds a usable credential. Hard deletes only; a revoked
// token must not be resurrectable via soft-delete.
type RevokedToken struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time

	TokenHash string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_revoked_tokens_hash"`
	ExpiresAt time.Time `gorm:"not null;index:idx_revoked_tokens_expires"`
}

func (RevokedToken) TableName() string {
	return "blacklisted_tokens"
}

// Migrate creates or updates the schema for every model in this package.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Account{}, &RevokedToken{})
}
