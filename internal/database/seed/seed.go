package seed

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nmbsms/scholarship-backend/internal/config"
	"github.com/nmbsms/scholarship-backend/internal/database/model"
	"github.com/nmbsms/scholarship-backend/internal/util"
	"gorm.io/gorm"
)

// Admins creates the configured admin account if it does not exist yet.
// Admin accounts never go through the invite flow and keep null profile
// fields. Safe to run on every boot.
func Admins(db *gorm.DB, cfg *config.Config) error {
	if cfg.AdminEmail == "" {
		slog.Debug("No admin account configured, skipping seed")
		return nil
	}

	var existing model.Account
	err := db.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		slog.Info("Admin already exists", "email", cfg.AdminEmail)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking for admin account: %w", err)
	}

	hash, err := util.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := model.Account{
		Email:    cfg.AdminEmail,
		Password: hash,
		Role:     model.RoleAdmin,
	}
	if cfg.AdminName != "" {
		admin.Name = &cfg.AdminName
	}
	if cfg.AdminPhone != "" {
		admin.PhoneNumber = &cfg.AdminPhone
	}

	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}
	slog.Info("Created admin", "email", cfg.AdminEmail)
	return nil
}
