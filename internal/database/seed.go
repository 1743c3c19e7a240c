package database

import (
	"errors"
	"fmt"

	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/config"
	"github.com/sitesupply/procurement-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedAdmin ensures the bootstrap admin account exists. It is idempotent:
// an existing user with the configured email is left untouched, including
// a password the admin has since changed.
func SeedAdmin(db *gorm.DB, cfg *config.SeedConfig, logger *zap.Logger) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Info("Admin seed skipped, no credentials configured")
		return nil
	}

	var existing domain.User
	err := db.Where("email = ?", cfg.AdminEmail).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	name := cfg.AdminName
	if name == "" {
		name = "Administrator"
	}

	admin := domain.User{
		Email:              cfg.AdminEmail,
		DisplayName:        name,
		Role:               domain.RoleAdmin,
		PasswordHash:       hash,
		IsActive:           true,
		MustChangePassword: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Admin user seeded", zap.String("email", cfg.AdminEmail))
	return nil
}
