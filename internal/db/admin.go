package db

import (
	"fmt"
	"log/slog"

	"github.com/crewdigital/promptgate/internal/config"
	"github.com/crewdigital/promptgate/internal/models"
	"github.com/crewdigital/promptgate/internal/rbac"
	"gorm.io/gorm"
)

// CreateDefaultAdmin creates an admin account from the bootstrap settings
// when both email and password are set and no accounts exist yet.
func CreateDefaultAdmin(db *gorm.DB, cfg config.BootstrapConfig) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		slog.Info("No bootstrap admin configured, skipping default admin creation")
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		slog.Info("Users already exist, skipping default admin creation")
		return nil
	}

	err := createAccount(db, SeedAccount{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Role:     rbac.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	slog.Info("Default admin user created", "email", cfg.AdminEmail)
	return nil
}
