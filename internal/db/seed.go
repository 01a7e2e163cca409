package db

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/crewdigital/promptgate/internal/auth"
	"github.com/crewdigital/promptgate/internal/models"
	"github.com/crewdigital/promptgate/internal/rbac"
	"gorm.io/gorm"
)

// SeedAccount is an account to provision with a named role.
type SeedAccount struct {
	Email    string
	Password string
	Role     string
}

// DemoAccounts are optional accounts for local development.
var DemoAccounts = []SeedAccount{
	{Email: "admin@example.com", Password: "adminpass", Role: rbac.RoleAdmin},
	{Email: "user@example.com", Password: "userpass", Role: rbac.RoleUser},
}

// SeedRBAC creates the default permissions and roles and attaches each
// role's permissions. Every lookup is by name so it is safe to run on every
// start and against databases with arbitrary id sequences.
func SeedRBAC(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		perms := make(map[string]models.Permission, len(rbac.DefaultPermissions))
		for _, spec := range rbac.DefaultPermissions {
			desc := spec.Description
			var perm models.Permission
			result := tx.Where(models.Permission{Name: spec.Name}).
				Attrs(models.Permission{Description: &desc}).
				FirstOrCreate(&perm)
			if result.Error != nil {
				return fmt.Errorf("permission %s: %w", spec.Name, result.Error)
			}
			if result.RowsAffected > 0 {
				slog.Info("Created permission", "permission", spec.Name)
			}
			perms[spec.Name] = perm
		}

		for _, spec := range rbac.DefaultRoles {
			var role models.Role
			result := tx.Where(models.Role{Name: spec.Name}).
				Attrs(models.Role{Description: spec.Description}).
				FirstOrCreate(&role)
			if result.Error != nil {
				return fmt.Errorf("role %s: %w", spec.Name, result.Error)
			}
			if result.RowsAffected > 0 {
				slog.Info("Created role", "role", spec.Name)
			}
			if err := tx.Model(&role).Association("Permissions").Find(&role.Permissions); err != nil {
				return fmt.Errorf("load permissions of %s: %w", spec.Name, err)
			}

			var missing []models.Permission
			for _, name := range spec.Permissions {
				if !role.HasPermission(name) {
					missing = append(missing, perms[name])
				}
			}
			if len(missing) == 0 {
				continue
			}
			if err := tx.Model(&role).Association("Permissions").Append(missing); err != nil {
				return fmt.Errorf("attach permissions to %s: %w", spec.Name, err)
			}
			slog.Info("Attached permissions to role", "role", spec.Name, "count", len(missing))
		}
		return nil
	})
}

// SeedUsers creates the given accounts unless an account with the same email
// already exists.
func SeedUsers(db *gorm.DB, accounts []SeedAccount) error {
	for _, acc := range accounts {
		var existing models.User
		err := db.Where("email = ?", acc.Email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("lookup %s: %w", acc.Email, err)
		}

		if err := createAccount(db, acc); err != nil {
			return err
		}
		slog.Info("Seeded account", "email", acc.Email, "role", acc.Role)
	}
	return nil
}

func createAccount(db *gorm.DB, acc SeedAccount) error {
	var role models.Role
	if err := db.Where("name = ?", acc.Role).First(&role).Error; err != nil {
		return fmt.Errorf("role %q for %s: %w", acc.Role, acc.Email, err)
	}

	hash, err := auth.HashPassword(acc.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Email:        acc.Email,
		PasswordHash: hash,
		IsActive:     true,
		RoleID:       &role.ID,
	}
	if err := db.Create(&user).Error; err != nil {
		return fmt.Errorf("create %s: %w", acc.Email, err)
	}
	return nil
}
