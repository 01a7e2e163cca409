// Package rbac holds the permission catalog and the authorization check
// applied at the entry of every protected operation.
package rbac

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crewdigital/promptgate/internal/models"
	"gorm.io/gorm"
)

// Permission names
const (
	PermUsersRead      = "users:read"
	PermPromptsReadAll = "prompts:read_all"
	PermPromptsCreate  = "prompts:create"
)

// Role names
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// PermissionSpec describes a permission to provision.
type PermissionSpec struct {
	Name        string
	Description string
}

// RoleSpec describes a role and the permission names it holds.
type RoleSpec struct {
	Name        string
	Description string
	Permissions []string
}

// DefaultPermissions is the provisioned permission catalog.
var DefaultPermissions = []PermissionSpec{
	{Name: PermUsersRead, Description: "View all users"},
	{Name: PermPromptsReadAll, Description: "View all prompts"},
	{Name: PermPromptsCreate, Description: "Create prompts"},
}

// DefaultRoles is the provisioned role catalog.
var DefaultRoles = []RoleSpec{
	{
		Name:        RoleAdmin,
		Description: "Full access including account and prompt administration",
		Permissions: []string{PermUsersRead, PermPromptsReadAll, PermPromptsCreate},
	},
	{
		Name:        RoleUser,
		Description: "Can create and read own prompts",
		Permissions: []string{PermPromptsCreate},
	},
}

// ErrForbidden is matched by every ForbiddenError.
var ErrForbidden = errors.New("forbidden")

// ForbiddenError reports an authenticated account lacking a permission.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return e.Reason }

// Is lets errors.Is(err, ErrForbidden) match.
func (e *ForbiddenError) Is(target error) bool { return target == ErrForbidden }

// Authorize checks that account holds permission through its role.
// The account's Role and Role.Permissions must be loaded (see LoadAccount).
// On success the account is returned unchanged.
func Authorize(account *models.User, permission string) (*models.User, error) {
	if account == nil || account.Role == nil {
		return nil, &ForbiddenError{Reason: "no role assigned"}
	}
	if !account.Role.HasPermission(permission) {
		return nil, &ForbiddenError{Reason: fmt.Sprintf("missing permission: %s", permission)}
	}
	return account, nil
}

// EffectivePermissions returns the permission names granted to account.
func EffectivePermissions(account *models.User) []string {
	if account == nil {
		return []string{}
	}
	return account.PermissionNames()
}

// WithRole eagerly loads an account's role and its permissions.
func WithRole(db *gorm.DB) *gorm.DB {
	return db.Preload("Role").Preload("Role.Permissions")
}

// LoadAccount loads an account by id with its role and permissions.
func LoadAccount(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := WithRole(db).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// LoadAccountByEmail loads an account by email with its role and permissions.
func LoadAccountByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := WithRole(db).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
