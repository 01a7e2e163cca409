package models

import (
	"time"
)

// User represents a registered account. An account holds at most one Role and
// its effective permissions are exactly the permissions attached to that Role.
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	RoleID       *uint     `gorm:"index" json:"role_id"`
	Role         *Role     `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PermissionNames returns the names of the permissions granted through the
// user's role. The role and its permissions must already be loaded.
func (u *User) PermissionNames() []string {
	if u.Role == nil {
		return []string{}
	}
	names := make([]string, 0, len(u.Role.Permissions))
	for _, p := range u.Role.Permissions {
		names = append(names, p.Name)
	}
	return names
}

// RoleName returns the name of the user's role, or "" if none is loaded.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}
