package models

import (
	"time"
)

// AuditLog represents a record of account actions
type AuditLog struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	UserID      *uint     `gorm:"index" json:"user_id"`
	Action      string    `gorm:"not null" json:"action"`        // e.g., "create_prompt", "login_failed"
	Resource    string    `gorm:"not null" json:"resource"`      // e.g., "prompt:12", "user:3"
	DetailsJSON string    `gorm:"type:text" json:"details_json"` // Additional context in JSON
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
}
