package models

// Permission is a named global capability, e.g. "users:read".
type Permission struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	Name        string  `gorm:"uniqueIndex;not null" json:"name"`
	Description *string `json:"description,omitempty"`
}
