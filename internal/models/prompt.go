package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultModelName is used when a prompt is created without a model
const DefaultModelName = "llama3"

// Prompt is one persisted generation request/response pair.
// UserID is nullable so records without an owner can exist; ownership is a
// plain foreign key and User does not hold a list of prompts.
type Prompt struct {
	ID               uint                   `gorm:"primarykey" json:"id"`
	UserID           *uint                  `gorm:"index" json:"user_id"`
	PromptText       string                 `gorm:"type:text;not null" json:"prompt_text"`
	ResponseText     *string                `gorm:"type:text" json:"response_text"`
	ModelName        string                 `gorm:"not null;default:'llama3'" json:"model_name"`
	ProcessingTimeMs *int64                 `json:"processing_time_ms"`
	MetaData         map[string]interface{} `gorm:"type:text;serializer:json" json:"meta_data"`
	CreatedAt        time.Time              `gorm:"index" json:"created_at"`
	UpdatedAt        *time.Time             `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// BeforeUpdate stamps UpdatedAt. Freshly created prompts keep a null
// UpdatedAt until something modifies them.
func (p *Prompt) BeforeUpdate(tx *gorm.DB) error {
	tx.Statement.SetColumn("UpdatedAt", tx.NowFunc())
	return nil
}
