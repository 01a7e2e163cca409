package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/crewdigital/promptgate/internal/models"
	"gorm.io/gorm"
)

// LogAction records an audit log entry. userID may be nil for actions
// without an authenticated account (e.g. a failed login for an unknown email).
func LogAction(db *gorm.DB, userID *uint, action, resource string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	log := models.AuditLog{
		UserID:      userID,
		Action:      action,
		Resource:    resource,
		DetailsJSON: string(detailsJSON),
		Timestamp:   time.Now(),
	}

	return db.Create(&log).Error
}

// UserResource formats an account resource identifier.
func UserResource(id uint) string { return fmt.Sprintf("user:%d", id) }

// PromptResource formats a prompt resource identifier.
func PromptResource(id uint) string { return fmt.Sprintf("prompt:%d", id) }

// Audit actions constants
const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionLoginFailed    = "login_failed"
	ActionCreatePrompt   = "create_prompt"
	ActionExtractInvoice = "extract_invoice"
)
