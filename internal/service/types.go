package service

import "github.com/crewdigital/promptgate/internal/llm"

// Page limits
const (
	DefaultPromptLimit  = 20
	DefaultAccountLimit = 100
	MaxLimit            = 100
)

// Page is an offset/limit window over an ordered listing.
type Page struct {
	Offset int
	Limit  int
}

// normalize clamps the page to valid bounds, applying defaultLimit when the
// limit is unset.
func (p Page) normalize(defaultLimit int) (Page, error) {
	if p.Offset < 0 {
		return p, &ValidationError{Message: "skip must not be negative"}
	}
	if p.Limit < 0 {
		return p, &ValidationError{Message: "limit must not be negative"}
	}
	if p.Limit == 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p, nil
}

// CreatePromptRequest holds parameters for creating a prompt.
type CreatePromptRequest struct {
	PromptText string
	Model      string
	// Metadata is merged over the backend's metadata; these keys win.
	Metadata map[string]interface{}
	Options  llm.Options
	// Action is the audit action recorded with the prompt.
	Action string
}
