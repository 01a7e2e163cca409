package cliclient

import "time"

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents a login response.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest represents an account registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// User represents an account.
type User struct {
	ID          uint     `json:"id"`
	Email       string   `json:"email"`
	IsActive    bool     `json:"is_active"`
	Role        *string  `json:"role"`
	Permissions []string `json:"permissions"`
}

// Prompt represents a stored prompt and its response.
type Prompt struct {
	ID               uint                   `json:"id"`
	UserID           *uint                  `json:"user_id"`
	PromptText       string                 `json:"prompt_text"`
	ResponseText     *string                `json:"response_text"`
	ModelName        string                 `json:"model_name"`
	ProcessingTimeMs *int64                 `json:"processing_time_ms"`
	MetaData         map[string]interface{} `json:"meta_data"`
	CreatedAt        time.Time              `json:"created_at"`
}

// CreatePromptRequest represents a request to run a prompt.
type CreatePromptRequest struct {
	PromptText string `json:"prompt_text"`
	ModelName  string `json:"model_name,omitempty"`
}

// ExtractInvoiceRequest represents an invoice extraction request.
type ExtractInvoiceRequest struct {
	TextContent string `json:"text_content"`
	ModelName   string `json:"model_name,omitempty"`
}

// ListOptions selects a page of a listing.
type ListOptions struct {
	Skip  int
	Limit int
}
