package auth

import (
	"errors"

	"github.com/crewdigital/promptgate/internal/models"
	"github.com/gin-gonic/gin"
)

var (
	// ErrInvalidCredentials covers bad logins and bad, expired or
	// unresolvable tokens.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrEmailTaken         = errors.New("the user with this email already exists in the system")
	ErrRoleNotFound       = errors.New("role not found")
)

// TokenType is the token type returned to clients
const TokenType = "bearer"

// LoginRequest represents a JSON login request
type LoginRequest struct {
	Email    string `json:"email" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// TokenResponse represents a login response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=1"`
	Role     string `json:"role"`
}

// Authenticator is an interface for authentication providers
type Authenticator interface {
	// Register creates an account with the named role, or the default role
	// when roleName is empty
	Register(email, password, roleName string) (*models.User, error)

	// Login authenticates an account and returns a bearer token
	Login(email, password string) (*TokenResponse, error)

	// Middleware returns a Gin middleware for authentication
	Middleware() gin.HandlerFunc

	// GetUserFromContext extracts the authenticated account from the Gin context
	GetUserFromContext(c *gin.Context) (*models.User, error)
}
