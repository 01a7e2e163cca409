package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/crewdigital/promptgate/internal/audit"
	"github.com/crewdigital/promptgate/internal/models"
	"github.com/crewdigital/promptgate/internal/rbac"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// UserContextKey is the key used to store the account in Gin context
	UserContextKey = "user"
	// DefaultTokenTTL is used when no lifetime is configured
	DefaultTokenTTL = 30 * time.Minute
)

// BasicAuthenticator implements email/password authentication backed by
// the accounts table and bearer tokens from a TokenCodec.
type BasicAuthenticator struct {
	db          *gorm.DB
	codec       *TokenCodec
	tokenTTL    time.Duration
	defaultRole string
}

// NewBasicAuthenticator creates a new basic authenticator
func NewBasicAuthenticator(db *gorm.DB, codec *TokenCodec, tokenTTL time.Duration, defaultRole string) *BasicAuthenticator {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	if defaultRole == "" {
		defaultRole = rbac.RoleUser
	}
	return &BasicAuthenticator{
		db:          db,
		codec:       codec,
		tokenTTL:    tokenTTL,
		defaultRole: defaultRole,
	}
}

// Register creates an account with the named role. An empty role name
// selects the default role. The returned account has its role and
// permissions loaded.
func (a *BasicAuthenticator) Register(email, password, roleName string) (*models.User, error) {
	email = rbac.NormalizeEmail(email)
	if roleName == "" {
		roleName = a.defaultRole
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var created *models.User
	err = a.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if count > 0 {
			return ErrEmailTaken
		}

		var role models.Role
		if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrRoleNotFound, roleName)
			}
			return fmt.Errorf("lookup role: %w", err)
		}

		user := models.User{
			Email:        email,
			PasswordHash: hash,
			IsActive:     true,
			RoleID:       &role.ID,
		}
		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}

		if err := audit.LogAction(tx, &user.ID, audit.ActionRegister, audit.UserResource(user.ID), map[string]interface{}{
			"email": email,
			"role":  roleName,
		}); err != nil {
			return fmt.Errorf("audit: %w", err)
		}

		loaded, err := rbac.LoadAccount(tx, user.ID)
		if err != nil {
			return fmt.Errorf("reload user: %w", err)
		}
		created = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("User registered", "user_id", created.ID, "email", created.Email, "role", roleName)
	return created, nil
}

// Authenticate checks email and password and returns the matching active
// account with its role and permissions loaded.
func (a *BasicAuthenticator) Authenticate(email, password string) (*models.User, error) {
	user, err := rbac.LoadAccountByEmail(a.db, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("Login attempt with non-existent email", "email", email)
			a.recordFailure(nil, email, "unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !VerifyPassword(user.PasswordHash, password) {
		slog.Warn("Login attempt with incorrect password", "email", email)
		a.recordFailure(&user.ID, email, "bad password")
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		slog.Warn("Login attempt for inactive account", "email", email)
		a.recordFailure(&user.ID, email, "inactive")
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (a *BasicAuthenticator) recordFailure(userID *uint, email, reason string) {
	if err := audit.LogAction(a.db, userID, audit.ActionLoginFailed, "user:"+email, map[string]string{"reason": reason}); err != nil {
		slog.Error("Failed to write audit log", "action", audit.ActionLoginFailed, "error", err)
	}
}

// Login authenticates an account and returns a bearer token
func (a *BasicAuthenticator) Login(email, password string) (*TokenResponse, error) {
	user, err := a.Authenticate(email, password)
	if err != nil {
		return nil, err
	}

	token, err := a.codec.Issue(user.Email, a.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if err := audit.LogAction(a.db, &user.ID, audit.ActionLogin, audit.UserResource(user.ID), nil); err != nil {
		slog.Error("Failed to write audit log", "action", audit.ActionLogin, "error", err)
	}

	slog.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return &TokenResponse{
		AccessToken: token,
		TokenType:   TokenType,
	}, nil
}

// ResolveIdentity verifies token and loads the active account it names,
// with role and permissions eagerly loaded.
func (a *BasicAuthenticator) ResolveIdentity(token string) (*models.User, error) {
	email, err := a.codec.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := rbac.LoadAccountByEmail(a.db, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: inactive account", ErrInvalidCredentials)
	}

	return user, nil
}

// Middleware returns a Gin middleware that requires a valid bearer token.
func (a *BasicAuthenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "Not authenticated")
			return
		}

		user, err := a.ResolveIdentity(tokenString)
		if err != nil {
			if !errors.Is(err, ErrInvalidCredentials) {
				slog.Error("Failed to resolve identity", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				c.Abort()
				return
			}
			slog.Warn("Invalid token", "error", err)
			abortUnauthorized(c, "Could not validate credentials")
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	c.Abort()
}

var _ Authenticator = (*BasicAuthenticator)(nil)

// GetUserFromContext extracts the authenticated account from the Gin context
func (a *BasicAuthenticator) GetUserFromContext(c *gin.Context) (*models.User, error) {
	return UserFromContext(c)
}

// UserFromContext extracts the authenticated account from the Gin context
func UserFromContext(c *gin.Context) (*models.User, error) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, ErrUnauthorized
	}

	user, ok := value.(*models.User)
	if !ok {
		return nil, errors.New("invalid user in context")
	}

	return user, nil
}
