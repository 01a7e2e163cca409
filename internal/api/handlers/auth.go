package handlers

import (
	"net/http"

	"github.com/crewdigital/promptgate/internal/auth"
	"github.com/crewdigital/promptgate/internal/models"
	"github.com/crewdigital/promptgate/internal/rbac"
	"github.com/gin-gonic/gin"
)

// UserResponse is the public view of an account
type UserResponse struct {
	ID          uint     `json:"id"`
	Email       string   `json:"email"`
	IsActive    bool     `json:"is_active"`
	Role        *string  `json:"role"`
	Permissions []string `json:"permissions"`
}

func newUserResponse(u *models.User) UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		IsActive:    u.IsActive,
		Permissions: rbac.EffectivePermissions(u),
	}
	if name := u.RoleName(); name != "" {
		resp.Role = &name
	}
	return resp
}

// AuthHandler serves registration, login and the current account
type AuthHandler struct {
	auth auth.Authenticator
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(a auth.Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param account body auth.RegisterRequest true "Account"
// @Success 201 {object} UserResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	user, err := h.auth.Register(req.Email, req.Password, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newUserResponse(user))
}

// Login godoc
// @Summary Log in
// @Description Accepts JSON {email,password} or form fields username/password and returns a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	resp, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me godoc
// @Summary Current account
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}
