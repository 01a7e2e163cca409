package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/crewdigital/promptgate/internal/auth"
	"github.com/crewdigital/promptgate/internal/llm"
	"github.com/crewdigital/promptgate/internal/rbac"
	"github.com/crewdigital/promptgate/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps a domain error to its HTTP status. Server-side failures
// are logged and reported without internal detail.
func respondError(c *gin.Context, err error) {
	var (
		validationErr *service.ValidationError
		upstreamErr   *llm.UpstreamError
	)

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Incorrect email or password"})
	case errors.Is(err, rbac.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: auth.ErrEmailTaken.Error()})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "resource already exists"})
	case errors.Is(err, auth.ErrRoleNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Prompt not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Message})
	case errors.As(err, &upstreamErr):
		slog.Error("Generation backend failure", "error", err, "path", c.FullPath())
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Generation backend unavailable"})
	default:
		slog.Error("Request failed", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// pageFromQuery reads skip and limit query parameters.
func pageFromQuery(c *gin.Context) (service.Page, error) {
	var page service.Page
	var err error

	if v := c.Query("skip"); v != "" {
		if page.Offset, err = strconv.Atoi(v); err != nil {
			return page, &service.ValidationError{Message: "skip must be an integer"}
		}
	}
	if v := c.Query("limit"); v != "" {
		if page.Limit, err = strconv.Atoi(v); err != nil {
			return page, &service.ValidationError{Message: "limit must be an integer"}
		}
	}
	return page, nil
}

// currentUser returns the authenticated account or writes a 401.
func currentUser(c *gin.Context) (uint, bool) {
	user, err := auth.UserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Not authenticated"})
		return 0, false
	}
	return user.ID, true
}

// HealthCheck godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
