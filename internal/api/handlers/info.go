package handlers

import (
	"log/slog"
	"net/http"

	"github.com/crewdigital/promptgate/internal/db"
	"github.com/crewdigital/promptgate/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ServiceSettings is the non-secret slice of configuration exposed by /info
type ServiceSettings struct {
	DefaultModel      string
	GenerationBackend string
	TokenAlgorithm    string
	TokenTTLMinutes   int
	EventsBackend     string
}

// InfoHandler reports how this deployment is configured
type InfoHandler struct {
	db       *gorm.DB
	settings ServiceSettings
}

// NewInfoHandler creates a new InfoHandler
func NewInfoHandler(database *gorm.DB, settings ServiceSettings) *InfoHandler {
	return &InfoHandler{db: database, settings: settings}
}

// InfoResponse represents the server info response
type InfoResponse struct {
	InstanceID        string    `json:"instance_id"`
	Build             BuildInfo `json:"build"`
	DefaultModel      string    `json:"default_model"`
	GenerationBackend string    `json:"generation_backend"`
	TokenAlgorithm    string    `json:"token_algorithm"`
	TokenTTLMinutes   int       `json:"token_ttl_minutes"`
	EventsBackend     string    `json:"events_backend"`
	Accounts          int64     `json:"accounts"`
	Prompts           int64     `json:"prompts"`
}

// GetInfo godoc
// @Summary Get server information
// @Description Returns the instance id, generation defaults, token settings and record counts
// @Tags system
// @Produce json
// @Success 200 {object} InfoResponse
// @Failure 500 {object} ErrorResponse
// @Router /info [get]
func (h *InfoHandler) GetInfo(c *gin.Context) {
	instanceID, err := db.InstanceID(h.db)
	if err != nil {
		slog.Error("Failed to read instance ID", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "instance not initialized"})
		return
	}

	resp := InfoResponse{
		InstanceID:        instanceID,
		Build:             CurrentBuild(),
		DefaultModel:      h.settings.DefaultModel,
		GenerationBackend: h.settings.GenerationBackend,
		TokenAlgorithm:    h.settings.TokenAlgorithm,
		TokenTTLMinutes:   h.settings.TokenTTLMinutes,
		EventsBackend:     h.settings.EventsBackend,
	}
	if err := h.db.Model(&models.User{}).Count(&resp.Accounts).Error; err != nil {
		respondError(c, err)
		return
	}
	if err := h.db.Model(&models.Prompt{}).Count(&resp.Prompts).Error; err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
