package handlers

import (
	"net/http"
	"strconv"

	"github.com/crewdigital/promptgate/internal/agents/invoice"
	"github.com/crewdigital/promptgate/internal/service"
	"github.com/gin-gonic/gin"
)

// CreatePromptRequest is the body of POST /prompts
type CreatePromptRequest struct {
	PromptText string `json:"prompt_text" binding:"required"`
	ModelName  string `json:"model_name"`
}

// ExtractInvoiceRequest is the optional body of POST /extract-invoice
type ExtractInvoiceRequest struct {
	TextContent string `json:"text_content"`
	ModelName   string `json:"model_name"`
}

// PromptHandler serves prompt creation, retrieval and invoice extraction
type PromptHandler struct {
	prompts   *service.PromptService
	extractor *invoice.Extractor
}

// NewPromptHandler creates a new PromptHandler
func NewPromptHandler(prompts *service.PromptService, extractor *invoice.Extractor) *PromptHandler {
	return &PromptHandler{prompts: prompts, extractor: extractor}
}

// CreatePrompt godoc
// @Summary Run a prompt through the generation backend
// @Tags prompts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param prompt body CreatePromptRequest true "Prompt"
// @Success 201 {object} models.Prompt
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /prompts [post]
func (h *PromptHandler) CreatePrompt(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	prompt, err := h.prompts.Create(c.Request.Context(), service.CreatePromptRequest{
		PromptText: req.PromptText,
		Model:      req.ModelName,
	}, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, prompt)
}

// ListPrompts godoc
// @Summary List the caller's prompts, newest first
// @Tags prompts
// @Security BearerAuth
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Limit (default 20)"
// @Success 200 {array} models.Prompt
// @Router /prompts [get]
func (h *PromptHandler) ListPrompts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	page, err := pageFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	prompts, err := h.prompts.List(userID, page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prompts)
}

// GetPrompt godoc
// @Summary Get one of the caller's prompts
// @Tags prompts
// @Security BearerAuth
// @Produce json
// @Param id path int true "Prompt ID"
// @Success 200 {object} models.Prompt
// @Failure 404 {object} ErrorResponse
// @Router /prompts/{id} [get]
func (h *PromptHandler) GetPrompt(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Prompt not found"})
		return
	}

	prompt, err := h.prompts.Get(uint(id), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prompt)
}

// ExtractInvoice godoc
// @Summary Extract structured invoice data from text
// @Description text_content may be given as a query parameter or in the JSON body
// @Tags prompts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param text_content query string false "Invoice text"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /extract-invoice [post]
func (h *PromptHandler) ExtractInvoice(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req ExtractInvoiceRequest
	if c.Request.ContentLength != 0 && c.ContentType() == "application/json" {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}
	if q := c.Query("text_content"); q != "" {
		req.TextContent = q
	}
	if q := c.Query("model_name"); q != "" {
		req.ModelName = q
	}

	result, _, err := h.extractor.Extract(c.Request.Context(), req.TextContent, userID, req.ModelName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
