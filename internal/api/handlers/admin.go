package handlers

import (
	"net/http"

	"github.com/crewdigital/promptgate/internal/service"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves cross-account listings
type AdminHandler struct {
	accounts *service.AccountService
	prompts  *service.PromptService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(accounts *service.AccountService, prompts *service.PromptService) *AdminHandler {
	return &AdminHandler{accounts: accounts, prompts: prompts}
}

// ListUsers godoc
// @Summary List all accounts (requires users:read)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Limit (default 100)"
// @Success 200 {array} UserResponse
// @Failure 403 {object} ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	users, err := h.accounts.ListAccounts(page)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = newUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

// ListAllPrompts godoc
// @Summary List prompts across all accounts (requires prompts:read_all)
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param skip query int false "Offset"
// @Param limit query int false "Limit (default 100)"
// @Success 200 {array} models.Prompt
// @Failure 403 {object} ErrorResponse
// @Router /admin/all-prompts [get]
func (h *AdminHandler) ListAllPrompts(c *gin.Context) {
	page, err := pageFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	prompts, err := h.prompts.ListAll(page)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prompts)
}
