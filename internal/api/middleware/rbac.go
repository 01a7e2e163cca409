package middleware

import (
	"net/http"

	"github.com/crewdigital/promptgate/internal/auth"
	"github.com/crewdigital/promptgate/internal/rbac"
	"github.com/gin-gonic/gin"
)

// RequirePermission ensures the authenticated account holds permission.
// It must run after the authentication middleware.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := auth.UserFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		// Authorize only fails with a ForbiddenError whose text is the reason.
		if _, err := rbac.Authorize(user, permission); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Next()
	}
}
