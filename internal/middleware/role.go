package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"turfbook/internal/pkg/response"
)

const RoleAdmin = "admin"

// RequireRole lets the request through when the token carries any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		if role == "" {
			response.CustomError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			return
		}
		if !slices.Contains(roles, role) {
			response.CustomError(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			return
		}
		c.Next()
	}
}

// AdminOnly guards the notification producer endpoints.
func AdminOnly() gin.HandlerFunc {
	return RequireRole(RoleAdmin)
}
