package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"turfbook/internal/pkg/jwt"
	"turfbook/internal/pkg/response"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth authenticates the caller from "Authorization: Bearer <jwt>" and stores
// user_id (uuid.UUID) and role in the gin context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.CustomError(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Empty token")
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// UserID returns the authenticated user, or uuid.Nil when the request is anonymous.
func UserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}

// Role returns the authenticated user's role.
func Role(c *gin.Context) string {
	return c.GetString(ctxRole)
}
