package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServiceKeyAuth protects the function endpoints with the service credential. The key is
// accepted either as "Authorization: Bearer <key>" or in the "apikey" header. An empty
// expected key disables the check (local development).
func ServiceKeyAuth(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}

		provided := strings.TrimSpace(c.GetHeader("apikey"))
		if provided == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				logAuthFailure(c, http.StatusUnauthorized, "missing_auth")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				logAuthFailure(c, http.StatusUnauthorized, "invalid_auth_format")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must be 'Bearer <token>'"})
				return
			}
			provided = strings.TrimSpace(parts[1])
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
			logAuthFailure(c, http.StatusForbidden, "invalid_token")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid service key"})
			return
		}

		c.Next()
	}
}

func logAuthFailure(c *gin.Context, status int, reason string) {
	log.Printf("service_key_auth status=%d path=%s request_id=%s reason=%s", status, c.Request.URL.Path, requestID(c), reason)
}
