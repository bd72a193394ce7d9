package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-ID"

// RequestID makes sure every request carries an X-Request-ID, generating one if absent.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestID(c)
		if id == "" {
			id = uuid.NewString()
			c.Request.Header.Set(headerRequestID, id)
		}
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetHeader(headerRequestID)
}
