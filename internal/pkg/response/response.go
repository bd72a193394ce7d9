package response

import "github.com/gin-gonic/gin"

// Envelope is the body of every REST response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{Success: true, Data: data})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, Envelope{Error: &ErrorBody{Code: code, Message: message}})
}

// CustomError writes the error envelope and stops the handler chain.
func CustomError(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

// ErrorWithDetails carries per-field validation messages.
func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.AbortWithStatusJSON(statusCode, Envelope{Error: &ErrorBody{Code: code, Message: message, Details: details}})
}
