package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, http.StatusOK, gin.H{"unread_count": 2})

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["data"].(map[string]any)["unread_count"])
	assert.NotContains(t, body, "error")
}

func TestCustomErrorAborts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	CustomError(c, http.StatusNotFound, "NOT_FOUND", "Notification not found")

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errBody["code"])
	assert.NotContains(t, errBody, "details")
}

func TestErrorWithDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid", map[string]string{"title": "required"})

	errBody := decode(t, w)["error"].(map[string]any)
	assert.Equal(t, "required", errBody["details"].(map[string]any)["title"])
}
