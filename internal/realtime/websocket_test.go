package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/pkg/jwt"
)

func newWSServer(t *testing.T, hub *Hub, js *jwt.Service) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/realtime/v1/notifications", NewWSHandler(hub, js, "notifications").Serve)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestWSHandlerRejectsMissingToken(t *testing.T) {
	srv := newWSServer(t, NewHub(4), jwt.New("secret", time.Hour))

	resp, err := http.Get(srv.URL + "/realtime/v1/notifications")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSHandlerRejectsBadToken(t *testing.T) {
	srv := newWSServer(t, NewHub(4), jwt.New("secret", time.Hour))

	resp, err := http.Get(srv.URL + "/realtime/v1/notifications?token=nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWSHandlerStreamsOwnInserts(t *testing.T) {
	hub := NewHub(4)
	js := jwt.New("secret", time.Hour)
	srv := newWSServer(t, hub, js)

	me := uuid.New()
	token, err := js.GenerateToken(me, "client")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/realtime/v1/notifications?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(insert(uuid.NewString()))
	hub.Publish(insert(me.String()))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got ChangeEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, EventInsert, got.Type)
	assert.Equal(t, "notifications", got.Table)
	assert.JSONEq(t, `{"id":"x"}`, string(got.Record))

	conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
