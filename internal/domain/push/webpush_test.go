package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/domain"
)

func browserSub(t *testing.T, endpoint string) Subscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	raw, err := json.Marshal(map[string]any{
		"endpoint": endpoint,
		"keys": map[string]string{
			"p256dh": base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			"auth":   base64.RawURLEncoding.EncodeToString(auth),
		},
	})
	require.NoError(t, err)
	return Subscription{Kind: string(KindWebPush), Endpoint: endpoint, Payload: raw}
}

func newTestWebPushSender(t *testing.T, client *http.Client) *WebPushSender {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return NewWebPushSender(WebPushConfig{
		PublicKey:  pub,
		PrivateKey: priv,
		Subject:    "mailto:ops@turfbook.test",
	}, client)
}

func TestWebPushSenderStatusMapping(t *testing.T) {
	cases := []struct {
		status  int
		wantErr bool
		gone    bool
	}{
		{http.StatusCreated, false, false},
		{http.StatusGone, true, true},
		{http.StatusNotFound, true, true},
		{http.StatusTooManyRequests, true, false},
	}

	for _, tc := range cases {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			assert.Equal(t, "aes128gcm", r.Header.Get("Content-Encoding"))
			assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "vapid "))
			w.WriteHeader(tc.status)
		}))

		s := newTestWebPushSender(t, srv.Client())
		err := s.Send(context.Background(), browserSub(t, srv.URL+"/push/abc"), domain.PushPayload{Title: "t", URL: "/"})
		srv.Close()

		assert.EqualValues(t, 1, hits.Load())
		if !tc.wantErr {
			assert.NoError(t, err, "status %d", tc.status)
			continue
		}
		require.Error(t, err, "status %d", tc.status)
		assert.Equal(t, tc.gone, errors.Is(err, ErrSubscriptionGone), "status %d", tc.status)
	}
}

func TestWebPushSenderRejectsBadPayload(t *testing.T) {
	s := newTestWebPushSender(t, nil)

	err := s.Send(context.Background(), Subscription{Endpoint: "https://push.example/x"}, domain.PushPayload{})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	err = s.Send(context.Background(), Subscription{Payload: []byte("{")}, domain.PushPayload{})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
