package push

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turfbook/internal/domain"
)

type fakeFCM struct {
	got []*messaging.Message
	err error
}

func (f *fakeFCM) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.got = append(f.got, m)
	if f.err != nil {
		return "", f.err
	}
	return "projects/p/messages/1", nil
}

func TestFCMSenderBuildsMessage(t *testing.T) {
	client := &fakeFCM{}
	s := NewFCMSender(client)

	err := s.Send(context.Background(), Subscription{Kind: string(KindFCM), Endpoint: "tok-1"},
		domain.PushPayload{Title: "Hi", Body: "there", URL: "https://turfbook.app/b/1"})
	require.NoError(t, err)
	require.Len(t, client.got, 1)

	m := client.got[0]
	assert.Equal(t, "tok-1", m.Token)
	assert.Equal(t, "Hi", m.Notification.Title)
	assert.Equal(t, "there", m.Notification.Body)
	assert.Equal(t, "https://turfbook.app/b/1", m.Data["url"])
	require.NotNil(t, m.Webpush)
	assert.Equal(t, "https://turfbook.app/b/1", m.Webpush.FCMOptions.Link)
}

func TestFCMSenderSkipsRelativeWebLink(t *testing.T) {
	client := &fakeFCM{}
	require.NoError(t, NewFCMSender(client).Send(context.Background(), Subscription{Endpoint: "tok"}, domain.PushPayload{URL: "/"}))
	assert.Nil(t, client.got[0].Webpush)
}

func TestFCMSenderWrapsErrors(t *testing.T) {
	client := &fakeFCM{err: errors.New("unavailable")}
	err := NewFCMSender(client).Send(context.Background(), Subscription{Endpoint: "tok"}, domain.PushPayload{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSubscriptionGone)
}
