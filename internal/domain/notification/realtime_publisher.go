package notification

import (
	"context"
	"encoding/json"
	"log"

	"turfbook/internal/domain"
	"turfbook/internal/realtime"
)

// RealtimePublisher forwards stored notifications to the realtime hub as INSERT events.
type RealtimePublisher struct {
	hub *realtime.Hub
}

func NewRealtimePublisher(hub *realtime.Hub) *RealtimePublisher {
	return &RealtimePublisher{hub: hub}
}

func (p *RealtimePublisher) NotificationCreated(_ context.Context, n domain.Notification) {
	record, err := json.Marshal(n)
	if err != nil {
		log.Printf("realtime_publish_failed notification_id=%s err=%v", n.ID, err)
		return
	}
	p.hub.Publish(realtime.ChangeEvent{
		Type:   realtime.EventInsert,
		Table:  TableName,
		Record: record,
		Key:    n.RecipientID.String(),
	})
}
