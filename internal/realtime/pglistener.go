package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
)

var (
	ErrMissingKey = errors.New("change notice has no routing key")
	ErrMissingID  = errors.New("change notice has no row id")
)

const (
	reconnectDelay = 3 * time.Second
	loadTimeout    = 5 * time.Second
)

// PGListener bridges postgres LISTEN/NOTIFY into a Hub. Notices written by the
// insert trigger carry {type, table, id, <keyField>}; the listener loads the
// full row by id before publishing.
type PGListener struct {
	dsn      string
	channel  string
	keyField string
	hub      *Hub
}

// NewPGListener routes each event by the string value of notice[keyField].
func NewPGListener(dsn, channel, keyField string, hub *Hub) *PGListener {
	return &PGListener{dsn: dsn, channel: channel, keyField: keyField, hub: hub}
}

// rowQuerier is the part of *pgx.Conn the listener needs to load rows.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// changeNotice is a decoded trigger payload.
type changeNotice struct {
	Type  EventType
	Table string
	ID    string
	Key   string
}

// Run listens until ctx is done, reconnecting after connection failures.
func (l *PGListener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("realtime_listener_error channel=%s err=%v", l.channel, err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *PGListener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	log.Printf("realtime_listener_started channel=%s", l.channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait: %w", err)
		}

		ev, err := l.resolve(ctx, conn, n.Payload)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("realtime_listener_bad_notice channel=%s err=%v", l.channel, err)
			continue
		}
		l.hub.Publish(ev)
	}
}

// resolve turns a trigger notice into a ChangeEvent carrying the full row.
func (l *PGListener) resolve(ctx context.Context, q rowQuerier, payload string) (ChangeEvent, error) {
	notice, err := decodeNotice(payload, l.keyField)
	if err != nil {
		return ChangeEvent{}, err
	}

	record, err := loadRecord(ctx, q, notice.Table, notice.ID)
	if err != nil {
		return ChangeEvent{}, err
	}
	return ChangeEvent{Type: notice.Type, Table: notice.Table, Record: record, Key: notice.Key}, nil
}

func decodeNotice(payload, keyField string) (changeNotice, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return changeNotice{}, fmt.Errorf("decode notice: %w", err)
	}

	typ, _ := fields["type"].(string)
	table, _ := fields["table"].(string)
	if table == "" {
		return changeNotice{}, errors.New("change notice has no table")
	}

	id, ok := fields["id"].(string)
	if !ok || id == "" {
		return changeNotice{}, ErrMissingID
	}
	key, ok := fields[keyField].(string)
	if !ok || key == "" {
		return changeNotice{}, ErrMissingKey
	}
	return changeNotice{Type: EventType(typ), Table: table, ID: id, Key: key}, nil
}

func loadRecord(ctx context.Context, q rowQuerier, table, id string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	sql := "SELECT row_to_json(t) FROM " + pgx.Identifier{table}.Sanitize() + " t WHERE t.id = $1"
	var record []byte
	if err := q.QueryRow(ctx, sql, id).Scan(&record); err != nil {
		return nil, fmt.Errorf("load %s row %s: %w", table, id, err)
	}
	return json.RawMessage(record), nil
}
