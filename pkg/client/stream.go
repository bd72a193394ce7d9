package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"turfbook/internal/domain"
)

const (
	streamPath       = "/realtime/v1/notifications"
	reconnectBackoff = 2 * time.Second
)

// changeFrame mirrors the realtime hub's INSERT event.
type changeFrame struct {
	Type   string          `json:"type"`
	Table  string          `json:"table"`
	Record json.RawMessage `json:"record"`
}

// Stream delivers newly inserted notifications for the client's user.
// It redials after transport errors until Close is called.
type Stream struct {
	dialer  *websocket.Dialer
	wsURL   string
	events  chan domain.Notification
	done    chan struct{}
	closeMu sync.Mutex
	closed  bool
	conn    *websocket.Conn
	wg      sync.WaitGroup
}

// Subscribe opens the realtime stream. The first dial is synchronous so
// auth failures surface to the caller.
func (c *Client) Subscribe(ctx context.Context) (*Stream, error) {
	wsURL, err := c.streamURL()
	if err != nil {
		return nil, fmt.Errorf("client.Subscribe: %w", err)
	}

	s := &Stream{
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		wsURL:  wsURL,
		events: make(chan domain.Notification, 16),
		done:   make(chan struct{}),
	}

	conn, err := s.dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("client.Subscribe: %w", err)
	}
	s.conn = conn

	s.wg.Add(1)
	go s.run(conn)
	return s, nil
}

func (c *Client) streamURL() (string, error) {
	u, err := url.Parse(c.baseURL + streamPath)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("token", c.token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Events is closed once the stream has been closed.
func (s *Stream) Events() <-chan domain.Notification {
	return s.events
}

// Close stops the stream and waits for the reader to exit.
func (s *Stream) Close() error {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return nil
	}
	s.closed = true
	close(s.done)
	conn := s.conn
	s.closeMu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Stream) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, resp, err := s.dialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, &HTTPError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, err
	}
	return conn, nil
}

func (s *Stream) run(conn *websocket.Conn) {
	defer s.wg.Done()
	defer close(s.events)

	for {
		err := s.readLoop(conn)
		if s.isClosed() {
			return
		}
		log.Printf("realtime_stream_lost err=%v", err)

		conn = s.redial()
		if conn == nil {
			return
		}
		log.Printf("realtime_stream_restored")
	}
}

func (s *Stream) readLoop(conn *websocket.Conn) error {
	for {
		var frame changeFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return err
		}
		if !strings.EqualFold(frame.Type, "INSERT") {
			continue
		}

		var n domain.Notification
		if err := json.Unmarshal(frame.Record, &n); err != nil {
			log.Printf("realtime_stream_bad_record table=%s err=%v", frame.Table, err)
			continue
		}

		select {
		case s.events <- n:
		case <-s.done:
			return errors.New("stream closed")
		}
	}
}

// redial retries until a connection is made or the stream is closed.
func (s *Stream) redial() *websocket.Conn {
	ticker := time.NewTicker(reconnectBackoff)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), reconnectBackoff*5)
		conn, err := s.dial(ctx)
		cancel()
		if err != nil {
			log.Printf("realtime_stream_redial_failed err=%v", err)
			if IsStatus(err, http.StatusUnauthorized) {
				return nil
			}
			continue
		}

		s.closeMu.Lock()
		if s.closed {
			s.closeMu.Unlock()
			conn.Close()
			return nil
		}
		s.conn = conn
		s.closeMu.Unlock()
		return conn
	}
}

func (s *Stream) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
