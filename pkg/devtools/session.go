package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// consoleEnableMethod turns on console notifications for a tab.
	consoleEnableMethod = "Console.enable"

	// consoleMessageMethod is the notification carrying a console line.
	consoleMessageMethod = "Console.messageAdded"

	// eventBuffer absorbs short bursts so the read loop rarely blocks on a
	// slow consumer.
	eventBuffer = 64
)

// Session is a persistent debugging connection to one tab with console
// notifications enabled. Events flow on the channel returned by Events until
// the connection closes; the session never reconnects on its own.
type Session struct {
	conn *websocket.Conn

	events chan ConsoleEvent
	done   chan struct{}

	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// Connect opens the debugger socket of tab and enables console capture.
func (c *Client) Connect(ctx context.Context, tab Tab) (*Session, error) {
	conn, _, err := c.dialer.DialContext(ctx, tab.DebugSocketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial debugger socket %s: %w", tab.DebugSocketURL, err)
	}

	if err := conn.WriteJSON(command{ID: 1, Method: consoleEnableMethod}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable console capture: %w", err)
	}

	s := &Session{
		conn:   conn,
		events: make(chan ConsoleEvent, eventBuffer),
		done:   make(chan struct{}),
	}
	go s.readLoop()
	return s, nil
}

// Events returns the console event stream. The channel is closed when the
// connection ends, from either side; check Err afterwards to distinguish a
// deliberate Close from a dropped connection.
func (s *Session) Events() <-chan ConsoleEvent {
	return s.events
}

// Err reports why the event stream ended. It is nil until the stream is
// closed, and stays nil when the session was closed locally.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close tears down the connection. Idempotent; unblocks the read loop and
// causes the event channel to close.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// readLoop consumes frames until the connection ends, forwarding console
// message notifications. Command replies and other notifications are skipped.
func (s *Session) readLoop() {
	defer close(s.events)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// Local close; not an error.
			default:
				s.mu.Lock()
				s.err = fmt.Errorf("debugging connection closed: %w", err)
				s.mu.Unlock()
			}
			return
		}

		var frame envelope
		if err := json.Unmarshal(payload, &frame); err != nil {
			continue
		}
		if frame.Method != consoleMessageMethod {
			continue
		}

		select {
		case s.events <- ConsoleEvent{Text: frame.Params.Message.Text, ReceivedAt: time.Now()}:
		case <-s.done:
			return
		}
	}
}
