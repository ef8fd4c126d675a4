package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"duochat/auth"
	"duochat/contract"
	"duochat/domain/event"
	"duochat/moderation"
	"duochat/services"

	"github.com/gorilla/websocket"
)

// wsConn is the slice of *websocket.Conn the session relies on. Tests
// substitute a scripted fake.
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// inboundFrame is the union of every inbound frame shape. Unknown fields
// are ignored, unknown types are dropped.
type inboundFrame struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	ChatID   string `json:"chatId"`
	Text     string `json:"text"`
	// Timestamp stays untyped: the client value is honored only when it
	// is a JSON number, anything else falls back to server time.
	Timestamp any     `json:"timestamp"`
	ClientID  *string `json:"clientId"`
}

// Session is the per-connection gateway. It starts unidentified and inert
// to chat traffic, binds into the connection registry on an auth frame,
// relays message frames to its room's participants, and unbinds on close.
//
// Session is also the connection's EventSink: published events are
// enqueued on a buffered channel drained by a single writer goroutine,
// which keeps per-connection delivery ordered and lets Publish never
// block on a slow socket.
type Session struct {
	id          string
	log         *slog.Logger
	conn        wsConn
	send        chan []byte
	registry    contract.IRegistry
	chats       services.IChatService
	broadcaster contract.IBroadcaster
	moderator   *moderation.Moderator

	writeTimeout time.Duration

	mu       sync.Mutex
	identity string // empty while unidentified
	closed   bool
}

func NewSession(id string, log *slog.Logger, conn wsConn,
	registry contract.IRegistry, chats services.IChatService,
	broadcaster contract.IBroadcaster, moderator *moderation.Moderator,
	bufferSize int, writeTimeout time.Duration) *Session {
	return &Session{
		id:           id,
		log:          log.With("session_id", id),
		conn:         conn,
		send:         make(chan []byte, bufferSize),
		registry:     registry,
		chats:        chats,
		broadcaster:  broadcaster,
		moderator:    moderator,
		writeTimeout: writeTimeout,
	}
}

// Consume implements contract.EventSink. It never blocks: when the
// connection's buffer is full or the session is closed the event is
// dropped, consistent with best-effort delivery.
func (s *Session) Consume(_ context.Context, e event.DomainEvent) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errSessionClosed
	}
	select {
	case s.send <- payload:
		return nil
	default:
		return errBufferFull
	}
}

// ReadLoop consumes inbound frames until the transport fails, then tears
// the session down. It must run on its own goroutine, one per session.
func (s *Session) ReadLoop(ctx context.Context) {
	defer s.Close()
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Debug("connection closed", "error", err)
			return
		}
		s.HandleFrame(ctx, data)
	}
}

// WritePump drains the send queue into the socket. A single writer per
// connection is a websocket requirement and guarantees event ordering.
func (s *Session) WritePump() {
	defer s.conn.Close()
	for payload := range s.send {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			s.log.Debug("write failed", "error", err)
			return
		}
	}
	_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// HandleFrame applies one inbound frame to the session state machine.
// Malformed payloads and unknown types are dropped silently at every
// state; a bad frame never terminates the connection.
func (s *Session) HandleFrame(ctx context.Context, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.log.Debug("dropped unparseable frame")
		return
	}

	switch frame.Type {
	case event.TypeAuth:
		s.identify(frame.Username)
	case event.TypeMessage:
		s.relayMessage(ctx, frame)
	default:
		s.log.Debug("dropped frame of unknown type", "type", frame.Type)
	}
}

// identify binds the connection under the given username. Re-identifying
// rebinds this connection only: last write wins, and other connections of
// the previous identity are untouched.
func (s *Session) identify(username string) {
	username = auth.SanitizeUsername(username)
	if username == "" {
		return
	}

	s.mu.Lock()
	previous := s.identity
	s.identity = username
	s.mu.Unlock()

	if previous != "" && previous != username {
		s.registry.Unbind(previous, s)
	}
	s.registry.Bind(username, s)
	s.log.Debug("session identified", "identity", username)
}

// relayMessage validates a message frame against the room membership and
// publishes it to every participant. Frames from unidentified sessions,
// for unknown rooms, from non-participants, or with blank text are
// dropped without feedback.
func (s *Session) relayMessage(ctx context.Context, frame inboundFrame) {
	s.mu.Lock()
	from := s.identity
	s.mu.Unlock()
	if from == "" {
		return
	}

	text := strings.TrimSpace(frame.Text)
	if text == "" {
		return
	}

	participants, ok := s.chats.MembershipOf(frame.ChatID, from)
	if !ok {
		return
	}

	censored, _ := s.moderator.Censor(text)

	timestamp := time.Now().UnixMilli()
	if provided, ok := frame.Timestamp.(float64); ok {
		timestamp = int64(provided)
	}

	evt := event.NewMessage(frame.ChatID, from, censored, timestamp, frame.ClientID)
	s.broadcaster.Publish(ctx, participants, evt)
}

// Close moves the session to its terminal state: the connection is
// unbound from its identity and the send queue is closed, which stops
// the write pump. Closing twice is safe.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	identity := s.identity
	s.mu.Unlock()

	if identity != "" {
		s.registry.Unbind(identity, s)
	}
	close(s.send)
	_ = s.conn.Close()
}

// Identity returns the currently bound identity, empty when unidentified.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}
