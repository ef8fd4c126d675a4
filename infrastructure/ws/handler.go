package ws

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"duochat/contract"
	"duochat/moderation"
	"duochat/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	errSessionClosed = fmt.Errorf("session closed")
	errBufferFull    = fmt.Errorf("connection buffer full")
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The UI is served from the same process; lock this down when
		// fronted by a separate origin.
		return true
	},
}

// Handler upgrades HTTP requests on the realtime endpoint and runs one
// Session per accepted connection.
type Handler struct {
	log          *slog.Logger
	registry     contract.IRegistry
	chats        services.IChatService
	broadcaster  contract.IBroadcaster
	moderator    *moderation.Moderator
	bufferSize   int
	writeTimeout time.Duration
}

func NewHandler(log *slog.Logger, registry contract.IRegistry,
	chats services.IChatService, broadcaster contract.IBroadcaster,
	moderator *moderation.Moderator, bufferSize int, writeTimeout time.Duration) *Handler {
	return &Handler{
		log:          log,
		registry:     registry,
		chats:        chats,
		broadcaster:  broadcaster,
		moderator:    moderator,
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	session := NewSession(uuid.NewString(), h.log, conn,
		h.registry, h.chats, h.broadcaster, h.moderator,
		h.bufferSize, h.writeTimeout)

	go session.WritePump()
	session.ReadLoop(r.Context())
}
