// Package httpapi exposes the synchronous management surface: account
// registration and login, room listing, creation, join, and deletion.
// Room mutations feed the broadcaster so every live connection of the
// affected users learns about the change.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"duochat/auth"
	"duochat/contract"
	"duochat/domain"
	"duochat/domain/event"
	"duochat/errors"
	"duochat/services"
)

type Handler struct {
	log         *slog.Logger
	authService services.IAuthService
	chatService services.IChatService
	broadcaster contract.IBroadcaster
}

func NewHandler(log *slog.Logger, authService services.IAuthService,
	chatService services.IChatService, broadcaster contract.IBroadcaster) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		chatService: chatService,
		broadcaster: broadcaster,
	}
}

// Routes mounts the management endpoints on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", h.register)
	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("GET /api/chats", h.listChats)
	mux.HandleFunc("POST /api/chats", h.createChat)
	mux.HandleFunc("POST /api/chats/join", h.joinChat)
	mux.HandleFunc("DELETE /api/chats/{id}", h.deleteChat)
	return mux
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	username, err := h.authService.Register(body.Username, body.Password)
	if err != nil {
		h.failErr(w, err)
		return
	}
	h.ok(w, map[string]any{"username": username})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	username, token, err := h.authService.Login(body.Username, body.Password)
	if err != nil {
		h.failErr(w, err)
		return
	}
	h.ok(w, map[string]any{"username": username, "token": token})
}

func (h *Handler) listChats(w http.ResponseWriter, r *http.Request) {
	viewer, _ := h.identify(r, r.URL.Query().Get("username"))

	summaries := h.chatService.List(viewer)
	if summaries == nil {
		summaries = []domain.RoomSummary{}
	}
	h.ok(w, map[string]any{"chats": summaries})
}

type createChatRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Owner    string `json:"owner"`
}

func (h *Handler) createChat(w http.ResponseWriter, r *http.Request) {
	var body createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	owner, ok := h.identify(r, body.Owner)
	if !ok {
		h.fail(w, http.StatusUnauthorized, "log in first")
		return
	}

	info, err := h.chatService.Create(owner, body.Name, body.Password)
	if err != nil {
		h.failErr(w, err)
		return
	}
	h.ok(w, map[string]any{"chat": info})
}

type joinChatRequest struct {
	ChatID   string `json:"chatId"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) joinChat(w http.ResponseWriter, r *http.Request) {
	var body joinChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	username, ok := h.identify(r, body.Username)
	if !ok {
		h.fail(w, http.StatusUnauthorized, "log in first")
		return
	}

	participants, err := h.chatService.Join(body.ChatID, username, body.Password)
	if err != nil {
		h.failErr(w, err)
		return
	}

	// Every member of the new set learns about the change, on every
	// device they have open.
	h.broadcaster.Publish(r.Context(), participants,
		event.NewChatParticipants(body.ChatID, participants))
	h.ok(w, nil)
}

type deleteChatRequest struct {
	Username string `json:"username"`
}

func (h *Handler) deleteChat(w http.ResponseWriter, r *http.Request) {
	chatID := r.PathValue("id")

	var body deleteChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	username, ok := h.identify(r, body.Username)
	if !ok {
		h.fail(w, http.StatusUnauthorized, "log in first")
		return
	}

	former, err := h.chatService.Delete(chatID, username)
	if err != nil {
		h.failErr(w, err)
		return
	}

	h.broadcaster.Publish(r.Context(), former, event.NewChatDeleted(chatID, username))
	h.ok(w, nil)
}

// identify resolves the acting identity: a bearer token when present,
// otherwise the username carried by the request. The identity must be a
// registered user.
func (h *Handler) identify(r *http.Request, fallback string) (string, bool) {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		username, err := h.authService.IdentityFromToken(strings.TrimPrefix(header, "Bearer "))
		if err == nil && h.authService.Exists(username) {
			return username, true
		}
		return "", false
	}

	username := auth.SanitizeUsername(fallback)
	if username == "" || !h.authService.Exists(username) {
		return username, false
	}
	return username, true
}

func (h *Handler) ok(w http.ResponseWriter, extra map[string]any) {
	payload := map[string]any{"ok": true}
	for k, v := range extra {
		payload[k] = v
	}
	h.write(w, http.StatusOK, payload)
}

func (h *Handler) fail(w http.ResponseWriter, status int, message string) {
	h.write(w, status, map[string]any{"ok": false, "message": message})
}

func (h *Handler) failErr(w http.ResponseWriter, err error) {
	h.fail(w, errors.MapToHTTPStatus(err), err.Error())
}

func (h *Handler) write(w http.ResponseWriter, status int, payload map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}
