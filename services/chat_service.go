package services

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"duochat/auth"
	"duochat/domain"
	"duochat/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IChatService interface {
	List(viewer string) []domain.RoomSummary
	Create(owner, name, password string) (RoomInfo, error)
	Join(chatID, user, password string) ([]string, error)
	Delete(chatID, requester string) ([]string, error)
	MembershipOf(chatID, user string) ([]string, bool)
}

// RoomInfo is the creation acknowledgment; the password never leaves the
// service.
type RoomInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// ChatService owns every room record and its membership transitions.
// A single mutex makes each transition atomic: when two joins race on the
// last free slot, the capacity check and the mutation happen as one unit,
// so exactly one of them wins.
//
// Callers must have established the acting identity before invoking any
// method here; the service trusts the usernames it is given.
type ChatService struct {
	mu    sync.RWMutex
	log   *slog.Logger
	rooms map[string]*domain.Room
	seq   uint64
}

func NewChatService(log *slog.Logger) *ChatService {
	return &ChatService{log: log, rooms: make(map[string]*domain.Room)}
}

// List returns the rooms visible to the viewer: rooms they own, rooms
// they participate in, and rooms with a free slot. Newest first, by
// creation sequence.
func (s *ChatService) List(viewer string) []domain.RoomSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visible := lo.Filter(lo.Values(s.rooms), func(r *domain.Room, _ int) bool {
		return !r.IsFullFor(viewer)
	})
	sort.Slice(visible, func(i, j int) bool {
		return visible[i].Seq > visible[j].Seq
	})
	return lo.Map(visible, func(r *domain.Room, _ int) domain.RoomSummary {
		return r.SummaryFor(viewer)
	})
}

// Create allocates a fresh room with the owner as sole participant.
// The room password is hashed before the registry lock is taken.
func (s *ChatService) Create(owner, name, password string) (RoomInfo, error) {
	name = auth.SanitizeUsername(name)
	if name == "" {
		return RoomInfo{}, fmt.Errorf("%w: room name is required", errors.ErrValidation)
	}
	if err := auth.ValidateRoomPassword(password); err != nil {
		return RoomInfo{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return RoomInfo{}, fmt.Errorf("hashing failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	room := domain.NewRoom(uuid.NewString(), name, owner, hash, s.seq)
	s.rooms[room.ID] = room

	s.log.Info("room created", "chat_id", room.ID, "owner", owner)
	return RoomInfo{ID: room.ID, Name: room.Name, Owner: room.Owner}, nil
}

// Join adds user to the room and returns the new participant set, which
// the caller must broadcast a chatParticipants event to. Joining a room
// one already belongs to succeeds without changing anything.
//
// The password is verified against the stored hash outside the lock; the
// capacity check and the mutation then run under it as one atomic step.
func (s *ChatService) Join(chatID, user, password string) ([]string, error) {
	s.mu.RLock()
	room, ok := s.rooms[chatID]
	var hash string
	if ok {
		hash = room.PasswordHash
	}
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: chat %s", errors.ErrNotFound, chatID)
	}

	match, err := auth.ComparePassword(password, hash)
	if err != nil || !match {
		return nil, fmt.Errorf("%w: wrong chat password", errors.ErrForbidden)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The room may have been deleted while we were hashing
	room, ok = s.rooms[chatID]
	if !ok {
		return nil, fmt.Errorf("%w: chat %s", errors.ErrNotFound, chatID)
	}

	if !room.IsParticipant(user) {
		if !room.HasFreeSlot() {
			return nil, fmt.Errorf("%w: chat already has %d participants", errors.ErrForbidden, domain.MaxParticipants)
		}
		room.AddParticipant(user)
		s.log.Info("participant joined", "chat_id", chatID, "user", user)
	}
	return room.Participants(), nil
}

// Delete removes the room entirely and returns the former participant
// set for the chatDeleted broadcast. Only the owner may delete.
func (s *ChatService) Delete(chatID, requester string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[chatID]
	if !ok {
		return nil, fmt.Errorf("%w: chat %s", errors.ErrNotFound, chatID)
	}
	if room.Owner != requester {
		return nil, fmt.Errorf("%w: only the owner can delete a chat", errors.ErrForbidden)
	}

	former := room.Participants()
	delete(s.rooms, chatID)

	s.log.Info("room deleted", "chat_id", chatID, "by", requester)
	return former, nil
}

// MembershipOf returns the participant set of a room when user belongs
// to it. The second return is false for unknown rooms and non-members
// alike; callers drop the frame either way.
func (s *ChatService) MembershipOf(chatID, user string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[chatID]
	if !ok || !room.IsParticipant(user) {
		return nil, false
	}
	return room.Participants(), true
}
