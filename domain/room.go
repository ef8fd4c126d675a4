// Package domain contains core concepts of the chat system.
// This file defines Room entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "sort"

// MaxParticipants caps every room at a two-party conversation.
const MaxParticipants = 2

// Room is a password-gated conversation context between at most two users.
// The owner is always a participant, from creation until deletion.
// ID is opaque; Seq orders listings and is never exposed on the wire.
type Room struct {
	ID           string
	Name         string
	Owner        string
	PasswordHash string
	Seq          uint64
	participants map[string]struct{}
}

func NewRoom(id, name, owner, passwordHash string, seq uint64) *Room {
	return &Room{
		ID:           id,
		Name:         name,
		Owner:        owner,
		PasswordHash: passwordHash,
		Seq:          seq,
		participants: map[string]struct{}{owner: {}},
	}
}

func (r *Room) IsParticipant(user string) bool {
	_, ok := r.participants[user]
	return ok
}

// HasFreeSlot reports whether a new participant may still join.
func (r *Room) HasFreeSlot() bool {
	return len(r.participants) < MaxParticipants
}

// AddParticipant records user as a member. Capacity must have been checked
// by the caller while holding the registry lock; adding an existing
// participant is a no-op.
func (r *Room) AddParticipant(user string) {
	r.participants[user] = struct{}{}
}

// Participants returns the member set as a sorted slice.
func (r *Room) Participants() []string {
	out := make([]string, 0, len(r.participants))
	for u := range r.participants {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

func (r *Room) Size() int {
	return len(r.participants)
}

// IsFullFor reports whether the room is closed to the given viewer:
// both slots taken and the viewer is not one of them.
func (r *Room) IsFullFor(viewer string) bool {
	return len(r.participants) >= MaxParticipants && !r.IsParticipant(viewer)
}

// RoomSummary is the per-viewer projection returned by listings.
type RoomSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Owner        string   `json:"owner"`
	IsOwner      bool     `json:"isOwner"`
	Participants []string `json:"participants"`
	IsFull       bool     `json:"isFull"`
}

func (r *Room) SummaryFor(viewer string) RoomSummary {
	return RoomSummary{
		ID:           r.ID,
		Name:         r.Name,
		Owner:        r.Owner,
		IsOwner:      r.Owner == viewer,
		Participants: r.Participants(),
		IsFull:       r.IsFullFor(viewer),
	}
}
