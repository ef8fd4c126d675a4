// Package event defines the payloads pushed to live connections.
// Every outbound event marshals directly to the wire format, so json tags
// here are part of the protocol.
package event

// DomainEvent is anything deliverable to a live connection.
type DomainEvent interface {
	EventType() string
}

const (
	TypeAuth             = "auth"
	TypeMessage          = "message"
	TypeChatParticipants = "chatParticipants"
	TypeChatDeleted      = "chatDeleted"
)

// ChatParticipants notifies every member that the participant set changed.
type ChatParticipants struct {
	Type         string   `json:"type"`
	ChatID       string   `json:"chatId"`
	Participants []string `json:"participants"`
}

func NewChatParticipants(chatID string, participants []string) ChatParticipants {
	return ChatParticipants{Type: TypeChatParticipants, ChatID: chatID, Participants: participants}
}

func (e ChatParticipants) EventType() string { return e.Type }

// ChatDeleted notifies former members that the owner removed the room.
type ChatDeleted struct {
	Type   string `json:"type"`
	ChatID string `json:"chatId"`
	By     string `json:"by"`
}

func NewChatDeleted(chatID, by string) ChatDeleted {
	return ChatDeleted{Type: TypeChatDeleted, ChatID: chatID, By: by}
}

func (e ChatDeleted) EventType() string { return e.Type }

// Message is a chat message relayed to every participant, sender included.
// Timestamp is Unix milliseconds. ClientID echoes the sender's local id so
// its UI can reconcile the optimistic copy; null when absent.
type Message struct {
	Type      string  `json:"type"`
	ChatID    string  `json:"chatId"`
	From      string  `json:"from"`
	Text      string  `json:"text"`
	Timestamp int64   `json:"timestamp"`
	ClientID  *string `json:"clientId"`
}

func NewMessage(chatID, from, text string, timestamp int64, clientID *string) Message {
	return Message{
		Type:      TypeMessage,
		ChatID:    chatID,
		From:      from,
		Text:      text,
		Timestamp: timestamp,
		ClientID:  clientID,
	}
}

func (e Message) EventType() string { return e.Type }
