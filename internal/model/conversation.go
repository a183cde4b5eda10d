package model

import "time"

// Message kinds. System messages are appended by the notification consumer
// on workflow events; user messages come from the chat endpoints.
const (
	MessageSystem = "SYSTEM"
	MessageUser   = "USER"
)

// Conversation is the chat thread between a chef and a location manager,
// attached to one application. It is created lazily on the first tier-1
// approval.
type Conversation struct {
	ID            uint64    // conversations.id
	ApplicationID uint64    // conversations.application_id
	ChefID        uint64    // conversations.chef_id
	ManagerID     uint64    // conversations.manager_id
	CreatedAt     time.Time // conversations.created_at
}

// Message is a single chat message. SenderID is null for system-authored
// messages.
type Message struct {
	ID             uint64    // messages.id
	ConversationID uint64    // messages.conversation_id
	SenderID       *uint64   // messages.sender_id (nullable, null = system)
	Kind           string    // messages.kind (SYSTEM or USER)
	Body           string    // messages.body
	CreatedAt      time.Time // messages.created_at
}
