package model

import "time"

// Notification is one entry in a user's notification center, written by the
// event consumer alongside the system chat message.
type Notification struct {
	ID        uint64    // notifications.id
	UserID    uint64    // notifications.user_id
	Kind      string    // notifications.kind (event kind, e.g. TIER_ADVANCED)
	Body      string    // notifications.body
	IsRead    bool      // notifications.is_read
	CreatedAt time.Time // notifications.created_at
}
