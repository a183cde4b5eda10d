// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into chat messages and
// notifications.
package queue

// ApplicationEventsQueue is the durable queue both publisher and consumer
// declare.
const ApplicationEventsQueue = "application.events"

// Event kinds emitted by the application workflow. Each kind maps to one
// fixed system-message template in the consumer.
const (
	EventTierAdvanced        = "TIER_ADVANCED"
	EventDocumentVerified    = "DOCUMENT_VERIFIED"
	EventApplicationApproved = "APPLICATION_APPROVED"
	EventApplicationRejected = "APPLICATION_REJECTED"
)

// ApplicationEvent is published whenever the workflow advances, rejects or
// fully approves an application, or a document is verified. It carries
// enough information for the consumer to write the chat message and
// notification without querying back into the workflow.
type ApplicationEvent struct {
	Kind          string `json:"kind"`
	ApplicationID uint64 `json:"application_id"`
	ChefID        uint64 `json:"chef_id"`
	LocationID    uint64 `json:"location_id"`
	ManagerID     uint64 `json:"manager_id"`
	LocationName  string `json:"location_name"`
	Tier          uint8  `json:"tier,omitempty"`          // new tier for TIER_ADVANCED
	DocumentKind  string `json:"document_kind,omitempty"` // for DOCUMENT_VERIFIED
	Feedback      string `json:"feedback,omitempty"`      // for APPLICATION_REJECTED
	OccurredAt    string `json:"occurred_at"`
}
