package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginCompleted   EventType = "auth.login_completed"
	EventDocumentUploaded EventType = "document.uploaded"
	EventDocumentDeleted  EventType = "document.deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	Subject     string      `json:"subject"`
	ResourceKey string      `json:"resource_key,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload,omitempty"`
}

// LoginCompletedPayload payload.
type LoginCompletedPayload struct {
	Provider    string `json:"provider"`
	ProviderSub string `json:"provider_sub"`
}

// DocumentUploadedPayload payload.
type DocumentUploadedPayload struct {
	DocumentID string `json:"document_id"`
	Tag        string `json:"tag"`
	SizeBytes  int64  `json:"size_bytes"`
}

// DocumentDeletedPayload payload.
type DocumentDeletedPayload struct {
	DocumentID    string `json:"document_id"`
	ObjectRemoved bool   `json:"object_removed"`
}

// Stamp fills in the event id and timestamp when they are unset.
func Stamp(event Event) Event {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	return event
}
