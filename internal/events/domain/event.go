// Package domain defines the integration events emitted by the triage pipeline.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
)

// EventStatus represents the delivery status of an integration event
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusPublished EventStatus = "published"
	EventStatusFailed    EventStatus = "failed"
)

// Event types emitted by the triage pipeline
const (
	// EventTypeRequestProcessed is emitted after a support request has run
	// through the full pipeline and its audit record is stored.
	EventTypeRequestProcessed = "request.processed"
	// EventTypeTicketResolved is emitted after the requester has been told
	// their ticket was resolved.
	EventTypeTicketResolved = "ticket.resolved"
)

// Event represents an event in the transactional outbox pattern. Events are
// written in the same transaction as the audit record they describe and
// relayed to the broker afterwards.
type Event struct {
	ID          uuid.UUID
	TicketID    string
	EventType   string
	Payload     string
	Status      EventStatus
	Retries     int
	LastError   *string
	PublishedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewEvent builds a pending event with a JSON-encoded payload.
func NewEvent(ticketID, eventType string, payload any) (*Event, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal event payload")
	}

	return &Event{
		ID:        uuid.Must(uuid.NewV7()),
		TicketID:  ticketID,
		EventType: eventType,
		Payload:   string(payloadJSON),
		Status:    EventStatusPending,
		Retries:   0,
	}, nil
}
