package domain

import (
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	appvalidation "github.com/karthikpoola6-cmd/email-triage-ai/internal/validation"
)

// AuditRecord is the durable trace of one pipeline run: the message, how it
// was classified and routed, and which ticket tracks it. Append-only except
// for ResolutionNotified, which flips false to true exactly once when the
// requester has been told their ticket was resolved.
type AuditRecord struct {
	ID                 uuid.UUID
	MessageID          string
	Sender             string
	Subject            string
	Category           Category
	Confidence         float64
	Summary            string
	IsUrgent           bool
	AssignmentGroup    string
	Priority           int
	SLAHours           int
	TicketID           string
	ResolutionNotified bool
	CreatedAt          time.Time
}

// NewAuditRecord assembles a record from a completed pipeline run. The id is
// a UUIDv7 so id ordering matches creation ordering.
func NewAuditRecord(msg InboundMessage, cls Classification, routing RoutingDecision, ticketID string) (*AuditRecord, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	record := &AuditRecord{
		ID:              id,
		MessageID:       msg.ID,
		Sender:          msg.Sender,
		Subject:         msg.Subject,
		Category:        cls.Category,
		Confidence:      cls.Confidence,
		Summary:         cls.Summary,
		IsUrgent:        cls.IsUrgent,
		AssignmentGroup: routing.AssignmentGroup,
		Priority:        routing.Priority,
		SLAHours:        routing.SLAHours,
		TicketID:        ticketID,
		CreatedAt:       time.Now().UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

// Validate checks the record invariants before it is persisted.
func (r *AuditRecord) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Sender, validation.Required, appvalidation.Email),
		validation.Field(&r.Confidence, appvalidation.UnitInterval{}),
		validation.Field(&r.AssignmentGroup, validation.Required, appvalidation.NotBlank),
		validation.Field(&r.Priority, validation.Required, validation.Min(1)),
		validation.Field(&r.SLAHours, validation.Required, validation.Min(1)),
		validation.Field(&r.TicketID, validation.Required, appvalidation.NotBlank),
	)
	return appvalidation.WrapValidationError(err)
}

// TicketFailed reports whether this record carries a failure sentinel
// instead of a real ticket id.
func (r *AuditRecord) TicketFailed() bool {
	return IsFailedTicket(r.TicketID)
}
