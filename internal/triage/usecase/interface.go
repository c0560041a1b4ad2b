// Package usecase defines the interfaces and implementations for the triage
// use cases: the pipeline that turns an inbound support request into a ticket
// and an audit record, and the resolution poller that tells requesters when
// their ticket was resolved.
package usecase

import (
	"context"

	eventsDomain "github.com/karthikpoola6-cmd/email-triage-ai/internal/events/domain"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// AuditRecordRepository defines the interface for audit record persistence
// operations.
type AuditRecordRepository interface {
	Create(ctx context.Context, record *domain.AuditRecord) error
	ListUnnotified(ctx context.Context) ([]*domain.AuditRecord, error)
	MarkNotified(ctx context.Context, ticketID string) (int64, error)
	List(ctx context.Context, offset, limit int) ([]*domain.AuditRecord, error)
	ListAll(ctx context.Context) ([]*domain.AuditRecord, error)
}

// EventRepository stores integration events in the same transaction as the
// records they describe.
type EventRepository interface {
	Create(ctx context.Context, event *eventsDomain.Event) error
}

// Classifier produces a classification verdict for an inbound message.
type Classifier interface {
	Classify(ctx context.Context, msg domain.InboundMessage) (domain.Classification, error)
}

// Ticketing opens tickets in the ticketing system and reports their state.
type Ticketing interface {
	CreateIncident(ctx context.Context, req domain.TicketRequest) (string, error)
	GetTicketState(ctx context.Context, ticketID string) (domain.TicketState, error)
}

// Notifier delivers rendered emails to requesters and marks processed
// messages as read.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
	MarkRead(ctx context.Context, messageID string) error
}

// Renderer builds the outbound notification emails.
type Renderer interface {
	RenderAck(msg domain.InboundMessage, cls domain.Classification, routing domain.RoutingDecision, ticketID string) (domain.OutboundEmail, error)
	RenderResolution(sender, subject, ticketID, notes string) (domain.OutboundEmail, error)
}

// PipelineUseCase defines the interface for running one inbound message
// through the triage stages.
type PipelineUseCase interface {
	// ProcessMessage classifies, routes, tickets, acknowledges, and records
	// one message. A ticket creation failure is absorbed into a failure
	// sentinel and the run continues; classification, routing, rendering,
	// and persistence failures abort the run and leave no record behind.
	ProcessMessage(ctx context.Context, msg domain.InboundMessage) (*domain.PipelineAccumulator, error)
}

// ResolutionUseCase defines the interface for the resolution poller.
type ResolutionUseCase interface {
	// RunCycle checks every unnotified ticket once and notifies the
	// requester when the ticketing system reports it resolved. Each
	// requester is notified at most once per ticket.
	RunCycle(ctx context.Context) error
}
