package usecase

import (
	"context"
	"log/slog"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/database"
	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	eventsDomain "github.com/karthikpoola6-cmd/email-triage-ai/internal/events/domain"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// ticketResolvedPayload is the body of the ticket.resolved event.
type ticketResolvedPayload struct {
	TicketID   string `json:"ticket_id"`
	Sender     string `json:"sender"`
	Subject    string `json:"subject"`
	CloseNotes string `json:"close_notes"`
}

// ResolutionConfig holds resolution use case configuration.
type ResolutionConfig struct {
	// ResolvedState is the ticketing state code treated as resolved.
	ResolvedState string
}

// resolutionUseCase implements the ResolutionUseCase interface.
type resolutionUseCase struct {
	config    ResolutionConfig
	txManager database.TxManager
	auditRepo AuditRecordRepository
	ticketing Ticketing
	renderer  Renderer
	notifier  Notifier
	eventRepo EventRepository
	logger    *slog.Logger
}

// NewResolutionUseCase creates a new resolution use case instance. Unlike the
// pipeline, the poller requires a notifier: its whole job is to send email.
func NewResolutionUseCase(
	config ResolutionConfig,
	txManager database.TxManager,
	auditRepo AuditRecordRepository,
	ticketing Ticketing,
	renderer Renderer,
	notifier Notifier,
	eventRepo EventRepository,
	logger *slog.Logger,
) ResolutionUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &resolutionUseCase{
		config:    config,
		txManager: txManager,
		auditRepo: auditRepo,
		ticketing: ticketing,
		renderer:  renderer,
		notifier:  notifier,
		eventRepo: eventRepo,
		logger:    logger,
	}
}

// RunCycle checks every unnotified ticket once. Failures on a single ticket
// never stop the cycle; the ticket is simply rechecked next time.
func (r *resolutionUseCase) RunCycle(ctx context.Context) error {
	records, err := r.auditRepo.ListUnnotified(ctx)
	if err != nil {
		return apperrors.Wrap(err, "failed to list unnotified records")
	}
	if len(records) == 0 {
		return nil
	}

	r.logger.Info("checking open tickets", slog.Int("count", len(records)))

	// Duplicate records can share a ticket id when a message was processed
	// twice. One check per ticket per cycle; MarkNotified flips every
	// record carrying the id.
	seen := make(map[string]bool, len(records))
	for _, record := range records {
		if seen[record.TicketID] {
			continue
		}
		seen[record.TicketID] = true

		r.checkRecord(ctx, record)
	}

	return nil
}

// checkRecord inspects one ticket and notifies the requester if it resolved.
func (r *resolutionUseCase) checkRecord(ctx context.Context, record *domain.AuditRecord) {
	logger := r.logger.With(slog.String("ticket_id", record.TicketID))

	// Failure sentinels never resolve. Retire them so they are not
	// rechecked forever; nothing is sent because no ticket exists.
	if record.TicketFailed() {
		if _, err := r.auditRepo.MarkNotified(ctx, record.TicketID); err != nil {
			logger.Error("failed to retire failed ticket", slog.Any("error", err))
			return
		}
		logger.Info("retired failed ticket")
		return
	}

	state, err := r.ticketing.GetTicketState(ctx, record.TicketID)
	if err != nil {
		logger.Warn("ticket state query failed", slog.Any("error", err))
		return
	}
	if state.State != r.config.ResolvedState {
		return
	}

	email, err := r.renderer.RenderResolution(record.Sender, record.Subject, record.TicketID, state.CloseNotes)
	if err != nil {
		logger.Error("failed to render resolution email", slog.Any("error", err))
		return
	}

	// The notified flag only flips after the send succeeded, so a failed
	// send is retried next cycle instead of silently dropping the email.
	if err := r.notifier.Send(ctx, email.To, email.Subject, email.BodyHTML); err != nil {
		logger.Error("failed to send resolution email", slog.Any("error", err))
		return
	}

	if err := r.markNotified(ctx, record, state.CloseNotes); err != nil {
		logger.Error("failed to mark ticket notified", slog.Any("error", err))
		return
	}

	logger.Info("requester notified of resolution", slog.String("to", record.Sender))
}

// markNotified flips the notified flag and stores the resolution event in
// one transaction.
func (r *resolutionUseCase) markNotified(ctx context.Context, record *domain.AuditRecord, closeNotes string) error {
	event, err := eventsDomain.NewEvent(record.TicketID, eventsDomain.EventTypeTicketResolved, ticketResolvedPayload{
		TicketID:   record.TicketID,
		Sender:     record.Sender,
		Subject:    record.Subject,
		CloseNotes: closeNotes,
	})
	if err != nil {
		return err
	}

	return r.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if _, err := r.auditRepo.MarkNotified(txCtx, record.TicketID); err != nil {
			return err
		}
		return r.eventRepo.Create(txCtx, event)
	})
}
