package usecase

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/oklog/ulid/v2"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/database"
	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	eventsDomain "github.com/karthikpoola6-cmd/email-triage-ai/internal/events/domain"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/service"
)

// requestProcessedPayload is the body of the request.processed event.
type requestProcessedPayload struct {
	RecordID        string  `json:"record_id"`
	MessageID       string  `json:"message_id"`
	Sender          string  `json:"sender"`
	Subject         string  `json:"subject"`
	Category        string  `json:"category"`
	Confidence      float64 `json:"confidence"`
	IsUrgent        bool    `json:"is_urgent"`
	AssignmentGroup string  `json:"assignment_group"`
	Priority        int     `json:"priority"`
	TicketID        string  `json:"ticket_id"`
	TicketFailed    bool    `json:"ticket_failed"`
	Delivered       bool    `json:"delivered"`
}

// pipelineUseCase implements the PipelineUseCase interface.
type pipelineUseCase struct {
	txManager     database.TxManager
	auditRepo     AuditRecordRepository
	eventRepo     EventRepository
	classifier    Classifier
	routingPolicy service.RoutingPolicy
	ticketing     Ticketing
	renderer      Renderer
	notifier      Notifier
	logger        *slog.Logger
}

// NewPipelineUseCase creates a new pipeline use case instance. A nil notifier
// disables the delivery stage: acknowledgements are rendered but never sent
// and messages are never marked read, which is how sample runs stay
// side-effect free.
func NewPipelineUseCase(
	txManager database.TxManager,
	auditRepo AuditRecordRepository,
	eventRepo EventRepository,
	classifier Classifier,
	routingPolicy service.RoutingPolicy,
	ticketing Ticketing,
	renderer Renderer,
	notifier Notifier,
	logger *slog.Logger,
) PipelineUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &pipelineUseCase{
		txManager:     txManager,
		auditRepo:     auditRepo,
		eventRepo:     eventRepo,
		classifier:    classifier,
		routingPolicy: routingPolicy,
		ticketing:     ticketing,
		renderer:      renderer,
		notifier:      notifier,
		logger:        logger,
	}
}

// ProcessMessage runs one message through the stage sequence. Stage order is
// fixed: classify, route, create ticket, acknowledge, deliver, persist.
func (p *pipelineUseCase) ProcessMessage(ctx context.Context, msg domain.InboundMessage) (*domain.PipelineAccumulator, error) {
	acc := &domain.PipelineAccumulator{
		RunID:   ulid.Make().String(),
		Message: msg,
	}

	logger := p.logger.With(
		slog.String("run_id", acc.RunID),
		slog.String("message_id", msg.ID),
	)
	logger.Info("processing message",
		slog.String("sender", msg.Sender),
		slog.String("subject", msg.Subject),
	)

	if err := p.classify(ctx, acc, logger); err != nil {
		return nil, err
	}

	if err := p.route(acc, logger); err != nil {
		return nil, err
	}

	p.createTicket(ctx, acc, logger)

	if err := p.acknowledge(acc); err != nil {
		return nil, err
	}

	p.deliver(ctx, acc, logger)

	if err := p.persist(ctx, acc, logger); err != nil {
		return nil, err
	}

	return acc, nil
}

// classify asks the classification collaborator for a verdict. A failure here
// aborts the run; the message stays unread and is retried on a later fetch.
func (p *pipelineUseCase) classify(ctx context.Context, acc *domain.PipelineAccumulator, logger *slog.Logger) error {
	cls, err := p.classifier.Classify(ctx, acc.Message)
	if err != nil {
		return apperrors.Wrap(err, "classification stage failed")
	}
	acc.Classification = cls

	logger.Info("message classified",
		slog.String("category", string(cls.Category)),
		slog.Float64("confidence", cls.Confidence),
		slog.Bool("is_urgent", cls.IsUrgent),
	)
	return nil
}

// route derives the assignment from the routing table. Fails only when the
// table is unusable, which makes every later message fail the same way.
func (p *pipelineUseCase) route(acc *domain.PipelineAccumulator, logger *slog.Logger) error {
	decision, err := p.routingPolicy.Decide(acc.Classification)
	if err != nil {
		return apperrors.Wrap(err, "routing stage failed")
	}
	acc.Routing = decision

	logger.Info("message routed",
		slog.String("assignment_group", decision.AssignmentGroup),
		slog.Int("priority", decision.Priority),
		slog.Int("sla_hours", decision.SLAHours),
	)
	return nil
}

// createTicket opens a ticket for the message. Creation failures never abort
// the run: the record carries a failure sentinel instead of a real ticket id
// and the requester is still acknowledged.
func (p *pipelineUseCase) createTicket(ctx context.Context, acc *domain.PipelineAccumulator, logger *slog.Logger) {
	req := domain.NewTicketRequest(acc.Message, acc.Classification, acc.Routing)

	ticketID, err := p.ticketing.CreateIncident(ctx, req)
	if err != nil {
		acc.TicketID = domain.FailedTicketID(failureCode(err))
		logger.Error("ticket creation failed",
			slog.String("ticket_id", acc.TicketID),
			slog.Any("error", err),
		)
		return
	}
	acc.TicketID = ticketID

	logger.Info("ticket created", slog.String("ticket_id", ticketID))
}

// acknowledge renders the acknowledgement email for the requester.
func (p *pipelineUseCase) acknowledge(acc *domain.PipelineAccumulator) error {
	ack, err := p.renderer.RenderAck(acc.Message, acc.Classification, acc.Routing, acc.TicketID)
	if err != nil {
		return apperrors.Wrap(err, "acknowledgement stage failed")
	}
	acc.Acknowledgement = ack
	return nil
}

// deliver sends the acknowledgement and marks the message read. Delivery is
// best effort: a send failure is logged and the run continues, leaving the
// message unread so the next fetch retries it. The message is only marked
// read after the requester has their acknowledgement.
func (p *pipelineUseCase) deliver(ctx context.Context, acc *domain.PipelineAccumulator, logger *slog.Logger) {
	if p.notifier == nil {
		return
	}

	ack := acc.Acknowledgement
	if err := p.notifier.Send(ctx, ack.To, ack.Subject, ack.BodyHTML); err != nil {
		logger.Error("failed to deliver acknowledgement",
			slog.String("to", ack.To),
			slog.Any("error", err),
		)
		return
	}
	acc.Delivered = true

	logger.Info("acknowledgement delivered", slog.String("to", ack.To))

	if err := p.notifier.MarkRead(ctx, acc.Message.ID); err != nil {
		logger.Warn("failed to mark message read", slog.Any("error", err))
	}
}

// persist stores the audit record and its integration event in one
// transaction. This is the only stage that writes; a failure here means the
// run left no trace and the message will be processed again.
func (p *pipelineUseCase) persist(ctx context.Context, acc *domain.PipelineAccumulator, logger *slog.Logger) error {
	record, err := domain.NewAuditRecord(acc.Message, acc.Classification, acc.Routing, acc.TicketID)
	if err != nil {
		return apperrors.Wrap(err, "failed to build audit record")
	}

	event, err := eventsDomain.NewEvent(acc.TicketID, eventsDomain.EventTypeRequestProcessed, requestProcessedPayload{
		RecordID:        record.ID.String(),
		MessageID:       record.MessageID,
		Sender:          record.Sender,
		Subject:         record.Subject,
		Category:        string(record.Category),
		Confidence:      record.Confidence,
		IsUrgent:        record.IsUrgent,
		AssignmentGroup: record.AssignmentGroup,
		Priority:        record.Priority,
		TicketID:        record.TicketID,
		TicketFailed:    record.TicketFailed(),
		Delivered:       acc.Delivered,
	})
	if err != nil {
		return err
	}

	err = p.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := p.auditRepo.Create(txCtx, record); err != nil {
			return err
		}
		return p.eventRepo.Create(txCtx, event)
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to persist audit record")
	}
	acc.Record = record

	logger.Info("audit record stored", slog.String("record_id", record.ID.String()))
	return nil
}

// failureCode extracts the code for a ticket creation failure sentinel: the
// HTTP status when the ticketing system answered with one, "REQUEST" when it
// could not be reached at all.
func failureCode(err error) string {
	var coder interface{ StatusCode() int }
	if apperrors.As(err, &coder) {
		return strconv.Itoa(coder.StatusCode())
	}
	return "REQUEST"
}
