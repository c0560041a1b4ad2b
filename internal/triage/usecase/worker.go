package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// WorkerConfig holds worker loop configuration.
type WorkerConfig struct {
	PollInterval time.Duration
	FetchLimit   int
}

// Transport fetches the unread messages the worker feeds into the pipeline.
type Transport interface {
	FetchUnread(ctx context.Context, limit int) ([]domain.InboundMessage, error)
}

// EventRelay publishes stored integration events downstream.
type EventRelay interface {
	ProcessPendingEvents(ctx context.Context) error
}

// Worker drives live mode. Each cycle fetches unread messages, runs them
// through the pipeline, checks open tickets for resolutions, and relays
// stored events. A failing phase is logged and the remaining phases still
// run, so a ticketing outage never stops resolution notices and vice versa.
type Worker struct {
	config     WorkerConfig
	transport  Transport
	pipeline   PipelineUseCase
	resolution ResolutionUseCase
	relay      EventRelay
	logger     *slog.Logger
}

// NewWorker creates a new Worker.
func NewWorker(
	config WorkerConfig,
	transport Transport,
	pipeline PipelineUseCase,
	resolution ResolutionUseCase,
	relay EventRelay,
	logger *slog.Logger,
) *Worker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Worker{
		config:     config,
		transport:  transport,
		pipeline:   pipeline,
		resolution: resolution,
		relay:      relay,
		logger:     logger,
	}
}

// Start runs the worker loop until ctx is cancelled. The first cycle runs
// immediately so a fresh start drains the inbox without waiting out an
// interval. Cancellation only stops the loop between cycles; a cycle that
// has started runs to completion so an interrupt cannot sever a message
// between ticket creation and its audit record.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("starting triage worker",
		slog.Duration("poll_interval", w.config.PollInterval),
		slog.Int("fetch_limit", w.config.FetchLimit),
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	// The cycle body gets a context detached from cancellation so in-flight
	// work, the audit write included, finishes even when the signal context
	// fires mid-cycle. Only the select below observes ctx.Done().
	cycleCtx := context.WithoutCancel(ctx)

	w.runCycle(cycleCtx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stopping triage worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCycle(cycleCtx)
		}
	}
}

// runCycle runs the three phases of one cycle in order.
func (w *Worker) runCycle(ctx context.Context) {
	w.intake(ctx)

	if err := w.resolution.RunCycle(ctx); err != nil {
		w.logger.Error("resolution cycle failed", slog.Any("error", err))
	}

	if err := w.relay.ProcessPendingEvents(ctx); err != nil {
		w.logger.Error("event relay failed", slog.Any("error", err))
	}
}

// intake fetches unread messages and pipelines them one at a time.
func (w *Worker) intake(ctx context.Context) {
	messages, err := w.transport.FetchUnread(ctx, w.config.FetchLimit)
	if err != nil {
		w.logger.Error("failed to fetch unread messages", slog.Any("error", err))
		return
	}
	if len(messages) == 0 {
		return
	}

	w.logger.Info("fetched unread messages", slog.Int("count", len(messages)))

	for _, msg := range messages {
		if _, err := w.pipeline.ProcessMessage(ctx, msg); err != nil {
			// The message stays unread and is picked up again next cycle.
			w.logger.Error("failed to process message",
				slog.String("message_id", msg.ID),
				slog.Any("error", err),
			)
		}
	}
}
