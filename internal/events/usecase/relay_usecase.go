// Package usecase implements the relay that publishes stored triage events
// to the configured broker.
package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/database"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/events/domain"
)

// Config holds relay use case configuration
type Config struct {
	BatchSize  int
	MaxRetries int
}

// EventRepository defines triage event repository operations
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
}

// Publisher delivers a stored event to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, event *domain.Event) error
}

// UseCase defines the interface for event relay use cases
type UseCase interface {
	ProcessPendingEvents(ctx context.Context) error
}

// RelayUseCase implements business logic for publishing stored triage events
type RelayUseCase struct {
	config    Config
	txManager database.TxManager
	eventRepo EventRepository
	publisher Publisher
	logger    *slog.Logger
}

// NewRelayUseCase creates a new RelayUseCase
func NewRelayUseCase(
	config Config,
	txManager database.TxManager,
	eventRepo EventRepository,
	publisher Publisher,
	logger *slog.Logger,
) *RelayUseCase {
	return &RelayUseCase{
		config:    config,
		txManager: txManager,
		eventRepo: eventRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// ProcessPendingEvents retrieves and publishes pending events in a transaction.
// A publish failure only affects the failing event; it is retried on the next
// cycle until MaxRetries is reached.
func (uc *RelayUseCase) ProcessPendingEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		// Get pending events
		events, err := uc.eventRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		if len(events) == 0 {
			return nil
		}

		if uc.logger != nil {
			uc.logger.Info("publishing events", slog.Int("count", len(events)))
		}

		for _, event := range events {
			if err := uc.publishEvent(ctx, event); err != nil {
				if uc.logger != nil {
					uc.logger.Error("failed to publish event",
						slog.String("event_id", event.ID.String()),
						slog.String("event_type", event.EventType),
						slog.Any("error", err),
					)
				}

				// Update event as failed
				event.Retries++
				errorMsg := err.Error()
				event.LastError = &errorMsg

				if event.Retries >= uc.config.MaxRetries {
					event.Status = domain.EventStatusFailed
				}

				if err := uc.eventRepo.Update(ctx, event); err != nil {
					return err
				}
				continue
			}

			// Mark event as published
			now := time.Now()
			event.Status = domain.EventStatusPublished
			event.PublishedAt = &now

			if err := uc.eventRepo.Update(ctx, event); err != nil {
				return err
			}
		}

		return nil
	})
}

// publishEvent hands a single event to the configured publisher
func (uc *RelayUseCase) publishEvent(ctx context.Context, event *domain.Event) error {
	if uc.logger != nil {
		uc.logger.Info("publishing event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
		)
	}

	return uc.publisher.Publish(ctx, event)
}

// LogPublisher is a Publisher that writes events to the log. It stands in
// for a broker when none is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a new LogPublisher
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{
		logger: logger,
	}
}

// Publish handles event publishing with basic logging
func (p *LogPublisher) Publish(ctx context.Context, event *domain.Event) error {
	// Parse event payload
	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
		return err
	}

	switch event.EventType {
	case domain.EventTypeRequestProcessed:
		if p.logger != nil {
			p.logger.Info("request processed event",
				slog.String("ticket_id", event.TicketID),
				slog.Any("payload", payload),
			)
		}
	case domain.EventTypeTicketResolved:
		if p.logger != nil {
			p.logger.Info("ticket resolved event",
				slog.String("ticket_id", event.TicketID),
				slog.Any("payload", payload),
			)
		}
	default:
		if p.logger != nil {
			p.logger.Warn("unknown event type", slog.String("event_type", event.EventType))
		}
	}

	return nil
}
