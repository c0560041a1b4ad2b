package repository

import (
	"context"
	"database/sql"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/database"
	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/events/domain"
)

// PostgreSQLEventRepository handles triage event persistence for PostgreSQL
type PostgreSQLEventRepository struct {
	db *sql.DB
}

// NewPostgreSQLEventRepository creates a new PostgreSQLEventRepository
func NewPostgreSQLEventRepository(db *sql.DB) *PostgreSQLEventRepository {
	return &PostgreSQLEventRepository{
		db: db,
	}
}

// Create inserts a new triage event
func (r *PostgreSQLEventRepository) Create(ctx context.Context, event *domain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO triage_events (id, ticket_id, event_type, payload, status, retries, last_error, published_at, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`

	_, err := querier.ExecContext(ctx, query, event.ID, event.TicketID, event.EventType, event.Payload,
		event.Status, event.Retries, event.LastError, event.PublishedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create triage event")
	}

	return nil
}

// GetPendingEvents retrieves pending events with limit, oldest first. Rows are
// locked so concurrent relays never publish the same event twice.
func (r *PostgreSQLEventRepository) GetPendingEvents(ctx context.Context, limit int) ([]*domain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, ticket_id, event_type, payload, status, retries, last_error, published_at, created_at, updated_at
			  FROM triage_events
			  WHERE status = $1
			  ORDER BY created_at ASC, id ASC
			  LIMIT $2
			  FOR UPDATE SKIP LOCKED`

	rows, err := querier.QueryContext(ctx, query, domain.EventStatusPending, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending triage events")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanEvents(rows)
}

// Update updates a triage event
func (r *PostgreSQLEventRepository) Update(ctx context.Context, event *domain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE triage_events
			  SET event_type = $1, payload = $2, status = $3, retries = $4, last_error = $5,
			      published_at = $6, updated_at = NOW()
			  WHERE id = $7`

	_, err := querier.ExecContext(ctx, query, event.EventType, event.Payload, event.Status,
		event.Retries, event.LastError, event.PublishedAt, event.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update triage event")
	}

	return nil
}
