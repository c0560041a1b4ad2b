// Package repository provides data persistence implementations for triage events.
package repository

import (
	"context"
	"database/sql"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/database"
	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/events/domain"
)

// SQLiteEventRepository handles triage event persistence for SQLite
type SQLiteEventRepository struct {
	db *sql.DB
}

// NewSQLiteEventRepository creates a new SQLiteEventRepository
func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{
		db: db,
	}
}

// Create inserts a new triage event
func (r *SQLiteEventRepository) Create(ctx context.Context, event *domain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO triage_events (id, ticket_id, event_type, payload, status, retries, last_error, published_at, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	_, err := querier.ExecContext(ctx, query, event.ID, event.TicketID, event.EventType, event.Payload,
		event.Status, event.Retries, event.LastError, event.PublishedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create triage event")
	}

	return nil
}

// GetPendingEvents retrieves pending events with limit, oldest first
func (r *SQLiteEventRepository) GetPendingEvents(ctx context.Context, limit int) ([]*domain.Event, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, ticket_id, event_type, payload, status, retries, last_error, published_at, created_at, updated_at
			  FROM triage_events
			  WHERE status = ?
			  ORDER BY created_at ASC, id ASC
			  LIMIT ?`

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
func (r *SQLiteEventRepository) Update(ctx context.Context, event *domain.Event) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE triage_events
			  SET event_type = ?, payload = ?, status = ?, retries = ?, last_error = ?,
			      published_at = ?, updated_at = CURRENT_TIMESTAMP
			  WHERE id = ?`

	_, err := querier.ExecContext(ctx, query, event.EventType, event.Payload, event.Status,
		event.Retries, event.LastError, event.PublishedAt, event.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update triage event")
	}

	return nil
}

// scanEvents drains rows into triage events.
func scanEvents(rows *sql.Rows) ([]*domain.Event, error) {
	// Initialize empty slice to avoid returning nil for empty results
	events := make([]*domain.Event, 0)
	for rows.Next() {
		var event domain.Event

		err := rows.Scan(&event.ID, &event.TicketID, &event.EventType, &event.Payload, &event.Status,
			&event.Retries, &event.LastError, &event.PublishedAt, &event.CreatedAt, &event.UpdatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan triage event")
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate triage events")
	}

	return events, nil
}
