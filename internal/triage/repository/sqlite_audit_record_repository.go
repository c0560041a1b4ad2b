// Package repository provides data persistence implementations for triage
// audit records.
package repository

import (
	"context"
	"database/sql"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/database"
	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	triageDomain "github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// SQLiteAuditRecordRepository implements AuditRecord persistence for SQLite.
// Uses transaction support via database.GetTx().
type SQLiteAuditRecordRepository struct {
	db *sql.DB
}

// NewSQLiteAuditRecordRepository creates a new SQLite AuditRecord repository.
func NewSQLiteAuditRecordRepository(db *sql.DB) *SQLiteAuditRecordRepository {
	return &SQLiteAuditRecordRepository{db: db}
}

// Create inserts a new AuditRecord. Records are append-only; nothing besides
// the resolution_notified flag is ever updated afterwards.
func (r *SQLiteAuditRecordRepository) Create(ctx context.Context, record *triageDomain.AuditRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO audit_records (id, message_id, sender, subject, category, confidence, summary,
				  is_urgent, assignment_group, priority, sla_hours, ticket_id, resolution_notified, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.MessageID,
		record.Sender,
		record.Subject,
		string(record.Category),
		record.Confidence,
		record.Summary,
		record.IsUrgent,
		record.AssignmentGroup,
		record.Priority,
		record.SLAHours,
		record.TicketID,
		record.ResolutionNotified,
		record.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create audit record")
	}

	return nil
}

// ListUnnotified retrieves records whose requester has not been notified of a
// resolution yet, oldest first so long-waiting tickets are checked first.
func (r *SQLiteAuditRecordRepository) ListUnnotified(ctx context.Context) ([]*triageDomain.AuditRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, message_id, sender, subject, category, confidence, summary,
				  is_urgent, assignment_group, priority, sla_hours, ticket_id, resolution_notified, created_at
			  FROM audit_records
			  WHERE resolution_notified = 0 AND ticket_id != ''
			  ORDER BY id ASC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list unnotified audit records")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanAuditRecords(rows)
}

// MarkNotified sets resolution_notified for every record carrying the ticket
// id. The flag only ever moves from false to true; marking an already
// notified or unknown ticket affects zero rows and is not an error.
func (r *SQLiteAuditRecordRepository) MarkNotified(ctx context.Context, ticketID string) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE audit_records SET resolution_notified = 1 WHERE ticket_id = ? AND resolution_notified = 0`

	result, err := querier.ExecContext(ctx, query, ticketID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to mark audit record notified")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}

	return affected, nil
}

// List retrieves audit records ordered by ID descending (newest first) with
// pagination.
func (r *SQLiteAuditRecordRepository) List(ctx context.Context, offset, limit int) ([]*triageDomain.AuditRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, message_id, sender, subject, category, confidence, summary,
				  is_urgent, assignment_group, priority, sla_hours, ticket_id, resolution_notified, created_at
			  FROM audit_records
			  ORDER BY id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanAuditRecords(rows)
}

// ListAll retrieves every audit record, newest first.
func (r *SQLiteAuditRecordRepository) ListAll(ctx context.Context) ([]*triageDomain.AuditRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, message_id, sender, subject, category, confidence, summary,
				  is_urgent, assignment_group, priority, sla_hours, ticket_id, resolution_notified, created_at
			  FROM audit_records
			  ORDER BY id DESC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list audit records")
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanAuditRecords(rows)
}

// scanAuditRecords drains rows into audit records.
func scanAuditRecords(rows *sql.Rows) ([]*triageDomain.AuditRecord, error) {
	// Initialize empty slice to avoid returning nil for empty results
	records := make([]*triageDomain.AuditRecord, 0)
	for rows.Next() {
		var record triageDomain.AuditRecord
		var category string

		err := rows.Scan(
			&record.ID,
			&record.MessageID,
			&record.Sender,
			&record.Subject,
			&category,
			&record.Confidence,
			&record.Summary,
			&record.IsUrgent,
			&record.AssignmentGroup,
			&record.Priority,
			&record.SLAHours,
			&record.TicketID,
			&record.ResolutionNotified,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan audit record")
		}

		record.Category = triageDomain.Category(category)
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate audit records")
	}

	return records, nil
}
