package repository

import (
	"context"
	"database/sql"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/database"
	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	triageDomain "github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// PostgreSQLAuditRecordRepository implements AuditRecord persistence for
// PostgreSQL. Uses native UUID types with transaction support via
// database.GetTx().
type PostgreSQLAuditRecordRepository struct {
	db *sql.DB
}

// NewPostgreSQLAuditRecordRepository creates a new PostgreSQL AuditRecord repository.
func NewPostgreSQLAuditRecordRepository(db *sql.DB) *PostgreSQLAuditRecordRepository {
	return &PostgreSQLAuditRecordRepository{db: db}
}

// Create inserts a new AuditRecord. Records are append-only; nothing besides
// the resolution_notified flag is ever updated afterwards.
func (r *PostgreSQLAuditRecordRepository) Create(ctx context.Context, record *triageDomain.AuditRecord) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO audit_records (id, message_id, sender, subject, category, confidence, summary,
				  is_urgent, assignment_group, priority, sla_hours, ticket_id, resolution_notified, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

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
func (r *PostgreSQLAuditRecordRepository) ListUnnotified(ctx context.Context) ([]*triageDomain.AuditRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, message_id, sender, subject, category, confidence, summary,
				  is_urgent, assignment_group, priority, sla_hours, ticket_id, resolution_notified, created_at
			  FROM audit_records
			  WHERE resolution_notified = FALSE AND ticket_id != ''
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
func (r *PostgreSQLAuditRecordRepository) MarkNotified(ctx context.Context, ticketID string) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE audit_records SET resolution_notified = TRUE WHERE ticket_id = $1 AND resolution_notified = FALSE`

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
func (r *PostgreSQLAuditRecordRepository) List(ctx context.Context, offset, limit int) ([]*triageDomain.AuditRecord, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, message_id, sender, subject, category, confidence, summary,
				  is_urgent, assignment_group, priority, sla_hours, ticket_id, resolution_notified, created_at
			  FROM audit_records
			  ORDER BY id DESC
			  LIMIT $1 OFFSET $2`

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
func (r *PostgreSQLAuditRecordRepository) ListAll(ctx context.Context) ([]*triageDomain.AuditRecord, error) {
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
