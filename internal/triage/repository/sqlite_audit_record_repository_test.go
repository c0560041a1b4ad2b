package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/database"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/testutil"
	triageDomain "github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// buildAuditRecord returns a fully populated record for the given ticket.
func buildAuditRecord(t *testing.T, ticketID string) *triageDomain.AuditRecord {
	t.Helper()

	return &triageDomain.AuditRecord{
		ID:                 uuid.Must(uuid.NewV7()),
		MessageID:          "msg-" + uuid.Must(uuid.NewV7()).String(),
		Sender:             "john.doe@example.com",
		Subject:            "Cannot connect to VPN",
		Category:           triageDomain.CategoryConnectivity,
		Confidence:         0.95,
		Summary:            "User cannot reach the VPN gateway since this morning.",
		IsUrgent:           false,
		AssignmentGroup:    "Network Support",
		Priority:           3,
		SLAHours:           4,
		TicketID:           ticketID,
		ResolutionNotified: false,
		CreatedAt:          time.Now().UTC(),
	}
}

func TestNewSQLiteAuditRecordRepository(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	assert.NotNil(t, repo)
	assert.IsType(t, &SQLiteAuditRecordRepository{}, repo)
}

func TestSQLiteAuditRecordRepository_Create(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	record := &triageDomain.AuditRecord{
		ID:                 uuid.Must(uuid.NewV7()),
		MessageID:          "AAMkAGI2TG93AAA=",
		Sender:             "sarah@example.com",
		Subject:            "Payment failed twice",
		Category:           triageDomain.CategoryTransactional,
		Confidence:         0.88,
		Summary:            "Two card payments declined during checkout.",
		IsUrgent:           true,
		AssignmentGroup:    "Payments Operations",
		Priority:           1,
		SLAHours:           8,
		TicketID:           "INC0012345",
		ResolutionNotified: false,
		CreatedAt:          time.Now().UTC(),
	}

	err := repo.Create(ctx, record)
	require.NoError(t, err)

	// Verify the record was created by querying directly
	var (
		sender   string
		category string
		urgent   bool
		notified bool
	)
	err = db.QueryRowContext(
		ctx,
		`SELECT sender, category, is_urgent, resolution_notified FROM audit_records WHERE id = ?`,
		record.ID,
	).Scan(&sender, &category, &urgent, &notified)
	require.NoError(t, err)
	assert.Equal(t, "sarah@example.com", sender)
	assert.Equal(t, "transactional", category)
	assert.True(t, urgent)
	assert.False(t, notified)
}

func TestSQLiteAuditRecordRepository_Create_FailedTicket(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	// A failed ticket creation is still recorded, with the placeholder id
	record := buildAuditRecord(t, triageDomain.FailedTicketID("500"))

	err := repo.Create(ctx, record)
	require.NoError(t, err)

	var storedTicketID string
	err = db.QueryRowContext(
		ctx,
		`SELECT ticket_id FROM audit_records WHERE id = ?`,
		record.ID,
	).Scan(&storedTicketID)
	require.NoError(t, err)
	assert.Equal(t, "FAILED-500", storedTicketID)
}

func TestSQLiteAuditRecordRepository_Create_WithTransaction(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	txManager := database.NewTxManager(db)
	ctx := context.Background()

	record := buildAuditRecord(t, "INC0012346")

	err := txManager.WithTx(ctx, func(txCtx context.Context) error {
		return repo.Create(txCtx, record)
	})
	require.NoError(t, err)

	// Verify the record exists after commit
	var count int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_records WHERE id = ?`, record.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSQLiteAuditRecordRepository_Create_TransactionRollback(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	txManager := database.NewTxManager(db)
	ctx := context.Background()

	record := buildAuditRecord(t, "INC0012347")

	err := txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := repo.Create(txCtx, record); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	// Verify the record does not exist after rollback
	var count int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_records WHERE id = ?`, record.ID).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLiteAuditRecordRepository_List_SortingNewestFirst(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	record1 := buildAuditRecord(t, "INC0010001")
	time.Sleep(time.Millisecond) // Ensure different timestamp for UUIDv7
	record2 := buildAuditRecord(t, "INC0010002")
	time.Sleep(time.Millisecond)
	record3 := buildAuditRecord(t, "INC0010003")

	require.NoError(t, repo.Create(ctx, record1))
	require.NoError(t, repo.Create(ctx, record2))
	require.NoError(t, repo.Create(ctx, record3))

	records, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first
	assert.Equal(t, record3.ID, records[0].ID)
	assert.Equal(t, record2.ID, records[1].ID)
	assert.Equal(t, record1.ID, records[2].ID)
}

func TestSQLiteAuditRecordRepository_List_EmptyResult(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	records, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, records, 0)
	assert.NotNil(t, records) // Should return empty slice, not nil
}

func TestSQLiteAuditRecordRepository_List_Pagination(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		time.Sleep(time.Millisecond)
		require.NoError(t, repo.Create(ctx, buildAuditRecord(t, "INC0010100")))
	}

	// First page (limit 3, offset 0)
	page1, err := repo.List(ctx, 0, 3)
	require.NoError(t, err)
	assert.Len(t, page1, 3)

	// Second page (limit 3, offset 3)
	page2, err := repo.List(ctx, 3, 3)
	require.NoError(t, err)
	assert.Len(t, page2, 3)

	// Verify pages don't overlap
	assert.NotEqual(t, page1[0].ID, page2[0].ID)

	// Verify page2 has older records than page1
	assert.Less(t, page2[0].ID.String(), page1[len(page1)-1].ID.String())
}

func TestSQLiteAuditRecordRepository_List_RoundTrip(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	record := buildAuditRecord(t, "INC0010200")
	require.NoError(t, repo.Create(ctx, record))

	records, err := repo.List(ctx, 0, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, record.MessageID, got.MessageID)
	assert.Equal(t, record.Sender, got.Sender)
	assert.Equal(t, record.Subject, got.Subject)
	assert.Equal(t, record.Category, got.Category)
	assert.InDelta(t, record.Confidence, got.Confidence, 0.0001)
	assert.Equal(t, record.Summary, got.Summary)
	assert.Equal(t, record.IsUrgent, got.IsUrgent)
	assert.Equal(t, record.AssignmentGroup, got.AssignmentGroup)
	assert.Equal(t, record.Priority, got.Priority)
	assert.Equal(t, record.SLAHours, got.SLAHours)
	assert.Equal(t, record.TicketID, got.TicketID)
	assert.Equal(t, record.ResolutionNotified, got.ResolutionNotified)
	assert.WithinDuration(t, record.CreatedAt, got.CreatedAt, time.Second)
}

func TestSQLiteAuditRecordRepository_ListAll(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	record1 := buildAuditRecord(t, "INC0010301")
	time.Sleep(time.Millisecond)
	record2 := buildAuditRecord(t, "INC0010302")

	require.NoError(t, repo.Create(ctx, record1))
	require.NoError(t, repo.Create(ctx, record2))

	records, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first
	assert.Equal(t, record2.ID, records[0].ID)
	assert.Equal(t, record1.ID, records[1].ID)
}

func TestSQLiteAuditRecordRepository_ListUnnotified(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	waiting1 := buildAuditRecord(t, "INC0010401")
	time.Sleep(time.Millisecond)
	notified := buildAuditRecord(t, "INC0010402")
	notified.ResolutionNotified = true
	time.Sleep(time.Millisecond)
	noTicket := buildAuditRecord(t, "")
	time.Sleep(time.Millisecond)
	waiting2 := buildAuditRecord(t, "INC0010403")

	require.NoError(t, repo.Create(ctx, waiting1))
	require.NoError(t, repo.Create(ctx, notified))
	require.NoError(t, repo.Create(ctx, noTicket))
	require.NoError(t, repo.Create(ctx, waiting2))

	records, err := repo.ListUnnotified(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Oldest first, already notified and ticketless records excluded
	assert.Equal(t, waiting1.ID, records[0].ID)
	assert.Equal(t, waiting2.ID, records[1].ID)
}

func TestSQLiteAuditRecordRepository_ListUnnotified_EmptyResult(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	record := buildAuditRecord(t, "INC0010404")
	record.ResolutionNotified = true
	require.NoError(t, repo.Create(ctx, record))

	records, err := repo.ListUnnotified(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 0)
	assert.NotNil(t, records)
}

func TestSQLiteAuditRecordRepository_MarkNotified(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	record := buildAuditRecord(t, "INC0010501")
	require.NoError(t, repo.Create(ctx, record))

	affected, err := repo.MarkNotified(ctx, "INC0010501")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	var notified bool
	err = db.QueryRowContext(ctx, `SELECT resolution_notified FROM audit_records WHERE id = ?`, record.ID).Scan(&notified)
	require.NoError(t, err)
	assert.True(t, notified)
}

func TestSQLiteAuditRecordRepository_MarkNotified_AlreadyNotified(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	record := buildAuditRecord(t, "INC0010502")
	require.NoError(t, repo.Create(ctx, record))

	affected, err := repo.MarkNotified(ctx, "INC0010502")
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	// Marking again affects no rows and is not an error
	affected, err = repo.MarkNotified(ctx, "INC0010502")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestSQLiteAuditRecordRepository_MarkNotified_AllRecordsForTicket(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	// Two messages can end up on the same ticket
	record1 := buildAuditRecord(t, "INC0010503")
	time.Sleep(time.Millisecond)
	record2 := buildAuditRecord(t, "INC0010503")
	time.Sleep(time.Millisecond)
	other := buildAuditRecord(t, "INC0010504")

	require.NoError(t, repo.Create(ctx, record1))
	require.NoError(t, repo.Create(ctx, record2))
	require.NoError(t, repo.Create(ctx, other))

	affected, err := repo.MarkNotified(ctx, "INC0010503")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	// The unrelated ticket is untouched
	var notified bool
	err = db.QueryRowContext(ctx, `SELECT resolution_notified FROM audit_records WHERE id = ?`, other.ID).Scan(&notified)
	require.NoError(t, err)
	assert.False(t, notified)
}

func TestSQLiteAuditRecordRepository_MarkNotified_UnknownTicket(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewSQLiteAuditRecordRepository(db)
	ctx := context.Background()

	affected, err := repo.MarkNotified(ctx, "INC0999999")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}
