package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
	triageUsecase "github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/usecase"
)

// auditRecordOutput is the JSON shape of one listed audit record.
type auditRecordOutput struct {
	ID                 string  `json:"id"`
	MessageID          string  `json:"message_id"`
	Sender             string  `json:"sender"`
	Subject            string  `json:"subject"`
	Category           string  `json:"category"`
	Confidence         float64 `json:"confidence"`
	IsUrgent           bool    `json:"is_urgent"`
	AssignmentGroup    string  `json:"assignment_group"`
	Priority           int     `json:"priority"`
	SLAHours           int     `json:"sla_hours"`
	TicketID           string  `json:"ticket_id"`
	ResolutionNotified bool    `json:"resolution_notified"`
	CreatedAt          string  `json:"created_at"`
}

// RunAuditRecords lists processed requests from the audit store, most recent
// first, in text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunAuditRecords(
	ctx context.Context,
	auditRecords triageUsecase.AuditRecordRepository,
	logger *slog.Logger,
	out io.Writer,
	offset, limit int,
	format string,
) error {
	if offset < 0 || limit < 1 {
		return fmt.Errorf("invalid pagination: offset must be >= 0 and limit >= 1, got offset=%d limit=%d", offset, limit)
	}

	records, err := auditRecords.List(ctx, offset, limit)
	if err != nil {
		return fmt.Errorf("failed to list audit records: %w", err)
	}

	logger.Info("listed audit records",
		slog.Int("count", len(records)),
		slog.Int("offset", offset),
		slog.Int("limit", limit),
	)

	if format == "json" {
		return outputAuditJSON(out, records)
	}
	printSummary(out, records)
	return nil
}

// outputAuditJSON writes the records as indented JSON for machine consumption.
func outputAuditJSON(out io.Writer, records []*domain.AuditRecord) error {
	outputs := make([]auditRecordOutput, 0, len(records))
	for _, record := range records {
		outputs = append(outputs, auditRecordOutput{
			ID:                 record.ID.String(),
			MessageID:          record.MessageID,
			Sender:             record.Sender,
			Subject:            record.Subject,
			Category:           string(record.Category),
			Confidence:         record.Confidence,
			IsUrgent:           record.IsUrgent,
			AssignmentGroup:    record.AssignmentGroup,
			Priority:           record.Priority,
			SLAHours:           record.SLAHours,
			TicketID:           record.TicketID,
			ResolutionNotified: record.ResolutionNotified,
			CreatedAt:          record.CreatedAt.Format(time.RFC3339),
		})
	}

	jsonBytes, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(out, string(jsonBytes))
	return nil
}
