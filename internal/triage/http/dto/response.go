// Package dto provides response mapping types for the triage HTTP API.
package dto

import (
	"time"

	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// AuditRecordResponse represents an audit record in API responses.
type AuditRecordResponse struct {
	ID                 string    `json:"id"`
	MessageID          string    `json:"message_id"`
	Sender             string    `json:"sender"`
	Subject            string    `json:"subject"`
	Category           string    `json:"category"`
	Confidence         float64   `json:"confidence"`
	Summary            string    `json:"summary"`
	IsUrgent           bool      `json:"is_urgent"`
	AssignmentGroup    string    `json:"assignment_group"`
	Priority           int       `json:"priority"`
	SLAHours           int       `json:"sla_hours"`
	TicketID           string    `json:"ticket_id"`
	TicketFailed       bool      `json:"ticket_failed"`
	ResolutionNotified bool      `json:"resolution_notified"`
	CreatedAt          time.Time `json:"created_at"`
}

// MapAuditRecordToResponse converts a domain audit record to an API response.
func MapAuditRecordToResponse(record *domain.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		ID:                 record.ID.String(),
		MessageID:          record.MessageID,
		Sender:             record.Sender,
		Subject:            record.Subject,
		Category:           string(record.Category),
		Confidence:         record.Confidence,
		Summary:            record.Summary,
		IsUrgent:           record.IsUrgent,
		AssignmentGroup:    record.AssignmentGroup,
		Priority:           record.Priority,
		SLAHours:           record.SLAHours,
		TicketID:           record.TicketID,
		TicketFailed:       record.TicketFailed(),
		ResolutionNotified: record.ResolutionNotified,
		CreatedAt:          record.CreatedAt,
	}
}

// ListAuditRecordsResponse represents a paginated list of audit records in API responses.
type ListAuditRecordsResponse struct {
	Data []AuditRecordResponse `json:"data"`
}

// MapAuditRecordsToListResponse converts a slice of domain audit records to a list API response.
func MapAuditRecordsToListResponse(records []*domain.AuditRecord) ListAuditRecordsResponse {
	recordResponses := make([]AuditRecordResponse, 0, len(records))
	for _, record := range records {
		recordResponses = append(recordResponses, MapAuditRecordToResponse(record))
	}
	return ListAuditRecordsResponse{
		Data: recordResponses,
	}
}
