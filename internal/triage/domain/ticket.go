package domain

import (
	"fmt"
	"strings"
)

// FailedTicketPrefix marks ticket ids recording a failed creation attempt.
// Sentinel ids are terminal: they are never queried against the ticketing
// system and exist only so the audit trail stays complete.
const FailedTicketPrefix = "FAILED-"

// FailedTicketID builds a failure sentinel carrying the failure code, for
// example "FAILED-500" or "FAILED-REQUEST".
func FailedTicketID(code string) string {
	return FailedTicketPrefix + code
}

// IsFailedTicket reports whether ticketID is a failure sentinel.
func IsFailedTicket(ticketID string) bool {
	return strings.HasPrefix(ticketID, FailedTicketPrefix)
}

// TicketState is the ticketing collaborator's view of one ticket.
type TicketState struct {
	// State is the collaborator-specific state code; "6" means resolved in
	// the default configuration.
	State string
	// CloseNotes describes how the ticket was resolved; may be empty.
	CloseNotes string
}

// TicketRequest carries everything the ticketing collaborator needs to open
// a ticket.
type TicketRequest struct {
	Category        Category
	Subject         string
	Description     string
	Priority        int
	AssignmentGroup string
	Requester       string
}

// NewTicketRequest assembles a ticket request from the pipeline's view of
// one message. The description embeds the classification verdict and the
// original body so the assigned team never has to look the message up.
func NewTicketRequest(msg InboundMessage, cls Classification, routing RoutingDecision) TicketRequest {
	description := fmt.Sprintf(
		"From: %s\nSubject: %s\nClassification: %s (confidence: %v)\nSummary: %s\n\nOriginal Email:\n%s",
		msg.Sender, msg.Subject, cls.Category, cls.Confidence, cls.Summary, msg.Body,
	)

	return TicketRequest{
		Category:        cls.Category,
		Subject:         msg.Subject,
		Description:     description,
		Priority:        routing.Priority,
		AssignmentGroup: routing.AssignmentGroup,
		Requester:       msg.Sender,
	}
}
