// Package notification renders the acknowledgement and resolution emails the
// system sends back to requesters.
package notification

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	apperrors "github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// defaultResolutionNotes fills in for tickets closed without notes.
const defaultResolutionNotes = "Resolved by support team."

// Renderer renders outbound emails from the embedded HTML templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse notification templates")
	}

	return &Renderer{templates: templates}, nil
}

type ackData struct {
	SenderName      string
	Subject         string
	Category        domain.Category
	TicketID        string
	AssignmentGroup string
	SLAHours        int
}

// RenderAck renders the acknowledgement sent right after a ticket is
// created. The subject carries the ticket marker so replies and the
// system's own copies are recognized by the inbound filter.
func (r *Renderer) RenderAck(msg domain.InboundMessage, cls domain.Classification, routing domain.RoutingDecision, ticketID string) (domain.OutboundEmail, error) {
	var body strings.Builder
	err := r.templates.ExecuteTemplate(&body, "ack.html.tmpl", ackData{
		SenderName:      msg.DisplayName(),
		Subject:         msg.Subject,
		Category:        cls.Category,
		TicketID:        ticketID,
		AssignmentGroup: routing.AssignmentGroup,
		SLAHours:        routing.SLAHours,
	})
	if err != nil {
		return domain.OutboundEmail{}, apperrors.Wrap(err, "failed to render acknowledgement")
	}

	return domain.OutboundEmail{
		To:       msg.Sender,
		Subject:  fmt.Sprintf("Re: %s [Ticket: %s]", msg.Subject, ticketID),
		BodyHTML: body.String(),
	}, nil
}

type resolutionData struct {
	SenderName      string
	Subject         string
	TicketID        string
	ResolutionNotes string
}

// RenderResolution renders the notification sent when a ticket resolves.
// Empty notes fall back to a generic closing line. The recipient name is
// derived from the address because only the address is stored in the audit
// record.
func (r *Renderer) RenderResolution(sender, subject, ticketID, notes string) (domain.OutboundEmail, error) {
	if notes == "" {
		notes = defaultResolutionNotes
	}

	var body strings.Builder
	err := r.templates.ExecuteTemplate(&body, "resolution.html.tmpl", resolutionData{
		SenderName:      domain.RecipientName(sender),
		Subject:         subject,
		TicketID:        ticketID,
		ResolutionNotes: notes,
	})
	if err != nil {
		return domain.OutboundEmail{}, apperrors.Wrap(err, "failed to render resolution notification")
	}

	return domain.OutboundEmail{
		To:       sender,
		Subject:  fmt.Sprintf("Resolved: %s [Ticket: %s]", subject, ticketID),
		BodyHTML: body.String(),
	}, nil
}
