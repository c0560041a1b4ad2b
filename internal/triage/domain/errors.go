package domain

import (
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/errors"
)

// Triage domain errors.
var (
	// ErrAuditRecordNotFound indicates no audit record matched the query.
	ErrAuditRecordNotFound = errors.Wrap(errors.ErrNotFound, "audit record not found")

	// ErrTicketNotFound indicates the ticketing system has no ticket with the
	// requested number.
	ErrTicketNotFound = errors.Wrap(errors.ErrNotFound, "ticket not found")

	// ErrMissingGeneralRule indicates the routing table has no entry for the
	// general fallback category, which makes routing impossible.
	ErrMissingGeneralRule = errors.Wrap(errors.ErrConfig, "routing table is missing the general entry")
)
