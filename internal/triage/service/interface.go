// Package service provides the pure triage decision services: the inbound
// filter that screens fetched messages and the routing policy that maps
// classifications to assignment groups.
package service

import (
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// InboundFilter decides whether a fetched message should enter the pipeline.
// Implementations are pure and side-effect free.
type InboundFilter interface {
	// Accept reports whether the message should be processed. System senders,
	// system-notification domains, our own acknowledgement replies, and
	// bounce-backs are rejected.
	Accept(sender string, subject string) bool
}

// RoutingPolicy derives a routing decision from a classification using the
// configured routing table.
type RoutingPolicy interface {
	// Decide resolves the category (falling back to general for unknown
	// categories), applies the urgency and low-confidence priority
	// adjustments, and returns the decision. Fails only when the table has
	// no general entry.
	Decide(classification domain.Classification) (domain.RoutingDecision, error)
}
