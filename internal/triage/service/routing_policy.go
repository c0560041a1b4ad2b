package service

import (
	"github.com/karthikpoola6-cmd/email-triage-ai/internal/triage/domain"
)

// lowConfidenceThreshold is the confidence below which a classification is
// treated as uncertain and its ticket priority is bumped.
const lowConfidenceThreshold = 0.7

// routingPolicy implements RoutingPolicy over a fixed routing table.
type routingPolicy struct {
	table map[domain.Category]domain.RoutingRule
}

// NewRoutingPolicy creates a RoutingPolicy from a routing table. The table
// is expected to be validated already; Decide still guards the general
// fallback so a policy built from a raw map fails loudly instead of routing
// nowhere.
func NewRoutingPolicy(table map[domain.Category]domain.RoutingRule) RoutingPolicy {
	return &routingPolicy{table: table}
}

// Decide derives the routing decision for a classification.
func (p *routingPolicy) Decide(classification domain.Classification) (domain.RoutingDecision, error) {
	category := classification.Category
	rule, ok := p.table[category]
	if !ok {
		rule, ok = p.table[domain.CategoryGeneral]
		if !ok {
			return domain.RoutingDecision{}, domain.ErrMissingGeneralRule
		}
		category = domain.CategoryGeneral
	}

	// Urgency and low confidence each bump the priority one step, never
	// below 1.
	priority := rule.Priority
	if classification.IsUrgent {
		priority = max(1, priority-1)
	}
	if classification.Confidence < lowConfidenceThreshold {
		priority = max(1, priority-1)
	}

	return domain.RoutingDecision{
		AssignmentGroup: rule.AssignmentGroup,
		Priority:        priority,
		SLAHours:        rule.SLAHours,
		Category:        category,
	}, nil
}
