package domain

// RoutingDecision assigns a classified message to a team with a priority and
// an SLA. Derived deterministically from a Classification and the routing
// table.
type RoutingDecision struct {
	// AssignmentGroup is the team responsible for the ticket.
	AssignmentGroup string
	// Priority is the ticket priority; 1 is most urgent and it never drops
	// below 1.
	Priority int
	// SLAHours is the response-time target for the resolved category.
	SLAHours int
	// Category is the category the decision was made for, after any fallback.
	Category Category
}

// RoutingRule is one entry of the routing table.
type RoutingRule struct {
	AssignmentGroup string `yaml:"assignment_group"`
	Priority        int    `yaml:"priority"`
	SLAHours        int    `yaml:"sla_hours"`
}
