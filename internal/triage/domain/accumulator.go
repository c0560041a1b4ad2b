package domain

// OutboundEmail is a rendered email ready for the transport collaborator.
type OutboundEmail struct {
	To       string
	Subject  string
	BodyHTML string
}

// PipelineAccumulator carries one message through the stage sequence. Each
// stage populates exactly one field and earlier fields are treated as
// immutable once set. Discarded after the audit record is persisted.
type PipelineAccumulator struct {
	// RunID correlates all log lines of one pipeline run.
	RunID string
	// Message is the inbound request; set before the first stage.
	Message InboundMessage
	// Classification is set by the classify stage.
	Classification Classification
	// Routing is set by the route stage.
	Routing RoutingDecision
	// TicketID is set by the ticket stage; a real id or a failure sentinel.
	TicketID string
	// Acknowledgement is set by the acknowledge stage.
	Acknowledgement OutboundEmail
	// Delivered records whether the acknowledgement reached the transport.
	Delivered bool
	// Record is the persisted audit record; set by the final stage.
	Record *AuditRecord
}
