package domain

// Classification is the model's assessment of an inbound message. Produced
// once per message by the classification collaborator and never mutated.
type Classification struct {
	// Category is the support queue the message belongs to.
	Category Category
	// Confidence is the model's confidence in the category, in [0, 1].
	Confidence float64
	// Summary is a one-line restatement of the request.
	Summary string
	// IsUrgent marks requests the model judged time-critical.
	IsUrgent bool
}
