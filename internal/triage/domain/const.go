// Package domain defines the core triage domain models: inbound messages,
// classifications, routing decisions, tickets, and audit records.
package domain

// Category identifies the support queue a message belongs to.
// Unknown categories are routed through the general fallback.
type Category string

const (
	// CategoryConnectivity covers network, VPN, and access issues.
	CategoryConnectivity Category = "connectivity"

	// CategoryOnboarding covers new-account and provisioning requests.
	CategoryOnboarding Category = "onboarding"

	// CategoryTransactional covers payment and order processing issues.
	CategoryTransactional Category = "transactional"

	// CategoryGeneral is the fallback for everything else. The routing table
	// must always contain an entry for it.
	CategoryGeneral Category = "general"
)

// Categories lists every known category, in classification prompt order.
func Categories() []Category {
	return []Category{
		CategoryConnectivity,
		CategoryOnboarding,
		CategoryTransactional,
		CategoryGeneral,
	}
}

// Known reports whether c is one of the known categories.
func (c Category) Known() bool {
	switch c {
	case CategoryConnectivity, CategoryOnboarding, CategoryTransactional, CategoryGeneral:
		return true
	}
	return false
}

// String returns the category name.
func (c Category) String() string {
	return string(c)
}
