package service

import (
	"strings"
)

// Default alias and domain sets for system mail that must never enter the
// pipeline. Extendable through the routing rules file.
var (
	defaultSkipSenders = []string{
		"noreply",
		"no-reply",
		"postmaster",
		"mailer-daemon",
		"account-security-noreply",
		"notifications",
		"member_services",
	}

	defaultSkipDomains = []string{
		"accountprotection.microsoft.com",
	}
)

// ticketMarker is the subject fragment stamped on every acknowledgement and
// resolution email this system sends. Its presence means the message is one
// of our own replies.
const ticketMarker = "[Ticket:"

// bouncePrefix marks non-delivery reports.
const bouncePrefix = "undeliverable:"

// inboundFilter implements InboundFilter with set lookups on the sender
// local part and domain.
type inboundFilter struct {
	skipSenders map[string]struct{}
	skipDomains map[string]struct{}
}

// NewInboundFilter creates an InboundFilter from the default system alias and
// domain sets plus any extra entries from configuration. Entries are matched
// case-insensitively.
func NewInboundFilter(extraSenders []string, extraDomains []string) InboundFilter {
	f := &inboundFilter{
		skipSenders: make(map[string]struct{}),
		skipDomains: make(map[string]struct{}),
	}

	for _, s := range defaultSkipSenders {
		f.skipSenders[s] = struct{}{}
	}
	for _, s := range extraSenders {
		f.skipSenders[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	for _, d := range defaultSkipDomains {
		f.skipDomains[d] = struct{}{}
	}
	for _, d := range extraDomains {
		f.skipDomains[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}

	return f
}

// Accept reports whether the message should be processed.
func (f *inboundFilter) Accept(sender string, subject string) bool {
	address := strings.ToLower(sender)
	local := address
	domain := address
	if at := strings.LastIndex(address, "@"); at >= 0 {
		local = address[:at]
		domain = address[at+1:]
	}

	if _, ok := f.skipSenders[local]; ok {
		return false
	}

	if _, ok := f.skipDomains[domain]; ok {
		return false
	}

	// Our own auto-replies carry the ticket marker in the subject.
	if strings.Contains(subject, ticketMarker) {
		return false
	}

	if strings.HasPrefix(strings.ToLower(subject), bouncePrefix) {
		return false
	}

	return true
}
