package domain

import (
	"strings"
	"time"
	"unicode"
)

// InboundMessage is a support request fetched from the mail transport.
// Immutable once fetched.
type InboundMessage struct {
	// ID is the transport-assigned message identifier.
	ID string
	// Sender is the requester's email address.
	Sender string
	// SenderName is the requester's display name; may be empty.
	SenderName string
	// Subject is the message subject line.
	Subject string
	// Body is the plain-text message body.
	Body string
	// ReceivedAt is when the transport received the message.
	ReceivedAt time.Time
}

// SenderLocalPart returns the part of the sender address before the "@",
// lowercased. Returns the whole address lowercased when no "@" is present.
func (m InboundMessage) SenderLocalPart() string {
	local, _, _ := strings.Cut(m.Sender, "@")
	return strings.ToLower(local)
}

// DisplayName returns the stored display name, falling back to the sender
// address when none was provided.
func (m InboundMessage) DisplayName() string {
	if m.SenderName != "" {
		return m.SenderName
	}
	return m.Sender
}

// RecipientName derives a greeting name from an email address: the local
// part with the first letter of every letter run uppercased, so
// "john.doe@example.com" becomes "John.Doe".
func RecipientName(address string) string {
	local, _, _ := strings.Cut(address, "@")

	var b strings.Builder
	b.Grow(len(local))
	prevLetter := false
	for _, r := range local {
		if unicode.IsLetter(r) && !prevLetter {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		prevLetter = unicode.IsLetter(r)
	}
	return b.String()
}
