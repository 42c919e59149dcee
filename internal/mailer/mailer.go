// Package mailer sends finished cards to the administrator through an email
// transport: the Resend HTTP API or a plain SMTP relay.
package mailer

import (
	"context"
	"encoding/json"
)

// Attachment is a file attached to a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is a single outbound email. The sender address is a transport setting.
type Message struct {
	To          []string
	Subject     string
	Text        string
	Attachments []Attachment
}

// Transport delivers messages.
type Transport interface {
	// Name identifies the transport in logs.
	Name() string
	// Missing lists the names of required settings that are not configured.
	Missing() []string
	// Send delivers msg and returns the provider's response payload, if any.
	// Missing settings yield *models.ConfigurationError and delivery failures
	// *models.TransportError.
	Send(ctx context.Context, msg Message) (json.RawMessage, error)
}

// missing returns the names of empty settings, in order.
func missing(settings ...[2]string) []string {
	var names []string
	for _, s := range settings {
		if s[1] == "" {
			names = append(names, s[0])
		}
	}
	return names
}
