package mailer

import "fmt"

// Tags carries provider-side metadata attached to a message. Providers echo
// tags back on delivery webhooks, which is how the pipeline correlates
// callback events with its own delivery log.
type Tags map[string]string

// Email represents a fully-prepared message ready for sending.
type Email struct {
	Headers Tags     // Custom SMTP headers
	Tags    Tags     // Provider tags, echoed back on webhooks
	Subject string   // Email subject
	HTML    string   // HTML body
	Text    string   // Plain text alternative
	From    string   // Override default sender (if provider allows)
	ReplyTo string   // Reply-to address
	To      []string // Recipients (at least one required)
	CC      []string // Carbon copy recipients
	BCC     []string // Blind carbon copy recipients
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
