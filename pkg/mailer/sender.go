package mailer

import "context"

// Sender is the minimal interface an email provider adapter must implement.
// It accepts a fully-prepared Email and performs the actual network send.
type Sender interface {
	// Send delivers an email message and returns the provider-assigned
	// message identifier. The Email must have To, Subject, and HTML set.
	Send(ctx context.Context, email *Email) (messageID string, err error)
}
