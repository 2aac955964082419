package mailer

import "errors"

var (
	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("mailer: email must have at least one recipient")

	// ErrSendFailed indicates the provider rejected or failed the send.
	ErrSendFailed = errors.New("mailer: failed to send email")
)
