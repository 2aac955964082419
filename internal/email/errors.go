package email

import "errors"

var (
	// ErrTemplateNotFound is returned when composing from an absent template.
	ErrTemplateNotFound = errors.New("email: template not found")

	// ErrLogNotFound is returned when an email log id resolves to nothing.
	ErrLogNotFound = errors.New("email: log not found")

	// ErrRecipientRequired is returned when no recipient can be resolved
	// from the override or the candidate merge data.
	ErrRecipientRequired = errors.New("email: recipient required")

	// ErrNoContent is returned when a custom send carries neither subject
	// nor HTML body.
	ErrNoContent = errors.New("email: subject and html content required")

	// ErrInvalidState is returned when an operation is not valid for the
	// log's current status, e.g. retrying a log that is not FAILED.
	ErrInvalidState = errors.New("email: invalid state for operation")

	// ErrSendFailed wraps transport failures surfaced by the dispatcher.
	// The queue treats it as retryable.
	ErrSendFailed = errors.New("email: transport send failed")

	// ErrSendInFlight is returned when a provider callback arrives before
	// the dispatcher has committed the send outcome for the log. Retryable:
	// the same event applies cleanly once the commit lands.
	ErrSendInFlight = errors.New("email: send outcome not yet recorded")
)
