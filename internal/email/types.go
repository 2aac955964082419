package email

import (
	"time"

	"github.com/hirelane/mailroom/pkg/mergefield"
)

// EmailLog is the persisted record of one send attempt and its lifecycle
// status. Logs are created when a send is submitted and mutated only by the
// dispatcher and the delivery status tracker; this subsystem never deletes
// them.
type EmailLog struct {
	ID            string
	To            string
	CC            []string
	BCC           []string
	Subject       string
	HTMLContent   string
	TextContent   string
	Status        Status
	TemplateID    string
	CandidateID   string
	ApplicationID string
	SubmittedBy   string
	Metadata      map[string]string
	ErrorMessage  string
	ExternalID    string // provider message identifier, set on successful send

	ScheduledFor *time.Time
	CreatedAt    time.Time
	SentAt       *time.Time
	DeliveredAt  *time.Time
	OpenedAt     *time.Time
	ClickedAt    *time.Time
	BouncedAt    *time.Time
}

// ComposedEmail is the ephemeral render output, consumed immediately to
// create an EmailLog. It is never persisted on its own.
type ComposedEmail struct {
	To          string
	CC          []string
	BCC         []string
	Subject     string
	HTMLContent string
	TextContent string
	TemplateID  string
}

// Priority is the caller-facing urgency of a send.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Weight maps a priority to its numeric weight. Unknown or empty values
// fall back to normal.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 10
	case PriorityLow:
		return 1
	default:
		return 5
	}
}

// SendOptions describes one email submission. When TemplateID is set the
// subject and bodies come from the template; otherwise Subject and
// HTMLContent are used directly (rendered against MergeData when supplied).
type SendOptions struct {
	To          string
	CC          []string
	BCC         []string
	Subject     string
	HTMLContent string
	TextContent string
	TemplateID  string
	MergeData   *mergefield.Data

	Priority     Priority
	ScheduledFor *time.Time

	CandidateID   string
	ApplicationID string
	SubmittedBy   string
	Metadata      map[string]string
}

// BulkSendOptions describes a bulk submission. Emails are persisted in
// chunks of BatchSize and job visibility is staggered by
// DelayBetweenBatches per batch to bound outbound throughput.
type BulkSendOptions struct {
	Emails              []SendOptions
	BatchSize           int           // default 10
	DelayBetweenBatches time.Duration // default 0 (no stagger)
}

// DeliverySnapshot is the read model returned by GetDeliveryStatus.
type DeliverySnapshot struct {
	Status       Status
	ErrorMessage string
	SentAt       *time.Time
	DeliveredAt  *time.Time
	OpenedAt     *time.Time
	ClickedAt    *time.Time
	BouncedAt    *time.Time
}
