package email

// Status is the lifecycle state of an EmailLog.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSent      Status = "SENT"
	StatusFailed    Status = "FAILED"
	StatusDelivered Status = "DELIVERED"
	StatusOpened    Status = "OPENED"
	StatusClicked   Status = "CLICKED"
	StatusBounced   Status = "BOUNCED"
)

// callbackStatuses are the post-SENT states reported by provider callbacks.
// They overwrite each other last-write-wins: an OPENED arriving after
// BOUNCED is applied as-is, since providers deliver events out of order.
var callbackStatuses = map[Status]struct{}{
	StatusDelivered: {},
	StatusOpened:    {},
	StatusClicked:   {},
	StatusBounced:   {},
}

// CanTransition reports whether moving from one status to another is a
// valid step on the delivery state machine.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusSent || to == StatusFailed
	case StatusFailed:
		// Only the explicit retry operation resets a failed log.
		return to == StatusPending
	case StatusSent:
		_, ok := callbackStatuses[to]
		return ok
	case StatusDelivered, StatusOpened, StatusClicked, StatusBounced:
		_, ok := callbackStatuses[to]
		return ok
	}
	return false
}

// earlyCallback reports whether a rejected transition looks like a provider
// callback racing ahead of the dispatcher's own status commit: the log still
// reads PENDING or FAILED while the provider already reports a send outcome.
// Such events succeed on a later delivery attempt.
func earlyCallback(from, to Status) bool {
	if from != StatusPending && from != StatusFailed {
		return false
	}
	if to == StatusSent {
		return true
	}
	_, ok := callbackStatuses[to]
	return ok
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSent, StatusFailed,
		StatusDelivered, StatusOpened, StatusClicked, StatusBounced:
		return true
	}
	return false
}
