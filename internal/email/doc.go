// Package email implements the asynchronous email delivery pipeline:
// composing templated messages, submitting them to the durable send queue,
// dispatching queued sends through a transport provider, and applying
// provider-reported delivery status transitions to the delivery log.
//
// One EmailLog row is persisted per send attempt and moves through a closed
// state machine:
//
//	PENDING -> SENT | FAILED
//	FAILED  -> PENDING            (explicit retry only)
//	SENT    -> DELIVERED | OPENED | CLICKED | BOUNCED
//
// The four post-SENT states are applied last-write-wins from provider
// callbacks. A log that reached SENT or beyond is never dispatched again,
// which keeps processing at-most-once even though the underlying queue is
// at-least-once. A FAILED log, however, remains dispatchable: the queue's
// own retry/backoff silently re-attempts the transport call after the
// dispatcher has already marked the log FAILED (see Dispatcher.Process).
package email
