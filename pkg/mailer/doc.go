// Package mailer defines the transport boundary for outbound email.
//
// The pipeline composes and tracks emails itself; the only thing it needs
// from a provider is delivery of a fully-prepared message and the provider's
// message identifier for webhook correlation. Provider adapters live in
// subpackages (see resend).
package mailer
