// Package mail defines the interface for report delivery and provides the
// SMTP-backed implementation.
package mail

import "context"

// ReportParams holds the data needed to email one generated report.
type ReportParams struct {
	AttachmentPath string // rendered PDF on disk; must exist and be readable
	PatientName    string // used in the subject and body
	To             string // doctor's address
}

// Sender is the interface the report pipeline uses to deliver email.
// Tests inject a stub that records calls without hitting the network.
type Sender interface {
	// SendReport sends the report PDF as an attachment to the doctor.
	// Exactly one send attempt is made; there is no retry. Failures are
	// returned as *SendError with a human-readable Reason.
	SendReport(ctx context.Context, p ReportParams) error
}

// Reasons make up the closed set of user-facing delivery failure causes.
// The web layer surfaces them verbatim as "Failed to send email: <reason>".
const (
	ReasonMissingAddress = "sender and recipient email addresses are required"
	ReasonBadRecipient   = "recipient email address is not valid"
	ReasonAttachment     = "report file is missing or unreadable"
	ReasonAuth           = "mail relay rejected the sender credentials"
	ReasonTimeout        = "connection to the mail relay timed out"
	ReasonConnect        = "could not connect to the mail relay"
	ReasonTransport      = "mail transport error"
)

// SendError is the structured failure returned by SendReport. Reason is one
// of the Reason* constants; Err carries the underlying cause for logs.
type SendError struct {
	Reason string
	Err    error
}

func (e *SendError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *SendError) Unwrap() error { return e.Err }
