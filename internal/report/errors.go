package report

import (
	"fmt"
	"strings"
)

// ValidationError reports empty required fields. No file is created before
// validation passes, so it carries no cleanup obligation.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// RenderError wraps a failure to compose or write the PDF.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render report: %v", e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }

// DeliveryError wraps a failed email send. Reason is the human-readable
// cause shown to the user ("Failed to send email: <reason>").
type DeliveryError struct {
	Reason string
	Err    error
}

func (e *DeliveryError) Error() string { return fmt.Sprintf("deliver report: %v", e.Err) }
func (e *DeliveryError) Unwrap() error { return e.Err }

// ServeError wraps a post-delivery integrity failure found while preparing
// the download ("Failed to download PDF: <reason>").
type ServeError struct {
	Err error
}

func (e *ServeError) Error() string { return fmt.Sprintf("serve report: %v", e.Err) }
func (e *ServeError) Unwrap() error { return e.Err }
