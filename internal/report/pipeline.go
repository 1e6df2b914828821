// Package report implements the document-generation-and-delivery pipeline:
// validate the submitted fields, render the PDF, email it to the doctor, and
// hand the file back for download — with the generated file guaranteed to be
// removed on every exit path.
package report

import (
	"context"
	"errors"
	"log/slog"

	"patientreport/internal/mail"
)

// Request is one patient submission. It lives for the duration of a single
// HTTP request and is never persisted.
type Request struct {
	Name        string
	Email       string
	Phone       string
	Allergies   string
	Symptoms    string
	DoctorEmail string
}

// MissingFields reports which required fields are empty.
func (r Request) MissingFields() []string {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.Email == "" {
		missing = append(missing, "email")
	}
	if r.DoctorEmail == "" {
		missing = append(missing, "doctor_email")
	}
	return missing
}

// Pipeline orchestrates Validate → Render → Deliver. Delivery success is a
// precondition for releasing the artifact: the PDF is only handed back for
// download once the doctor's copy has been accepted by the relay.
type Pipeline struct {
	renderer *Renderer
	sender   mail.Sender
	logger   *slog.Logger
}

// New wires the pipeline with its renderer and mail sender.
func New(renderer *Renderer, sender mail.Sender, logger *slog.Logger) *Pipeline {
	return &Pipeline{renderer: renderer, sender: sender, logger: logger}
}

// Generate runs the pipeline for one submission. On success the returned
// Artifact is live on disk and the caller owns its cleanup (defer
// Artifact.Remove). On any error the file — if one was created — has
// already been removed and the error is one of *ValidationError,
// *RenderError, or *DeliveryError.
func (p *Pipeline) Generate(ctx context.Context, req Request) (*Artifact, error) {
	if missing := req.MissingFields(); len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	path, err := p.renderer.Render(req)
	if err != nil {
		p.logger.Error("render failed", "patient", req.Name, "error", err)
		return nil, &RenderError{Err: err}
	}
	art := newArtifact(path, p.logger)

	err = p.sender.SendReport(ctx, mail.ReportParams{
		AttachmentPath: art.Path(),
		PatientName:    req.Name,
		To:             req.DoctorEmail,
	})
	if err != nil {
		art.Remove()
		p.logger.Error("delivery failed", "recipient", req.DoctorEmail, "error", err)

		reason := err.Error()
		var sendErr *mail.SendError
		if errors.As(err, &sendErr) {
			reason = sendErr.Reason
		}
		return nil, &DeliveryError{Reason: reason, Err: err}
	}

	p.logger.Info("report delivered", "recipient", req.DoctorEmail, "file", art.Filename())
	return art, nil
}
