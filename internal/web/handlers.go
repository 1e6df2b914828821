package web

import (
	"errors"
	"net/http"

	"patientreport/internal/report"
)

// ─── GET / ────────────────────────────────────────────────────────────────────

// handleIndex serves the report form. An optional signed token pre-fills the
// fields; an optional symptoms query parameter seeds the symptoms box when
// no token (or a token without symptoms) is given. A rejected token never
// populates any field.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := formPage{Symptoms: q.Get("symptoms")}

	if tok := q.Get("token"); tok != "" {
		claims, err := s.resolver.Decode(tok)
		if err != nil {
			// Expired, forged, and malformed tokens all land here; the page
			// does not say which. Logs carry the cause.
			s.logger.Warn("prefill token rejected", "error", err, logField(r))
			s.renderForm(w, r, formPage{ErrorMessage: "Invalid or expired token."})
			return
		}
		page.Name = claims.Name
		page.Email = claims.Email
		page.Phone = claims.Contact
		page.Allergies = claims.Allergies
		if claims.Symptoms != "" {
			page.Symptoms = claims.Symptoms
		}
	}

	s.renderForm(w, r, page)
}

// ─── POST /generate_pdf ───────────────────────────────────────────────────────

// handleGeneratePDF runs the pipeline for one submission and either streams
// the generated PDF back as a download or re-renders the form with an error
// message. The file is removed once the response has been written, whichever
// way the request exits.
func (s *Server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.logger.Warn("malformed form submission", "error", err, logField(r))
		s.renderForm(w, r, formPage{ErrorMessage: "Failed to generate report."})
		return
	}

	req := report.Request{
		Name:        r.PostFormValue("name"),
		Email:       r.PostFormValue("email"),
		Phone:       r.PostFormValue("phone"),
		Allergies:   r.PostFormValue("allergies"),
		Symptoms:    r.PostFormValue("symptoms"),
		DoctorEmail: r.PostFormValue("doctor_email"),
	}

	art, err := s.pipeline.Generate(r.Context(), req)
	if err != nil {
		page := pageFromRequest(req)
		page.ErrorMessage = submissionErrorMessage(err)
		s.renderForm(w, r, page)
		return
	}
	defer art.Remove()

	// Delivery succeeded — guard against silent render corruption before
	// releasing the file to the patient.
	if err := art.Verify(); err != nil {
		sErr := &report.ServeError{Err: err}
		s.logger.Error("download blocked", "error", sErr, "file", art.Filename(), logField(r))
		page := pageFromRequest(req)
		page.ErrorMessage = "Failed to download PDF: " + err.Error()
		s.renderForm(w, r, page)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+art.Filename()+`"`)
	http.ServeFile(w, r, art.Path())
}

// pageFromRequest carries the submitted values back onto the form so a
// failed submission does not wipe the user's input.
func pageFromRequest(req report.Request) formPage {
	return formPage{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Allergies:   req.Allergies,
		Symptoms:    req.Symptoms,
		DoctorEmail: req.DoctorEmail,
	}
}

// submissionErrorMessage maps a pipeline error to the user-facing banner.
// Render failures stay generic; the detail goes to the logs only.
func submissionErrorMessage(err error) string {
	var vErr *report.ValidationError
	if errors.As(err, &vErr) {
		return "Please fill in all required fields."
	}
	var dErr *report.DeliveryError
	if errors.As(err, &dErr) {
		return "Failed to send email: " + dErr.Reason
	}
	return "Failed to generate report."
}
