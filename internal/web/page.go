package web

import (
	_ "embed"
	"html/template"
	"net/http"
)

//go:embed templates/form.html
var formHTML string

var formTmpl = template.Must(template.New("form").Parse(formHTML))

// formPage is the view state for the report form. Field values survive a
// failed submission so the user does not re-type them.
type formPage struct {
	Name         string
	Email        string
	Phone        string
	Allergies    string
	Symptoms     string
	DoctorEmail  string
	ErrorMessage string
}

// renderForm writes the form page. The form is always served with 200 —
// submission failures are part of the page, not HTTP-level errors.
func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, page formPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := formTmpl.Execute(w, page); err != nil {
		s.logger.Error("render form page", "error", err, logField(r))
	}
}
