package web_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"patientreport/internal/mail"
	"patientreport/internal/report"
	"patientreport/internal/token"
	"patientreport/internal/web"
)

const testSecret = "test-secret-not-for-production"

// ─── STUBS ────────────────────────────────────────────────────────────────────

// stubSender satisfies mail.Sender. Fields may be set per-test to control
// behaviour.
type stubSender struct {
	sendErr error
	calls   int

	// truncateAttachment simulates render corruption discovered only after
	// delivery: the relay accepted the message but the local file is bad.
	truncateAttachment bool
}

func (s *stubSender) SendReport(_ context.Context, p mail.ReportParams) error {
	s.calls++
	if s.sendErr != nil {
		return s.sendErr
	}
	if s.truncateAttachment {
		if err := os.Truncate(p.AttachmentPath, 0); err != nil {
			return err
		}
	}
	return nil
}

// ─── HELPERS ──────────────────────────────────────────────────────────────────

type testServer struct {
	handler  http.Handler
	sender   *stubSender
	resolver *token.Resolver
	workDir  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerAt(t, filepath.Join(t.TempDir(), "temp"))
}

// newTestServerAt wires the real pipeline against workDir, so tests can hand
// it a path the renderer cannot use.
func newTestServerAt(t *testing.T, workDir string) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := &stubSender{}
	resolver := token.NewResolver(testSecret)
	pipeline := report.New(report.NewRenderer(workDir), sender, logger)

	return &testServer{
		handler:  web.NewServer(resolver, pipeline, logger),
		sender:   sender,
		resolver: resolver,
		workDir:  workDir,
	}
}

func (ts *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (ts *testServer) postForm(t *testing.T, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate_pdf", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func validForm() url.Values {
	return url.Values{
		"name":         {"Jane Doe"},
		"email":        {"jane@example.com"},
		"phone":        {"555-0101"},
		"allergies":    {"penicillin"},
		"symptoms":     {"persistent cough"},
		"doctor_email": {"doctor@example.com"},
	}
}

func (ts *testServer) assertWorkDirEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(ts.workDir)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatal(err)
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("working directory not empty: %v", names)
	}
}

// ─── INDEX ────────────────────────────────────────────────────────────────────

func TestIndexEmptyForm(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.get(t, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `name="doctor_email"`) {
		t.Error("form is missing the doctor_email field")
	}
	if strings.Contains(body, "Invalid or expired token.") {
		t.Error("error banner shown without a token")
	}
}

func TestIndexSymptomsQueryDefault(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.get(t, "/?symptoms=sore+throat")
	if !strings.Contains(rec.Body.String(), ">sore throat</textarea>") {
		t.Error("symptoms query parameter did not seed the form")
	}
}

func TestIndexValidTokenPrefills(t *testing.T) {
	ts := newTestServer(t)

	signed, err := ts.resolver.Issue(token.Claims{
		Name:      "Jane Doe",
		Email:     "jane@example.com",
		Contact:   "555-0101",
		Allergies: "penicillin",
		Symptoms:  "persistent cough",
	}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := ts.get(t, "/?token="+url.QueryEscape(signed))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`value="Jane Doe"`,
		`value="jane@example.com"`,
		`value="555-0101"`, // contact claim maps to the phone field
		`value="penicillin"`,
		">persistent cough</textarea>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("prefilled form is missing %s", want)
		}
	}
}

func TestIndexTokenSymptomsWinOverQuery(t *testing.T) {
	ts := newTestServer(t)

	signed, err := ts.resolver.Issue(token.Claims{Name: "Jane Doe", Symptoms: "from token"}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	rec := ts.get(t, "/?symptoms=from+query&token="+url.QueryEscape(signed))
	body := rec.Body.String()
	if !strings.Contains(body, ">from token</textarea>") {
		t.Error("token symptoms did not take precedence")
	}
}

func TestIndexInvalidToken(t *testing.T) {
	ts := newTestServer(t)

	expired, err := ts.resolver.Issue(token.Claims{Name: "Jane Doe"}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for name, tok := range map[string]string{
		"expired": expired,
		"garbage": "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			rec := ts.get(t, "/?token="+url.QueryEscape(tok))
			body := rec.Body.String()
			if !strings.Contains(body, "Invalid or expired token.") {
				t.Error("missing invalid token banner")
			}
			if strings.Contains(body, "Jane Doe") {
				t.Error("rejected token still populated fields")
			}
		})
	}
}

// ─── GENERATE ─────────────────────────────────────────────────────────────────

func TestGeneratePDFSuccess(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.postForm(t, validForm())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, "_report.pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("response body is not a PDF")
	}
	if ts.sender.calls != 1 {
		t.Errorf("send attempts = %d, want exactly 1", ts.sender.calls)
	}
	ts.assertWorkDirEmpty(t)
}

func TestGeneratePDFMissingRequiredFields(t *testing.T) {
	for _, field := range []string{"name", "email", "doctor_email"} {
		t.Run("missing "+field, func(t *testing.T) {
			ts := newTestServer(t)

			form := validForm()
			form.Set(field, "")
			rec := ts.postForm(t, form)

			if !strings.Contains(rec.Body.String(), "Please fill in all required fields.") {
				t.Error("missing validation banner")
			}
			if ts.sender.calls != 0 {
				t.Error("delivery attempted despite validation failure")
			}
			ts.assertWorkDirEmpty(t)
		})
	}
}

func TestGeneratePDFDeliveryFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.sender.sendErr = &mail.SendError{Reason: mail.ReasonAuth}

	rec := ts.postForm(t, validForm())
	body := rec.Body.String()
	if !strings.Contains(body, "Failed to send email: "+mail.ReasonAuth) {
		t.Errorf("missing delivery failure banner, body: %.200s", body)
	}
	// The user's input survives onto the re-rendered form — including the
	// doctor's address.
	for _, want := range []string{
		`value="Jane Doe"`,
		`value="doctor@example.com"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("re-rendered form is missing %s", want)
		}
	}
	ts.assertWorkDirEmpty(t)
}

func TestGeneratePDFRenderFailure(t *testing.T) {
	// Occupy the working directory's path with a regular file so the
	// renderer cannot create it. The user sees the generic message with no
	// internal detail, and no delivery is attempted.
	workDir := filepath.Join(t.TempDir(), "temp")
	if err := os.WriteFile(workDir, []byte("in the way"), 0o644); err != nil {
		t.Fatal(err)
	}
	ts := newTestServerAt(t, workDir)

	rec := ts.postForm(t, validForm())
	body := rec.Body.String()
	if !strings.Contains(body, "Failed to generate report.") {
		t.Errorf("missing generic render failure banner, body: %.200s", body)
	}
	if strings.Contains(body, "in the way") || strings.Contains(body, workDir) {
		t.Error("internal render error detail leaked onto the page")
	}
	if ts.sender.calls != 0 {
		t.Error("delivery attempted despite render failure")
	}
}

func TestGeneratePDFMalformedForm(t *testing.T) {
	ts := newTestServer(t)

	// "%zz" is an invalid percent-encoding, so ParseForm fails.
	req := httptest.NewRequest(http.MethodPost, "/generate_pdf", strings.NewReader("%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "Failed to generate report.") {
		t.Error("missing generic failure banner")
	}
	if ts.sender.calls != 0 {
		t.Error("delivery attempted despite malformed submission")
	}
	ts.assertWorkDirEmpty(t)
}

func TestGeneratePDFServeFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.sender.truncateAttachment = true

	rec := ts.postForm(t, validForm())
	if !strings.Contains(rec.Body.String(), "Failed to download PDF:") {
		t.Error("missing serve failure banner")
	}
	if ct := rec.Header().Get("Content-Type"); ct == "application/pdf" {
		t.Error("corrupt file was released for download")
	}
	ts.assertWorkDirEmpty(t)
}
