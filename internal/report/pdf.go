package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

// Renderer writes patient reports as PDF files into a shared working
// directory. The directory is created on first use; files placed there are
// transient and removed before the request that created them concludes.
type Renderer struct {
	workDir string

	// now is swappable in tests to pin the footer timestamp.
	now func() time.Time
}

// NewRenderer returns a Renderer writing into workDir.
func NewRenderer(workDir string) *Renderer {
	return &Renderer{workDir: workDir, now: time.Now}
}

// Render composes the report PDF for req and writes it to a uniquely named
// file. The filename is derived from the sanitized patient name, a
// second-resolution timestamp, and a short random suffix so that identical
// patients submitting within the same second cannot collide.
func (rd *Renderer) Render(req Request) (string, error) {
	if err := os.MkdirAll(rd.workDir, 0o755); err != nil {
		return "", fmt.Errorf("create working directory: %w", err)
	}

	now := rd.now()
	path := filepath.Join(rd.workDir, reportFilename(req.Name, now))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(76, 175, 80)
	pdf.CellFormat(0, 15, "Medical Report", "", 1, "C", false, 0, "")

	// Subtitle
	pdf.SetFont("Arial", "I", 12)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 8, "Patient Health Summary", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Patient information section
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 8, "Patient Information", "", 1, "L", false, 0, "")

	pdf.SetDrawColor(76, 175, 80)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(3)

	pdf.SetTextColor(66, 66, 66)
	infoItems := []struct{ label, value string }{
		{"Name", req.Name},
		{"Email", req.Email},
		{"Phone", req.Phone},
		{"Allergies", req.Allergies},
	}
	for _, item := range infoItems {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(30, 8, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 8, item.value, "", 1, "L", false, 0, "")
	}

	// Symptoms section (free text, wrapped)
	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(33, 33, 33)
	pdf.CellFormat(0, 8, "Symptoms", "", 1, "L", false, 0, "")

	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(66, 66, 66)
	pdf.MultiCell(0, 8, req.Symptoms, "", "L", false)

	// Footer with generation timestamp
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 10, "Generated on "+now.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		os.Remove(path) // a failed write can leave a partial file behind
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return path, nil
}

// reportFilename builds the unique per-request filename. Spaces in the
// patient name become underscores; the uuid fragment resolves same-second
// collisions for identical names.
func reportFilename(name string, now time.Time) string {
	sanitized := strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("%s_%s_%s_report.pdf",
		sanitized,
		now.Format("20060102_150405"),
		uuid.NewString()[:8],
	)
}
