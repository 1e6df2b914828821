package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// Artifact is the scoped guard for one generated report file. It owns the
// file's lifetime: whichever way the request exits, Remove runs exactly once
// and the file does not survive the request that created it.
type Artifact struct {
	path   string
	logger *slog.Logger

	removeOnce sync.Once
}

func newArtifact(path string, logger *slog.Logger) *Artifact {
	return &Artifact{path: path, logger: logger}
}

// Path returns the file's location in the working directory.
func (a *Artifact) Path() string { return a.path }

// Filename returns the download name, i.e. the base of the generated path.
func (a *Artifact) Filename() string { return filepath.Base(a.path) }

// Verify guards against silent render corruption before the file is
// streamed to the client: the file must exist, be non-empty, and parse as a
// structurally valid PDF.
func (a *Artifact) Verify() error {
	info, err := os.Stat(a.path)
	if err != nil {
		return fmt.Errorf("PDF file was not generated properly: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("generated PDF file is empty")
	}
	if err := pdfapi.ValidateFile(a.path, nil); err != nil {
		return fmt.Errorf("generated PDF failed validation: %w", err)
	}
	return nil
}

// Remove deletes the file. It is safe to call on every exit path — only the
// first call acts, and deletion errors are logged, never surfaced.
func (a *Artifact) Remove() {
	a.removeOnce.Do(func() {
		if err := os.Remove(a.path); err != nil && !os.IsNotExist(err) {
			a.logger.Error("cleanup failed", "path", a.path, "error", err)
		}
	})
}
