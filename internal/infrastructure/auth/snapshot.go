package auth

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"
)

// Snapshotter captures page state for offline debugging. Every capture is
// best-effort and must never block or fail the calling state machine.
type Snapshotter struct {
	dir    string
	logger *slog.Logger
}

// NewSnapshotter wires the debug directory; an empty dir disables captures.
func NewSnapshotter(dir string, logger *slog.Logger) *Snapshotter {
	return &Snapshotter{dir: dir, logger: logger}
}

// Capture stores a screenshot of the current page state.
func (s *Snapshotter) Capture(page playwright.Page, name string) {
	if s == nil || s.dir == "" || page == nil {
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.debug("create debug dir", "error", err)
		return
	}

	path := filepath.Join(s.dir, name+".png")
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{Path: playwright.String(path)}); err != nil {
		s.debug("capture screenshot", "name", name, "error", err)
	}
}

// CaptureHTML stores the rendered document alongside a screenshot, for cases
// where markup matters more than pixels (missing form fields, etc.).
func (s *Snapshotter) CaptureHTML(page playwright.Page, name string) {
	s.Capture(page, name)

	if s == nil || s.dir == "" || page == nil {
		return
	}

	content, err := page.Content()
	if err != nil {
		s.debug("read page content", "name", name, "error", err)
		return
	}

	path := filepath.Join(s.dir, name+".html")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		s.debug("write page dump", "name", name, "error", err)
	}
}

func (s *Snapshotter) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
