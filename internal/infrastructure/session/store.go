package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ReviewScanner/internal/domain"
	"ReviewScanner/internal/ports"
)

// FileStore persists the browser session artifact as one JSON file. A missing
// or corrupt artifact is reported as absent, never as an error: failure to
// restore a session only forces anonymous-mode extraction.
type FileStore struct {
	path   string
	logger *slog.Logger
}

var _ ports.SessionStore = (*FileStore)(nil)

// NewFileStore wires the artifact location.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the cookie collection as a single unit.
func (s *FileStore) Load() (domain.SessionState, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.debug("session artifact unreadable", "path", s.path, "error", err)
		}
		return domain.SessionState{}, false
	}

	var state domain.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		s.debug("session artifact corrupt, treating as absent", "path", s.path, "error", err)
		return domain.SessionState{}, false
	}

	if len(state.Cookies) == 0 {
		return domain.SessionState{}, false
	}

	return state, true
}

// Save writes the cookie collection, replacing any previous artifact.
func (s *FileStore) Save(state domain.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session artifact: %w", err)
	}

	return nil
}

func (s *FileStore) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
