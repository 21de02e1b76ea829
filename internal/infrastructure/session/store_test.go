package session

import (
	"os"
	"path/filepath"
	"testing"

	"ReviewScanner/internal/domain"
)

func TestLoadMissingArtifact(t *testing.T) {
	t.Parallel()

	store := NewFileStore(filepath.Join(t.TempDir(), "cookies.json"), nil)

	if _, ok := store.Load(); ok {
		t.Fatal("missing artifact must be reported as absent")
	}
}

func TestLoadCorruptArtifact(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewFileStore(path, nil)
	if _, ok := store.Load(); ok {
		t.Fatal("corrupt artifact must be treated as absent, not as an error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "auth", "cookies.json")
	store := NewFileStore(path, nil)

	state := domain.SessionState{Cookies: []domain.Cookie{
		{Name: "SID", Value: "abc123", Domain: ".google.com", Path: "/", Secure: true},
		{Name: "HSID", Value: "def456", Domain: ".google.com", Path: "/", HTTPOnly: true},
	}}

	if err := store.Save(state); err != nil {
		t.Fatalf("save session: %v", err)
	}

	loaded, ok := store.Load()
	if !ok {
		t.Fatal("saved artifact must be loadable")
	}
	if len(loaded.Cookies) != 2 {
		t.Fatalf("expected 2 cookies, got %d", len(loaded.Cookies))
	}
	if loaded.Cookies[0].Name != "SID" || loaded.Cookies[0].Value != "abc123" {
		t.Fatalf("unexpected first cookie: %+v", loaded.Cookies[0])
	}
}

func TestLoadEmptyCookieSet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte(`{"cookies":[]}`), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store := NewFileStore(path, nil)
	if _, ok := store.Load(); ok {
		t.Fatal("an empty cookie set carries no session and must read as absent")
	}
}
