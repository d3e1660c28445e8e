package session_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"graphchat/internal/session"
)

func testStores(t *testing.T) map[string]session.Store {
	t.Helper()
	return map[string]session.Store{
		"file":   session.NewFileStore(filepath.Join(t.TempDir(), "nested", "session.json")),
		"memory": session.NewMemoryStore(),
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(); !errors.Is(err, session.ErrNotFound) {
				t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
			}

			if err := store.Save("abc123"); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			got, err := store.Get()
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != "abc123" {
				t.Errorf("Get() = %q, want %q", got, "abc123")
			}

			// Save overwrites.
			if err := store.Save("def456"); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if got, _ := store.Get(); got != "def456" {
				t.Errorf("Get() after overwrite = %q, want %q", got, "def456")
			}

			if err := store.Clear(); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if _, err := store.Get(); !errors.Is(err, session.ErrNotFound) {
				t.Errorf("Get() after Clear error = %v, want ErrNotFound", err)
			}

			// Clearing twice is fine.
			if err := store.Clear(); err != nil {
				t.Errorf("second Clear() error = %v", err)
			}
		})
	}
}

func TestFileStoreDurable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	if err := session.NewFileStore(path).Save("persisted"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// A fresh store over the same file sees the value.
	got, err := session.NewFileStore(path).Get()
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "persisted" {
		t.Errorf("Get() = %q, want %q", got, "persisted")
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := session.NewFileStore(path).Get()
	if err == nil || errors.Is(err, session.ErrNotFound) {
		t.Errorf("Get() error = %v, want decode error", err)
	}
}
