// Package testutil provides shared test helpers for setting up note
// directories and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/notedeck/internal/index"
	"github.com/starford/notedeck/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "notedeck-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestNotes creates a temporary notes directory with a storage provider.
func TestNotes(t *testing.T, extensions ...string) (string, *storage.FS) {
	t.Helper()
	store, err := storage.NewFS(t.TempDir(), extensions...)
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store
}

// WriteNote writes content to rel (forward-slash path) under root.
func WriteNote(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// Logger returns a logger that discards output.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// SampleNotes are the notes most tests start from.
var SampleNotes = map[string]string{
	"math/algebra/intro.html":   "<p>algebra</p>",
	"math/geometry/shapes.html": `<div class="fancy-title">Shapes and Areas</div>`,
	"cs/os/scheduling.html":     `<html><head><title>Scheduling Basics</title></head><body>rr</body></html>`,
}

// Seed writes SampleNotes, syncs them into db and returns the notes root.
func Seed(t *testing.T, db *index.DB) (string, *storage.FS) {
	t.Helper()
	root, store := TestNotes(t)
	for rel, content := range SampleNotes {
		WriteNote(t, root, rel, content)
	}
	if _, err := index.Sync(db, store, Logger()); err != nil {
		t.Fatal(err)
	}
	return root, store
}
