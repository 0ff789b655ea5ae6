package index

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/notedeck/internal/selection"
	"github.com/starford/notedeck/internal/storage"
)

var _ selection.Store = (*Settings)(nil)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "notedeck-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
	if err := db.conn.QueryRow(`SELECT count(*) FROM settings`).Scan(&count); err != nil {
		t.Fatalf("settings table missing: %v", err)
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := NoteRow{Path: "cs/os/scheduling.html", Title: "Scheduling Basics", Checksum: "abc123", UpdatedAt: time.Now()}
	if err := db.UpsertNote(row); err != nil {
		t.Fatalf("UpsertNote: %v", err)
	}
	cs, err := db.GetChecksum("cs/os/scheduling.html")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "up.html", Title: "Old", Checksum: "1"})
	_ = db.UpsertNote(NoteRow{Path: "up.html", Title: "New", Checksum: "2"})

	records, err := db.ListCatalog()
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	if len(records) != 1 || records[0].Title != "New" {
		t.Errorf("records = %+v", records)
	}
}

func TestDeleteNote(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertNote(NoteRow{Path: "del.html", Checksum: "x"})
	if err := db.DeleteNote("del.html"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if cs, _ := db.GetChecksum("del.html"); cs != "" {
		t.Errorf("deleted note still has checksum %q", cs)
	}
	if err := db.DeleteNote("del.html"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestListCatalog_OrderedByPath(t *testing.T) {
	db := testDB(t)
	for _, p := range []string{"math/geometry/shapes.html", "cs/os/scheduling.html", "math/algebra/intro.html"} {
		_ = db.UpsertNote(NoteRow{Path: p, Checksum: p})
	}
	records, err := db.ListCatalog()
	if err != nil {
		t.Fatalf("ListCatalog: %v", err)
	}
	want := []string{"cs/os/scheduling.html", "math/algebra/intro.html", "math/geometry/shapes.html"}
	for i, r := range records {
		if r.Path != want[i] {
			t.Errorf("records[%d] = %q, want %q", i, r.Path, want[i])
		}
	}
}

func TestSettings(t *testing.T) {
	s := testDB(t).Settings()
	if _, ok, err := s.Get(selection.KeyFolder); ok || err != nil {
		t.Fatalf("Get on empty = %v, %v", ok, err)
	}
	if err := s.Set(selection.KeyFolder, "math"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(selection.KeyFolder, "cs"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if v, ok, _ := s.Get(selection.KeyFolder); !ok || v != "cs" {
		t.Errorf("Get = %q, %v", v, ok)
	}
	if err := s.Set(selection.KeySubfolder, ""); err != nil {
		t.Fatalf("Set empty: %v", err)
	}
	if v, ok, _ := s.Get(selection.KeySubfolder); !ok || v != "" {
		t.Errorf("empty value should be present, got %q, %v", v, ok)
	}
	if err := s.Delete(selection.KeySubfolder); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(selection.KeySubfolder); ok {
		t.Error("deleted key still present")
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	write := func(rel, content string) {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		_ = os.MkdirAll(filepath.Dir(abs), 0o755)
		if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("cs/os/scheduling.html", `<div class="fancy-title">Scheduling Basics</div>`)
	write("math/algebra/intro.html", "<p>no title</p>")

	stats, err := Sync(db, store, discardLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Indexed != 2 || stats.Removed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	records, _ := db.ListCatalog()
	if len(records) != 2 || records[0].Title != "Scheduling Basics" || records[1].Title != "" {
		t.Errorf("records = %+v", records)
	}

	// Unchanged files are skipped, removed ones are dropped.
	_ = os.Remove(filepath.Join(dir, "math", "algebra", "intro.html"))
	stats, err = Sync(db, store, discardLogger())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Indexed != 0 || stats.Removed != 1 {
		t.Errorf("second stats = %+v", stats)
	}
}
