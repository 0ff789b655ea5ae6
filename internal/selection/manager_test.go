package selection

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/starford/notedeck/internal/catalog"
	"github.com/starford/notedeck/internal/models"
)

type recordingRenderer struct {
	subfolders [][]string
	selected   []string
	notes      [][]models.Link
}

func (r *recordingRenderer) RenderSubfolders(subfolders []string, selected string) {
	r.subfolders = append(r.subfolders, subfolders)
	r.selected = append(r.selected, selected)
}

func (r *recordingRenderer) RenderNotes(notes []models.Link) {
	r.notes = append(r.notes, notes)
}

func testCatalog() *catalog.Catalog {
	return catalog.FromPaths([]string{
		"math/algebra/intro.html",
		"math/geometry/shapes.html",
		"cs/os/scheduling.html",
	})
}

func newTestManager(t *testing.T, store Store, opts ...ManagerOption) *Manager {
	t.Helper()
	c := testCatalog()
	m, err := NewManager(CatalogFunc(func() *catalog.Catalog { return c }), store, opts...)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManager_RequiresSource(t *testing.T) {
	if _, err := NewManager(nil, nil); err == nil {
		t.Fatal("expected error without catalog source")
	}
}

func TestSetFolder_ResetsSubfolder(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(t, store)

	m.SetFolder("math")
	m.SetSubfolder("algebra")
	if got := m.Current(); got.Subfolder != "algebra" {
		t.Fatalf("subfolder = %q, want algebra", got.Subfolder)
	}

	sel := m.SetFolder("cs")
	if sel.Subfolder != "" {
		t.Errorf("subfolder after folder change = %q, want empty", sel.Subfolder)
	}
	if _, ok, _ := store.Get(KeySubfolder); ok {
		t.Error("persisted subfolder should be removed, not blanked")
	}
	if v, _, _ := store.Get(KeyFolder); v != "cs" {
		t.Errorf("persisted folder = %q, want cs", v)
	}
}

func TestSetFolder_ResetInvariantForAllPriorStates(t *testing.T) {
	priors := []models.Selection{
		{},
		{Folder: "math"},
		{Folder: "math", Subfolder: "algebra"},
		{Folder: "cs", Subfolder: "os"},
		{Subfolder: "dangling"},
	}
	for _, prior := range priors {
		m := newTestManager(t, NewMemoryStore())
		m.SetFolder(prior.Folder)
		m.SetSubfolder(prior.Subfolder)

		if got := m.SetFolder("history"); got.Subfolder != "" {
			t.Errorf("prior %+v: subfolder = %q after SetFolder", prior, got.Subfolder)
		}
	}
}

func TestSetSubfolder_RequiresMatchingFolder(t *testing.T) {
	store := NewMemoryStore()
	r := &recordingRenderer{}
	m := newTestManager(t, store, WithRenderer(r))

	if got := m.SetSubfolder("algebra"); got != (models.Selection{}) {
		t.Errorf("subfolder without folder = %+v, want empty selection", got)
	}
	if _, ok, _ := store.Get(KeySubfolder); ok {
		t.Error("subfolder without folder must not be persisted")
	}
	if len(r.notes) != 0 {
		t.Errorf("ignored subfolder rendered notes: %v", r.notes)
	}

	m.SetFolder("cs")
	if got := m.SetSubfolder("algebra"); got != (models.Selection{Folder: "cs"}) {
		t.Errorf("foreign subfolder = %+v, want cs only", got)
	}
	if got := m.Notes(); len(got) != 1 || got[0].Href != "/note/cs/os/scheduling.html" {
		t.Errorf("notes = %v", got)
	}

	m.SetSubfolder("os")
	if got := m.SetSubfolder(""); got != (models.Selection{Folder: "cs"}) {
		t.Errorf("clearing subfolder = %+v", got)
	}
}

func TestRendererNotifications(t *testing.T) {
	r := &recordingRenderer{}
	m := newTestManager(t, NewMemoryStore(), WithRenderer(r))

	m.SetFolder("math")
	if len(r.subfolders) != 1 || !reflect.DeepEqual(r.subfolders[0], []string{"algebra", "geometry"}) {
		t.Fatalf("subfolders rendered = %v", r.subfolders)
	}
	if len(r.notes) != 1 || len(r.notes[0]) != 2 {
		t.Fatalf("notes rendered = %v", r.notes)
	}

	m.SetSubfolder("algebra")
	if len(r.subfolders) != 1 {
		t.Errorf("SetSubfolder must not re-render subfolders, got %d renders", len(r.subfolders))
	}
	want := []models.Link{{Href: "/note/math/algebra/intro.html", Label: "intro"}}
	if len(r.notes) != 2 || !reflect.DeepEqual(r.notes[1], want) {
		t.Errorf("notes after subfolder = %v, want %v", r.notes, want)
	}
}

func TestLoadPersisted(t *testing.T) {
	tests := []struct {
		name   string
		stored map[string]string
		want   models.Selection
	}{
		{name: "absent", want: models.Selection{}},
		{
			name:   "folder and subfolder",
			stored: map[string]string{KeyFolder: "math", KeySubfolder: "geometry"},
			want:   models.Selection{Folder: "math", Subfolder: "geometry"},
		},
		{
			name:   "stale subfolder from other folder",
			stored: map[string]string{KeyFolder: "cs", KeySubfolder: "algebra"},
			want:   models.Selection{Folder: "cs"},
		},
		{
			name:   "unknown folder",
			stored: map[string]string{KeyFolder: "history", KeySubfolder: "rome"},
			want:   models.Selection{},
		},
		{
			name:   "subfolder without folder",
			stored: map[string]string{KeySubfolder: "os"},
			want:   models.Selection{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			for k, v := range tt.stored {
				_ = store.Set(k, v)
			}
			m := newTestManager(t, store)
			got := m.LoadPersisted()
			if got != tt.want {
				t.Errorf("LoadPersisted = %+v, want %+v", got, tt.want)
			}
			if m.Current() != tt.want {
				t.Errorf("Current = %+v, want %+v", m.Current(), tt.want)
			}
		})
	}
}

func TestPersistAcrossManagers(t *testing.T) {
	store := NewMemoryStore()
	first := newTestManager(t, store)
	first.SetFolder("math")
	first.SetSubfolder("algebra")

	second := newTestManager(t, store)
	got := second.LoadPersisted()
	if got != (models.Selection{Folder: "math", Subfolder: "algebra"}) {
		t.Errorf("reloaded selection = %+v", got)
	}
	if notes := second.Notes(); len(notes) != 1 || notes[0].Label != "intro" {
		t.Errorf("notes = %v", notes)
	}
	if subs := second.Subfolders(); !reflect.DeepEqual(subs, []string{"algebra", "geometry"}) {
		t.Errorf("subfolders = %v", subs)
	}
}

func TestScenario_FolderSwitchClearsPersistedSubfolder(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(t, store)
	m.SetFolder("math")
	m.SetSubfolder("algebra")
	m.SetFolder("cs")

	reloaded := newTestManager(t, store).LoadPersisted()
	if reloaded.Folder != "cs" || reloaded.Subfolder != "" {
		t.Errorf("reloaded = %+v, want cs with empty subfolder", reloaded)
	}
}

type brokenStore struct{}

func (brokenStore) Get(string) (string, bool, error) { return "", false, errors.New("disabled") }
func (brokenStore) Set(string, string) error { return errors.New("disabled") }
func (brokenStore) Delete(string) error { return errors.New("disabled") }

func TestFallbackStore_DegradesToMemory(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := NewFallbackStore(brokenStore{}, logger)
	m := newTestManager(t, store, WithLogger(logger))

	m.SetFolder("math")
	m.SetSubfolder("geometry")
	if !store.Degraded() {
		t.Fatal("store should be degraded after primary failure")
	}

	got := newTestManager(t, store).LoadPersisted()
	if got != (models.Selection{Folder: "math", Subfolder: "geometry"}) {
		t.Errorf("in-memory selection = %+v", got)
	}
}

func TestFallbackStore_WritesThrough(t *testing.T) {
	primary := NewMemoryStore()
	store := NewFallbackStore(primary, nil)
	_ = store.Set(KeyFolder, "math")
	if v, ok, _ := primary.Get(KeyFolder); !ok || v != "math" {
		t.Errorf("primary value = %q, %v", v, ok)
	}
	_ = store.Delete(KeyFolder)
	if _, ok, _ := primary.Get(KeyFolder); ok {
		t.Error("primary key should be deleted")
	}
	if store.Degraded() {
		t.Error("healthy primary should not degrade")
	}
}
