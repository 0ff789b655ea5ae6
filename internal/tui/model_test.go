package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/starford/notedeck/internal/models"
	"github.com/starford/notedeck/internal/noteservice"
	"github.com/starford/notedeck/internal/search"
	"github.com/starford/notedeck/internal/selection"
	"github.com/starford/notedeck/internal/testutil"
)

func testModel(t *testing.T, store selection.Store, opts ...Option) *Model {
	t.Helper()
	db := testutil.TestDB(t)
	_, notes := testutil.Seed(t, db)
	svc := noteservice.NewService(notes, db, search.DefaultOptions(), testutil.Logger())
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	lists := NewLists()
	sel, err := selection.NewManager(svc, store, selection.WithRenderer(lists))
	if err != nil {
		t.Fatal(err)
	}
	return New(svc, sel, lists, opts...)
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestSelectFolderAndSubfolder(t *testing.T) {
	store := selection.NewMemoryStore()
	m := testModel(t, store)

	// Folders pane: "All folders", cs, math.
	press(m, "down", "down", "enter")
	if got := m.sel.Current().Folder; got != "math" {
		t.Fatalf("folder = %q, want math", got)
	}
	subfolders, notes := m.lists.snapshot()
	if strings.Join(subfolders, ",") != "algebra,geometry" || len(notes) != 2 {
		t.Fatalf("subfolders = %v notes = %v", subfolders, notes)
	}

	press(m, "tab", "down", "down", "enter")
	if got := m.sel.Current().Subfolder; got != "geometry" {
		t.Fatalf("subfolder = %q, want geometry", got)
	}
	if v, _, _ := store.Get(selection.KeySubfolder); v != "geometry" {
		t.Errorf("persisted subfolder = %q", v)
	}

	press(m, "tab", "enter")
	if m.Open() != "math/geometry/shapes.html" {
		t.Errorf("open = %q", m.Open())
	}
}

func TestRestoresPersistedSelection(t *testing.T) {
	store := selection.NewMemoryStore()
	_ = store.Set(selection.KeyFolder, "math")
	_ = store.Set(selection.KeySubfolder, "algebra")

	m := testModel(t, store)
	if got := m.sel.Current(); got != (models.Selection{Folder: "math", Subfolder: "algebra"}) {
		t.Errorf("selection = %+v", got)
	}
	if m.cursors[paneFolders] != 2 || m.cursors[paneSubfolders] != 1 {
		t.Errorf("cursors = %v", m.cursors)
	}
	if _, notes := m.lists.snapshot(); len(notes) != 1 || notes[0].Label != "intro" {
		t.Errorf("notes = %v", notes)
	}
}

func TestArrowNavigation(t *testing.T) {
	m := testModel(t, nil)
	m.openHref("/note/math/algebra/intro.html")

	press(m, "right")
	if m.Open() != "math/geometry/shapes.html" {
		t.Fatalf("after right open = %q", m.Open())
	}
	press(m, "right")
	if m.Open() != "math/geometry/shapes.html" {
		t.Errorf("right on last note moved to %q", m.Open())
	}
	press(m, "left", "left")
	if m.Open() != "cs/os/scheduling.html" {
		t.Errorf("after two lefts open = %q", m.Open())
	}
}

func TestArrowsIgnoredWhileSearching(t *testing.T) {
	m := testModel(t, nil)
	m.openHref("/note/math/algebra/intro.html")

	press(m, "/")
	if !m.input.Focused() {
		t.Fatal("search input should be focused")
	}
	press(m, "right", "left")
	if m.Open() != "math/algebra/intro.html" {
		t.Errorf("arrows navigated while typing: open = %q", m.Open())
	}
}

func TestSearchAndOpen(t *testing.T) {
	m := testModel(t, nil)

	press(m, "/", "s", "c", "h", "e", "d", "u", "l", "n", "g")
	if len(m.results) == 0 || m.results[0].Record.Path != "cs/os/scheduling.html" {
		t.Fatalf("results = %+v", m.results)
	}
	if !strings.Contains(m.View(), "cs/os/scheduling.html") {
		t.Error("view should list the result")
	}
	press(m, "enter")
	if m.Open() != "cs/os/scheduling.html" {
		t.Errorf("open = %q", m.Open())
	}
	if m.input.Focused() {
		t.Error("input should blur after opening a result")
	}
}

func TestSearchEscClears(t *testing.T) {
	m := testModel(t, nil)
	press(m, "/", "a", "l", "g")
	press(m, "esc")
	if m.input.Focused() || m.input.Value() != "" || m.results != nil {
		t.Errorf("esc left search state: focused=%v value=%q results=%v", m.input.Focused(), m.input.Value(), m.results)
	}
	press(m, "/", " ")
	if len(m.results) != 0 {
		t.Errorf("blank query returned %d results", len(m.results))
	}
}

func TestCopyLink(t *testing.T) {
	var copied string
	m := testModel(t, nil,
		WithBaseURL("http://localhost:8080/"),
		WithClipboard(func(s string) error { copied = s; return nil }),
	)

	press(m, "y")
	if !m.statusErr || copied != "" {
		t.Errorf("copy with nothing selected: status=%q copied=%q", m.status, copied)
	}

	m.openHref("/note/cs/os/scheduling.html")
	press(m, "y")
	if copied != "http://localhost:8080/note/cs/os/scheduling.html" {
		t.Errorf("copied = %q", copied)
	}

	m.copyText = func(string) error { return errors.New("no clipboard") }
	press(m, "y")
	if !m.statusErr || !strings.Contains(m.status, "no clipboard") {
		t.Errorf("status = %q", m.status)
	}
}

func TestHighlight(t *testing.T) {
	if got := highlight("intro", nil); got != "intro" {
		t.Errorf("no offsets changed label: %q", got)
	}
	got := highlight("intro", []int{0, 1})
	if !strings.Contains(got, "tro") {
		t.Errorf("unhighlighted tail missing: %q", got)
	}
}

func TestQuit(t *testing.T) {
	m := testModel(t, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
