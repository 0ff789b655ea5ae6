package tui

import (
	"sync"

	"github.com/starford/notedeck/internal/models"
	"github.com/starford/notedeck/internal/selection"
)

// Lists receives the option lists the selection manager renders. Pass it to
// selection.WithRenderer and then to New.
type Lists struct {
	mu         sync.Mutex
	subfolders []string
	selected   string
	notes      []models.Link
}

var _ selection.Renderer = (*Lists)(nil)

// NewLists returns an empty render target.
func NewLists() *Lists {
	return &Lists{}
}

// RenderSubfolders implements selection.Renderer.
func (l *Lists) RenderSubfolders(subfolders []string, selected string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.subfolders = subfolders
	l.selected = selected
}

// RenderNotes implements selection.Renderer.
func (l *Lists) RenderNotes(notes []models.Link) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notes = notes
}

func (l *Lists) snapshot() ([]string, []models.Link) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subfolders, l.notes
}
