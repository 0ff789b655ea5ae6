package selection

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/starford/notedeck/internal/catalog"
	"github.com/starford/notedeck/internal/models"
)

// CatalogSource supplies the catalog snapshot the selection applies to.
type CatalogSource interface {
	Catalog() *catalog.Catalog
}

// CatalogFunc adapts a function to CatalogSource.
type CatalogFunc func() *catalog.Catalog

// Catalog implements CatalogSource.
func (f CatalogFunc) Catalog() *catalog.Catalog { return f() }

// Renderer receives recomputed option lists after a selection change.
type Renderer interface {
	RenderSubfolders(subfolders []string, selected string)
	RenderNotes(notes []models.Link)
}

// Manager owns the current Selection. Every mutation is persisted to the
// Store before the renderer is notified.
type Manager struct {
	source   CatalogSource
	store    Store
	renderer Renderer
	logger   *slog.Logger

	mu  sync.Mutex
	sel models.Selection
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRenderer sets the render target.
func WithRenderer(r Renderer) ManagerOption {
	return func(m *Manager) { m.renderer = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager over source, persisting into store. A nil
// store keeps the selection in memory only.
func NewManager(source CatalogSource, store Store, opts ...ManagerOption) (*Manager, error) {
	if source == nil {
		return nil, errors.New("selection: catalog source is required")
	}
	m := &Manager{source: source, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	if store == nil {
		store = NewMemoryStore()
	}
	m.store = store
	return m, nil
}

// Current returns the current selection.
func (m *Manager) Current() models.Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sel
}

// LoadPersisted restores the selection from the store and makes it current.
// The folder is kept only if the catalog still has it; the subfolder only if
// it belongs to that folder.
func (m *Manager) LoadPersisted() models.Selection {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.source.Catalog()
	folder := m.get(KeyFolder)
	subfolder := m.get(KeySubfolder)

	var sel models.Selection
	if c.HasFolder(folder) {
		sel.Folder = folder
		if subfolder != "" && contains(catalog.DeriveSubfolders(c, folder), subfolder) {
			sel.Subfolder = subfolder
		}
	}
	m.sel = sel
	m.renderAll(c)
	return sel
}

// SetFolder selects folder, clears the subfolder, and re-renders subfolders
// and notes.
func (m *Manager) SetFolder(folder string) models.Selection {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sel = models.Selection{Folder: folder}
	m.set(KeyFolder, folder)
	m.del(KeySubfolder)

	m.renderAll(m.source.Catalog())
	return m.sel
}

// SetSubfolder selects subfolder within the current folder and re-renders
// the notes. A subfolder the current folder does not have, including any
// subfolder while no folder is selected, is ignored and the selection is
// returned unchanged. An empty subfolder clears the choice.
func (m *Manager) SetSubfolder(subfolder string) models.Selection {
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.source.Catalog()
	if subfolder != "" && !contains(catalog.DeriveSubfolders(c, m.sel.Folder), subfolder) {
		m.logger.Debug("selection: subfolder ignored",
			slog.String("folder", m.sel.Folder), slog.String("subfolder", subfolder))
		return m.sel
	}

	m.sel.Subfolder = subfolder
	m.set(KeySubfolder, subfolder)

	if m.renderer != nil {
		m.renderer.RenderNotes(catalog.Links(catalog.Filter(c, m.sel)))
	}
	return m.sel
}

// Subfolders returns the subfolders of the current folder.
func (m *Manager) Subfolders() []string {
	sel := m.Current()
	return catalog.DeriveSubfolders(m.source.Catalog(), sel.Folder)
}

// Notes returns the links matching the current selection.
func (m *Manager) Notes() []models.Link {
	sel := m.Current()
	return catalog.Links(catalog.Filter(m.source.Catalog(), sel))
}

func (m *Manager) renderAll(c *catalog.Catalog) {
	if m.renderer == nil {
		return
	}
	m.renderer.RenderSubfolders(catalog.DeriveSubfolders(c, m.sel.Folder), m.sel.Subfolder)
	m.renderer.RenderNotes(catalog.Links(catalog.Filter(c, m.sel)))
}

func (m *Manager) get(key string) string {
	v, ok, err := m.store.Get(key)
	if err != nil {
		m.logger.Warn("selection: read failed", slog.String("key", key), slog.String("error", err.Error()))
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (m *Manager) set(key, value string) {
	if err := m.store.Set(key, value); err != nil {
		m.logger.Warn("selection: write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func (m *Manager) del(key string) {
	if err := m.store.Delete(key); err != nil {
		m.logger.Warn("selection: delete failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
