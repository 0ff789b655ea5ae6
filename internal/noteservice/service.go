// Package noteservice serves the current catalog snapshot, its search engine
// and rendered note content to the HTTP, MCP and terminal front ends.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/starford/notedeck/internal/apperr"
	"github.com/starford/notedeck/internal/catalog"
	"github.com/starford/notedeck/internal/checksum"
	"github.com/starford/notedeck/internal/index"
	"github.com/starford/notedeck/internal/models"
	"github.com/starford/notedeck/internal/parser"
	"github.com/starford/notedeck/internal/search"
	"github.com/starford/notedeck/internal/storage"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path     string        `json:"path"`
	Title    string        `json:"title"`
	Format   parser.Format `json:"format"`
	Content  string        `json:"content"`
	Checksum string        `json:"checksum"`
	Prev     *models.Link  `json:"prev,omitempty"`
	Next     *models.Link  `json:"next,omitempty"`
}

// CatalogLister is the slice of the index the service reads the catalog from.
type CatalogLister interface {
	ListCatalog() ([]models.NoteRecord, error)
}

var _ CatalogLister = (*index.DB)(nil)

type snapshot struct {
	catalog  *catalog.Catalog
	engine   *search.Engine
	loadedAt time.Time
}

// Service holds the current catalog snapshot. Readers never block on a
// reload; they see either the old or the new snapshot as a whole.
type Service struct {
	store  storage.Provider
	index  CatalogLister
	opts   search.Options
	logger *slog.Logger

	snap  atomic.Pointer[snapshot]
	group singleflight.Group
}

// NewService creates a service with an empty catalog. Call Reload to load it.
func NewService(store storage.Provider, idx CatalogLister, opts search.Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, index: idx, opts: opts, logger: logger}
	empty := catalog.New(nil)
	s.snap.Store(&snapshot{catalog: empty, engine: search.NewEngine(empty, opts)})
	return s
}

// Reload rebuilds the catalog and search engine from the index. Concurrent
// calls share one rebuild.
func (s *Service) Reload(ctx context.Context) (*catalog.Catalog, error) {
	v, err, _ := s.group.Do("reload", func() (interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		records, err := s.index.ListCatalog()
		if err != nil {
			return nil, fmt.Errorf("noteservice: reload: %w", err)
		}
		c := catalog.New(records)
		s.snap.Store(&snapshot{
			catalog:  c,
			engine:   search.NewEngine(c, s.opts),
			loadedAt: time.Now(),
		})
		s.logger.Debug("noteservice: catalog reloaded", slog.Int("notes", c.Len()))
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*catalog.Catalog), nil
}

// Ready reports whether a catalog has been loaded at least once.
func (s *Service) Ready() bool {
	return !s.snap.Load().loadedAt.IsZero()
}

// Catalog returns the current snapshot. It satisfies selection.CatalogSource.
func (s *Service) Catalog() *catalog.Catalog {
	return s.snap.Load().catalog
}

// Search runs query against the current snapshot.
func (s *Service) Search(query string) []search.Result {
	return s.snap.Load().engine.Search(query)
}

// Nav returns the neighbours of path in catalog order.
func (s *Service) Nav(path string) catalog.Nav {
	return catalog.Neighbors(s.Catalog(), path)
}

// GetNote reads and renders a catalogued note. Paths outside the catalog are
// reported as apperr.ErrNotFound even if the file exists.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	c := s.Catalog()
	rec, ok := c.Get(path)
	if !ok {
		return nil, fmt.Errorf("noteservice: %s: %w", path, apperr.ErrNotFound)
	}
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("noteservice: %s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	res, err := parser.Parse(path, data)
	if err != nil {
		return nil, err
	}
	nav := catalog.Neighbors(c, path)
	return &NoteDetail{
		Path:     path,
		Title:    rec.DisplayTitle(),
		Format:   res.Format,
		Content:  res.HTML,
		Checksum: checksum.Sum(data),
		Prev:     nav.PrevLink(),
		Next:     nav.NextLink(),
	}, nil
}
