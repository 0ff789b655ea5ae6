package tui

import (
	"github.com/starford/notedeck/internal/catalog"
	"github.com/starford/notedeck/internal/search"
)

// StaticSource serves a fixed catalog, such as one exported from
// /catalog.json, without a notes directory behind it.
type StaticSource struct {
	catalog *catalog.Catalog
	engine  *search.Engine
}

// NewStaticSource indexes c for search.
func NewStaticSource(c *catalog.Catalog, opts search.Options) *StaticSource {
	return &StaticSource{catalog: c, engine: search.NewEngine(c, opts)}
}

// Catalog implements Source.
func (s *StaticSource) Catalog() *catalog.Catalog { return s.catalog }

// Search implements Source.
func (s *StaticSource) Search(query string) []search.Result { return s.engine.Search(query) }

// Nav implements Source.
func (s *StaticSource) Nav(path string) catalog.Nav { return catalog.Neighbors(s.catalog, path) }
