// Package catalog holds the immutable note catalog and the pure functions that
// derive subfolders, filtered note lists, and prev/next neighbours from it.
package catalog

import (
	"encoding/json"
	"sort"

	"github.com/starford/notedeck/internal/models"
)

// Catalog is an ordered, read-only set of note records with unique paths.
// The zero value is an empty catalog.
type Catalog struct {
	records []models.NoteRecord
	byPath  map[string]int
}

// New builds a catalog from records in the given order. Records with an empty
// path are dropped, and only the first record for a repeated path is kept.
func New(records []models.NoteRecord) *Catalog {
	c := &Catalog{
		records: make([]models.NoteRecord, 0, len(records)),
		byPath:  make(map[string]int, len(records)),
	}
	for _, r := range records {
		if r.Path == "" {
			continue
		}
		if _, dup := c.byPath[r.Path]; dup {
			continue
		}
		c.byPath[r.Path] = len(c.records)
		c.records = append(c.records, r)
	}
	return c
}

// FromPaths builds a catalog from bare paths, synthesizing each title from the
// final path segment.
func FromPaths(paths []string) *Catalog {
	records := make([]models.NoteRecord, 0, len(paths))
	for _, p := range paths {
		r := models.NoteRecord{Path: p}
		r.Title = r.DisplayTitle()
		records = append(records, r)
	}
	return New(records)
}

// Decode parses embedded catalog metadata. It accepts a JSON array of
// {"path","title"} objects or a JSON array of path strings; anything else
// yields an empty catalog.
func Decode(data []byte) *Catalog {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return New(nil)
	}

	var paths []string
	if err := json.Unmarshal(data, &paths); err == nil {
		return FromPaths(paths)
	}

	var records []models.NoteRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return New(nil)
	}
	return New(records)
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Records returns a copy of the records in catalog order.
func (c *Catalog) Records() []models.NoteRecord {
	if c == nil {
		return nil
	}
	out := make([]models.NoteRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Get looks up a record by path.
func (c *Catalog) Get(path string) (models.NoteRecord, bool) {
	if c == nil {
		return models.NoteRecord{}, false
	}
	i, ok := c.byPath[path]
	if !ok {
		return models.NoteRecord{}, false
	}
	return c.records[i], true
}

// Folders returns the sorted set of top-level folders that contain at least
// one note below them.
func (c *Catalog) Folders() []string {
	if c == nil {
		return []string{}
	}
	seen := make(map[string]struct{})
	for _, r := range c.records {
		parts := r.Segments()
		if len(parts) < 2 {
			continue
		}
		seen[parts[0]] = struct{}{}
	}
	return sortedKeys(seen)
}

// HasFolder reports whether folder is one of Folders().
func (c *Catalog) HasFolder(folder string) bool {
	if folder == "" {
		return false
	}
	for _, f := range c.Folders() {
		if f == folder {
			return true
		}
	}
	return false
}

// Links maps records to their rendered links, preserving order.
func Links(records []models.NoteRecord) []models.Link {
	out := make([]models.Link, len(records))
	for i, r := range records {
		out[i] = r.Link()
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
