package catalog

import (
	"strings"

	"github.com/starford/notedeck/internal/models"
)

// DeriveSubfolders returns the sorted, de-duplicated segment-1 values of every
// record whose segment 0 equals folder. An empty folder matches nothing.
func DeriveSubfolders(c *Catalog, folder string) []string {
	seen := make(map[string]struct{})
	if c != nil {
		for _, r := range c.records {
			parts := r.Segments()
			if len(parts) > 1 && parts[0] == folder {
				seen[parts[1]] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

// Filter returns the records matching sel in catalog order. The folder
// predicate is applied first, then the subfolder predicate.
func Filter(c *Catalog, sel models.Selection) []models.NoteRecord {
	out := make([]models.NoteRecord, 0, c.Len())
	if c == nil {
		return out
	}
	for _, r := range c.records {
		if matchFolder(r, sel.Folder) && matchSubfolder(r, sel.Subfolder) {
			out = append(out, r)
		}
	}
	return out
}

func matchFolder(r models.NoteRecord, folder string) bool {
	return folder == "" || strings.HasPrefix(r.Path, folder+"/")
}

func matchSubfolder(r models.NoteRecord, subfolder string) bool {
	if subfolder == "" {
		return true
	}
	sub, ok := r.Subfolder()
	return ok && sub == subfolder
}

// Nav holds the neighbours of a note in catalog order.
type Nav struct {
	Prev *models.NoteRecord `json:"prev,omitempty"`
	Next *models.NoteRecord `json:"next,omitempty"`
}

// Neighbors returns the records immediately before and after path.
// Both are nil when path is not in the catalog.
func Neighbors(c *Catalog, path string) Nav {
	var nav Nav
	if c == nil {
		return nav
	}
	i, ok := c.byPath[path]
	if !ok {
		return nav
	}
	if i > 0 {
		prev := c.records[i-1]
		nav.Prev = &prev
	}
	if i < len(c.records)-1 {
		next := c.records[i+1]
		nav.Next = &next
	}
	return nav
}

// PrevLink returns the link to the previous note, or nil.
func (n Nav) PrevLink() *models.Link {
	return recordLink(n.Prev)
}

// NextLink returns the link to the next note, or nil.
func (n Nav) NextLink() *models.Link {
	return recordLink(n.Next)
}

func recordLink(r *models.NoteRecord) *models.Link {
	if r == nil {
		return nil
	}
	l := r.Link()
	return &l
}
