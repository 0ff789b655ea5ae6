// Package models defines the domain types for notedeck.
package models

import (
	"path"
	"strings"
	"time"
)

// NotePrefix is the route under which every note is served.
const NotePrefix = "/note/"

// NoteRecord is one entry of the note catalog.
// Title is optional; an empty Title means the label is derived from Path.
type NoteRecord struct {
	Path  string `json:"path"`
	Title string `json:"title,omitempty"`
}

// Segments splits the path on "/".
func (n NoteRecord) Segments() []string {
	return strings.Split(n.Path, "/")
}

// Folder returns segment 0 of the path.
func (n NoteRecord) Folder() string {
	return n.Segments()[0]
}

// Subfolder returns segment 1 when the path has at least two segments.
func (n NoteRecord) Subfolder() (string, bool) {
	parts := n.Segments()
	if len(parts) < 2 {
		return "", false
	}
	return parts[1], true
}

// Filename returns the final path segment.
func (n NoteRecord) Filename() string {
	parts := n.Segments()
	return parts[len(parts)-1]
}

// DisplayTitle returns Title, or the filename without its note extension
// (".html", ".md" and so on).
func (n NoteRecord) DisplayTitle() string {
	if n.Title != "" {
		return n.Title
	}
	return trimNoteExt(n.Filename())
}

// trimNoteExt drops a trailing alphabetic extension. Dotfiles and
// version-like suffixes such as "v1.2" are left alone.
func trimNoteExt(name string) string {
	ext := path.Ext(name)
	if len(ext) < 2 || len(ext) == len(name) {
		return name
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return name
		}
	}
	return strings.TrimSuffix(name, ext)
}

// Link returns the navigable link for the note.
func (n NoteRecord) Link() Link {
	return Link{Href: NotePrefix + n.Path, Label: n.DisplayTitle()}
}

// Link is a rendered, framework-agnostic option entry.
type Link struct {
	Href  string `json:"href"`
	Label string `json:"label"`
}

// NoteMetadata is what storage reports about a note file on disk.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Selection is the folder/subfolder filter currently chosen by the user.
// Empty strings mean "no filter".
type Selection struct {
	Folder    string `json:"folder"`
	Subfolder string `json:"subfolder"`
}
