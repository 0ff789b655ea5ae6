// Package storage reads note documents from the notes directory.
package storage

import "github.com/starford/notedeck/internal/models"

// Provider is the read-only view of the notes directory the catalog is
// built from. Paths are relative to the root and use forward slashes.
type Provider interface {
	// List returns metadata for every note file under dir, sorted by path.
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the note at path.
	Read(path string) ([]byte, error)
	// IsNote reports whether path has one of the note extensions.
	IsNote(path string) bool
}
