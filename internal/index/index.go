package index

import "github.com/starford/notedeck/internal/models"

// NoteIndex is the catalog persistence consumed by the note service.
type NoteIndex interface {
	UpsertNote(n NoteRow) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListCatalog() ([]models.NoteRecord, error)
	Close() error
}

var _ NoteIndex = (*DB)(nil)
