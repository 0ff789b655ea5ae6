package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notedeck/internal/models"
	"github.com/starford/notedeck/internal/noteservice"
	"github.com/starford/notedeck/internal/search"
)

// SelectFolderRequest is the body of PUT /selection/folder. An empty folder
// clears the filter.
type SelectFolderRequest struct {
	Folder string `json:"folder"`
}

// Validate checks the folder against the folders the catalog offers.
func (r SelectFolderRequest) Validate(folders []string) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Folder, validation.Length(0, 255), validation.In(toAny(folders)...)),
	)
}

// SelectSubfolderRequest is the body of PUT /selection/subfolder. An empty
// subfolder clears the filter.
type SelectSubfolderRequest struct {
	Subfolder string `json:"subfolder"`
}

// Validate checks the subfolder against those derived for the current folder.
func (r SelectSubfolderRequest) Validate(subfolders []string) error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Subfolder, validation.Length(0, 255), validation.In(toAny(subfolders)...)),
	)
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// FoldersResponse lists the top-level folders.
type FoldersResponse struct {
	Folders []string `json:"folders"`
}

// SubfoldersResponse lists the subfolders of one folder.
type SubfoldersResponse struct {
	Folder     string   `json:"folder"`
	Subfolders []string `json:"subfolders"`
}

// NotesResponse is a filtered note list.
type NotesResponse struct {
	Notes []models.Link `json:"notes"`
}

// SelectionResponse is the current selection with its derived option lists.
type SelectionResponse struct {
	models.Selection
	Subfolders []string      `json:"subfolders"`
	Notes      []models.Link `json:"notes"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Query   string          `json:"query"`
	Results []search.Result `json:"results"`
}

// NavResponse holds the neighbours of a note.
type NavResponse struct {
	Prev *models.Link `json:"prev"`
	Next *models.Link `json:"next"`
}

// ReloadResponse reports the catalog size after a reload.
type ReloadResponse struct {
	Notes int `json:"notes"`
}
