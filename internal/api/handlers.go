package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notedeck/internal/apperr"
	"github.com/starford/notedeck/internal/catalog"
	"github.com/starford/notedeck/internal/models"
	"github.com/starford/notedeck/internal/noteservice"
	"github.com/starford/notedeck/internal/search"
	"github.com/starford/notedeck/internal/selection"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
	sel *selection.Manager
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service, sel *selection.Manager) *Handler {
	return &Handler{svc: svc, sel: sel}
}

// notePath extracts the note path from the wildcard URL segment.
// Encoded slashes (cs%2Fos%2Fa.html) are accepted.
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListFolders handles GET /api/folders.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FoldersResponse{Folders: h.svc.Catalog().Folders()})
}

// ListSubfolders handles GET /api/subfolders?folder=.
func (h *Handler) ListSubfolders(w http.ResponseWriter, r *http.Request) {
	folder := r.URL.Query().Get("folder")
	writeJSON(w, http.StatusOK, SubfoldersResponse{
		Folder:     folder,
		Subfolders: catalog.DeriveSubfolders(h.svc.Catalog(), folder),
	})
}

// ListNotes handles GET /api/notes. With folder or subfolder query
// parameters it filters by them, otherwise by the current selection.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := h.sel.Current()
	if q.Has("folder") || q.Has("subfolder") {
		sel = models.Selection{Folder: q.Get("folder"), Subfolder: q.Get("subfolder")}
	}
	records := catalog.Filter(h.svc.Catalog(), sel)
	writeJSON(w, http.StatusOK, NotesResponse{Notes: catalog.Links(records)})
}

// GetNote handles GET /api/notes/*.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.GetNote(r.Context(), path)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrInvalidPath):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid path"))
		default:
			slog.Error("get note failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Nav handles GET /api/nav/*.
func (h *Handler) Nav(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if _, ok := h.svc.Catalog().Get(path); !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	nav := h.svc.Nav(path)
	writeJSON(w, http.StatusOK, NavResponse{Prev: nav.PrevLink(), Next: nav.NextLink()})
}

// Reload handles POST /api/reload.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Reload(r.Context())
	if err != nil {
		slog.Error("reload failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{Notes: c.Len()})
}

// GetSelection handles GET /api/selection.
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.selectionResponse(h.sel.Current()))
}

// SelectFolder handles PUT /api/selection/folder.
func (h *Handler) SelectFolder(w http.ResponseWriter, r *http.Request) {
	var req SelectFolderRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := req.Validate(h.svc.Catalog().Folders()); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.selectionResponse(h.sel.SetFolder(req.Folder)))
}

// SelectSubfolder handles PUT /api/selection/subfolder.
func (h *Handler) SelectSubfolder(w http.ResponseWriter, r *http.Request) {
	var req SelectSubfolderRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := req.Validate(h.sel.Subfolders()); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, h.selectionResponse(h.sel.SetSubfolder(req.Subfolder)))
}

func (h *Handler) selectionResponse(sel models.Selection) SelectionResponse {
	c := h.svc.Catalog()
	return SelectionResponse{
		Selection:  sel,
		Subfolders: catalog.DeriveSubfolders(c, sel.Folder),
		Notes:      catalog.Links(catalog.Filter(c, sel)),
	}
}

// Search handles GET /api/search?q=. A blank query returns no results.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	results := h.svc.Search(q)
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: q, Results: results})
}
