package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notedeck/internal/noteservice"
	"github.com/starford/notedeck/internal/selection"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, sel *selection.Manager, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, sel)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Catalog.
	r.Get("/folders", h.ListFolders)
	r.Get("/subfolders", h.ListSubfolders)
	r.Get("/notes", h.ListNotes)
	r.Get("/notes/*", h.GetNote)
	r.Get("/nav/*", h.Nav)
	r.Post("/reload", h.Reload)

	// Selection.
	r.Get("/selection", h.GetSelection)
	r.Put("/selection/folder", h.SelectFolder)
	r.Put("/selection/subfolder", h.SelectSubfolder)

	// Search.
	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
