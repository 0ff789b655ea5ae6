// Package web serves the browser UI: the note index, note pages with
// prev/next navigation, and the PDF viewer.
package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notedeck/internal/apperr"
	"github.com/starford/notedeck/internal/models"
	"github.com/starford/notedeck/internal/noteservice"
	"github.com/starford/notedeck/internal/search"
	"github.com/starford/notedeck/internal/viewer"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Server renders the HTML pages.
type Server struct {
	svc    *noteservice.Service
	tmpl   *template.Template
	proxy  http.Handler
	events http.Handler
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithEvents serves h at GET /events, outside the API token, so open pages
// can follow catalog changes.
func WithEvents(h http.Handler) Option {
	return func(s *Server) { s.events = h }
}

// New parses the embedded templates. It fails if any template is broken.
func New(svc *noteservice.Service, proxy ProxyConfig, logger *slog.Logger, opts ...Option) (*Server, error) {
	if svc == nil {
		return nil, errors.New("web: note service is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	s := &Server{
		svc:    svc,
		tmpl:   tmpl,
		proxy:  NewPDFProxy(proxy, logger),
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Routes returns the page router.
func (s *Server) Routes() chi.Router {
	static, _ := fs.Sub(staticFS, "static")

	r := chi.NewRouter()
	r.Get("/", s.index)
	r.Get(strings.TrimSuffix(models.NotePrefix, "/")+"/*", s.note)
	r.Get("/viewer", s.viewer)
	r.Get("/catalog.json", s.catalogJSON)
	r.Get("/search.json", s.searchJSON)
	r.Method(http.MethodGet, viewer.ProxyPath, s.proxy)
	if s.events != nil {
		r.Method(http.MethodGet, "/events", s.events)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	return r
}

type menuItem struct {
	Name  string
	Route string
}

type pageData struct {
	Title   string
	Folders []string
	Notes   []models.NoteRecord
	Menu    []menuItem
	Note    *noteservice.NoteDetail
	Content template.HTML
	Viewer  *viewer.Settings
}

func (s *Server) basePage(title string) pageData {
	c := s.svc.Catalog()
	return pageData{
		Title:   title,
		Folders: c.Folders(),
		Notes:   c.Records(),
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	data := s.basePage("View By Topics")
	data.Menu = []menuItem{
		{Name: "Browse notes", Route: "#browser"},
		{Name: "PDF viewer", Route: "#viewer-form"},
	}
	s.render(w, http.StatusOK, "index.html", data)
}

func (s *Server) note(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	note, err := s.svc.GetNote(r.Context(), path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidPath) {
			s.render(w, http.StatusNotFound, "notfound.html", s.basePage("Note not found"))
			return
		}
		s.logger.Error("note page failed", slog.String("path", path), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	data := s.basePage(note.Title)
	data.Note = note
	// Notes are trusted local documents.
	data.Content = template.HTML(note.Content)
	s.render(w, http.StatusOK, "note.html", data)
}

func (s *Server) viewer(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		http.Error(w, "No PDF URL provided", http.StatusBadRequest)
		return
	}
	settings := viewer.NewSettings(file)
	data := pageData{Title: "PDF Viewer", Viewer: &settings}
	s.render(w, http.StatusOK, "viewer.html", data)
}

func (s *Server) catalogJSON(w http.ResponseWriter, r *http.Request) {
	records := s.svc.Catalog().Records()
	if records == nil {
		records = []models.NoteRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) searchJSON(w http.ResponseWriter, r *http.Request) {
	results := s.svc.Search(r.URL.Query().Get("q"))
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

// render executes into a buffer first so a template error never leaves a
// half-written page.
func (s *Server) render(w http.ResponseWriter, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render failed", slog.String("template", name), slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}
