// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the note catalog to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notedeck/internal/apperr"
	"github.com/starford/notedeck/internal/catalog"
	"github.com/starford/notedeck/internal/noteservice"
	"github.com/starford/notedeck/internal/selection"
)

// CatalogURI is the resource holding the catalog as JSON.
const CatalogURI = "notedeck://catalog"

// Server wraps the MCP server with the catalog tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
	sel *selection.Manager
}

// New creates a new MCP server with all tools registered.
func New(svc *noteservice.Service, sel *selection.Manager, version string) *Server {
	s := &Server{svc: svc, sel: sel}

	s.mcp = server.NewMCPServer(
		"notedeck",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_folders",
		mcp.WithDescription("List the top-level note folders, one per line."),
	), s.listFolders)

	s.mcp.AddTool(mcp.NewTool("list_subfolders",
		mcp.WithDescription("List the subfolders of a folder, one per line."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Top-level folder name")),
	), s.listSubfolders)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List note links filtered by folder and subfolder. "+
			"Without arguments the current selection is used."),
		mcp.WithString("folder", mcp.Description("Optional folder filter")),
		mcp.WithString("subfolder", mcp.Description("Optional subfolder filter")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Typo-tolerant search over note titles and paths. Returns at most 10 ranked results."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the rendered HTML of a note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Catalog path of the note (e.g. math/algebra/intro.html)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("note_neighbors",
		mcp.WithDescription("Return the previous and next notes in catalog order."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Catalog path of the note")),
	), s.noteNeighbors)

	s.mcp.AddTool(mcp.NewTool("get_selection",
		mcp.WithDescription("Return the persisted folder and subfolder selection."),
	), s.getSelection)

	s.mcp.AddTool(mcp.NewTool("select_folder",
		mcp.WithDescription("Select a folder. This always clears the subfolder. An empty folder clears the filter."),
		mcp.WithString("folder", mcp.Description("Folder to select")),
	), s.selectFolder)

	s.mcp.AddTool(mcp.NewTool("select_subfolder",
		mcp.WithDescription("Select a subfolder of the currently selected folder. An empty value clears it."),
		mcp.WithString("subfolder", mcp.Description("Subfolder to select")),
	), s.selectSubfolder)

	s.mcp.AddResource(
		mcp.NewResource(CatalogURI, "Note catalog",
			mcp.WithResourceDescription("Every catalogued note as {path,title} in catalog order."),
			mcp.WithMIMEType("application/json"),
		),
		s.readCatalogResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listFolders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(strings.Join(s.svc.Catalog().Folders(), "\n")), nil
}

func (s *Server) listSubfolders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strings.Join(catalog.DeriveSubfolders(s.svc.Catalog(), folder), "\n")), nil
}

func (s *Server) listNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel := s.sel.Current()
	folder := req.GetString("folder", "")
	subfolder := req.GetString("subfolder", "")
	if folder != "" || subfolder != "" {
		sel.Folder, sel.Subfolder = folder, subfolder
	}
	return jsonResult(catalog.Links(catalog.Filter(s.svc.Catalog(), sel)))
}

func (s *Server) searchNotes(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results := s.svc.Search(query)
	if len(results) == 0 {
		return mcp.NewToolResultText("no matching notes"), nil
	}
	return jsonResult(results)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.GetNote(ctx, path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(note.Content), nil
}

func (s *Server) noteNeighbors(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := s.svc.Catalog().Get(path); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	nav := s.svc.Nav(path)
	return jsonResult(map[string]any{"prev": nav.PrevLink(), "next": nav.NextLink()})
}

func (s *Server) getSelection(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.sel.Current())
}

func (s *Server) selectFolder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder := req.GetString("folder", "")
	if err := validation.Validate(folder, validation.In(toAny(s.svc.Catalog().Folders())...)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown folder %q", folder)), nil
	}
	return jsonResult(s.sel.SetFolder(folder))
}

func (s *Server) selectSubfolder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subfolder := req.GetString("subfolder", "")
	if err := validation.Validate(subfolder, validation.In(toAny(s.sel.Subfolders())...)); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown subfolder %q for folder %q", subfolder, s.sel.Current().Folder)), nil
	}
	return jsonResult(s.sel.SetSubfolder(subfolder))
}

func (s *Server) readCatalogResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.Marshal(s.svc.Catalog().Records())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CatalogURI,
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
