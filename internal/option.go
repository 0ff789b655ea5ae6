package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config      *Config
	logOutput   io.Writer
	version     string
	catalogFile string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogOutput redirects the JSON log stream. The MCP command logs to
// stderr because stdout carries the protocol.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithCatalogFile makes the browse command read an exported catalog
// (the /catalog.json format) instead of the notes directory.
func WithCatalogFile(path string) Option {
	return func(a *application) {
		a.catalogFile = path
	}
}
