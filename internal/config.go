package internal

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notedeck/internal/search"
	"github.com/starford/notedeck/internal/web"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Notes     NotesConfig       `yaml:"notes"`
	SQLite    SQLiteConfig      `yaml:"sqlite"`
	Auth      AuthConfig        `yaml:"auth"`
	Search    SearchConfig      `yaml:"search"`
	Selection SelectionConfig   `yaml:"selection"`
	Proxy     ProxyConfig       `yaml:"proxy"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Notes.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Proxy.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// PublicURL prefixes links copied from the terminal browser.
	PublicURL string `yaml:"public_url"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// BaseURL returns PublicURL, or the local address when it is unset.
func (c *HTTPConfig) BaseURL() string {
	if c.PublicURL != "" {
		return strings.TrimSuffix(c.PublicURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NotesConfig points at the directory of note documents.
type NotesConfig struct {
	Path       string   `yaml:"path"`
	Extensions []string `yaml:"extensions"`
}

// Validate validates the notes configuration.
func (c *NotesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extensions, validation.Each(validation.Required, validation.Length(1, 16))),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for the JSON API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// SearchConfig tunes fuzzy search ranking.
type SearchConfig struct {
	Threshold   float64 `yaml:"threshold"`
	Limit       int     `yaml:"limit"`
	TitleWeight float64 `yaml:"title_weight"`
	PathWeight  float64 `yaml:"path_weight"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Threshold, validation.Required, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.Limit, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.TitleWeight, validation.Min(0.0)),
		validation.Field(&c.PathWeight, validation.Min(0.0)),
	)
}

// Options converts the section into search options.
func (c *SearchConfig) Options() search.Options {
	return search.Options{
		Threshold:   c.Threshold,
		Limit:       c.Limit,
		TitleWeight: c.TitleWeight,
		PathWeight:  c.PathWeight,
	}
}

// SelectionConfig controls where the last folder/subfolder choice is kept.
type SelectionConfig struct {
	// Persist stores the selection in the SQLite settings table. When false
	// it lives in memory for the lifetime of the process.
	Persist bool `yaml:"persist"`
}

// hostPattern accepts a bare hostname with an optional port, no scheme or path.
var hostPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9.-]*[A-Za-z0-9])?(:[0-9]{1,5})?$`)

// ProxyConfig controls the PDF proxy.
type ProxyConfig struct {
	// AllowedHosts are fetched over https only; "host" or "host:port".
	AllowedHosts []string      `yaml:"allowed_hosts"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Validate validates the proxy configuration.
func (c *ProxyConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.AllowedHosts, validation.Each(validation.Required, validation.Match(hostPattern))),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// Web converts the section into the web proxy configuration.
func (c *ProxyConfig) Web() web.ProxyConfig {
	return web.ProxyConfig{
		AllowedHosts: c.AllowedHosts,
		Timeout:      c.Timeout,
	}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	def := search.DefaultOptions()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Notes: NotesConfig{
			Path:       "./notes",
			Extensions: []string{".html"},
		},
		SQLite: SQLiteConfig{
			Path: "./notedeck.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Search: SearchConfig{
			Threshold:   def.Threshold,
			Limit:       def.Limit,
			TitleWeight: def.TitleWeight,
			PathWeight:  def.PathWeight,
		},
		Selection: SelectionConfig{
			Persist: true,
		},
		Proxy: ProxyConfig{
			AllowedHosts: []string{"drive.google.com"},
			Timeout:      30 * time.Second,
		},
	}
}
