package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/notedeck/internal/apperr"
)

// ProxyConfig controls which remote documents the PDF proxy may fetch.
type ProxyConfig struct {
	// AllowedHosts lists the hosts documents may come from, over https only.
	// An entry without a port matches the default https port.
	AllowedHosts []string
	Timeout      time.Duration
	// Client overrides the outbound client. Timeout is ignored when set.
	Client *http.Client
}

// PDFProxy streams remote PDF documents to the viewer so they are served
// from the same origin.
type PDFProxy struct {
	client  *http.Client
	allowed map[string]bool
	logger  *slog.Logger
}

// NewPDFProxy creates a proxy. A zero timeout defaults to 30s.
func NewPDFProxy(cfg ProxyConfig, logger *slog.Logger) *PDFProxy {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if client.CheckRedirect == nil {
		c := *client
		c.CheckRedirect = httpsOnlyRedirect
		client = &c
	}
	allowed := make(map[string]bool, len(cfg.AllowedHosts))
	for _, h := range cfg.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allowed[h] = true
		}
	}
	return &PDFProxy{
		client:  client,
		allowed: allowed,
		logger:  logger,
	}
}

func httpsOnlyRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return errors.New("stopped after 10 redirects")
	}
	if req.URL.Scheme != "https" || req.URL.User != nil {
		return fmt.Errorf("redirect to %s: %w", req.URL.Redacted(), apperr.ErrBlockedURL)
	}
	return nil
}

// target classifies a requested URL.
type target int

const (
	targetRemote target = iota
	targetStatic
)

func (p *PDFProxy) classify(raw string) (target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("web: proxy: %w", apperr.ErrBlockedURL)
	}
	if u.Scheme == "" && u.Host == "" && strings.HasPrefix(raw, "/static/") && !strings.Contains(raw, "..") {
		return targetStatic, nil
	}
	if u.Scheme == "https" && u.User == nil && p.hostAllowed(u) {
		return targetRemote, nil
	}
	return 0, fmt.Errorf("web: proxy %q: %w", raw, apperr.ErrBlockedURL)
}

// hostAllowed requires an exact host match against the allowlist.
func (p *PDFProxy) hostAllowed(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	switch port := u.Port(); port {
	case "", "443":
		return p.allowed[host] || p.allowed[host+":443"]
	default:
		return p.allowed[host+":"+port]
	}
}

// ServeHTTP handles GET /proxy-pdf?url=.
func (p *PDFProxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		http.Error(w, "No URL provided", http.StatusBadRequest)
		return
	}

	kind, err := p.classify(raw)
	if err != nil {
		http.Error(w, "Invalid URL", http.StatusBadRequest)
		return
	}
	if kind == targetStatic {
		http.Redirect(w, r, raw, http.StatusFound)
		return
	}

	body, status, err := p.fetch(r.Context(), raw)
	if err != nil {
		p.logger.Warn("proxy: fetch failed", slog.String("url", raw), slog.String("error", err.Error()))
		http.Error(w, "Error fetching PDF", http.StatusBadGateway)
		return
	}
	defer body.Close()
	if status != http.StatusOK {
		http.Error(w, fmt.Sprintf("Failed to fetch PDF: %d", status), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=document.pdf")
	if _, err := io.Copy(w, body); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.Warn("proxy: copy failed", slog.String("url", raw), slog.String("error", err.Error()))
	}
}

func (p *PDFProxy) fetch(ctx context.Context, raw string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.StatusCode, nil
}
