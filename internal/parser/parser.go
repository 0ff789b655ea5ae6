// Package parser extracts titles from note documents and renders them to HTML.
package parser

import (
	"bytes"
	"fmt"
	"html"
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmparser "github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"
)

var (
	fancyTitleRe = regexp.MustCompile(`<div class="fancy-title"[^>]*>([^<]+)</div>`)
	htmlTitleRe  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(gmparser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
)

// Format identifies how a note's bytes are interpreted.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// FormatOf infers the format from the file extension. Anything that is not
// Markdown is treated as HTML.
func FormatOf(p string) Format {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".markdown":
		return FormatMarkdown
	}
	return FormatHTML
}

// Result holds the output of parsing a note.
type Result struct {
	Format      Format
	Title       string
	Frontmatter map[string]interface{}
	// HTML is the note body ready to embed in a page.
	HTML string
}

// Parse extracts the title of the note at p and renders its body.
func Parse(p string, data []byte) (*Result, error) {
	if FormatOf(p) == FormatMarkdown {
		return parseMarkdown(data)
	}
	return &Result{
		Format: FormatHTML,
		Title:  htmlTitle(data),
		HTML:   string(data),
	}, nil
}

// Title returns just the title of the note at p, or "" when none is found.
func Title(p string, data []byte) string {
	if FormatOf(p) == FormatMarkdown {
		fm, body := splitFrontmatter(data)
		return deriveTitle(fm, body)
	}
	return htmlTitle(data)
}

// htmlTitle prefers the styled fancy-title block and falls back to <title>.
func htmlTitle(data []byte) string {
	if m := fancyTitleRe.FindSubmatch(data); m != nil {
		if t := strings.TrimSpace(html.UnescapeString(string(m[1]))); t != "" {
			return t
		}
	}
	if m := htmlTitleRe.FindSubmatch(data); m != nil {
		return strings.TrimSpace(html.UnescapeString(string(m[1])))
	}
	return ""
}

func parseMarkdown(data []byte) (*Result, error) {
	fm, body := splitFrontmatter(data)
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return nil, fmt.Errorf("parser: render markdown: %w", err)
	}
	return &Result{
		Format:      FormatMarkdown,
		Title:       deriveTitle(fm, body),
		Frontmatter: fm,
		HTML:        buf.String(),
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. Missing or invalid frontmatter leaves the whole
// input as body.
func splitFrontmatter(data []byte) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
