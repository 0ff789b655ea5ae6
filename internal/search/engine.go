// Package search ranks catalog notes against a free-text query using
// typo-tolerant approximate matching on title and path.
package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/starford/notedeck/internal/catalog"
	"github.com/starford/notedeck/internal/models"
)

// Options tunes ranking.
type Options struct {
	// Threshold is the highest dissimilarity a result may have.
	Threshold float64
	// Limit caps the number of results.
	Limit int
	// TitleWeight and PathWeight set the relative influence of each field.
	TitleWeight float64
	PathWeight  float64
}

// DefaultOptions returns the stock ranking parameters.
func DefaultOptions() Options {
	return Options{
		Threshold:   0.4,
		Limit:       10,
		TitleWeight: 0.9,
		PathWeight:  0.1,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Threshold <= 0 || o.Threshold > 1 {
		o.Threshold = d.Threshold
	}
	if o.Limit <= 0 {
		o.Limit = d.Limit
	}
	if o.TitleWeight <= 0 && o.PathWeight <= 0 {
		o.TitleWeight, o.PathWeight = d.TitleWeight, d.PathWeight
	}
	return o
}

// Result is one ranked hit.
type Result struct {
	Record models.NoteRecord `json:"record"`
	// Score is the dissimilarity of the closest matching field, never above Threshold.
	Score float64 `json:"score"`
	// Rank weighs title against path and orders results, lowest first.
	Rank float64     `json:"rank"`
	Link models.Link `json:"link"`
	// Highlights are byte offsets into Link.Label of characters matched by the query.
	Highlights []int `json:"highlights,omitempty"`
}

// Engine searches a fixed catalog snapshot. It is safe for concurrent use.
type Engine struct {
	records []models.NoteRecord
	opts    Options
}

// NewEngine indexes the catalog.
func NewEngine(c *catalog.Catalog, opts Options) *Engine {
	return &Engine{records: c.Records(), opts: opts.withDefaults()}
}

// Options returns the effective ranking options.
func (e *Engine) Options() Options {
	return e.opts
}

// Search returns up to Limit results where the title or the path is within
// Threshold of the query, best ranked first. Ties keep catalog order. A blank
// query returns nil.
func (e *Engine) Search(query string) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var out []Result
	for _, r := range e.records {
		score, rank, ok := e.score(query, r)
		if !ok {
			continue
		}
		out = append(out, Result{Record: r, Score: score, Rank: rank, Link: r.Link()})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	if len(out) > e.opts.Limit {
		out = out[:e.opts.Limit]
	}

	for i := range out {
		out[i].Highlights = highlight(query, out[i].Link.Label)
	}
	return out
}

// score matches each field on its own: a record qualifies when any field it
// has is within Threshold. The weighted mean of the fields only orders hits.
func (e *Engine) score(query string, r models.NoteRecord) (best, rank float64, ok bool) {
	pathScore := Dissimilarity(query, r.Path)
	if r.Title == "" || e.opts.TitleWeight <= 0 {
		return pathScore, pathScore, pathScore <= e.opts.Threshold
	}
	titleScore := Dissimilarity(query, r.Title)
	best = min(titleScore, pathScore)
	total := e.opts.TitleWeight + e.opts.PathWeight
	rank = (e.opts.TitleWeight*titleScore + e.opts.PathWeight*pathScore) / total
	return best, rank, best <= e.opts.Threshold
}

func highlight(query, label string) []int {
	matches := fuzzy.Find(query, []string{label})
	if len(matches) == 0 {
		return nil
	}
	return matches[0].MatchedIndexes
}
