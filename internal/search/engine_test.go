package search

import (
	"fmt"
	"testing"

	"github.com/starford/notedeck/internal/catalog"
	"github.com/starford/notedeck/internal/models"
)

func TestDissimilarity(t *testing.T) {
	tests := []struct {
		pattern, text string
		max           float64
		min           float64
	}{
		{"intro", "intro", 0, 0},
		{"INTRO", "intro", 0, 0},
		{"schedulng", "scheduling", 0.12, 0.1},
		{"algebra", "math/algebra/intro.html", 0.06, 0.04},
		{"zzzz", "abc", 1, 1},
		{"anything", "", 1, 1},
	}
	for _, tt := range tests {
		got := Dissimilarity(tt.pattern, tt.text)
		if got > tt.max+1e-9 || got < tt.min-1e-9 {
			t.Errorf("Dissimilarity(%q, %q) = %.3f, want in [%.3f, %.3f]", tt.pattern, tt.text, got, tt.min, tt.max)
		}
	}
}

func TestDissimilarity_Bounds(t *testing.T) {
	texts := []string{"", "a", "scheduling basics", "cs/os/scheduling.html", "ümlaut/ß"}
	patterns := []string{"s", "sched", "xyzxyzxyz", "ß"}
	for _, p := range patterns {
		for _, txt := range texts {
			d := Dissimilarity(p, txt)
			if d < 0 || d > 1 {
				t.Errorf("Dissimilarity(%q, %q) = %f out of [0,1]", p, txt, d)
			}
		}
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	e := NewEngine(catalog.FromPaths([]string{"a/b.html"}), DefaultOptions())
	for _, q := range []string{"", "   ", "\t\n"} {
		if got := e.Search(q); len(got) != 0 {
			t.Errorf("Search(%q) = %v, want no results", q, got)
		}
	}
}

func TestSearch_TypoMatchesTitle(t *testing.T) {
	c := catalog.New([]models.NoteRecord{
		{Path: "cs/os/scheduling.html", Title: "Scheduling Basics"},
	})
	results := NewEngine(c, DefaultOptions()).Search("schedulng")
	if len(results) != 1 {
		t.Fatalf("results = %v, want 1", results)
	}
	if results[0].Record.Path != "cs/os/scheduling.html" {
		t.Errorf("path = %q", results[0].Record.Path)
	}
	if results[0].Score > 0.4 {
		t.Errorf("score = %f, want <= 0.4", results[0].Score)
	}
	if results[0].Link.Label != "Scheduling Basics" {
		t.Errorf("label = %q", results[0].Link.Label)
	}
}

func TestSearch_UntitledLabelDerivedFromFilename(t *testing.T) {
	c := catalog.New([]models.NoteRecord{{Path: "cs/os/scheduling.html"}})
	results := NewEngine(c, DefaultOptions()).Search("schedulng")
	if len(results) != 1 {
		t.Fatalf("results = %v, want 1", results)
	}
	if got := results[0].Link.Label; got != "scheduling" {
		t.Errorf("label = %q, want scheduling", got)
	}
	if got := results[0].Link.Href; got != "/note/cs/os/scheduling.html" {
		t.Errorf("href = %q", got)
	}
	if len(results[0].Highlights) != len("schedulng") {
		t.Errorf("highlights = %v", results[0].Highlights)
	}
}

func TestSearch_TitleOutweighsPath(t *testing.T) {
	c := catalog.New([]models.NoteRecord{
		{Path: "graphs/dijkstra.html", Title: "Shortest Paths"},
		{Path: "misc/untitled.html", Title: "Dijkstra"},
	})
	results := NewEngine(c, DefaultOptions()).Search("dijkstra")
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if results[0].Record.Path != "misc/untitled.html" {
		t.Errorf("top result = %q, want the title match", results[0].Record.Path)
	}
}

func TestSearch_PathMatchesTitledNotes(t *testing.T) {
	c := catalog.New([]models.NoteRecord{
		{Path: "math/algebra/intro.html", Title: "Introduction"},
		{Path: "math/geometry/shapes.html", Title: "Shapes and Areas"},
		{Path: "cs/os/scheduling.html", Title: "Scheduling Basics"},
	})
	e := NewEngine(c, DefaultOptions())

	tests := []struct {
		query string
		want  []string
	}{
		{"geometry", []string{"math/geometry/shapes.html"}},
		{"algebra", []string{"math/algebra/intro.html"}},
		{"math", []string{"math/algebra/intro.html", "math/geometry/shapes.html"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			results := e.Search(tt.query)
			got := make(map[string]bool, len(results))
			for _, r := range results {
				got[r.Record.Path] = true
				if r.Score > 0.4 {
					t.Errorf("%s score %f above threshold", r.Record.Path, r.Score)
				}
			}
			if len(got) != len(tt.want) {
				t.Errorf("results = %v, want %v", results, tt.want)
			}
			for _, w := range tt.want {
				if !got[w] {
					t.Errorf("missing %s in %v", w, results)
				}
			}
		})
	}
}

func TestSearch_RankPrefersTitleOverPathOnlyMatch(t *testing.T) {
	c := catalog.New([]models.NoteRecord{
		{Path: "math/geometry/shapes.html", Title: "Shapes and Areas"},
		{Path: "notes/misc.html", Title: "Geometry"},
	})
	results := NewEngine(c, DefaultOptions()).Search("geometry")
	if len(results) != 2 {
		t.Fatalf("results = %v, want 2", results)
	}
	if results[0].Record.Path != "notes/misc.html" {
		t.Errorf("top result = %q, want the title match", results[0].Record.Path)
	}
	if results[0].Rank > results[1].Rank {
		t.Errorf("ranks out of order: %f > %f", results[0].Rank, results[1].Rank)
	}
}

func TestSearch_ThresholdAndLimit(t *testing.T) {
	var paths []string
	for i := 0; i < 25; i++ {
		paths = append(paths, fmt.Sprintf("notes/topic%02d.html", i))
	}
	paths = append(paths, "other/unrelated.html")
	e := NewEngine(catalog.FromPaths(paths), DefaultOptions())

	results := e.Search("topic")
	if len(results) != 10 {
		t.Fatalf("len = %d, want 10", len(results))
	}
	for _, r := range results {
		if r.Score > 0.4 {
			t.Errorf("%s score %f above threshold", r.Record.Path, r.Score)
		}
	}
	// Equal scores keep catalog order.
	for i, r := range results {
		want := fmt.Sprintf("notes/topic%02d.html", i)
		if r.Record.Path != want {
			t.Errorf("results[%d] = %q, want %q", i, r.Record.Path, want)
		}
	}
}

func TestSearch_NoMatch(t *testing.T) {
	e := NewEngine(catalog.FromPaths([]string{"math/algebra/intro.html"}), DefaultOptions())
	if got := e.Search("qqqqqqqq"); len(got) != 0 {
		t.Errorf("unexpected results: %v", got)
	}
}

func TestSearch_IgnoresSelection(t *testing.T) {
	c := catalog.FromPaths([]string{"math/algebra/intro.html", "cs/os/scheduling.html"})
	e := NewEngine(c, DefaultOptions())
	if got := e.Search("scheduling"); len(got) != 1 || got[0].Record.Path != "cs/os/scheduling.html" {
		t.Errorf("results = %v", got)
	}
}

func TestOptions_Defaults(t *testing.T) {
	e := NewEngine(catalog.New(nil), Options{})
	if e.Options() != DefaultOptions() {
		t.Errorf("options = %+v, want defaults", e.Options())
	}
}
