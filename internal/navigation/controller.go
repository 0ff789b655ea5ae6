// Package navigation maps the reserved arrow keys to sibling-document
// navigation.
package navigation

import "github.com/starford/notedeck/internal/models"

// Reserved keys, named as browsers report them in KeyboardEvent.key.
const (
	KeyPrev = "ArrowLeft"
	KeyNext = "ArrowRight"
)

// LinkSource exposes the previous/next links of the current document. A nil
// link means there is no sibling in that direction.
type LinkSource interface {
	Prev() *models.Link
	Next() *models.Link
}

// Focus describes where keyboard focus is when a key arrives.
type Focus struct {
	// Editable is true while a text input owns the caret.
	Editable bool
}

// Controller dispatches key presses to Navigate.
type Controller struct {
	links    LinkSource
	navigate func(href string)
}

// NewController returns a controller reading links from src and calling
// navigate with the target href.
func NewController(src LinkSource, navigate func(href string)) *Controller {
	return &Controller{links: src, navigate: navigate}
}

// HandleKey reports whether the key triggered navigation. Keys pressed while
// an editable element has focus are left alone, as are unknown keys and
// directions without a link.
func (c *Controller) HandleKey(key string, focus Focus) bool {
	if focus.Editable || c.links == nil || c.navigate == nil {
		return false
	}

	var link *models.Link
	switch key {
	case KeyPrev:
		link = c.links.Prev()
	case KeyNext:
		link = c.links.Next()
	default:
		return false
	}
	if link == nil || link.Href == "" {
		return false
	}
	c.navigate(link.Href)
	return true
}

// StaticLinks is a LinkSource over fixed links.
type StaticLinks struct {
	PrevLink *models.Link
	NextLink *models.Link
}

// Prev implements LinkSource.
func (s StaticLinks) Prev() *models.Link { return s.PrevLink }

// Next implements LinkSource.
func (s StaticLinks) Next() *models.Link { return s.NextLink }
