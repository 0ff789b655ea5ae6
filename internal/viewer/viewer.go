// Package viewer configures the browser PDF viewer: zoom bounds, key
// bindings and the proxy URL it loads documents through.
package viewer

import "net/url"

// Zoom bounds.
const (
	MinScale     = 0.5
	MaxScale     = 4.0
	ScaleStep    = 0.25
	DefaultScale = 1.5
)

// ProxyPath is the endpoint that streams remote documents to the viewer.
const ProxyPath = "/proxy-pdf"

// Action names a viewer command. The values match the handlers in viewer.js.
type Action string

const (
	ActionPrevPage  Action = "prev"
	ActionNextPage  Action = "next"
	ActionZoomIn    Action = "zoomIn"
	ActionZoomOut   Action = "zoomOut"
	ActionResetZoom Action = "reset"
	ActionBack      Action = "back"
)

// KeyMap returns the KeyboardEvent.key bindings.
func KeyMap() map[string]Action {
	return map[string]Action{
		"ArrowLeft":  ActionPrevPage,
		"ArrowRight": ActionNextPage,
		"+":          ActionZoomIn,
		"=":          ActionZoomIn,
		"-":          ActionZoomOut,
		"0":          ActionResetZoom,
		"Escape":     ActionBack,
	}
}

// Settings is handed to viewer.js as JSON.
type Settings struct {
	Source       string            `json:"source"`
	MinScale     float64           `json:"minScale"`
	MaxScale     float64           `json:"maxScale"`
	ScaleStep    float64           `json:"scaleStep"`
	DefaultScale float64           `json:"defaultScale"`
	Keys         map[string]Action `json:"keys"`
}

// NewSettings returns the settings for viewing target through the proxy.
func NewSettings(target string) Settings {
	return Settings{
		Source:       ProxyURL(target),
		MinScale:     MinScale,
		MaxScale:     MaxScale,
		ScaleStep:    ScaleStep,
		DefaultScale: DefaultScale,
		Keys:         KeyMap(),
	}
}

// ProxyURL returns the proxy address the viewer fetches target through.
func ProxyURL(target string) string {
	return ProxyPath + "?" + url.Values{"url": {target}}.Encode()
}
