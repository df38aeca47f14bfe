package ui

import (
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders markdown styled for the terminal.
// Returns the text unchanged when a renderer cannot be built.
func RenderMarkdown(md string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return md
	}

	out, err := renderer.Render(md)
	if err != nil {
		return md
	}

	return out
}
