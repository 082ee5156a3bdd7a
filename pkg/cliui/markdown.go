package cliui

import "github.com/charmbracelet/glamour"

// MarkdownWidth is the wrap column for RenderMarkdown.
const MarkdownWidth = 80

// RenderMarkdown renders markdown for the terminal. On failure the content
// is returned unrendered together with the error.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(MarkdownWidth),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return rendered, nil
}
