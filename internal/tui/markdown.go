package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// minMarkdownWidth keeps glamour from wrapping every word on tiny terminals
const minMarkdownWidth = 20

// markdown renders assistant replies, caching the output per message id.
// The cache is dropped whenever the wrap width changes.
type markdown struct {
	width    int
	renderer *glamour.TermRenderer
	cache    map[string]string
}

func newMarkdown() *markdown {
	return &markdown{cache: make(map[string]string)}
}

func (md *markdown) render(id, content string, width int) string {
	if width < minMarkdownWidth {
		width = minMarkdownWidth
	}
	if md.renderer == nil || md.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return content
		}
		md.renderer, md.width = r, width
		md.cache = make(map[string]string)
	}

	if id != "" {
		if out, ok := md.cache[id]; ok {
			return out
		}
	}

	out, err := md.renderer.Render(content)
	if err != nil {
		return content
	}
	out = strings.TrimRight(out, "\n")
	if id != "" {
		md.cache[id] = out
	}
	return out
}
