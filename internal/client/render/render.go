// Package render formats markdown note content and AI replies for the
// terminal.
package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// DefaultWidth is the wrap width used when none is given.
const DefaultWidth = 80

// Renderer turns markdown into terminal text. It falls back to the raw
// input whenever rendering fails.
type Renderer struct {
	style string
	width int

	once sync.Once
	term *glamour.TermRenderer
}

// New creates a renderer. style is a glamour standard style name ("dark",
// "light", "notty", ...); an empty style disables rendering.
func New(style string, width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Renderer{style: style, width: width}
}

// ForTerminal picks the dark style on a terminal and plain output otherwise.
func ForTerminal(isTerminal bool, width int) *Renderer {
	if !isTerminal {
		return New(styles.NoTTYStyle, width)
	}
	return New(styles.DarkStyle, width)
}

func (r *Renderer) renderer() *glamour.TermRenderer {
	r.once.Do(func() {
		if r.style == "" {
			return
		}
		term, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(r.width),
		)
		if err == nil {
			r.term = term
		}
	})
	return r.term
}

// Markdown renders input.
func (r *Renderer) Markdown(input string) string {
	input = strings.TrimRight(input, "\n")
	if input == "" {
		return ""
	}
	term := r.renderer()
	if term == nil {
		return input
	}
	out, err := term.Render(input)
	if err != nil {
		return input
	}
	return strings.Trim(out, "\n")
}
