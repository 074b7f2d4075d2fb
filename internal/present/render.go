package present

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Renderer draws board entries for a terminal
type Renderer struct {
	neutral lipgloss.Style
	truth   lipgloss.Style
	lie     lipgloss.Style
	plain   bool
}

// NewRenderer returns a renderer; color=false prints undecorated text
// with a [T]/[L] marker on revealed entries.
func NewRenderer(color bool) *Renderer {
	return &Renderer{
		neutral: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		truth:   lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Bold(true),
		lie:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		plain:   !color,
	}
}

// Entry renders one statement
func (r *Renderer) Entry(e RenderedStatement) string {
	text := e.Display()
	if r.plain {
		switch e.Color {
		case ColorTruth:
			return "[T] " + text
		case ColorLie:
			return "[L] " + text
		default:
			return text
		}
	}

	switch e.Color {
	case ColorTruth:
		return r.truth.Render(text)
	case ColorLie:
		return r.lie.Render(text)
	default:
		return r.neutral.Render(text)
	}
}

// Board renders all entries, one per line
func (r *Renderer) Board(entries []RenderedStatement) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = r.Entry(e)
	}
	return strings.Join(lines, "\n")
}
