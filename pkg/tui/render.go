package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	tuiTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	tuiSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	tuiDimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func (m Model) View() string {
	if m.quitting || m.chosen != "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(tuiTitleStyle.Render("raven themes"))
	b.WriteString("\n\n")

	start, end := tuiWindow(len(m.visible), m.cursor, m.height-4)
	if len(m.visible) == 0 {
		b.WriteString(tuiDimStyle.Render("  no matches"))
		b.WriteString("\n")
	}
	for i := start; i < end; i++ {
		name := m.names[m.visible[i]]
		if i == m.cursor {
			b.WriteString(tuiSelectedStyle.Render("> " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.searching {
		b.WriteString(tuiRenderSearchBar(m.query, m.width))
	} else {
		b.WriteString(tuiDimStyle.Render("j/k move  / search  enter load  q quit"))
	}
	return b.String()
}

// tuiWindow returns the [start, end) slice of n rows that keeps cursor
// visible in rows lines. rows <= 0 shows everything.
func tuiWindow(n, cursor, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}
