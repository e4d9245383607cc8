// Package tui is the interactive theme picker behind `raven pick`.
package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned by Run when the picker is closed without a
// selection.
var ErrCancelled = errors.New("no theme selected")

// Model is the bubbletea model of the picker. It lists theme names, moves a
// cursor over the visible subset and supports a "/" search mode that
// narrows the list by substring.
type Model struct {
	names   []string
	visible []int
	cursor  int

	searching bool
	query     string

	chosen   string
	quitting bool

	width  int
	height int
}

// New returns a picker over names. The cursor starts on current when it is
// present.
func New(names []string, current string) Model {
	m := Model{names: names}
	m.visible = tuiFilterNames(names, "")
	for i, n := range names {
		if n == current {
			m.cursor = i
		}
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "/":
		m.searching = true
	case "enter":
		if len(m.visible) == 0 {
			return m, nil
		}
		m.chosen = m.names[m.visible[m.cursor]]
		return m, tea.Quit
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.searching = false
		m.query = ""
	case tea.KeyEnter:
		m.searching = false
		return m, nil
	case tea.KeyBackspace:
		if m.query != "" {
			r := []rune(m.query)
			m.query = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		m.query += string(msg.Runes)
	default:
		return m, nil
	}
	m.visible = tuiFilterNames(m.names, m.query)
	m.cursor = 0
	return m, nil
}

// Chosen returns the selected name, empty if none.
func (m Model) Chosen() string { return m.chosen }

// SearchQuery returns the current search text.
func (m Model) SearchQuery() string { return m.query }

// Run shows the picker on the terminal and returns the chosen name.
func Run(names []string, current string) (string, error) {
	if len(names) == 0 {
		return "", errors.New("no themes installed")
	}
	final, err := tea.NewProgram(New(names, current)).Run()
	if err != nil {
		return "", err
	}
	chosen := final.(Model).Chosen()
	if chosen == "" {
		return "", ErrCancelled
	}
	return chosen, nil
}
