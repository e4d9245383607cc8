package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

// helper to send a message through Update and return the updated Model.
func tuiUpdate(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func tuiRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel() Model {
	return New([]string{"dark", "light", "solarized", "dracula"}, "")
}

// --- Navigation ---

func TestCursorStartsOnCurrent(t *testing.T) {
	m := New([]string{"a", "b", "c"}, "c")
	m, _ = tuiUpdate(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen() != "c" {
		t.Errorf("chosen = %q, want c", m.Chosen())
	}
}

func TestMoveAndChoose(t *testing.T) {
	m := newTestModel()
	m, _ = tuiUpdate(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = tuiUpdate(m, tuiRunes("j"))
	m, _ = tuiUpdate(m, tuiRunes("k"))
	m, cmd := tuiUpdate(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen() != "light" {
		t.Errorf("chosen = %q, want light", m.Chosen())
	}
	if cmd == nil {
		t.Error("expected quit command after enter")
	}
}

func TestCursorClamps(t *testing.T) {
	m := newTestModel()
	m, _ = tuiUpdate(m, tea.KeyMsg{Type: tea.KeyUp})
	for range 10 {
		m, _ = tuiUpdate(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m, _ = tuiUpdate(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen() != "dracula" {
		t.Errorf("chosen = %q, want dracula", m.Chosen())
	}
}

// --- Quitting ---

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{
		tuiRunes("q"),
		{Type: tea.KeyEscape},
		{Type: tea.KeyCtrlC},
	} {
		m, cmd := tuiUpdate(newTestModel(), msg)
		if cmd == nil {
			t.Errorf("%s: expected quit command", msg)
		}
		if m.Chosen() != "" {
			t.Errorf("%s: chosen = %q", msg, m.Chosen())
		}
		if m.View() != "" {
			t.Errorf("%s: view not cleared", msg)
		}
	}
}

// --- Search ---

func TestSearchFilters(t *testing.T) {
	m := newTestModel()
	m, _ = tuiUpdate(m, tuiRunes("/"))
	m, cmd := tuiUpdate(m, tuiRunes("q"))
	if cmd != nil {
		t.Error("q in search mode should type, not quit")
	}
	m, _ = tuiUpdate(m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = tuiUpdate(m, tuiRunes("DR"))
	if m.SearchQuery() != "DR" {
		t.Errorf("query = %q", m.SearchQuery())
	}
	m, _ = tuiUpdate(m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = tuiUpdate(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Chosen() != "dracula" {
		t.Errorf("chosen = %q, want dracula", m.Chosen())
	}
}

func TestSearchEscapeRestores(t *testing.T) {
	m := newTestModel()
	m, _ = tuiUpdate(m, tuiRunes("/"))
	m, _ = tuiUpdate(m, tuiRunes("zzz"))
	if !strings.Contains(m.View(), "no matches") {
		t.Error("expected empty result message")
	}
	m, _ = tuiUpdate(m, tea.KeyMsg{Type: tea.KeyEnter})
	if _, cmd := tuiUpdate(m, tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter on empty list should not quit")
	}

	m, _ = tuiUpdate(m, tuiRunes("/"))
	m, _ = tuiUpdate(m, tea.KeyMsg{Type: tea.KeyEscape})
	if m.SearchQuery() != "" {
		t.Errorf("query = %q after escape", m.SearchQuery())
	}
	if !strings.Contains(m.View(), "solarized") {
		t.Error("escape did not restore the full list")
	}
}

func TestFilterNames(t *testing.T) {
	names := []string{"Dark", "light", "darker"}
	if got := tuiFilterNames(names, ""); len(got) != 3 {
		t.Errorf("empty query = %v", got)
	}
	got := tuiFilterNames(names, "dark")
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("dark = %v, want [0 2]", got)
	}
}

// --- Rendering ---

func TestWindow(t *testing.T) {
	cases := []struct {
		n, cursor, rows int
		start, end      int
	}{
		{5, 0, 0, 0, 5},
		{5, 0, 10, 0, 5},
		{20, 0, 5, 0, 5},
		{20, 10, 5, 8, 13},
		{20, 19, 5, 15, 20},
	}
	for _, tc := range cases {
		s, e := tuiWindow(tc.n, tc.cursor, tc.rows)
		if s != tc.start || e != tc.end {
			t.Errorf("tuiWindow(%d,%d,%d) = %d,%d; want %d,%d", tc.n, tc.cursor, tc.rows, s, e, tc.start, tc.end)
		}
	}
}

func TestSearchBarTruncates(t *testing.T) {
	if got := tuiRenderSearchBar("abcdef", 4); got != "/abc" {
		t.Errorf("got %q", got)
	}
	if got := tuiRenderSearchBar("ab", 0); got != "/ab_" {
		t.Errorf("got %q", got)
	}
}
