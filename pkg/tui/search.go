package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// tuiRenderSearchBar renders the search input that replaces the help line
// while search mode is active.
func tuiRenderSearchBar(query string, width int) string {
	display := "/" + query + "_"
	if width <= 0 {
		return display
	}
	return ansi.Truncate(display, width, "")
}

// tuiFilterNames returns the indices of names containing query,
// case-insensitively. An empty query returns all indices.
func tuiFilterNames(names []string, query string) []int {
	if query == "" {
		indices := make([]int, len(names))
		for i := range names {
			indices[i] = i
		}
		return indices
	}

	lower := strings.ToLower(query)
	var result []int
	for i, n := range names {
		if strings.Contains(strings.ToLower(n), lower) {
			result = append(result, i)
		}
	}
	return result
}
