package hub

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	dangerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
)

const reportedNotice = "This theme has recently been reported, and has not been approved by an admin. " +
	"It is not advisable to install this theme."

// InstallWarning is printed after a theme is downloaded. Themes that ship a
// script or lemonbar file get an extra line since those run on load.
func InstallWarning(host string, executable bool) string {
	var b strings.Builder
	b.WriteString(warnStyle.Render(fmt.Sprintf(
		"Warning: When you install themes from the online repo, there is some danger. "+
			"Please evaluate the theme files before loading the theme, and if you find any malicious theme, "+
			"please report it on the theme's page at %s and it will be removed.", host)))
	if executable {
		b.WriteString("\n")
		b.WriteString(dangerStyle.Render(
			"This theme should be scrutinized more carefully as it includes a bash script which will be run automatically."))
	}
	b.WriteString("\nThank you for helping keep the repo clean!")
	return b.String()
}
