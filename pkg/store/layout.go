package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File and directory names inside the base directory.
const (
	ConfigFile       = "config.json"
	LegacyConfigFile = "config"
	UserInfoFile     = "ravenserver.json"
	ThemesDir        = "themes"
	ThemeFile        = "theme.json"
	LegacyThemeFile  = "theme"
)

// Layout resolves paths under a raven base directory.
type Layout struct {
	Base string
}

// DefaultLayout returns the layout rooted at $XDG_CONFIG_HOME/raven, falling
// back to ~/.config/raven.
func DefaultLayout() (Layout, error) {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return Layout{Base: filepath.Join(v, "raven")}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return Layout{}, fmt.Errorf("resolve home directory: %w", err)
	}
	return Layout{Base: filepath.Join(home, ".config", "raven")}, nil
}

func (l Layout) ConfigPath() string   { return filepath.Join(l.Base, ConfigFile) }
func (l Layout) UserInfoPath() string { return filepath.Join(l.Base, UserInfoFile) }
func (l Layout) ThemesDir() string    { return filepath.Join(l.Base, ThemesDir) }

// ThemeDir returns themes/<name>.
func (l Layout) ThemeDir(name string) string {
	return filepath.Join(l.Base, ThemesDir, name)
}

// ThemeFile returns themes/<name>/theme.json.
func (l Layout) ThemeFile(name string) string {
	return filepath.Join(l.ThemeDir(name), ThemeFile)
}

// LegacyThemeFile returns the pipe-delimited themes/<name>/theme file.
func (l Layout) LegacyThemeFile(name string) string {
	return filepath.Join(l.ThemeDir(name), LegacyThemeFile)
}

// OptionFile returns the fragment a theme ships for one option.
func (l Layout) OptionFile(name, option string) string {
	return filepath.Join(l.ThemeDir(name), option)
}

// BaseFragment returns a shared fragment such as base_i3 or base_rc.xml.
func (l Layout) BaseFragment(file string) string {
	return filepath.Join(l.Base, file)
}

// ThemeExists reports whether themes/<name> is a directory.
func (l Layout) ThemeExists(name string) bool {
	if ValidateName(name) != nil {
		return false
	}
	info, err := os.Stat(l.ThemeDir(name))
	return err == nil && info.IsDir()
}

// ListThemes returns the names of all theme directories, sorted.
func ListThemes(l Layout) ([]string, error) {
	entries, err := os.ReadDir(l.ThemesDir())
	if err != nil {
		return nil, fmt.Errorf("read themes directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ValidateName rejects names that cannot be used as a single directory
// component under themes/.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "",
		name == ".", name == "..",
		strings.ContainsAny(name, `/\`),
		strings.ContainsRune(name, 0):
		return &InvalidThemeError{Name: name}
	}
	return nil
}
