package loader

import (
	"fmt"
	"slices"
)

// Tag identifies an option a theme declares. Its value is also the name of
// the fragment file the theme ships for it.
type Tag string

const (
	Polybar                  Tag = "poly"
	LegacyWM                 Tag = "wm"
	I3                       Tag = "i3"
	Xresources               Tag = "xres"
	MergeXresources          Tag = "xres_m"
	Pywal                    Tag = "pywal"
	Wallpaper                Tag = "wall"
	Ncmpcpp                  Tag = "ncmpcpp"
	Termite                  Tag = "termite"
	Script                   Tag = "script"
	Bspwm                    Tag = "bspwm"
	Rofi                     Tag = "rofi"
	Ranger                   Tag = "ranger"
	Lemonbar                 Tag = "lemonbar"
	Openbox                  Tag = "openbox"
	Dunst                    Tag = "dunst"
	VSCode                   Tag = "vscode"
	LegacySublimeTheme       Tag = "st_subltheme"
	LegacySublimeColorScheme Tag = "st_scs"
	LegacySublimeThemeFile   Tag = "st_tmtheme"
)

var allTags = []Tag{
	Polybar, LegacyWM, I3, Xresources, MergeXresources, Pywal, Wallpaper,
	Ncmpcpp, Termite, Script, Bspwm, Rofi, Ranger, Lemonbar, Openbox, Dunst,
	VSCode, LegacySublimeTheme, LegacySublimeColorScheme, LegacySublimeThemeFile,
}

// AllTags returns every tag in declaration order.
func AllTags() []Tag {
	return slices.Clone(allTags)
}

// ParseTag resolves an option name to its Tag.
func ParseTag(s string) (Tag, error) {
	t := Tag(s)
	if !slices.Contains(allTags, t) {
		return "", &UnknownOptionError{Option: s}
	}
	return t, nil
}

// File returns the fragment file name under the theme directory.
func (t Tag) File() string { return string(t) }

// Legacy reports whether the tag is a single-file option that has been
// superseded by a kv entry of the same name.
func (t Tag) Legacy() bool {
	switch t {
	case VSCode, LegacySublimeTheme, LegacySublimeColorScheme, LegacySublimeThemeFile:
		return true
	}
	return false
}

// UnknownOptionError reports an option name outside the Tag enumeration.
type UnknownOptionError struct {
	Option string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown option %q", e.Option)
}
