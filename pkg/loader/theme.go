package loader

import (
	"maps"
	"path/filepath"
	"slices"

	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// Theme is a ThemeStore resolved for application: options are parsed into
// tags and the monitor settings of the current Config are attached. It is
// rebuilt on every load and never persisted.
type Theme struct {
	Name        string
	Dir         string
	Options     []Tag
	Enabled     []string
	Screenshot  string
	Description string
	KV          map[string]string

	Monitors     int
	MonitorOrder []string
}

// NewTheme builds a Theme from its store. Option names outside the Tag
// enumeration are dropped and returned separately.
func NewTheme(dir string, st *store.ThemeStore, cfg *store.Config) (*Theme, []string) {
	t := &Theme{
		Name:        st.Name,
		Dir:         dir,
		Enabled:     slices.Clone(st.Enabled),
		Screenshot:  st.Screenshot,
		Description: st.Description,
		KV:          maps.Clone(st.KV),
	}
	if t.KV == nil {
		t.KV = map[string]string{}
	}
	if cfg != nil {
		t.Monitors = cfg.Monitors
		t.MonitorOrder = slices.Clone(cfg.Polybar)
	}

	var unknown []string
	for _, opt := range st.Options {
		tag, err := ParseTag(opt)
		if err != nil {
			unknown = append(unknown, opt)
			continue
		}
		t.Options = append(t.Options, tag)
	}
	return t, unknown
}

// File returns the path of the fragment the theme ships for tag.
func (t *Theme) File(tag Tag) string {
	return filepath.Join(t.Dir, tag.File())
}

// Has reports whether the theme declares tag.
func (t *Theme) Has(tag Tag) bool {
	return slices.Contains(t.Options, tag)
}
