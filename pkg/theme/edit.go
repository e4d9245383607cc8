package theme

import (
	"fmt"
	"os"

	"gitlab.com/tinyland/lab/raven/pkg/loader"
	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// Edit marks the named theme as the one being edited.
func (m *Manager) Edit(name string, cfg *store.Config) (string, error) {
	if !m.layout.ThemeExists(name) {
		return "", &store.InvalidThemeError{Name: name}
	}
	cfg.Editing = name
	if err := store.SaveConfig(m.layout, cfg); err != nil {
		return "", err
	}
	m.logger.Info("editing theme", "theme", name)
	return name, nil
}

// NewTheme creates an empty theme and starts editing it.
func (m *Manager) NewTheme(name string, cfg *store.Config) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	if err := os.Mkdir(m.layout.ThemeDir(name), 0o755); err != nil {
		return fmt.Errorf("create theme %s: %w", name, err)
	}
	if err := store.SaveThemeStore(m.layout, store.NewThemeStore(name)); err != nil {
		return err
	}
	_, err := m.Edit(name, cfg)
	return err
}

// DelTheme removes the theme directory and everything in it.
func (m *Manager) DelTheme(name string) error {
	if err := store.ValidateName(name); err != nil {
		return err
	}
	if err := os.RemoveAll(m.layout.ThemeDir(name)); err != nil {
		return fmt.Errorf("delete theme %s: %w", name, err)
	}
	m.logger.Info("deleted theme", "theme", name)
	return nil
}

// AddToTheme copies src into the theme as the fragment for option and
// declares the option. Adding an option twice replaces the fragment but
// declares it once.
func (m *Manager) AddToTheme(name, option, src string) error {
	tag, err := loader.ParseTag(option)
	if err != nil {
		return err
	}
	st, err := store.LoadThemeStore(m.layout, name)
	if err != nil {
		return err
	}
	if err := store.CopyFile(src, m.layout.OptionFile(name, tag.File())); err != nil {
		return fmt.Errorf("copy %s into theme: %w", src, err)
	}
	if !st.AddOption(string(tag)) {
		m.logger.Debug("option already declared", "theme", name, "option", option)
		return nil
	}
	return store.SaveThemeStore(m.layout, st)
}

// RmFromTheme removes option from the theme's declared options. The
// fragment file is left in place.
func (m *Manager) RmFromTheme(name, option string) error {
	st, err := store.LoadThemeStore(m.layout, name)
	if err != nil {
		return err
	}
	if !st.RemoveOption(option) {
		m.logger.Info("option not declared", "theme", name, "option", option)
		return &store.InvalidThemeError{Name: name}
	}
	return store.SaveThemeStore(m.layout, st)
}

// KeyValue sets a kv entry on the theme.
func (m *Manager) KeyValue(name, key, value string) error {
	st, err := store.LoadThemeStore(m.layout, name)
	if err != nil {
		return err
	}
	st.KV[key] = value
	return store.SaveThemeStore(m.layout, st)
}
