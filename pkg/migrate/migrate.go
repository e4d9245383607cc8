// Package migrate upgrades deprecated on-disk theme formats.
//
// Two formats are handled: the pipe-delimited "theme" option list that
// predates theme.json, and single-purpose option files (vscode, st_tmtheme,
// st_scs, st_subltheme) whose contents now live in the theme's kv map.
// Both conversions delete the legacy file once the new store is saved, so
// running them again is a no-op.
package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// MigrationResult holds the outcome of converting one theme.
type MigrationResult struct {
	// Theme is the converted theme's name.
	Theme string

	// Success indicates whether the conversion completed without errors.
	Success bool

	// Warnings contains non-fatal issues encountered during conversion.
	Warnings []string

	// Changes lists every option the conversion touched.
	Changes []OptionChange
}

// OptionChange describes a single option moved by a conversion.
type OptionChange struct {
	// Option is the option name as written in the legacy file.
	Option string

	// Value is the recovered kv value, empty for pipe-format options.
	Value string

	// Action is one of "added" (pipe format) or "moved-to-kv" (single file).
	Action string
}

// Migrator converts legacy theme formats under one base directory.
type Migrator struct {
	layout store.Layout
	logger *slog.Logger
}

// New returns a Migrator for the given layout.
func New(l store.Layout, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{layout: l, logger: logger}
}

// NeedsMigration reports whether the theme still has a pipe-format "theme"
// file.
func (m *Migrator) NeedsMigration(name string) bool {
	_, err := os.Stat(m.layout.LegacyThemeFile(name))
	return err == nil
}

// CheckThemes converts every theme that still uses the pipe format. It stops
// at the first theme that fails.
func (m *Migrator) CheckThemes() ([]*MigrationResult, error) {
	names, err := store.ListThemes(m.layout)
	if err != nil {
		return nil, err
	}
	var results []*MigrationResult
	for _, name := range names {
		m.logger.Debug("checking theme", "theme", name)
		if !m.NeedsMigration(name) {
			continue
		}
		_, res, err := m.ConvertTheme(name)
		if err != nil {
			return results, fmt.Errorf("migrate theme %s: %w", name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// ConvertTheme reads themes/<name>/theme, saves its options as a fresh
// theme.json and removes the legacy file.
func (m *Migrator) ConvertTheme(name string) (*store.ThemeStore, *MigrationResult, error) {
	if err := store.ValidateName(name); err != nil {
		return nil, nil, err
	}
	legacy := m.layout.LegacyThemeFile(name)
	data, err := os.ReadFile(legacy)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &store.InvalidThemeError{Name: name}
		}
		return nil, nil, fmt.Errorf("read legacy theme: %w", err)
	}

	result := &MigrationResult{Theme: name}
	st := store.NewThemeStore(name)
	for _, opt := range ParsePipeOptions(string(data)) {
		if !st.AddOption(opt) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("duplicate option %q dropped", opt))
			continue
		}
		result.Changes = append(result.Changes, OptionChange{Option: opt, Action: "added"})
	}
	if _, err := os.Stat(m.layout.ThemeFile(name)); err == nil {
		result.Warnings = append(result.Warnings, "existing theme.json replaced by legacy theme file")
	}

	if err := store.SaveThemeStore(m.layout, st); err != nil {
		return nil, nil, err
	}
	if err := os.Remove(legacy); err != nil {
		return nil, nil, fmt.Errorf("remove legacy theme: %w", err)
	}

	result.Success = true
	m.logger.Info("converted legacy theme", "theme", name, "options", len(st.Options))
	for _, w := range result.Warnings {
		m.logger.Warn(w, "theme", name)
	}
	return st, result, nil
}

// ParsePipeOptions splits a pipe-delimited option list, trimming tokens and
// dropping blank ones.
func ParsePipeOptions(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, "|") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}
