// Package theme manages the lifecycle of raven themes: creating and editing
// them, applying one to the desktop, and keeping track of the processes a
// running theme leaves behind.
package theme

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"gitlab.com/tinyland/lab/raven/pkg/daemon"
	"gitlab.com/tinyland/lab/raven/pkg/loader"
	"gitlab.com/tinyland/lab/raven/pkg/migrate"
	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// DefaultKillPrevious names the processes a previous theme may have left
// running.
var DefaultKillPrevious = []string{"polybar", "lemonbar", "dunst"}

// Options configures a Manager. Zero values select the real system
// implementations.
type Options struct {
	Layout store.Layout
	// Home is where target application configs live. Defaults to the
	// user's home directory.
	Home string

	Runner       loader.Runner
	Processes    daemon.Processes
	Registry     *loader.Registry
	KillPrevious []string
	Logger       *slog.Logger
}

// Manager applies and edits themes under one base directory.
type Manager struct {
	layout   store.Layout
	migrator *migrate.Migrator
	dispatch *loader.Dispatcher
	procs    daemon.Processes
	bars     *daemon.Group
	kill     []string
	logger   *slog.Logger
}

// NewManager wires a Manager from opts.
func NewManager(opts Options) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	home := opts.Home
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		home = h
	}

	m := &Manager{
		layout:   opts.Layout,
		migrator: migrate.New(opts.Layout, logger),
		procs:    opts.Processes,
		bars:     daemon.NewGroup(logger),
		kill:     opts.KillPrevious,
		logger:   logger,
	}
	if m.procs == nil {
		m.procs = daemon.NewProcessTable(logger)
	}
	if m.kill == nil {
		m.kill = DefaultKillPrevious
	}

	registry := opts.Registry
	if registry == nil {
		runner := opts.Runner
		if runner == nil {
			runner = &loader.ExecRunner{Group: m.bars, Logger: logger}
		}
		registry = loader.Builtins(&loader.Env{
			Home:      home,
			Base:      opts.Layout.Base,
			Runner:    runner,
			Processes: m.procs,
			Migrator:  m.migrator,
			Logger:    logger,
		})
	}
	m.dispatch = loader.NewDispatcher(registry, logger)
	return m, nil
}

// Layout returns the directory layout the manager works on.
func (m *Manager) Layout() store.Layout { return m.layout }

// Bars returns the background processes started by applied themes.
func (m *Manager) Bars() *daemon.Group { return m.bars }

// --- applying ---

// ClearPrevious terminates the bars and notification daemon a previous theme
// may have started, whether or not this process started them.
func (m *Manager) ClearPrevious(ctx context.Context) error {
	if err := m.bars.Stop(2 * time.Second); err != nil {
		m.logger.Warn("stopping tracked processes", "err", err)
	}
	n, err := m.procs.Signal(ctx, unix.SIGTERM, m.kill...)
	if err != nil {
		return fmt.Errorf("clear previous theme: %w", err)
	}
	m.logger.Debug("cleared previous theme", "terminated", n)
	return nil
}

// RunTheme applies t and records it as the last applied theme. Loader
// failures do not stop the run; they are collected in the report and also
// returned as an error once the config has been saved.
func (m *Manager) RunTheme(ctx context.Context, t *loader.Theme, cfg *store.Config) (*loader.Report, error) {
	if err := m.ClearPrevious(ctx); err != nil {
		m.logger.Warn("could not clear previous theme", "err", err)
	}
	report := m.dispatch.LoadAll(ctx, t)

	cfg.Last = t.Name
	if err := store.SaveConfig(m.layout, cfg); err != nil {
		return report, err
	}
	if err := report.Err(); err != nil {
		return report, fmt.Errorf("theme %s applied with failures: %w", t.Name, err)
	}
	return report, nil
}

// Run loads the named theme and applies it.
func (m *Manager) Run(ctx context.Context, name string, cfg *store.Config) (*loader.Report, error) {
	t, err := m.LoadTheme(name, cfg)
	if err != nil {
		return nil, err
	}
	return m.RunTheme(ctx, t, cfg)
}

// RefreshTheme reapplies the last applied theme.
func (m *Manager) RefreshTheme(ctx context.Context, cfg *store.Config) (*loader.Report, error) {
	if cfg.Last == "" {
		m.logger.Info("no last theme saved, cannot refresh")
		return nil, &store.InvalidThemeError{Name: cfg.Last}
	}
	return m.Run(ctx, cfg.Last, cfg)
}

// Stop terminates the background processes started by themes applied
// through this manager.
func (m *Manager) Stop(grace time.Duration) error {
	return m.bars.Stop(grace)
}

// --- loading ---

// LoadTheme reads the named theme and resolves it against cfg. A theme that
// still uses the pipe format is converted first.
func (m *Manager) LoadTheme(name string, cfg *store.Config) (*loader.Theme, error) {
	if !m.layout.ThemeExists(name) {
		return nil, &store.InvalidThemeError{Name: name}
	}
	if _, err := os.Stat(m.layout.ThemeFile(name)); errors.Is(err, fs.ErrNotExist) && m.migrator.NeedsMigration(name) {
		if _, _, err := m.migrator.ConvertTheme(name); err != nil {
			return nil, err
		}
	}
	st, err := store.LoadThemeStore(m.layout, name)
	if err != nil {
		return nil, err
	}
	t, unknown := loader.NewTheme(m.layout.ThemeDir(name), st, cfg)
	for _, opt := range unknown {
		m.logger.Warn("ignoring unknown option", "theme", name, "option", opt)
	}
	return t, nil
}

// ListThemes returns every theme name.
func (m *Manager) ListThemes() ([]string, error) {
	return store.ListThemes(m.layout)
}

// LoadThemes loads every theme that can be loaded, skipping broken ones.
func (m *Manager) LoadThemes(cfg *store.Config) ([]*loader.Theme, error) {
	names, err := m.ListThemes()
	if err != nil {
		return nil, err
	}
	var themes []*loader.Theme
	for _, name := range names {
		t, err := m.LoadTheme(name, cfg)
		if err != nil {
			m.logger.Debug("skipping theme", "theme", name, "err", err)
			continue
		}
		themes = append(themes, t)
	}
	return themes, nil
}

// CheckThemes converts every theme still in the pipe format.
func (m *Manager) CheckThemes() ([]*migrate.MigrationResult, error) {
	return m.migrator.CheckThemes()
}
