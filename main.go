// raven is a theme manager for Linux desktops.
//
// A theme is a directory of per-application configuration fragments (window
// manager, bar, terminal, editor colors, wallpaper). `raven load` installs
// every fragment a theme declares and reloads the affected programs; the
// hub subcommands publish themes to and fetch them from ThemeHub.
//
// Usage:
//
//	raven [command]
//
// Commands:
//
//	init                      Create ~/.config/raven
//	new|delete|edit <theme>   Manage themes
//	add <option> <file>       Add a file to the edited theme
//	rm <option>               Remove an option from the edited theme
//	key <key> <value>         Set a kv entry on the edited theme
//	load <theme>, refresh     Apply a theme
//	themes, info, check       Inspect themes
//	menu, pick                Choose a theme interactively
//	watch [theme]             Reapply a theme whenever its files change
//	cycle start|stop|check    Control the ravend cycling daemon
//	hub ...                   ThemeHub account and theme commands
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"gitlab.com/tinyland/lab/raven/pkg/config"
	"gitlab.com/tinyland/lab/raven/pkg/hub"
	"gitlab.com/tinyland/lab/raven/pkg/store"
	"gitlab.com/tinyland/lab/raven/pkg/theme"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

var (
	verbose      bool
	settingsPath string
)

// env is what every command needs, built once before the command runs.
var env struct {
	settings *config.Config
	layout   store.Layout
	logger   *slog.Logger
}

var rootCmd = &cobra.Command{
	Use:               "raven",
	Short:             "raven - a theme manager for Linux desktops",
	Long:              "raven installs, edits and shares desktop themes: window manager, bar, terminal and editor configs applied as a unit.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Path to settings.toml (default: $XDG_CONFIG_HOME/raven/settings.toml)")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "raven: %v\n", err)
		os.Exit(1)
	}
}

// setup loads settings, builds the logger and initialises the base
// directory on first use.
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	if settingsPath != "" {
		env.settings, err = config.LoadFromFile(settingsPath)
	} else {
		env.settings, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	level := env.settings.Level()
	if verbose {
		level = slog.LevelDebug
	}
	env.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(env.logger)

	if dir := env.settings.General.BaseDir; dir != "" {
		env.layout = store.Layout{Base: dir}
	} else if env.layout, err = store.DefaultLayout(); err != nil {
		return err
	}

	if cmd.Name() != "init" && store.NeedsInit(env.layout) {
		env.logger.Info("initialising raven", "base", env.layout.Base)
		return store.Init(env.layout, env.logger)
	}
	return nil
}

func newManager() (*theme.Manager, error) {
	return theme.NewManager(theme.Options{
		Layout:       env.layout,
		KillPrevious: env.settings.Apply.KillPrevious,
		Logger:       env.logger,
	})
}

func loadConfig() (*store.Config, error) {
	return store.LoadConfig(env.layout)
}

// editing returns the theme currently selected with `raven edit`.
func editing(cfg *store.Config) (string, error) {
	if cfg.Editing == "" {
		return "", errors.New("no theme is being edited, run `raven edit <theme>` first")
	}
	return cfg.Editing, nil
}

func newHubClient(cfg *store.Config) *hub.Client {
	host := cfg.Host
	if env.settings.Sync.Host != "" {
		host = env.settings.Sync.Host
	}
	return hub.New(host, env.layout,
		hub.WithHTTPClient(&http.Client{Timeout: env.settings.Sync.Timeout.Duration}),
		hub.WithTempDir(env.settings.Sync.TempDir),
		hub.WithLogger(env.logger),
	)
}
