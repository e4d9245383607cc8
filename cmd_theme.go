package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/raven/pkg/loader"
	"gitlab.com/tinyland/lab/raven/pkg/store"
	"gitlab.com/tinyland/lab/raven/pkg/theme"
	"gitlab.com/tinyland/lab/raven/pkg/tui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the raven config directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return store.Init(env.layout, env.logger)
	},
}

var newCmd = &cobra.Command{
	Use:   "new <theme>",
	Short: "Create a theme and start editing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cfg, err := managerAndConfig()
		if err != nil {
			return err
		}
		if err := m.NewTheme(args[0], cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s and started editing it.\n", args[0])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <theme>",
	Short: "Delete a theme and all of its files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}
		return m.DelTheme(args[0])
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <theme>",
	Short: "Select the theme that add, rm and key operate on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cfg, err := managerAndConfig()
		if err != nil {
			return err
		}
		name, err := m.Edit(args[0], cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "You are now editing the theme %s\n", name)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <option> <file>",
	Short: "Copy a file into the edited theme as an option",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cfg, err := managerAndConfig()
		if err != nil {
			return err
		}
		name, err := editing(cfg)
		if err != nil {
			return err
		}
		return m.AddToTheme(name, args[0], args[1])
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <option>",
	Short: "Remove an option from the edited theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cfg, err := managerAndConfig()
		if err != nil {
			return err
		}
		name, err := editing(cfg)
		if err != nil {
			return err
		}
		return m.RmFromTheme(name, args[0])
	},
}

var keyCmd = &cobra.Command{
	Use:   "key <key> <value>",
	Short: "Set a key/value entry on the edited theme",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cfg, err := managerAndConfig()
		if err != nil {
			return err
		}
		name, err := editing(cfg)
		if err != nil {
			return err
		}
		return m.KeyValue(name, args[0], args[1])
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <theme>",
	Short: "Apply a theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return loadTheme(cmd, args[0])
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reapply the last loaded theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, cfg, err := managerAndConfig()
		if err != nil {
			return err
		}
		report, err := m.RefreshTheme(cmd.Context(), cfg)
		printReport(cmd, report)
		return err
	},
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List installed themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, cfg, err := managerAndConfig()
		if err != nil {
			return err
		}
		names, err := m.ListThemes()
		if err != nil {
			return err
		}
		for _, n := range names {
			mark := " "
			switch n {
			case cfg.Last:
				mark = "*"
			case cfg.Editing:
				mark = "e"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, n)
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info [theme]",
	Short: "Print a theme's metadata as YAML",
	Long:  "Print a theme's metadata as YAML. Without an argument the edited theme is shown.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		var name string
		if len(args) == 1 {
			name = args[0]
		} else if name, err = editing(cfg); err != nil {
			return err
		}
		st, err := store.LoadThemeStore(env.layout, name)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(st); err != nil {
			return err
		}
		return enc.Close()
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Convert themes still using the old pipe-delimited format",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := newManager()
		if err != nil {
			return err
		}
		results, err := m.CheckThemes()
		for _, res := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "converted %s (%d options)\n", res.Theme, len(res.Changes))
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.OutOrStdout(), "  warning: %s\n", w)
			}
		}
		return err
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Choose a theme with the configured menu command and load it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, err := menuSelect(cmd.Context())
		if err != nil || name == "" {
			return err
		}
		return loadTheme(cmd, name)
	},
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose a theme in the terminal and load it",
	Long:  "Choose a theme in the terminal and load it. Without a terminal the configured menu command is used instead.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
			env.logger.Debug("no terminal, falling back to menu command")
			return menuCmd.RunE(cmd, nil)
		}
		m, cfg, err := managerAndConfig()
		if err != nil {
			return err
		}
		names, err := m.ListThemes()
		if err != nil {
			return err
		}
		name, err := tui.Run(names, cfg.Last)
		if errors.Is(err, tui.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
		return loadTheme(cmd, name)
	},
}

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [theme]",
	Short: "Reapply a theme whenever its files change",
	Long:  "Load a theme, then reload it each time a file in its directory changes. Without an argument the edited theme is watched.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cfg, err := managerAndConfig()
		if err != nil {
			return err
		}
		var name string
		if len(args) == 1 {
			name = args[0]
		} else if name, err = editing(cfg); err != nil {
			return err
		}
		debounce := watchDebounce
		if debounce == 0 {
			debounce = env.settings.Apply.WatchDebounce.Duration
		}

		apply := func(ctx context.Context) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			report, err := m.Run(ctx, name, cfg)
			printReport(cmd, report)
			return err
		}
		if err := apply(cmd.Context()); err != nil {
			env.logger.Warn("initial load failed", "theme", name, "err", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s, press ctrl+c to stop.\n", name)
		return m.Watch(cmd.Context(), name, debounce, apply)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period before reapplying (default from settings)")

	rootCmd.AddCommand(initCmd, newCmd, deleteCmd, editCmd, addCmd, rmCmd, keyCmd,
		loadCmd, refreshCmd, themesCmd, infoCmd, checkCmd, menuCmd, pickCmd, watchCmd)
}

func managerAndConfig() (*theme.Manager, *store.Config, error) {
	m, err := newManager()
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return m, cfg, nil
}

func loadTheme(cmd *cobra.Command, name string) error {
	m, cfg, err := managerAndConfig()
	if err != nil {
		return err
	}
	report, err := m.Run(cmd.Context(), name, cfg)
	printReport(cmd, report)
	return err
}

func printReport(cmd *cobra.Command, report *loader.Report) {
	if report == nil {
		return
	}
	out := cmd.OutOrStdout()
	failed := len(report.Failed())
	fmt.Fprintf(out, "Loaded %s: %d applied, %d failed.\n", report.Theme, len(report.Results)-failed, failed)
	for _, res := range report.Results {
		if res.Outcome == loader.Skipped && res.Err == nil {
			fmt.Fprintf(out, "  %s: skipped, not installed\n", res.Name())
		}
	}
	for _, key := range report.Ignored {
		fmt.Fprintf(out, "  kv:%s: ignored, unknown key\n", key)
	}
}

// menuSelect pipes theme names through the configured menu command and
// returns the selected line, or "" if nothing was chosen.
func menuSelect(ctx context.Context) (string, error) {
	m, cfg, err := managerAndConfig()
	if err != nil {
		return "", err
	}
	names, err := m.ListThemes()
	if err != nil {
		return "", err
	}

	c := exec.CommandContext(ctx, "sh", "-c", cfg.MenuCommand)
	c.Stdin = strings.NewReader(strings.Join(names, "\n"))
	var stderr bytes.Buffer
	c.Stderr = &stderr
	out, err := c.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(bytes.TrimSpace(out)) == 0 {
			// Menus exit non-zero when dismissed.
			env.logger.Debug("menu dismissed", "code", exitErr.ExitCode())
			return "", nil
		}
		return "", fmt.Errorf("menu command: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}
