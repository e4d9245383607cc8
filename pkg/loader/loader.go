// Package loader applies a theme to the applications it configures.
//
// Each option a theme declares is bound to a Loader through a Registry. A
// Dispatcher runs the loaders of a theme in reverse declaration order, then
// feeds the theme's kv entries through the registered KeyLoaders, and
// returns a Report of what succeeded, was skipped or failed. A failing
// loader never stops the ones after it.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"syscall"

	"gitlab.com/tinyland/lab/raven/pkg/daemon"
	"gitlab.com/tinyland/lab/raven/pkg/migrate"
)

// Outcome is the non-error result of applying one option.
type Outcome int

const (
	// Applied means the target application was configured.
	Applied Outcome = iota
	// Skipped means the target application is not installed.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Loader applies one option of a theme.
type Loader interface {
	Tag() Tag
	Apply(ctx context.Context, t *Theme) (Outcome, error)
}

// KeyLoader applies one kv entry of a theme.
type KeyLoader interface {
	Key() string
	ApplyKey(ctx context.Context, t *Theme, value string) (Outcome, error)
}

// Runner executes external programs on behalf of loaders.
type Runner interface {
	// Run executes name and waits for it.
	Run(ctx context.Context, name string, args ...string) error

	// Start executes name in the background without waiting for it.
	Start(name string, args ...string) error
}

// SingleConverter turns a legacy single-file option into a kv entry and
// returns the recovered value.
type SingleConverter interface {
	ConvertSingle(theme, key string) (string, *migrate.MigrationResult, error)
}

// Env is what loaders need beyond the theme itself.
type Env struct {
	// Home is the directory target application configs are resolved under.
	Home string

	// Base is the raven base directory holding shared base_* fragments.
	Base string

	Runner    Runner
	Processes daemon.Processes
	Migrator  SingleConverter
	Logger    *slog.Logger
}

// ExecRunner runs programs with os/exec. Background processes are tracked
// in Group.
type ExecRunner struct {
	Group  *daemon.Group
	Logger *slog.Logger
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	r.logger().Debug("running", "cmd", name, "args", args)
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (r *ExecRunner) Start(name string, args ...string) error {
	r.logger().Debug("starting", "cmd", name, "args", args)
	cmd := exec.Command(name, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	_, err := r.Group.Start(name, cmd)
	return err
}

func (r *ExecRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
