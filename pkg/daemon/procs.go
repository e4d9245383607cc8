// Package daemon handles the OS processes raven starts and stops: background
// bar instances spawned while applying a theme, leftovers of a previous theme
// found by name, and the external ravend cycle daemon.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"github.com/shirou/gopsutil/v4/process"
)

// Processes finds and signals running processes by executable name.
type Processes interface {
	// Signal delivers sig to every process called one of names and returns
	// how many were signalled.
	Signal(ctx context.Context, sig syscall.Signal, names ...string) (int, error)

	// Running reports whether any process is called name.
	Running(ctx context.Context, name string) (bool, error)
}

// ProcessTable implements Processes on top of the system process table.
type ProcessTable struct {
	logger *slog.Logger
}

// NewProcessTable returns a ProcessTable. The calling process is never
// matched.
func NewProcessTable(logger *slog.Logger) *ProcessTable {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessTable{logger: logger}
}

func (pt *ProcessTable) Signal(ctx context.Context, sig syscall.Signal, names ...string) (int, error) {
	matches, err := pt.find(ctx, names...)
	if err != nil {
		return 0, err
	}
	var errs []error
	n := 0
	for _, p := range matches {
		if err := p.SendSignalWithContext(ctx, sig); err != nil {
			errs = append(errs, fmt.Errorf("signal pid %d: %w", p.Pid, err))
			continue
		}
		pt.logger.Debug("signalled process", "pid", p.Pid, "signal", sig.String())
		n++
	}
	return n, errors.Join(errs...)
}

func (pt *ProcessTable) Running(ctx context.Context, name string) (bool, error) {
	matches, err := pt.find(ctx, name)
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

func (pt *ProcessTable) find(ctx context.Context, names ...string) ([]*process.Process, error) {
	all, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	self := int32(os.Getpid())

	var out []*process.Process
	for _, p := range all {
		if p.Pid == self {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// exited while scanning
			continue
		}
		if want[name] {
			out = append(out, p)
		}
	}
	return out, nil
}
