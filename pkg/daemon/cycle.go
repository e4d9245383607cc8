package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// CycleDaemonName is the executable name of the theme cycling daemon.
const CycleDaemonName = "ravend"

// Cycle starts, stops and inspects the external ravend process.
type Cycle struct {
	pidPath string
	procs   Processes
	logger  *slog.Logger

	// command builds the daemon process; replaced in tests.
	command func() *exec.Cmd
}

// NewCycle returns a Cycle that records the daemon pid at pidPath.
func NewCycle(pidPath string, procs Processes, logger *slog.Logger) *Cycle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cycle{
		pidPath: pidPath,
		procs:   procs,
		logger:  logger,
		command: func() *exec.Cmd { return exec.Command(CycleDaemonName) },
	}
}

// Start launches ravend detached from the caller and returns its pid.
func (c *Cycle) Start(ctx context.Context) (int, error) {
	running, err := c.Running(ctx)
	if err != nil {
		return 0, err
	}
	if running {
		return 0, fmt.Errorf("%s is already running", CycleDaemonName)
	}

	cmd := c.command()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", CycleDaemonName, err)
	}
	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, fmt.Errorf("release %s: %w", CycleDaemonName, err)
	}
	if err := WritePID(c.pidPath, pid); err != nil {
		return pid, err
	}
	c.logger.Info("started cycle daemon", "pid", pid)
	return pid, nil
}

// Stop kills ravend, first through the recorded pid and then by name.
func (c *Cycle) Stop(ctx context.Context) error {
	if pid, err := ReadPID(c.pidPath); err == nil && IsProcessAlive(pid) {
		if p, err := os.FindProcess(pid); err == nil {
			if err := p.Signal(unix.SIGKILL); err != nil {
				c.logger.Warn("kill recorded daemon pid", "pid", pid, "err", err)
			}
		}
	}
	if _, err := c.procs.Signal(ctx, unix.SIGKILL, CycleDaemonName); err != nil {
		return fmt.Errorf("stop %s: %w", CycleDaemonName, err)
	}
	if err := RemovePID(c.pidPath); err != nil {
		return err
	}
	c.logger.Info("stopped cycle daemon")
	return nil
}

// Running reports whether ravend is alive.
func (c *Cycle) Running(ctx context.Context) (bool, error) {
	if pid, err := ReadPID(c.pidPath); err == nil && IsProcessAlive(pid) {
		return true, nil
	}
	return c.procs.Running(ctx, CycleDaemonName)
}
