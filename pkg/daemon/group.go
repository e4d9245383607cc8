package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Handle is one background process started through a Group.
type Handle struct {
	Name string
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

// Pid returns the process id.
func (h *Handle) Pid() int { return h.cmd.Process.Pid }

// Alive reports whether the process has not exited yet.
func (h *Handle) Alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Done is closed once the process exits.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the exit error once Done is closed.
func (h *Handle) Err() error {
	<-h.done
	return h.err
}

// Group tracks background processes so they can be stopped deliberately.
// It is safe for concurrent use.
type Group struct {
	mu      sync.Mutex
	handles []*Handle
	logger  *slog.Logger
}

// NewGroup returns an empty Group.
func NewGroup(logger *slog.Logger) *Group {
	if logger == nil {
		logger = slog.Default()
	}
	return &Group{logger: logger}
}

// Start starts cmd without waiting for it and tracks the resulting process.
func (g *Group) Start(name string, cmd *exec.Cmd) (*Handle, error) {
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}
	h := &Handle{Name: name, cmd: cmd, done: make(chan struct{})}
	go func() {
		h.err = cmd.Wait()
		close(h.done)
	}()

	g.mu.Lock()
	g.handles = append(g.handles, h)
	g.mu.Unlock()

	g.logger.Debug("started background process", "name", name, "pid", h.Pid())
	return h, nil
}

// Handles returns the tracked processes that are still running.
func (g *Group) Handles() []*Handle {
	g.mu.Lock()
	defer g.mu.Unlock()

	var alive []*Handle
	for _, h := range g.handles {
		if h.Alive() {
			alive = append(alive, h)
		}
	}
	return alive
}

// Stop sends SIGTERM to every tracked process, waits up to grace for them to
// exit and kills the rest. The group is empty afterwards.
func (g *Group) Stop(grace time.Duration) error {
	g.mu.Lock()
	handles := g.handles
	g.handles = nil
	g.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if !h.Alive() {
			continue
		}
		if err := h.cmd.Process.Signal(unix.SIGTERM); err != nil && h.Alive() {
			errs = append(errs, fmt.Errorf("terminate %s (pid %d): %w", h.Name, h.Pid(), err))
		}
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	expired := false
	for _, h := range handles {
		if !expired {
			select {
			case <-h.done:
				continue
			case <-timer.C:
				expired = true
			}
		}
		if !h.Alive() {
			continue
		}
		if err := h.cmd.Process.Kill(); err != nil && h.Alive() {
			errs = append(errs, fmt.Errorf("kill %s (pid %d): %w", h.Name, h.Pid(), err))
		}
		<-h.done
	}
	return errors.Join(errs...)
}
