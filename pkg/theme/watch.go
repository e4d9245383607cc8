package theme

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"

	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// Watch calls apply whenever the contents of the named theme's directory
// change, until ctx is done. Bursts of events are collapsed into one call
// after debounce; events that leave the contents unchanged are ignored.
func (m *Manager) Watch(ctx context.Context, name string, debounce time.Duration, apply func(context.Context) error) error {
	if !m.layout.ThemeExists(name) {
		return &store.InvalidThemeError{Name: name}
	}
	dir := m.layout.ThemeDir(name)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	last, err := Fingerprint(dir)
	if err != nil {
		return err
	}
	m.logger.Info("watching theme", "theme", name, "dir", dir)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(ev.Name), "~") {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("watcher error", "theme", name, "err", err)

		case <-fire:
			fire = nil
			sum, err := Fingerprint(dir)
			if err != nil {
				m.logger.Warn("fingerprint theme", "theme", name, "err", err)
				continue
			}
			if sum == last {
				m.logger.Debug("theme unchanged", "theme", name)
				continue
			}
			last = sum
			if err := apply(ctx); err != nil {
				m.logger.Warn("reapplying theme", "theme", name, "err", err)
			}
		}
	}
}

// Fingerprint hashes the names and contents of every regular file under dir.
// Temporary "~" files written during saves are left out.
func Fingerprint(dir string) (uint64, error) {
	d := xxhash.New()
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), "~") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		d.WriteString(rel)
		d.Write([]byte{0})

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(d, f)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("fingerprint %s: %w", dir, err)
	}
	return d.Sum64(), nil
}
