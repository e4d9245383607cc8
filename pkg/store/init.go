package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// NeedsInit reports whether the base directory, config.json or themes/ is
// missing.
func NeedsInit(l Layout) bool {
	for _, p := range []string{l.Base, l.ConfigPath(), l.ThemesDir()} {
		if _, err := os.Stat(p); err != nil {
			return true
		}
	}
	return false
}

// Init creates the base directory and themes/, and writes a default
// config.json unless one already exists.
func Init(l Layout, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(filepath.Join(l.Base, LegacyConfigFile)); err == nil {
		logger.Warn("the config file format has changed, reconfigure raven in config.json",
			"path", l.ConfigPath())
	}
	if err := os.MkdirAll(l.ThemesDir(), 0o755); err != nil {
		return fmt.Errorf("create themes directory: %w", err)
	}
	if _, err := os.Stat(l.ConfigPath()); err == nil {
		logger.Debug("config already present", "path", l.ConfigPath())
		return nil
	}
	if err := SaveConfig(l, DefaultConfig()); err != nil {
		return err
	}
	logger.Info("initialized base config and directory structure", "base", l.Base)
	return nil
}
