package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// SettingsFile is the settings file name inside the raven config directory.
const SettingsFile = "settings.toml"

// Load reads settings from $XDG_CONFIG_HOME/raven/settings.toml, falling
// back to ~/.config/raven/settings.toml. If no file exists, it returns
// DefaultConfig() with env overrides applied.
func Load() (*Config, error) {
	return LoadFromFile(Path())
}

// Path returns the settings file location.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(xdgConfigHome(home), "raven", SettingsFile)
}

// LoadFromFile reads settings from a specific file path. A missing file is
// not an error.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()
	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader reads settings from an io.Reader.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Sync: SyncConfig{
			Timeout: Duration{30 * time.Second},
			TempDir: os.TempDir(),
		},
		Apply: ApplyConfig{
			KillPrevious:  []string{"polybar", "lemonbar", "dunst"},
			WatchDebounce: Duration{500 * time.Millisecond},
		},
	}
}

// Level maps LogLevel to a slog level. Unknown values mean info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.General.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RAVEN_LOG_LEVEL"); v != "" {
		cfg.General.LogLevel = v
	}
	if v := os.Getenv("RAVEN_BASE_DIR"); v != "" {
		cfg.General.BaseDir = v
	}
	if v := os.Getenv("RAVEN_HOST"); v != "" {
		cfg.Sync.Host = v
	}
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}
