package store

import (
	"encoding/json"
	"fmt"
	"os"
)

// Defaults for a freshly initialised config.json.
const (
	DefaultHost        = "https://demenses.net"
	DefaultMenuCommand = "rofi -theme sidebar -mesg 'raven:' -p '> ' -dmenu"
)

// Config is the process-wide raven state. It is loaded at the start of each
// invocation and written back explicitly with SaveConfig.
type Config struct {
	Monitors    int      `json:"monitors"`
	Polybar     []string `json:"polybar"`
	MenuCommand string   `json:"menu_command"`
	Last        string   `json:"last"`
	Editing     string   `json:"editing"`
	Host        string   `json:"host"`
}

// DefaultConfig returns the config written by Init.
func DefaultConfig() *Config {
	return &Config{
		Monitors:    1,
		Polybar:     []string{"main", "other"},
		MenuCommand: DefaultMenuCommand,
		Host:        DefaultHost,
	}
}

// LoadConfig reads config.json. Fields missing from the file keep their
// defaults; an empty host falls back to DefaultHost.
func LoadConfig(l Layout) (*Config, error) {
	data, err := os.ReadFile(l.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	return cfg, nil
}

// SaveConfig replaces config.json with cfg.
func SaveConfig(l Layout, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := replaceFile(l.ConfigPath(), data); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
