package config

// Config is the decoded settings.toml.
type Config struct {
	General GeneralConfig `toml:"general"`
	Sync    SyncConfig    `toml:"sync"`
	Apply   ApplyConfig   `toml:"apply"`
}

// GeneralConfig controls logging and where raven keeps its state.
type GeneralConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// BaseDir overrides the raven state directory. Empty means
	// $XDG_CONFIG_HOME/raven.
	BaseDir string `toml:"base_dir"`
}

// SyncConfig configures the ThemeHub client.
type SyncConfig struct {
	Timeout Duration `toml:"timeout"`
	TempDir string   `toml:"temp_dir"`

	// Host takes precedence over the host in config.json when set.
	Host string `toml:"host"`
}

// ApplyConfig configures theme application.
type ApplyConfig struct {
	// KillPrevious names the processes terminated before a theme loads.
	KillPrevious  []string `toml:"kill_previous"`
	WatchDebounce Duration `toml:"watch_debounce"`
}
