// Package config holds the TOML settings for the raven binary itself,
// as opposed to raven's own state in config.json.
package config

import (
	"fmt"
	"time"
)

// Duration is a time.Duration written in settings.toml either as a Go
// duration string ("500ms", "30s") or as a whole number of seconds.
type Duration struct {
	time.Duration
}

// UnmarshalTOML implements toml.Unmarshaler.
func (d *Duration) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		if v == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}
		d.Duration = parsed
	case int64:
		d.Duration = time.Duration(v) * time.Second
	default:
		return fmt.Errorf("invalid duration %v: want a string or integer seconds", v)
	}
	if d.Duration < 0 {
		return fmt.Errorf("negative duration %v not allowed", v)
	}
	return nil
}

// MarshalText writes the duration string form.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
