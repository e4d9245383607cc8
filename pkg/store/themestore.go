package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
)

// DefaultDescription is the description sentinel of a new theme.
const DefaultDescription = "A raven theme."

// ThemeStore is the persisted form of a theme.
type ThemeStore struct {
	Name        string            `json:"name" yaml:"name"`
	Options     []string          `json:"options" yaml:"options"`
	Enabled     []string          `json:"enabled" yaml:"enabled"`
	Screenshot  string            `json:"screenshot" yaml:"screenshot"`
	Description string            `json:"description" yaml:"description"`
	KV          map[string]string `json:"kv" yaml:"kv"`
}

// NewThemeStore returns an empty store with default metadata.
func NewThemeStore(name string) *ThemeStore {
	return &ThemeStore{
		Name:        name,
		Options:     []string{},
		Enabled:     []string{},
		Description: DefaultDescription,
		KV:          map[string]string{},
	}
}

// UnmarshalJSON fills screenshot, description and kv defaults for fields
// absent from older theme.json files.
func (s *ThemeStore) UnmarshalJSON(data []byte) error {
	type plain ThemeStore
	p := plain{Description: DefaultDescription}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.KV == nil {
		p.KV = map[string]string{}
	}
	*s = ThemeStore(p)
	return nil
}

// HasOption reports whether option is declared.
func (s *ThemeStore) HasOption(option string) bool {
	return slices.Contains(s.Options, option)
}

// AddOption appends option unless it is already present.
func (s *ThemeStore) AddOption(option string) bool {
	if s.HasOption(option) {
		return false
	}
	s.Options = append(s.Options, option)
	return true
}

// RemoveOption removes one occurrence of option.
func (s *ThemeStore) RemoveOption(option string) bool {
	i := slices.Index(s.Options, option)
	if i < 0 {
		return false
	}
	s.Options = slices.Delete(s.Options, i, i+1)
	return true
}

// LoadThemeStore reads themes/<name>/theme.json. A missing theme directory or
// store file yields an *InvalidThemeError. The directory name wins over the
// name recorded in the file, so a renamed theme saves back to its own
// directory.
func LoadThemeStore(l Layout, name string) (*ThemeStore, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.ThemeFile(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &InvalidThemeError{Name: name}
		}
		return nil, fmt.Errorf("read theme store: %w", err)
	}
	var st ThemeStore
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse theme store %s: %w", name, err)
	}
	st.Name = name
	return &st, nil
}

// SaveThemeStore replaces themes/<st.Name>/theme.json.
func SaveThemeStore(l Layout, st *ThemeStore) error {
	if err := ValidateName(st.Name); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode theme store: %w", err)
	}
	if err := replaceFile(l.ThemeFile(st.Name), data); err != nil {
		return fmt.Errorf("save theme store %s: %w", st.Name, err)
	}
	return nil
}
