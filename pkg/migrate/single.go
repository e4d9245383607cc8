package migrate

import (
	"fmt"
	"os"
	"strings"

	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// ConvertSingle moves a single-file option into the theme's kv map. The
// file themes/<name>/<key> supplies the value; key is dropped from the
// option list, the store is saved and the file removed. The recovered value
// is returned so the caller can apply it straight away.
func (m *Migrator) ConvertSingle(name, key string) (string, *MigrationResult, error) {
	st, err := store.LoadThemeStore(m.layout, name)
	if err != nil {
		return "", nil, err
	}
	path := m.layout.OptionFile(name, key)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read legacy option %s: %w", key, err)
	}
	value := strings.TrimSpace(string(data))

	st.KV[key] = value
	st.RemoveOption(key)
	if err := store.SaveThemeStore(m.layout, st); err != nil {
		return "", nil, err
	}

	result := &MigrationResult{
		Theme:   name,
		Success: true,
		Changes: []OptionChange{{Option: key, Value: value, Action: "moved-to-kv"}},
	}
	if err := os.Remove(path); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("legacy file kept: %v", err))
		m.logger.Warn("could not remove legacy option file", "theme", name, "key", key, "err", err)
	}
	m.logger.Info("converted legacy option", "theme", name, "key", key)
	return value, result, nil
}
