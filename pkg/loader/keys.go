package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gitlab.com/tinyland/lab/raven/pkg/patch"
	"gitlab.com/tinyland/lab/raven/pkg/store"
)

const sublimeAssetPrefix = "sublt/"

func (b *builtins) vscode(_ context.Context, t *Theme, value string) (Outcome, error) {
	var dirs []string
	for _, app := range []string{"Code", "Code - OSS"} {
		if dir := b.configDir(app, "User"); ldIsDir(dir) {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		b.logger().Info("vscode not installed, skipping", "theme", t.Name)
		return Skipped, nil
	}
	for _, dir := range dirs {
		if err := b.patch(filepath.Join(dir, "settings.json"), `"workbench.colorTheme": `, value); err != nil {
			return Applied, err
		}
	}
	return Applied, nil
}

// sublime returns a key loader patching pattern in Sublime Text's user
// preferences. A value prefixed "sublt/" names an asset shipped in the
// theme's sublt directory, which is copied next to the preferences first.
func (b *builtins) sublime(pattern string) func(context.Context, *Theme, string) (Outcome, error) {
	return func(_ context.Context, t *Theme, value string) (Outcome, error) {
		dir := b.configDir("sublime-text-3", "Packages", "User")
		if !ldIsDir(dir) {
			b.logger().Info("sublime text 3 not installed, skipping", "theme", t.Name)
			return Skipped, nil
		}
		if asset, ok := strings.CutPrefix(value, sublimeAssetPrefix); ok {
			if asset == "" || asset != filepath.Base(asset) {
				return Applied, fmt.Errorf("invalid sublime asset %q", value)
			}
			src := filepath.Join(t.Dir, "sublt", asset)
			if err := store.CopyFile(src, filepath.Join(dir, asset)); err != nil {
				return Applied, fmt.Errorf("copy sublime asset: %w", err)
			}
			value = asset
		}
		return Applied, b.patch(filepath.Join(dir, "Preferences.sublime-settings"), pattern, value)
	}
}

func (b *builtins) patch(path, pattern, value string) error {
	n, err := patch.SetKey(path, pattern, value)
	if err != nil {
		return err
	}
	if n > 1 {
		b.logger().Warn("settings key appears on several lines, all were rewritten",
			"path", path, "key", strings.TrimSpace(pattern), "lines", n)
	}
	return nil
}
