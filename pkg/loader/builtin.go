package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sys/unix"

	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// Func adapts a function to the Loader interface.
type Func struct {
	T  Tag
	Fn func(ctx context.Context, t *Theme) (Outcome, error)
}

func (f Func) Tag() Tag { return f.T }

func (f Func) Apply(ctx context.Context, t *Theme) (Outcome, error) { return f.Fn(ctx, t) }

// KeyFunc adapts a function to the KeyLoader interface.
type KeyFunc struct {
	K  string
	Fn func(ctx context.Context, t *Theme, value string) (Outcome, error)
}

func (f KeyFunc) Key() string { return f.K }

func (f KeyFunc) ApplyKey(ctx context.Context, t *Theme, value string) (Outcome, error) {
	return f.Fn(ctx, t, value)
}

// Builtins returns a Registry holding a loader for every Tag and key
// loaders for vscode, st_tmtheme, st_scs and st_subltheme.
func Builtins(env *Env) *Registry {
	b := &builtins{env: env}

	vscode := KeyFunc{K: string(VSCode), Fn: b.vscode}
	subltheme := KeyFunc{K: string(LegacySublimeTheme), Fn: b.sublime(`"theme": `)}
	scs := KeyFunc{K: string(LegacySublimeColorScheme), Fn: b.sublime(`"color_scheme": `)}
	tmtheme := KeyFunc{K: string(LegacySublimeThemeFile), Fn: b.sublime(`"color_scheme": `)}

	r := NewRegistry()
	for _, l := range []Loader{
		Func{Polybar, b.polybar},
		Func{LegacyWM, b.i3(LegacyWM)},
		Func{I3, b.i3(I3)},
		Func{Xresources, b.xres(Xresources)},
		Func{MergeXresources, b.xres(MergeXresources)},
		Func{Pywal, b.pywal},
		Func{Wallpaper, b.wallpaper},
		Func{Ncmpcpp, b.ncmpcpp},
		Func{Termite, b.termite},
		Func{Script, b.script},
		Func{Bspwm, b.bspwm},
		Func{Rofi, b.rofi},
		Func{Ranger, b.ranger},
		Func{Lemonbar, b.lemonbar},
		Func{Openbox, b.openbox},
		Func{Dunst, b.dunst},
		Func{VSCode, b.legacy(vscode)},
		Func{LegacySublimeTheme, b.legacy(subltheme)},
		Func{LegacySublimeColorScheme, b.legacy(scs)},
		Func{LegacySublimeThemeFile, b.legacy(tmtheme)},
	} {
		if err := r.Register(l); err != nil {
			panic(err)
		}
	}
	for _, k := range []KeyLoader{vscode, subltheme, scs, tmtheme} {
		if err := r.RegisterKey(k); err != nil {
			panic(err)
		}
	}
	return r
}

type builtins struct {
	env *Env
}

func (b *builtins) logger() *slog.Logger {
	if b.env.Logger == nil {
		return slog.Default()
	}
	return b.env.Logger
}

// configDir resolves a path under ~/.config.
func (b *builtins) configDir(parts ...string) string {
	return filepath.Join(append([]string{b.env.Home, ".config"}, parts...)...)
}

// --- plain copies ---

func (b *builtins) rofi(_ context.Context, t *Theme) (Outcome, error) {
	return Applied, ldCopy(t.File(Rofi), b.configDir("rofi", "theme.rasi"))
}

func (b *builtins) ranger(_ context.Context, t *Theme) (Outcome, error) {
	return Applied, ldCopy(t.File(Ranger), b.configDir("ranger", "rc.conf"))
}

func (b *builtins) ncmpcpp(_ context.Context, t *Theme) (Outcome, error) {
	for _, dir := range []string{b.configDir("ncmpcpp"), filepath.Join(b.env.Home, ".ncmpcpp")} {
		if ldIsDir(dir) {
			return Applied, store.CopyFile(t.File(Ncmpcpp), filepath.Join(dir, "config"))
		}
	}
	b.logger().Info("no ncmpcpp config directory found, skipping", "theme", t.Name)
	return Skipped, nil
}

func (b *builtins) termite(ctx context.Context, t *Theme) (Outcome, error) {
	if err := ldCopy(t.File(Termite), b.configDir("termite", "config")); err != nil {
		return Applied, err
	}
	if b.env.Processes == nil {
		return Applied, nil
	}
	if _, err := b.env.Processes.Signal(ctx, unix.SIGUSR1, "termite"); err != nil {
		return Applied, fmt.Errorf("reload termite: %w", err)
	}
	return Applied, nil
}

// --- subprocesses ---

func (b *builtins) pywal(ctx context.Context, t *Theme) (Outcome, error) {
	return Applied, b.env.Runner.Run(ctx, "wal", "-n", "-i", t.File(Pywal))
}

func (b *builtins) wallpaper(ctx context.Context, t *Theme) (Outcome, error) {
	return Applied, b.env.Runner.Run(ctx, "feh", "--bg-scale", t.File(Wallpaper))
}

func (b *builtins) xres(tag Tag) func(context.Context, *Theme) (Outcome, error) {
	return func(ctx context.Context, t *Theme) (Outcome, error) {
		if tag == MergeXresources {
			return Applied, b.env.Runner.Run(ctx, "xrdb", "-merge", t.File(tag))
		}
		return Applied, b.env.Runner.Run(ctx, "xrdb", t.File(tag))
	}
}

func (b *builtins) script(ctx context.Context, t *Theme) (Outcome, error) {
	return Applied, b.env.Runner.Run(ctx, "sh", t.File(Script))
}

func (b *builtins) lemonbar(_ context.Context, t *Theme) (Outcome, error) {
	return Applied, b.env.Runner.Start("sh", t.File(Lemonbar))
}

func (b *builtins) polybar(_ context.Context, t *Theme) (Outcome, error) {
	file := t.File(Polybar)
	if _, err := os.Stat(file); err != nil {
		return Applied, err
	}
	var errs []error
	for i := 0; i < t.Monitors; i++ {
		if i >= len(t.MonitorOrder) {
			errs = append(errs, fmt.Errorf("no polybar bar configured for monitor %d", i+1))
			break
		}
		if err := b.env.Runner.Start("polybar", "--config="+file, t.MonitorOrder[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return Applied, errors.Join(errs...)
}

// --- base fragment + theme fragment ---

func (b *builtins) i3(tag Tag) func(context.Context, *Theme) (Outcome, error) {
	return func(ctx context.Context, t *Theme) (Outcome, error) {
		if err := b.install(t, tag, "base_i3", b.configDir("i3", "config"), 0o644); err != nil {
			return Applied, err
		}
		return Applied, b.env.Runner.Run(ctx, "i3-msg", "reload")
	}
}

func (b *builtins) bspwm(ctx context.Context, t *Theme) (Outcome, error) {
	rc := b.configDir("bspwm", "bspwmrc")
	if err := b.install(t, Bspwm, "base_bspwm", rc, 0o744); err != nil {
		return Applied, err
	}
	return Applied, b.env.Runner.Run(ctx, "sh", rc)
}

func (b *builtins) openbox(ctx context.Context, t *Theme) (Outcome, error) {
	if err := b.install(t, Openbox, "base_rc.xml", b.configDir("openbox", "rc.xml"), 0o644); err != nil {
		return Applied, err
	}
	return Applied, b.env.Runner.Run(ctx, "openbox", "--reconfigure")
}

func (b *builtins) dunst(_ context.Context, t *Theme) (Outcome, error) {
	if err := b.install(t, Dunst, "base_dunst", b.configDir("dunst", "dunstrc"), 0o644); err != nil {
		return Applied, err
	}
	return Applied, b.env.Runner.Start("dunst")
}

// install writes the shared base fragment (if present) followed by the
// theme's fragment to target, replacing any existing file.
func (b *builtins) install(t *Theme, tag Tag, base, target string, perm os.FileMode) error {
	var buf bytes.Buffer
	data, err := os.ReadFile(filepath.Join(b.env.Base, base))
	switch {
	case err == nil:
		buf.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			buf.WriteByte('\n')
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("read %s: %w", base, err)
	}

	frag, err := os.ReadFile(t.File(tag))
	if err != nil {
		return err
	}
	buf.Write(frag)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove old %s: %w", target, err)
	}
	if err := os.WriteFile(target, buf.Bytes(), perm); err != nil {
		return err
	}
	return os.Chmod(target, perm)
}

// --- legacy single-file options ---

// legacy converts the single-file option to a kv entry on first use, then
// applies the recovered value through k.
func (b *builtins) legacy(k KeyLoader) func(context.Context, *Theme) (Outcome, error) {
	tag := Tag(k.Key())
	return func(ctx context.Context, t *Theme) (Outcome, error) {
		if b.env.Migrator == nil {
			return Applied, fmt.Errorf("option %s needs conversion but no migrator is configured", tag)
		}
		value, _, err := b.env.Migrator.ConvertSingle(t.Name, string(tag))
		if err != nil {
			return Applied, fmt.Errorf("convert legacy option %s: %w", tag, err)
		}
		t.KV[string(tag)] = value
		t.Options = slices.DeleteFunc(t.Options, func(o Tag) bool { return o == tag })
		return k.ApplyKey(ctx, t, value)
	}
}

func ldCopy(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return store.CopyFile(src, dst)
}

func ldIsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
