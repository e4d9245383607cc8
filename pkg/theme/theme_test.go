package theme

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"syscall"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/raven/pkg/loader"
	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// --- helpers ---

type thFakeProcs struct {
	names []string
	sigs  []syscall.Signal
}

func (p *thFakeProcs) Signal(_ context.Context, sig syscall.Signal, names ...string) (int, error) {
	p.names = append(p.names, names...)
	p.sigs = append(p.sigs, sig)
	return 0, nil
}

func (p *thFakeProcs) Running(context.Context, string) (bool, error) { return false, nil }

type thRecorder struct {
	tag   loader.Tag
	order *[]loader.Tag
	err   error
}

func (r thRecorder) Tag() loader.Tag { return r.tag }

func (r thRecorder) Apply(context.Context, *loader.Theme) (loader.Outcome, error) {
	*r.order = append(*r.order, r.tag)
	return loader.Applied, r.err
}

type thFixture struct {
	m      *Manager
	layout store.Layout
	cfg    *store.Config
	procs  *thFakeProcs
	order  *[]loader.Tag
}

func thSetup(t *testing.T, failing ...loader.Tag) *thFixture {
	t.Helper()
	l := store.Layout{Base: filepath.Join(t.TempDir(), "raven")}
	if err := store.Init(l, nil); err != nil {
		t.Fatal(err)
	}
	cfg, err := store.LoadConfig(l)
	if err != nil {
		t.Fatal(err)
	}

	order := &[]loader.Tag{}
	reg := loader.NewRegistry()
	for _, tag := range loader.AllTags() {
		rec := thRecorder{tag: tag, order: order}
		for _, f := range failing {
			if f == tag {
				rec.err = errors.New("broken " + string(tag))
			}
		}
		reg.Register(rec)
	}

	procs := &thFakeProcs{}
	m, err := NewManager(Options{Layout: l, Home: t.TempDir(), Processes: procs, Registry: reg})
	if err != nil {
		t.Fatal(err)
	}
	return &thFixture{m: m, layout: l, cfg: cfg, procs: procs, order: order}
}

func (f *thFixture) newTheme(t *testing.T, name string, options ...string) {
	t.Helper()
	if err := f.m.NewTheme(name, f.cfg); err != nil {
		t.Fatalf("NewTheme(%q): %v", name, err)
	}
	st, err := store.LoadThemeStore(f.layout, name)
	if err != nil {
		t.Fatal(err)
	}
	st.Options = options
	if err := store.SaveThemeStore(f.layout, st); err != nil {
		t.Fatal(err)
	}
}

func thWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// --- RunTheme / RefreshTheme ---

func TestRunTheme_AppliesAndRecordsLast(t *testing.T) {
	f := thSetup(t)
	f.newTheme(t, "nord", "rofi", "i3", "poly")

	report, err := f.m.Run(context.Background(), "nord", f.cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []loader.Tag{loader.Polybar, loader.I3, loader.Rofi}; !reflect.DeepEqual(*f.order, want) {
		t.Errorf("order = %v, want %v", *f.order, want)
	}
	if len(report.Succeeded()) != 3 {
		t.Errorf("Succeeded() = %d, want 3", len(report.Succeeded()))
	}
	if !reflect.DeepEqual(f.procs.names, DefaultKillPrevious) || f.procs.sigs[0] != syscall.SIGTERM {
		t.Errorf("previous theme not cleared: %v %v", f.procs.names, f.procs.sigs)
	}

	saved, err := store.LoadConfig(f.layout)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Last != "nord" {
		t.Errorf("Last = %q, want %q", saved.Last, "nord")
	}
}

func TestRunTheme_PartialFailureStillRecordsLast(t *testing.T) {
	f := thSetup(t, loader.I3)
	f.newTheme(t, "nord", "rofi", "i3", "wall")

	report, err := f.m.Run(context.Background(), "nord", f.cfg)
	if err == nil {
		t.Fatal("expected aggregated failure")
	}
	if len(*f.order) != 3 {
		t.Errorf("all loaders should run, got %v", *f.order)
	}
	if len(report.Failed()) != 1 || report.Failed()[0].Tag != loader.I3 {
		t.Errorf("Failed() = %+v", report.Failed())
	}
	saved, _ := store.LoadConfig(f.layout)
	if saved.Last != "nord" {
		t.Errorf("Last = %q, want nord", saved.Last)
	}
}

func TestRefreshTheme_NoLast(t *testing.T) {
	f := thSetup(t)
	_, err := f.m.RefreshTheme(context.Background(), f.cfg)
	if !errors.Is(err, store.ErrInvalidTheme) {
		t.Errorf("expected ErrInvalidTheme, got %v", err)
	}
}

func TestRefreshTheme_ReappliesLast(t *testing.T) {
	f := thSetup(t)
	f.newTheme(t, "nord", "rofi")
	f.cfg.Last = "nord"
	if _, err := f.m.RefreshTheme(context.Background(), f.cfg); err != nil {
		t.Fatal(err)
	}
	if len(*f.order) != 1 {
		t.Errorf("order = %v", *f.order)
	}
}

func TestRun_MissingTheme(t *testing.T) {
	f := thSetup(t)
	if _, err := f.m.Run(context.Background(), "ghost", f.cfg); !errors.Is(err, store.ErrInvalidTheme) {
		t.Errorf("expected ErrInvalidTheme, got %v", err)
	}
}

// --- Edit / NewTheme / DelTheme ---

func TestEdit(t *testing.T) {
	f := thSetup(t)
	if _, err := f.m.Edit("ghost", f.cfg); !errors.Is(err, store.ErrInvalidTheme) {
		t.Errorf("expected ErrInvalidTheme, got %v", err)
	}
	f.newTheme(t, "nord")
	f.cfg.Editing = ""
	name, err := f.m.Edit("nord", f.cfg)
	if err != nil || name != "nord" {
		t.Fatalf("Edit = %q, %v", name, err)
	}
	saved, _ := store.LoadConfig(f.layout)
	if saved.Editing != "nord" {
		t.Errorf("Editing = %q", saved.Editing)
	}
}

func TestNewTheme_CreatesDefaultStore(t *testing.T) {
	f := thSetup(t)
	if err := f.m.NewTheme("fresh", f.cfg); err != nil {
		t.Fatal(err)
	}
	st, err := store.LoadThemeStore(f.layout, "fresh")
	if err != nil {
		t.Fatal(err)
	}
	if st.Name != "fresh" || len(st.Options) != 0 || st.Description != store.DefaultDescription {
		t.Errorf("unexpected store %+v", st)
	}
	if f.cfg.Editing != "fresh" {
		t.Errorf("Editing = %q", f.cfg.Editing)
	}
	if err := f.m.NewTheme("fresh", f.cfg); err == nil {
		t.Error("creating an existing theme should fail")
	}
}

func TestDelTheme(t *testing.T) {
	f := thSetup(t)
	f.newTheme(t, "gone")
	if err := f.m.DelTheme("gone"); err != nil {
		t.Fatal(err)
	}
	if f.layout.ThemeExists("gone") {
		t.Error("theme directory still exists")
	}
	if err := f.m.DelTheme("../escape"); !errors.Is(err, store.ErrInvalidTheme) {
		t.Errorf("expected ErrInvalidTheme for path name, got %v", err)
	}
}

// --- AddToTheme / RmFromTheme / KeyValue ---

func TestAddToTheme_Idempotent(t *testing.T) {
	f := thSetup(t)
	f.newTheme(t, "nord")
	src := filepath.Join(t.TempDir(), "my.rasi")
	thWrite(t, src, "v1")

	for i := 0; i < 2; i++ {
		if err := f.m.AddToTheme("nord", "rofi", src); err != nil {
			t.Fatal(err)
		}
	}
	st, _ := store.LoadThemeStore(f.layout, "nord")
	if !reflect.DeepEqual(st.Options, []string{"rofi"}) {
		t.Errorf("Options = %v, want [rofi]", st.Options)
	}
	data, err := os.ReadFile(f.layout.OptionFile("nord", "rofi"))
	if err != nil || string(data) != "v1" {
		t.Errorf("fragment = %q, %v", data, err)
	}
}

func TestAddToTheme_KeepsKV(t *testing.T) {
	f := thSetup(t)
	f.newTheme(t, "nord")
	if err := f.m.KeyValue("nord", "vscode", "Nord"); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(t.TempDir(), "i3")
	thWrite(t, src, "bar {}")
	if err := f.m.AddToTheme("nord", "i3", src); err != nil {
		t.Fatal(err)
	}
	st, _ := store.LoadThemeStore(f.layout, "nord")
	if st.KV["vscode"] != "Nord" {
		t.Errorf("KV lost: %v", st.KV)
	}
}

func TestAddToTheme_UnknownOption(t *testing.T) {
	f := thSetup(t)
	f.newTheme(t, "nord")
	var uoe *loader.UnknownOptionError
	if err := f.m.AddToTheme("nord", "emacs", "x"); !errors.As(err, &uoe) {
		t.Errorf("expected UnknownOptionError, got %v", err)
	}
}

func TestRmFromTheme(t *testing.T) {
	f := thSetup(t)
	f.newTheme(t, "nord", "rofi", "i3")

	if err := f.m.RmFromTheme("nord", "wall"); !errors.Is(err, store.ErrInvalidTheme) {
		t.Errorf("expected ErrInvalidTheme, got %v", err)
	}
	if err := f.m.RmFromTheme("nord", "rofi"); err != nil {
		t.Fatal(err)
	}
	st, _ := store.LoadThemeStore(f.layout, "nord")
	if !reflect.DeepEqual(st.Options, []string{"i3"}) {
		t.Errorf("Options = %v, want [i3]", st.Options)
	}
}

func TestKeyValue(t *testing.T) {
	f := thSetup(t)
	f.newTheme(t, "nord")
	if err := f.m.KeyValue("nord", "st_scs", "Mariana"); err != nil {
		t.Fatal(err)
	}
	st, _ := store.LoadThemeStore(f.layout, "nord")
	if st.KV["st_scs"] != "Mariana" {
		t.Errorf("KV = %v", st.KV)
	}
	if err := f.m.KeyValue("ghost", "k", "v"); !errors.Is(err, store.ErrInvalidTheme) {
		t.Errorf("expected ErrInvalidTheme, got %v", err)
	}
}

func TestKeyValue_RenamedThemeLeavesOthersAlone(t *testing.T) {
	f := thSetup(t)
	f.newTheme(t, "bar", "i3")
	if err := os.MkdirAll(f.layout.ThemeDir("foo"), 0o755); err != nil {
		t.Fatal(err)
	}
	thWrite(t, f.layout.ThemeFile("foo"), `{"name":"bar","options":[],"description":"x"}`)

	if err := f.m.KeyValue("foo", "vscode", "Dracula"); err != nil {
		t.Fatal(err)
	}
	bar, _ := store.LoadThemeStore(f.layout, "bar")
	if len(bar.KV) != 0 || len(bar.Options) != 1 {
		t.Errorf("bar changed: %+v", bar)
	}
	foo, _ := store.LoadThemeStore(f.layout, "foo")
	if foo.KV["vscode"] != "Dracula" {
		t.Errorf("foo KV = %v", foo.KV)
	}
}

// --- loading ---

func TestLoadTheme_ConvertsPipeFormat(t *testing.T) {
	f := thSetup(t)
	if err := os.MkdirAll(f.layout.ThemeDir("old"), 0o755); err != nil {
		t.Fatal(err)
	}
	thWrite(t, f.layout.LegacyThemeFile("old"), "i3|poly|emacs")

	th, err := f.m.LoadTheme("old", f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(th.Options, []loader.Tag{loader.I3, loader.Polybar}) {
		t.Errorf("Options = %v", th.Options)
	}
	if th.Monitors != f.cfg.Monitors {
		t.Errorf("Monitors = %d", th.Monitors)
	}
}

func TestLoadThemes_SkipsBroken(t *testing.T) {
	f := thSetup(t)
	f.newTheme(t, "good", "rofi")
	if err := os.MkdirAll(f.layout.ThemeDir("broken"), 0o755); err != nil {
		t.Fatal(err)
	}
	themes, err := f.m.LoadThemes(f.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(themes) != 1 || themes[0].Name != "good" {
		t.Errorf("LoadThemes = %+v", themes)
	}
}

func TestCheckThemes(t *testing.T) {
	f := thSetup(t)
	if err := os.MkdirAll(f.layout.ThemeDir("old"), 0o755); err != nil {
		t.Fatal(err)
	}
	thWrite(t, f.layout.LegacyThemeFile("old"), "rofi")
	results, err := f.m.CheckThemes()
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Theme != "old" {
		t.Errorf("results = %+v", results)
	}
}

// --- Watch ---

func TestFingerprint(t *testing.T) {
	dir := t.TempDir()
	thWrite(t, filepath.Join(dir, "rofi"), "a")
	first, err := Fingerprint(dir)
	if err != nil {
		t.Fatal(err)
	}
	thWrite(t, filepath.Join(dir, "~theme.json"), "temp")
	if again, _ := Fingerprint(dir); again != first {
		t.Error("temp files must not change the fingerprint")
	}
	thWrite(t, filepath.Join(dir, "rofi"), "b")
	if changed, _ := Fingerprint(dir); changed == first {
		t.Error("content change must change the fingerprint")
	}
}

func TestWatch_ReappliesOnChange(t *testing.T) {
	f := thSetup(t)
	f.newTheme(t, "nord")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	applied := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- f.m.Watch(ctx, "nord", 20*time.Millisecond, func(context.Context) error {
			applied <- struct{}{}
			return nil
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-applied:
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch returned %v", err)
			}
			return
		case <-tick.C:
			thWrite(t, f.layout.OptionFile("nord", "rofi"), time.Now().String())
		case <-deadline:
			t.Fatal("theme change was not picked up")
		}
	}
}

func TestWatch_MissingTheme(t *testing.T) {
	f := thSetup(t)
	err := f.m.Watch(context.Background(), "ghost", time.Millisecond, func(context.Context) error { return nil })
	if !errors.Is(err, store.ErrInvalidTheme) {
		t.Errorf("expected ErrInvalidTheme, got %v", err)
	}
}
