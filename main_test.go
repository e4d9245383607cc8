package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// --- helpers ---

// mnEnv points settings and the base directory at fresh temp dirs.
func mnEnv(t *testing.T) string {
	t.Helper()
	base := filepath.Join(t.TempDir(), "raven")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RAVEN_BASE_DIR", base)
	t.Setenv("RAVEN_HOST", "")
	t.Setenv("RAVEN_LOG_LEVEL", "error")
	return base
}

func mnRun(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// --- Theme editing ---

func TestCLI_EditFlow(t *testing.T) {
	base := mnEnv(t)

	out, err := mnRun(t, "new", "dark")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !strings.Contains(out, "Created dark") {
		t.Errorf("new output = %q", out)
	}
	if store.NeedsInit(store.Layout{Base: base}) {
		t.Fatal("base directory was not initialised")
	}

	wall := filepath.Join(t.TempDir(), "wall.png")
	if err := os.WriteFile(wall, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := mnRun(t, "add", "wall", wall); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := mnRun(t, "key", "vscode", "Monokai"); err != nil {
		t.Fatalf("key: %v", err)
	}

	out, err = mnRun(t, "info")
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	for _, want := range []string{"name: dark", "- wall", "vscode: Monokai"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}

	out, err = mnRun(t, "themes")
	if err != nil {
		t.Fatalf("themes: %v", err)
	}
	if strings.TrimSpace(out) != "e dark" {
		t.Errorf("themes output = %q", out)
	}

	if _, err := mnRun(t, "rm", "poly"); !errors.Is(err, store.ErrInvalidTheme) {
		t.Errorf("rm of absent option: got %v, want ErrInvalidTheme", err)
	}
	if _, err := mnRun(t, "info", "ghost"); !errors.Is(err, store.ErrInvalidTheme) {
		t.Errorf("info of missing theme: got %v, want ErrInvalidTheme", err)
	}
}

func TestCLI_AddWithoutEditing(t *testing.T) {
	mnEnv(t)
	if _, err := mnRun(t, "add", "wall", "/dev/null"); err == nil {
		t.Fatal("add succeeded with no edited theme")
	}
}

func TestCLI_ExportImport(t *testing.T) {
	base := mnEnv(t)
	if _, err := mnRun(t, "new", "dark"); err != nil {
		t.Fatalf("new: %v", err)
	}
	archive := filepath.Join(t.TempDir(), "dark.tar")
	if _, err := mnRun(t, "hub", "export", "dark", archive); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := mnRun(t, "delete", "dark"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	l := store.Layout{Base: base}
	if l.ThemeExists("dark") {
		t.Fatal("theme still present after delete")
	}

	out, err := mnRun(t, "hub", "import", archive)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Imported dark") {
		t.Errorf("import output = %q", out)
	}
	if _, err := store.LoadThemeStore(l, "dark"); err != nil {
		t.Errorf("imported theme unreadable: %v", err)
	}
}
