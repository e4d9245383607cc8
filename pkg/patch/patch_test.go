package patch

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const ptThemeKey = `"theme": `

func ptWrite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func ptReadJSON(t *testing.T, path string) map[string]string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("result is not valid JSON: %v\n%s", err, data)
	}
	return m
}

// --- SetKey ---

func TestSetKey_AddsToSingleLineObject(t *testing.T) {
	path := ptWrite(t, `{ "a": "1" }`)
	n, err := SetKey(path, ptThemeKey, "Nord")
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("matches = %d, want 0", n)
	}
	m := ptReadJSON(t, path)
	if m["a"] != "1" || m["theme"] != "Nord" {
		t.Errorf("got %v", m)
	}
}

func TestSetKey_AddsBeforeClosingBrace(t *testing.T) {
	path := ptWrite(t, "{\n    \"a\": \"1\"\n}\n")
	if _, err := SetKey(path, ptThemeKey, "Nord"); err != nil {
		t.Fatal(err)
	}
	m := ptReadJSON(t, path)
	if len(m) != 2 || m["theme"] != "Nord" {
		t.Errorf("got %v", m)
	}
}

func TestSetKey_ReplacesExistingKey(t *testing.T) {
	path := ptWrite(t, "{\n    \"theme\": \"Old\",\n    \"a\": \"1\"\n}")
	n, err := SetKey(path, ptThemeKey, "New")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("matches = %d, want 1", n)
	}
	data, _ := os.ReadFile(path)
	if c := strings.Count(string(data), `"theme"`); c != 1 {
		t.Errorf("theme key appears %d times:\n%s", c, data)
	}
	m := ptReadJSON(t, path)
	if m["theme"] != "New" || m["a"] != "1" {
		t.Errorf("got %v", m)
	}
}

func TestSetKey_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.json")
	if _, err := SetKey(path, ptThemeKey, "Nord"); err != nil {
		t.Fatal(err)
	}
	m := ptReadJSON(t, path)
	if len(m) != 1 || m["theme"] != "Nord" {
		t.Errorf("got %v", m)
	}
}

func TestSetKey_EmptyObject(t *testing.T) {
	path := ptWrite(t, "{\n}")
	if _, err := SetKey(path, ptThemeKey, "Nord"); err != nil {
		t.Fatal(err)
	}
	m := ptReadJSON(t, path)
	if len(m) != 1 || m["theme"] != "Nord" {
		t.Errorf("got %v", m)
	}
}

func TestSetKey_BlankFile(t *testing.T) {
	for _, content := range []string{"", "  \n\n"} {
		path := ptWrite(t, content)
		if _, err := SetKey(path, ptThemeKey, "Nord"); err != nil {
			t.Fatal(err)
		}
		m := ptReadJSON(t, path)
		if len(m) != 1 || m["theme"] != "Nord" {
			t.Errorf("content %q: got %v", content, m)
		}
	}
}

func TestSetKey_TextWithoutBrace(t *testing.T) {
	const content = "not a settings file"
	path := ptWrite(t, content)
	if _, err := SetKey(path, ptThemeKey, "Nord"); !errors.Is(err, ErrNoObject) {
		t.Fatalf("got %v, want ErrNoObject", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("file modified: %q", data)
	}
}

// --- Apply ---

func TestApply_RewritesEveryMatch(t *testing.T) {
	doc := "{\n    \"theme\": \"a\",\n    \"theme\": \"b\"\n}"
	out, n := Apply(doc, ptThemeKey, "c")
	if n != 2 {
		t.Errorf("matches = %d, want 2", n)
	}
	if strings.Count(out, `"theme": "c"`) != 2 {
		t.Errorf("expected both lines rewritten:\n%s", out)
	}
}

func TestApply_OnlyOutermostBraceReceivesInsert(t *testing.T) {
	doc := "{\n    \"nested\": {\n        \"x\": \"1\"\n    }\n}"
	out, _ := Apply(doc, ptThemeKey, "Nord")
	var m map[string]any
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if m["theme"] != "Nord" {
		t.Errorf("theme not at top level: %v", m)
	}
}

func TestApply_KeepsCommentsAndTrailingCommas(t *testing.T) {
	doc := "{\n    // editor\n    \"font_size\": 11,\n}"
	out, _ := Apply(doc, ptThemeKey, "Nord")
	if !strings.Contains(out, "// editor") {
		t.Errorf("comment lost:\n%s", out)
	}
	if strings.Contains(out, ",,") {
		t.Errorf("doubled comma:\n%s", out)
	}
}

func TestApply_EscapesQuotes(t *testing.T) {
	out, _ := Apply("{\n}", ptThemeKey, `say "hi"`)
	if !strings.Contains(out, `"theme": "say \"hi\""`) {
		t.Errorf("value not escaped:\n%s", out)
	}
}
