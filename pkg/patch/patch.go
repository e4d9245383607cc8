// Package patch sets a single "key": "value" entry inside a brace-delimited
// settings file (JSON, HJSON, sublime-settings) by rewriting lines, without
// parsing the document. Comments and trailing commas survive untouched.
package patch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// indent is prepended to every line this package writes.
const indent = "    "

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// ErrNoObject is returned by SetKey when the file has content but no
// closing brace to insert the entry before.
var ErrNoObject = errors.New("settings file has no closing brace")

// SetKey makes the file at path contain the line
//
//	<pattern>"<value>"
//
// where pattern carries the key and its separator, e.g. `"theme": `.
//
// Every line containing pattern is rewritten, keeping its trailing comma.
// If no line matches, the entry is inserted before the final closing brace.
// A missing or blank file is created holding only this entry; other text
// without a closing brace yields ErrNoObject and is left untouched. SetKey
// returns the number of lines that matched pattern.
func SetKey(path, pattern, value string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		out, _ := Apply("", pattern, value)
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return 0, fmt.Errorf("create %s: %w", path, err)
		}
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	doc := string(data)
	if strings.TrimSpace(doc) != "" && !strings.Contains(doc, pattern) && ptClosing(strings.Split(doc, "\n")) < 0 {
		return 0, fmt.Errorf("%s: %w", path, ErrNoObject)
	}
	out, matches := Apply(doc, pattern, value)
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return matches, fmt.Errorf("write %s: %w", path, err)
	}
	return matches, nil
}

// Apply performs the SetKey rewrite on an in-memory document. A blank
// document becomes an object holding only the entry.
func Apply(doc, pattern, value string) (string, int) {
	entry := pattern + `"` + quoteReplacer.Replace(value) + `"`
	if strings.TrimSpace(doc) == "" {
		return "{\n" + indent + entry + "\n}", 0
	}
	lines := strings.Split(doc, "\n")
	closing := ptClosing(lines)

	matches := 0
	for _, line := range lines {
		if strings.Contains(line, pattern) {
			matches++
		}
	}

	var b strings.Builder
	for i, line := range lines {
		trimmed := strings.TrimRight(line, " \t\r")
		switch {
		case strings.Contains(line, pattern):
			b.WriteString("\n" + indent + entry)
			if strings.HasSuffix(trimmed, ",") {
				b.WriteString(",")
			}
		case i == closing && matches == 0:
			prefix := strings.TrimRight(trimmed[:len(trimmed)-1], " \t")
			if strings.TrimSpace(prefix) == "" {
				if ptNeedsComma(b.String()) {
					b.WriteString(",")
				}
				b.WriteString("\n" + indent + entry + "\n" + trimmed)
			} else {
				b.WriteString("\n" + prefix)
				if ptNeedsComma(prefix) {
					b.WriteString(",")
				}
				b.WriteString("\n" + indent + entry + "\n}")
			}
		default:
			b.WriteString("\n" + line)
		}
	}
	return strings.TrimSpace(b.String()), matches
}

// ptClosing returns the index of the last line ending in "}", or -1.
func ptClosing(lines []string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasSuffix(strings.TrimRight(lines[i], " \t\r"), "}") {
			return i
		}
	}
	return -1
}

// ptNeedsComma reports whether text written so far ends in a value that
// must be separated from a following entry.
func ptNeedsComma(s string) bool {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '{', ',':
		return false
	}
	return true
}
