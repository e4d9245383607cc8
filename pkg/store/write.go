package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// replaceFile writes data to "~<base>" next to path, copies it over path and
// removes the temporary file.
func replaceFile(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "~"+filepath.Base(path))
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := CopyFile(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("copy temp file: %w", err)
	}
	if err := os.Remove(tmp); err != nil {
		return fmt.Errorf("remove temp file: %w", err)
	}
	return nil
}

// CopyFile copies src to dst, truncating dst. The destination keeps its mode
// if it already exists, otherwise it is created 0644.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
