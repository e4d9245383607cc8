package hub

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// Export writes themes/<name> to a tar archive in the client's temp dir and
// returns its path. Entries are rooted at "<name>/".
func (c *Client) Export(name string) (string, error) {
	if !c.layout.ThemeExists(name) {
		return "", &store.InvalidThemeError{Name: name}
	}
	f, err := os.CreateTemp(c.tempDir, name+"-*.tar")
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	path := f.Name()

	tw := tar.NewWriter(f)
	err = hbWriteTree(tw, c.layout.ThemesDir(), name)
	if cerr := tw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("export %s: %w", name, err)
	}
	c.logger.Debug("exported theme", "theme", name, "archive", path)
	return path, nil
}

func hbWriteTree(tw *tar.Writer, root, name string) error {
	return filepath.WalkDir(filepath.Join(root, name), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsDir() && !info.Mode().IsRegular() {
			return nil
		}
		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			hdr.Name += "/"
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})
}

// Import unpacks a theme archive into the themes directory and returns the
// name of the theme directory it contained. Every entry must sit under one
// top-level directory; entries that would escape it are rejected. Links and
// devices are skipped. Nothing is written unless the whole archive passes.
func (c *Client) Import(path string) (string, error) {
	return c.ImportTheme(path, "")
}

// ImportTheme is Import for an archive that must be rooted at name. An
// empty name accepts any single root.
func (c *Client) ImportTheme(path, name string) (string, error) {
	theme, err := hbArchiveRoot(path)
	if err != nil {
		return "", err
	}
	if name != "" && theme != name {
		return "", fmt.Errorf("archive holds theme %q, expected %q", theme, name)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	root := c.layout.ThemesDir()
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read archive: %w", err)
		}
		dst := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(hdr.Name, "/")))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(dst, 0o755); err != nil {
				return "", err
			}
		case tar.TypeReg:
			if err := hbWriteFile(dst, tr, hdr.FileInfo().Mode().Perm()); err != nil {
				return "", err
			}
		default:
			c.logger.Warn("skipping archive entry", "entry", hdr.Name, "type", string(hdr.Typeflag))
		}
	}
	c.logger.Debug("imported theme", "theme", theme)
	return theme, nil
}

// hbArchiveRoot checks every entry of the archive at path and returns the
// single top-level directory they share.
func hbArchiveRoot(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	var theme string
	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read archive: %w", err)
		}

		name := strings.TrimSuffix(hdr.Name, "/")
		if name == "" || !filepath.IsLocal(filepath.FromSlash(name)) {
			return "", fmt.Errorf("archive entry %q escapes themes directory", hdr.Name)
		}
		top, _, nested := strings.Cut(filepath.ToSlash(filepath.Clean(filepath.FromSlash(name))), "/")
		if !nested && hdr.Typeflag != tar.TypeDir {
			return "", fmt.Errorf("archive entry %q is not inside a theme directory", hdr.Name)
		}
		if theme == "" {
			if err := store.ValidateName(top); err != nil {
				return "", err
			}
			theme = top
		} else if top != theme {
			return "", fmt.Errorf("archive holds more than one theme: %q and %q", theme, top)
		}
	}
	if theme == "" {
		return "", errors.New("archive is empty")
	}
	return theme, nil
}

func hbWriteFile(dst string, r io.Reader, perm fs.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return out.Close()
}
