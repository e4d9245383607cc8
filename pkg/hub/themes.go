package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// Metadata types accepted by PublishMetadata.
const (
	MetaScreenshot  = "screen"
	MetaDescription = "description"
)

// UploadField is the multipart field carrying the theme archive.
const UploadField = "fileupload"

// Metadata is the remote description of a published theme.
type Metadata struct {
	Screen      string `json:"screen"`
	Description string `json:"description"`
}

// Upload publishes the local theme. It returns true if the theme was new on
// the server and false if an existing upload by the same user was replaced.
// The description, and the screenshot when set, are published afterwards.
func (c *Client) Upload(ctx context.Context, name string) (bool, error) {
	if !c.layout.ThemeExists(name) {
		return false, &store.InvalidThemeError{Name: name}
	}
	info, err := c.userInfo()
	if err != nil {
		return false, err
	}

	archive, err := c.Export(name)
	if err != nil {
		return false, err
	}
	defer os.Remove(archive)

	body, contentType, err := hbMultipart(archive)
	if err != nil {
		return false, err
	}
	c.logger.Info("uploading theme", "theme", name, "size", humanize.Bytes(uint64(body.Len())))

	resp, err := c.do(ctx, http.MethodPost, url.Values{"name": {name}, "token": {info.Token}}, body, contentType,
		"themes", "upload")
	if err != nil {
		return false, err
	}
	drain(resp)

	var created bool
	switch {
	case resp.StatusCode == http.StatusCreated:
		created = true
	case success(resp.StatusCode):
		created = false
	case resp.StatusCode == http.StatusForbidden:
		return false, ErrPermissionDenied
	default:
		return false, &ServerError{Code: resp.StatusCode}
	}

	st, err := store.LoadThemeStore(c.layout, name)
	if err != nil {
		return created, err
	}
	if st.Screenshot != "" {
		if err := c.PublishMetadata(ctx, name, MetaScreenshot, st.Screenshot); err != nil {
			return created, fmt.Errorf("publish screenshot: %w", err)
		}
	}
	if err := c.PublishMetadata(ctx, name, MetaDescription, st.Description); err != nil {
		return created, fmt.Errorf("publish description: %w", err)
	}
	c.logger.Info("uploaded theme", "theme", name, "created", created)
	return created, nil
}

func hbMultipart(archive string) (*bytes.Buffer, string, error) {
	f, err := os.Open(archive)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(UploadField, filepath.Base(archive))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("read archive: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// Unpublish removes the logged-in user's theme from the server.
func (c *Client) Unpublish(ctx context.Context, name string) error {
	info, err := c.userInfo()
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, url.Values{"token": {info.Token}}, nil, "",
		"themes", "delete", name)
	if err != nil {
		return err
	}
	defer drain(resp)

	switch {
	case success(resp.StatusCode):
		c.logger.Info("unpublished theme", "theme", name)
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &DoesNotExistError{What: name}
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusUnauthorized:
		return ErrPermissionDenied
	default:
		return &ServerError{Code: resp.StatusCode}
	}
}

// Metadata fetches the remote screenshot and description of a theme.
func (c *Client) Metadata(ctx context.Context, name string) (*Metadata, error) {
	resp, err := c.do(ctx, http.MethodGet, nil, nil, "", "themes", "meta", name)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch {
	case success(resp.StatusCode):
	case resp.StatusCode == http.StatusNotFound:
		return nil, &DoesNotExistError{What: name}
	default:
		return nil, &ServerError{Code: resp.StatusCode}
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return &meta, nil
}

// PublishMetadata sets one metadata field (MetaScreenshot or
// MetaDescription) of a published theme.
func (c *Client) PublishMetadata(ctx context.Context, name, typ, value string) error {
	info, err := c.userInfo()
	if err != nil {
		return err
	}
	q := url.Values{"typem": {typ}, "value": {value}, "token": {info.Token}}
	resp, err := c.do(ctx, http.MethodPost, q, nil, "", "themes", "meta", name)
	if err != nil {
		return err
	}
	defer drain(resp)

	switch {
	case success(resp.StatusCode):
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &DoesNotExistError{What: name}
	case resp.StatusCode == http.StatusForbidden:
		return ErrPermissionDenied
	case resp.StatusCode == http.StatusPreconditionFailed:
		return &PreconditionFailedError{What: typ}
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return ErrTooLarge
	default:
		return &ServerError{Code: resp.StatusCode}
	}
}

// Download fetches a theme into the local themes directory. A theme the
// server flags as reported needs a "y" on the prompt unless force is set;
// any other answer discards the download and returns false.
func (c *Client) Download(ctx context.Context, name string, force bool) (bool, error) {
	if err := store.ValidateName(name); err != nil {
		return false, err
	}
	resp, err := c.do(ctx, http.MethodGet, nil, nil, "", "themes", "repo", name)
	if err != nil {
		return false, err
	}
	defer drain(resp)

	switch {
	case success(resp.StatusCode):
	case resp.StatusCode == http.StatusNotFound:
		return false, &DoesNotExistError{What: name}
	default:
		return false, &ServerError{Code: resp.StatusCode}
	}
	flagged := resp.StatusCode == http.StatusAlreadyReported

	archive, size, err := c.stage(name, resp.Body)
	if err != nil {
		return false, err
	}
	defer os.Remove(archive)
	c.logger.Info("downloaded theme", "theme", name, "size", humanize.Bytes(uint64(size)))

	if flagged {
		if force {
			fmt.Fprintln(c.out, warnStyle.Render(reportedNotice+" Continuing because of --force."))
		} else if !c.confirm(reportedNotice + " Are you sure you would like to continue? (y/n) ") {
			c.logger.Info("discarding reported theme", "theme", name)
			return false, nil
		} else {
			fmt.Fprintf(c.out, "Continuing. Please look carefully at the theme files in %s before loading this theme.\n",
				c.layout.ThemeDir(name))
		}
	}

	if _, err := c.ImportTheme(archive, name); err != nil {
		return false, err
	}
	if err := c.mergeMetadata(ctx, name); err != nil {
		return true, err
	}
	if !force {
		fmt.Fprintln(c.out, InstallWarning(c.host, c.executable(name)))
	}
	return true, nil
}

// stage copies body into a temporary archive file.
func (c *Client) stage(name string, body io.Reader) (string, int64, error) {
	f, err := os.CreateTemp(c.tempDir, name+"-*.tar")
	if err != nil {
		return "", 0, fmt.Errorf("create archive: %w", err)
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", 0, fmt.Errorf("write archive: %w", err)
	}
	return f.Name(), n, nil
}

func (c *Client) confirm(prompt string) bool {
	fmt.Fprint(c.out, warnStyle.Render(prompt))
	answer, err := c.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	return strings.TrimSpace(answer) == "y"
}

// mergeMetadata copies the remote screenshot and description into the
// downloaded theme's store.
func (c *Client) mergeMetadata(ctx context.Context, name string) error {
	meta, err := c.Metadata(ctx, name)
	if err != nil {
		return err
	}
	st, err := store.LoadThemeStore(c.layout, name)
	if errors.Is(err, store.ErrInvalidTheme) {
		st = store.NewThemeStore(name)
	} else if err != nil {
		return err
	}
	st.Name = name
	st.Screenshot = ansi.Strip(meta.Screen)
	st.Description = ansi.Strip(meta.Description)
	return store.SaveThemeStore(c.layout, st)
}

// executable reports whether the theme ships content that runs on load.
func (c *Client) executable(name string) bool {
	for _, opt := range []string{"script", "lemonbar"} {
		if _, err := os.Stat(c.layout.OptionFile(name, opt)); err == nil {
			return true
		}
	}
	return false
}
