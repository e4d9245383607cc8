// Package hub is a client for ThemeHub, the remote repository raven themes
// are published to and downloaded from.
//
// Every operation is a single HTTP request/response. Parameters travel in
// the query string, theme archives as multipart uploads, and the response
// status code is the only error channel; see errors.go for the mapping.
package hub

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Client talks to one ThemeHub host.
type Client struct {
	host    string
	layout  store.Layout
	http    *http.Client
	tempDir string
	in      *bufio.Reader
	out     io.Writer
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTempDir sets where archives are staged during upload and download.
func WithTempDir(dir string) Option {
	return func(c *Client) { c.tempDir = dir }
}

// WithPrompt sets where confirmation answers are read from and where
// prompts and warnings are written.
func WithPrompt(in io.Reader, out io.Writer) Option {
	return func(c *Client) {
		c.in = bufio.NewReader(in)
		c.out = out
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New returns a Client for host. An empty host selects store.DefaultHost.
func New(host string, layout store.Layout, opts ...Option) *Client {
	if host == "" {
		host = store.DefaultHost
	}
	c := &Client{
		host:    strings.TrimRight(host, "/"),
		layout:  layout,
		http:    &http.Client{Timeout: DefaultTimeout},
		tempDir: os.TempDir(),
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the base URL requests are sent to.
func (c *Client) Host() string { return c.host }

// do sends one request. segments are path-escaped and joined under host.
func (c *Client) do(ctx context.Context, method string, query url.Values, body io.Reader, contentType string, segments ...string) (*http.Response, error) {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := c.host + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("hub request", "method", method, "path", "/"+strings.Join(escaped, "/"))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", strings.Join(segments, "/"), err)
	}
	return resp, nil
}

// drain discards the rest of the body so the connection can be reused.
func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

func success(code int) bool { return code >= 200 && code < 300 }

// userInfo returns the stored login or ErrNotLoggedIn.
func (c *Client) userInfo() (*store.UserInfo, error) {
	info, err := store.LoadUserInfo(c.layout)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}
	return info, nil
}
