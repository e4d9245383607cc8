package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"gitlab.com/tinyland/lab/raven/pkg/store"
)

// CreateUser registers a new account. Mismatched passwords are reported as
// false without contacting the server.
func (c *Client) CreateUser(ctx context.Context, name, pass, pass2 string) (bool, error) {
	if pass != pass2 {
		c.logger.Info("passwords do not match")
		return false, nil
	}
	resp, err := c.do(ctx, http.MethodPost, url.Values{"name": {name}, "pass": {pass}}, nil, "",
		"themes", "user", "create")
	if err != nil {
		return false, err
	}
	defer drain(resp)

	switch {
	case success(resp.StatusCode):
		c.logger.Info("created user", "name", name)
		return true, nil
	case resp.StatusCode == http.StatusForbidden:
		return false, ErrPermissionDenied
	case resp.StatusCode == http.StatusRequestEntityTooLarge:
		return false, ErrTooLarge
	default:
		return false, &ServerError{Code: resp.StatusCode}
	}
}

// Login exchanges credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, name, pass string) (*store.UserInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, url.Values{"name": {name}, "pass": {pass}}, nil, "",
		"themes", "user", "login")
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch {
	case success(resp.StatusCode):
	case resp.StatusCode == http.StatusForbidden:
		return nil, ErrPermissionDenied
	default:
		return nil, &ServerError{Code: resp.StatusCode}
	}

	var info store.UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if err := store.SaveUserInfo(c.layout, &info); err != nil {
		return nil, err
	}
	c.logger.Info("logged in", "name", info.Name)
	return &info, nil
}

// Logout forgets the stored login.
func (c *Client) Logout() error {
	if err := store.RemoveUserInfo(c.layout); err != nil {
		return err
	}
	c.logger.Info("logged out")
	return nil
}

// DeleteUser deletes the logged-in account and every theme it owns, then
// logs out.
func (c *Client) DeleteUser(ctx context.Context, pass string) error {
	info, err := c.userInfo()
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPost, url.Values{"token": {info.Token}, "pass": {pass}}, nil, "",
		"themes", "users", "delete", info.Name)
	if err != nil {
		return err
	}
	defer drain(resp)

	switch {
	case success(resp.StatusCode):
	case resp.StatusCode == http.StatusForbidden:
		return ErrPermissionDenied
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrNotLoggedIn
	case resp.StatusCode == http.StatusNotFound:
		return &DoesNotExistError{What: info.Name}
	default:
		return &ServerError{Code: resp.StatusCode}
	}
	c.logger.Info("deleted user and all owned themes", "name", info.Name)
	return c.Logout()
}
