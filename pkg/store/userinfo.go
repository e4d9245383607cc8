package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// UserInfo is the ThemeHub login persisted after a successful login.
type UserInfo struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// LoadUserInfo reads ravenserver.json. When nobody is logged in the returned
// error matches fs.ErrNotExist.
func LoadUserInfo(l Layout) (*UserInfo, error) {
	data, err := os.ReadFile(l.UserInfoPath())
	if err != nil {
		return nil, fmt.Errorf("read login info: %w", err)
	}
	var info UserInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse login info: %w", err)
	}
	return &info, nil
}

// SaveUserInfo replaces ravenserver.json.
func SaveUserInfo(l Layout, info *UserInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode login info: %w", err)
	}
	if err := replaceFile(l.UserInfoPath(), data); err != nil {
		return fmt.Errorf("save login info: %w", err)
	}
	return nil
}

// RemoveUserInfo deletes ravenserver.json. Removing an absent file is not an
// error.
func RemoveUserInfo(l Layout) error {
	if err := os.Remove(l.UserInfoPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove login info: %w", err)
	}
	return nil
}
