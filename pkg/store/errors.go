package store

import (
	"errors"
	"fmt"
)

// ErrInvalidTheme matches any *InvalidThemeError via errors.Is.
var ErrInvalidTheme = errors.New("invalid theme name")

// InvalidThemeError reports a theme that does not exist, is malformed, or
// cannot be used for the requested operation.
type InvalidThemeError struct {
	Name string
}

func (e *InvalidThemeError) Error() string {
	return fmt.Sprintf("invalid theme name: '%s'", e.Name)
}

func (e *InvalidThemeError) Is(target error) bool {
	return target == ErrInvalidTheme
}
