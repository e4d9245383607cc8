package hub

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotLoggedIn means no login is stored locally or the server rejected
	// the stored token.
	ErrNotLoggedIn = errors.New("no login info stored")

	// ErrPermissionDenied means the server refused the operation.
	ErrPermissionDenied = errors.New("not allowed to perform this operation")

	// ErrTooLarge means a request parameter or payload exceeded the
	// server's limit.
	ErrTooLarge = errors.New("a payload was sent that was too large")
)

// DoesNotExistError reports a remote theme or user that is not found.
type DoesNotExistError struct {
	What string
}

func (e *DoesNotExistError) Error() string {
	return fmt.Sprintf("%s does not exist", e.What)
}

// PreconditionFailedError reports a request the server rejected as invalid,
// such as an unknown metadata type.
type PreconditionFailedError struct {
	What string
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("precondition failed: %s", e.What)
}

// ServerError reports any status the operation does not map otherwise.
type ServerError struct {
	Code int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("the server encountered an error. code: %d %s", e.Code, http.StatusText(e.Code))
}
