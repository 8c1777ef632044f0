package core

import (
	"errors"
	"fmt"

	"github.com/edvin/dockpanel/internal/executor"
	"github.com/edvin/dockpanel/internal/layout"
	"github.com/edvin/dockpanel/internal/store"
)

// Error kinds. Every error returned by a service matches at most one of
// them through errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrExecution    = executor.ErrExecution
	ErrPathSecurity = errors.New("path outside project root")
)

// Error carries a user-facing message next to its kind and cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func validationError(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

// classify turns store and layout sentinels into service error kinds.
// Other errors are returned unchanged.
func classify(err error, name string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("project %s does not exist", name), Err: err}
	case errors.Is(err, store.ErrDuplicate):
		return &Error{Kind: ErrConflict, Message: fmt.Sprintf("project %s already exists", name), Err: err}
	case errors.Is(err, layout.ErrInvalidProjectName):
		return &Error{Kind: ErrPathSecurity, Message: fmt.Sprintf("invalid project path for %q", name), Err: err}
	case errors.Is(err, layout.ErrInvalidProjectDir):
		return &Error{Kind: ErrConflict, Message: fmt.Sprintf("project directory of %s is not a directory", name), Err: err}
	case errors.Is(err, layout.ErrInvalidComposeFile):
		return &Error{Kind: ErrConflict, Message: fmt.Sprintf("docker-compose.yml of %s is not a regular file", name), Err: err}
	}
	return err
}
