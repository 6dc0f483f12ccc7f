package browser

import (
	"errors"
	"fmt"
)

var (
	errNoFreeName = errors.New("no free file name")

	// ErrEmptyFolderName rejects a blank create-folder request
	ErrEmptyFolderName = errors.New("folder name is empty")

	// ErrFolderExists rejects a create-folder request matching a listed folder
	ErrFolderExists = errors.New("folder already exists")

	// ErrNothingSelected is returned when an operation needs keys or paths and got none
	ErrNothingSelected = errors.New("nothing selected")

	// ErrNoDirectory is returned when no target directory was chosen
	ErrNoDirectory = errors.New("no directory chosen")
)

// ValidationError means a local precondition failed before any backend call.
// The orchestrator aborts silently on it.
type ValidationError struct {
	Op  string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BackendError wraps a failed storage command
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// LocalIOError wraps a failed filesystem or picker call
type LocalIOError struct {
	Op   string
	Path string
	Err  error
}

func (e *LocalIOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LocalIOError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
