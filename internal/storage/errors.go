package storage

import (
	"errors"
	"fmt"
)

// ErrKind categorises a backend failure independent of the SDK that produced it
type ErrKind int

const (
	ErrKindUnknown ErrKind = iota
	ErrKindNotFound
	ErrKindPermissionDenied
	ErrKindInvalidInput
	ErrKindConnectionFailed
	ErrKindTimeout
	ErrKindCommandFailed
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindCommandFailed:
		return "command_failed"
	default:
		return "unknown"
	}
}

// Error is returned by every Backend method that fails
type Error struct {
	Kind ErrKind
	Op   string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s [%s]: %v", e.Op, e.Key, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap builds an *Error. A nil cause yields nil.
func Wrap(kind ErrKind, op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Key: key, Err: err}
}

// ErrRootFolder is returned when a folder operation targets the bucket root
var ErrRootFolder = errors.New("cannot operate on the root folder")

// ErrTooManyObjects guards recursive folder walks
var ErrTooManyObjects = errors.New("folder contains too many objects")

// KindOf reports the kind of err, or ErrKindUnknown when err is not a storage error
func KindOf(err error) ErrKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrKindUnknown
}

func IsNotFound(err error) bool         { return KindOf(err) == ErrKindNotFound }
func IsPermissionDenied(err error) bool { return KindOf(err) == ErrKindPermissionDenied }
func IsInvalidInput(err error) bool     { return KindOf(err) == ErrKindInvalidInput }
func IsTimeout(err error) bool          { return KindOf(err) == ErrKindTimeout }
