// Package app coordinates one open manuscript: it wires the buffer, undo
// history, layout cache, viewport, search and background analysis together
// under a single configuration and logger.
package app

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for files with an unknown extension.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrClosed is returned by operations on a closed document.
	ErrClosed = errors.New("document closed")
)

// OperationError records which document operation failed and on what.
type OperationError struct {
	Op      string // e.g. "open", "insert", "replace-all"
	Target  string // file path or position
	Context string
	Err     error
}

// NewOperationError creates an OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{Op: op, Target: target, Err: err}
}

// WithContext sets Context. It is safe on a nil receiver.
func (e *OperationError) WithContext(ctx string) *OperationError {
	if e == nil {
		return nil
	}
	e.Context = ctx
	return e
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Context != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Context)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches the same OperationError or anything the wrapped error matches.
func (e *OperationError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*OperationError); ok {
		return e == t
	}
	return errors.Is(e.Err, target)
}

// opError wraps err in an OperationError, or returns nil.
func opError(op, target string, err error) error {
	if err == nil {
		return nil
	}
	return NewOperationError(op, target, err)
}
