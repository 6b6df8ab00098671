package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// ParseError describes a configuration file that is not valid TOML or holds
// unknown keys.
type ParseError struct {
	Path    string
	Line    int // 1-based; zero when unknown
	Column  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// fieldError reports an invalid setting.
func fieldError(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, path, fmt.Sprintf(format, args...))
}
