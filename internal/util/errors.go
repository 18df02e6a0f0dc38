// Package util provides shared utility types for the resolution layer.
//
// # Error Conventions
//
// This project follows a standardized error pattern across all packages:
//
//   - Sentinel errors (errors.New) for well-known, stable conditions
//     that callers check with errors.Is(). Example: ErrNoAdapter.
//   - Structured error types for context-rich errors that carry
//     additional fields (e.g., MappingError, ConfigError). Each type
//     implements Error(), Unwrap() (if wrapping), and Is().
//   - fmt.Errorf with %w for ad-hoc wrapping that adds context to an
//     existing error without introducing a new type.
//
// A declined match is never represented as an error. Matchers and the
// registry report "no route" through an explicit boolean result so that
// callers cannot confuse it with an internal fault.
package util

import (
	"errors"
	"fmt"
)

// Common sentinel errors.
var (
	ErrNoAdapter      = errors.New("no handler adapter supports handler")
	ErrNilHandler     = errors.New("handler must not be nil")
	ErrInvalidPattern = errors.New("invalid route pattern")
	ErrConfigInvalid  = errors.New("invalid configuration")
)

// MappingError represents an internal fault raised by a handler mapping
// during matching. It is distinct from a declined match.
type MappingError struct {
	Mapping string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *MappingError) Error() string {
	if e.Mapping != "" {
		return fmt.Sprintf("mapping %s: %s", e.Mapping, e.Message)
	}
	return fmt.Sprintf("mapping error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *MappingError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *MappingError) Is(target error) bool {
	var me *MappingError
	if errors.As(target, &me) {
		return e.Mapping == me.Mapping
	}
	return false
}

// ConfigError represents a configuration-related error.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error at %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("config error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target.
func (e *ConfigError) Is(target error) bool {
	if target == ErrConfigInvalid {
		return true
	}
	var ce *ConfigError
	if errors.As(target, &ce) {
		return e.Field == ce.Field
	}
	return false
}

// AdapterError is returned when no registered handler adapter supports a
// matched handler reference.
type AdapterError struct {
	Handler any
}

// Error implements the error interface.
func (e *AdapterError) Error() string {
	return fmt.Sprintf("no handler adapter supports handler of type %T", e.Handler)
}

// Is checks if the error matches the target.
func (e *AdapterError) Is(target error) bool {
	return target == ErrNoAdapter
}
