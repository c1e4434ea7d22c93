package config

import (
	"errors"
	"fmt"
)

var (
	// ErrFileNotFound is returned when an explicitly named config file is missing.
	ErrFileNotFound = errors.New("config file not found")

	// ErrInvalidConfig matches every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ParseError locates a syntax or type error in a TOML file. Line and Column
// are zero when the decoder did not report a position.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s:%d:%d: %v", e.Path, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FieldError describes one invalid setting.
type FieldError struct {
	// Field is the setting path, e.g. "bus.deferred_workers".
	Field string
	// Value is the rejected value.
	Value any
	// Reason explains what is expected.
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s = %v: %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidConfig) match a FieldError.
func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidConfig
}
