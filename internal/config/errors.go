package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLanguage indicates the configured language is not a
	// valid BCP 47 tag.
	ErrInvalidLanguage = errors.New("invalid language tag")

	// ErrInvalidValue indicates a setting is out of range.
	ErrInvalidValue = errors.New("invalid configuration value")
)

// ParseError describes a malformed configuration file.
type ParseError struct {
	Path string
	Err  error
}

// Error returns the error message.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing config file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
