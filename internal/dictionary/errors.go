package dictionary

import (
	"errors"
	"fmt"
)

// Standard errors returned by the dictionary client and engine.
var (
	// ErrNotReady indicates the engine context is not available.
	ErrNotReady = errors.New("dictionary engine not ready")

	// ErrShutdown indicates the client has been terminated.
	ErrShutdown = errors.New("dictionary client terminated")

	// ErrTimeout indicates a single request exceeded its deadline.
	// Sibling requests are unaffected.
	ErrTimeout = errors.New("dictionary request timed out")

	// ErrCancelled indicates the request was rejected by a mass cancel.
	// Expected during configuration changes, not a user-visible failure.
	ErrCancelled = errors.New("dictionary request cancelled")

	// ErrWorkerCrash indicates the isolated engine context failed
	// fatally. All pending requests are rejected with it and the context
	// must be recreated before further use.
	ErrWorkerCrash = errors.New("dictionary engine crashed")

	// ErrLanguageMismatch indicates the engine holds a different
	// language than the caller expected. Callers fail open.
	ErrLanguageMismatch = errors.New("dictionary language mismatch")

	// ErrNoLanguage indicates no dictionary has been loaded yet.
	ErrNoLanguage = errors.New("no dictionary loaded")
)

// LoadError reports a dictionary that failed to load. It is propagated to
// the LoadDictionary caller and logged; scanning proceeds as disabled
// until retried.
type LoadError struct {
	Language string
	Err      error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load dictionary %s: %v", e.Language, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}
