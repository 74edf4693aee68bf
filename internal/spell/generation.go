// Package spell orchestrates spell checking of a mutable document:
// debounced scans, multi-level result caching, and a monotonic generation
// counter that invalidates in-flight work when configuration changes.
package spell

import "sync/atomic"

// Generation is a monotonically increasing counter value, bumped exactly
// on enable, disable, and language-switch initiation. Asynchronous work
// that captured a generation must treat a mismatch against the current
// value as stale: discard silently, never report as error.
type Generation int64

// Counter is the generation counter for one editor instance.
type Counter struct {
	v atomic.Int64
}

// Current returns the current generation.
func (c *Counter) Current() Generation {
	return Generation(c.v.Load())
}

// Bump advances the generation, invalidating all work captured before it,
// and returns the new value.
func (c *Counter) Bump() Generation {
	return Generation(c.v.Add(1))
}
