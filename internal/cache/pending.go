package cache

import (
	"context"
	"sync"
)

// PendingChecks deduplicates concurrent checks of the same word. The
// first caller for a language:word key becomes the leader and performs
// the dictionary round trip; every later caller for the same key receives
// the same pending future instead of issuing a duplicate call.
type PendingChecks struct {
	mu       sync.Mutex
	inflight map[string]*PendingCheck
}

// PendingCheck is the shared future for one in-flight word check.
type PendingCheck struct {
	done    chan struct{}
	correct bool
	err     error
}

// NewPendingChecks creates an empty dedup table.
func NewPendingChecks() *PendingChecks {
	return &PendingChecks{inflight: make(map[string]*PendingCheck)}
}

// Begin returns the pending future for language:word. leader is true for
// the caller that must perform the check and complete the future; all
// other callers wait on the same future.
func (p *PendingChecks) Begin(language, word string) (pc *PendingCheck, leader bool) {
	key := language + ":" + word

	p.mu.Lock()
	defer p.mu.Unlock()

	if existing, ok := p.inflight[key]; ok {
		return existing, false
	}
	pc = &PendingCheck{done: make(chan struct{})}
	p.inflight[key] = pc
	return pc, true
}

// Complete resolves the future and removes it from the table. Must be
// called exactly once, by the leader.
func (p *PendingChecks) Complete(language, word string, correct bool, err error) {
	key := language + ":" + word

	p.mu.Lock()
	pc, ok := p.inflight[key]
	if ok {
		delete(p.inflight, key)
	}
	p.mu.Unlock()

	if !ok {
		return
	}
	pc.correct = correct
	pc.err = err
	close(pc.done)
}

// Wait blocks until the future resolves or ctx is cancelled.
func (pc *PendingCheck) Wait(ctx context.Context) (correct bool, err error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case <-pc.done:
		return pc.correct, pc.err
	}
}

// Len returns the number of in-flight checks.
func (p *PendingChecks) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inflight)
}
