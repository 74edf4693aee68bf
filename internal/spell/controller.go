package spell

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/text/language"
)

// Verification polling defaults for language switches.
const (
	defaultVerifyRetries = 3
	defaultVerifyDelay   = 100 * time.Millisecond
)

// Controller exposes the enable/disable and language-switch operations.
// Every configuration change bumps the generation first, so in-flight
// scans and protocol requests started under the old configuration can
// never apply their results.
type Controller struct {
	sched   *Scheduler
	service *Service
	client  Client
	log     Logger

	verifyRetries int
	verifyDelay   time.Duration
	onMenuClear   func()

	mu sync.Mutex
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithControllerLogger sets the logger.
func WithControllerLogger(l Logger) ControllerOption {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMenuClearHook registers a callback invoked when open suggestion
// menu state must be discarded (disable and language switch).
func WithMenuClearHook(fn func()) ControllerOption {
	return func(c *Controller) {
		c.onMenuClear = fn
	}
}

// WithVerification overrides the language-switch verification polling.
func WithVerification(retries int, delay time.Duration) ControllerOption {
	return func(c *Controller) {
		if retries >= 0 {
			c.verifyRetries = retries
		}
		if delay > 0 {
			c.verifyDelay = delay
		}
	}
}

// NewController creates a controller over the scheduler, service, and
// dictionary client of one editor instance.
func NewController(client Client, service *Service, sched *Scheduler, opts ...ControllerOption) *Controller {
	c := &Controller{
		sched:         sched,
		service:       service,
		client:        client,
		log:           nopLogger{},
		verifyRetries: defaultVerifyRetries,
		verifyDelay:   defaultVerifyDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether checking is enabled.
func (c *Controller) Enabled() bool {
	return c.sched.Enabled()
}

// Language returns the active dictionary language.
func (c *Controller) Language() string {
	return c.sched.Language()
}

// Toggle flips the enabled flag and returns the new value.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	on := !c.sched.Enabled()
	c.apply(on)
	return on
}

// SetEnabled sets the enabled flag.
func (c *Controller) SetEnabled(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply(on)
}

// apply performs the enable or disable transition. The generation is
// bumped before any other effect.
func (c *Controller) apply(on bool) {
	c.sched.Invalidate()
	c.sched.setEnabled(on)

	if !on {
		c.client.CancelAll()
		c.service.ClearCaches()
		if c.onMenuClear != nil {
			c.onMenuClear()
		}
		c.sched.CommitEmpty()
		return
	}

	lang := c.sched.Language()
	go func() {
		if err := c.client.LoadDictionary(context.Background(), lang); err != nil {
			c.log.Error("dictionary load failed for %s: %v", lang, err)
		}
	}()
	c.sched.RequestRescan()
}

// SetLanguage switches the dictionary language. The old language's
// decorations and caches are discarded immediately so stale markings
// never linger while the new dictionary loads. If the configuration
// changes again during the load, the switch is silently superseded.
func (c *Controller) SetLanguage(ctx context.Context, lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}
	lang = tag.String()

	c.mu.Lock()
	defer c.mu.Unlock()

	gen := c.sched.Invalidate()
	c.client.CancelAll()
	c.service.ClearCaches()
	if c.onMenuClear != nil {
		c.onMenuClear()
	}
	c.sched.CommitEmpty()

	if err := c.client.LoadDictionary(ctx, lang); err != nil {
		c.log.Error("dictionary load failed for %s: %v", lang, err)
		return err
	}
	if gen != c.sched.Generation() {
		return nil
	}

	verified, err := c.verifyLanguage(ctx, lang)
	if err != nil {
		return err
	}
	if gen != c.sched.Generation() {
		return nil
	}
	if !verified {
		// The engine answered with a different language or not at
		// all. Proceed optimistically; the next load will reconcile.
		c.log.Warn("language switch to %s not verified", lang)
	}

	c.sched.setLanguage(lang)
	if c.sched.Enabled() {
		c.sched.RequestRescan()
	}
	return nil
}

// verifyLanguage polls the engine until it reports lang or the retry
// budget is exhausted.
func (c *Controller) verifyLanguage(ctx context.Context, lang string) (bool, error) {
	for attempt := 0; attempt <= c.verifyRetries; attempt++ {
		got, err := c.client.CurrentLanguage(ctx)
		if err == nil && got == lang {
			return true, nil
		}
		if attempt == c.verifyRetries {
			break
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(c.verifyDelay):
		}
	}
	return false, nil
}
