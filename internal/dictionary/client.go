package dictionary

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRequestTimeout is the per-request deadline. Exceeding it rejects
// that single request without affecting siblings.
const DefaultRequestTimeout = 30 * time.Second

// Client is the protocol layer in front of the engine context. Every call
// is assigned a unique correlation id, recorded in a pending table with a
// deadline, and sent as a typed request; responses are matched by id and
// unmatched ids are dropped silently (already cancelled or timed out).
//
// A fatal engine crash rejects every pending request with ErrWorkerCrash
// and marks the client not-ready; the next call recreates the context and
// re-issues a load for the last requested language.
type Client struct {
	mu sync.Mutex

	newEngine func() *Engine
	engine    *Engine

	pending map[string]*pendingRequest
	nextID  atomic.Int64

	timeout  time.Duration
	language string // last successfully requested load
	closed   bool

	onCrash func(error)
}

// pendingRequest tracks one in-flight protocol call.
type pendingRequest struct {
	kind  RequestKind
	ch    chan callResult
	timer *time.Timer
}

type callResult struct {
	resp Response
	err  error
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithRequestTimeout sets the per-request deadline.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCrashHandler sets a callback invoked once per engine crash, for
// logging. The callback must not call back into the client.
func WithCrashHandler(fn func(error)) ClientOption {
	return func(c *Client) {
		c.onCrash = fn
	}
}

// NewClient creates a client that obtains engine contexts from newEngine.
// The first context is created lazily on first use.
func NewClient(newEngine func() *Engine, opts ...ClientOption) *Client {
	c := &Client{
		newEngine: newEngine,
		pending:   make(map[string]*pendingRequest),
		timeout:   DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadDictionary asks the engine to load a language, discarding any
// previously loaded one. Failures are reported as *LoadError.
func (c *Client) LoadDictionary(ctx context.Context, language string) error {
	resp, err := c.call(ctx, Request{Kind: KindLoadDictionary, Language: language})
	if err != nil {
		return &LoadError{Language: language, Err: err}
	}
	if resp.Status == StatusError {
		return &LoadError{Language: language, Err: fmt.Errorf("engine: %s", resp.Err)}
	}

	c.mu.Lock()
	c.language = language
	c.mu.Unlock()
	return nil
}

// CheckWord checks a single word exactly as given. If expectedLanguage is
// non-empty the engine's loaded language is verified first and the call
// fails fast with ErrLanguageMismatch on disagreement, rather than
// silently returning a wrong-language answer.
func (c *Client) CheckWord(ctx context.Context, word, expectedLanguage string) (bool, error) {
	if err := c.verifyLanguage(ctx, expectedLanguage); err != nil {
		return false, err
	}
	resp, err := c.call(ctx, Request{Kind: KindCheckWord, Word: word})
	if err != nil {
		return false, err
	}
	if resp.Status == StatusError {
		return false, fmt.Errorf("engine: %s", resp.Err)
	}
	return resp.Correct, nil
}

// CheckWords checks a batch of words in one round trip.
func (c *Client) CheckWords(ctx context.Context, words []string, expectedLanguage string) (map[string]bool, error) {
	if len(words) == 0 {
		return map[string]bool{}, nil
	}
	if err := c.verifyLanguage(ctx, expectedLanguage); err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, Request{Kind: KindCheckWords, Words: words})
	if err != nil {
		return nil, err
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("engine: %s", resp.Err)
	}
	return resp.Results, nil
}

// GetSuggestions returns the engine's raw correction candidates for a
// word, unranked.
func (c *Client) GetSuggestions(ctx context.Context, word, expectedLanguage string) ([]string, error) {
	if err := c.verifyLanguage(ctx, expectedLanguage); err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, Request{Kind: KindGetSuggestions, Word: word})
	if err != nil {
		return nil, err
	}
	if resp.Status == StatusError {
		return nil, fmt.Errorf("engine: %s", resp.Err)
	}
	return resp.Suggestions, nil
}

// CurrentLanguage queries the engine for its currently loaded language.
func (c *Client) CurrentLanguage(ctx context.Context) (string, error) {
	resp, err := c.call(ctx, Request{Kind: KindGetCurrentLanguage})
	if err != nil {
		return "", err
	}
	if resp.Status == StatusError {
		return "", fmt.Errorf("engine: %s", resp.Err)
	}
	return resp.Language, nil
}

// Language returns the last language a load was requested for. It may
// disagree with the engine; CurrentLanguage is authoritative.
func (c *Client) Language() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.language
}

// CancelAll rejects every pending request with ErrCancelled and clears
// the table. Invoked on every configuration change so no result from
// before the change can land in the new state.
func (c *Client) CancelAll() {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]*pendingRequest)
	c.mu.Unlock()

	for _, pr := range pending {
		pr.timer.Stop()
		pr.ch <- callResult{err: ErrCancelled}
	}
}

// PendingCount returns the number of in-flight protocol requests.
func (c *Client) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Terminate shuts the client down: every pending request is rejected with
// ErrShutdown and the engine context is stopped. Subsequent calls fail.
func (c *Client) Terminate() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	engine := c.engine
	c.engine = nil
	pending := c.pending
	c.pending = make(map[string]*pendingRequest)
	c.mu.Unlock()

	for _, pr := range pending {
		pr.timer.Stop()
		pr.ch <- callResult{err: ErrShutdown}
	}
	if engine != nil {
		engine.Stop()
	}
}

// verifyLanguage fast-fails a check/suggest call when the engine holds a
// different language than expected. Empty expected skips the query.
func (c *Client) verifyLanguage(ctx context.Context, expected string) error {
	if expected == "" {
		return nil
	}
	current, err := c.CurrentLanguage(ctx)
	if err != nil {
		return err
	}
	if current != expected {
		return fmt.Errorf("%w: engine has %q, want %q", ErrLanguageMismatch, current, expected)
	}
	return nil
}

// call performs one correlated round trip to the engine.
func (c *Client) call(ctx context.Context, req Request) (Response, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Response{}, ErrShutdown
	}
	engine := c.ensureEngineLocked()

	id := "req-" + strconv.FormatInt(c.nextID.Add(1), 10)
	req.ID = id
	pr := &pendingRequest{
		kind: req.Kind,
		ch:   make(chan callResult, 1),
	}
	pr.timer = time.AfterFunc(c.timeout, func() {
		c.reject(id, ErrTimeout)
	})
	c.pending[id] = pr
	c.mu.Unlock()

	if err := engine.Send(req); err != nil {
		c.reject(id, err)
	}

	select {
	case <-ctx.Done():
		c.remove(id)
		pr.timer.Stop()
		return Response{}, ctx.Err()
	case res := <-pr.ch:
		if res.err != nil {
			return Response{}, res.err
		}
		return res.resp, nil
	}
}

// ensureEngineLocked returns the live engine context, creating one (and
// its dispatch and crash-watch goroutines) if needed. Caller holds mu.
func (c *Client) ensureEngineLocked() *Engine {
	if c.engine != nil {
		return c.engine
	}
	engine := c.newEngine()
	c.engine = engine
	go c.dispatch(engine)
	go c.watch(engine)

	// Restore the last requested language on a fresh context. Best
	// effort: checks fail open until the load lands.
	if c.language != "" {
		lang := c.language
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
			defer cancel()
			_ = c.LoadDictionary(ctx, lang)
		}()
	}
	return engine
}

// dispatch routes engine responses to their waiting callers. Responses
// with no pending entry were already cancelled or timed out and are
// dropped silently.
func (c *Client) dispatch(engine *Engine) {
	for {
		select {
		case <-engine.Done():
			return
		case resp := <-engine.Responses():
			c.mu.Lock()
			pr, ok := c.pending[resp.ID]
			if ok {
				delete(c.pending, resp.ID)
			}
			c.mu.Unlock()

			if !ok {
				continue
			}
			pr.timer.Stop()
			pr.ch <- callResult{resp: resp}
		}
	}
}

// watch handles a fatal engine exit: reject everything pending with
// ErrWorkerCrash and drop the context so the next call recreates it.
func (c *Client) watch(engine *Engine) {
	<-engine.Done()
	if engine.Err() == nil {
		return // clean stop
	}

	c.mu.Lock()
	if c.engine == engine {
		c.engine = nil
	}
	pending := c.pending
	c.pending = make(map[string]*pendingRequest)
	onCrash := c.onCrash
	c.mu.Unlock()

	for _, pr := range pending {
		pr.timer.Stop()
		pr.ch <- callResult{err: ErrWorkerCrash}
	}
	if onCrash != nil {
		onCrash(engine.Err())
	}
}

// reject resolves a pending request with an error, if still pending.
func (c *Client) reject(id string, err error) {
	pr, ok := c.remove(id)
	if !ok {
		return
	}
	pr.timer.Stop()
	pr.ch <- callResult{err: err}
}

func (c *Client) remove(id string) (*pendingRequest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pr, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	return pr, ok
}
