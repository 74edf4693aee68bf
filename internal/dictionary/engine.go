package dictionary

import (
	"context"
	"fmt"
	"time"
)

// engine channel capacities. The response buffer keeps the run loop from
// blocking on a slow consumer.
const (
	engineRequestBuffer  = 16
	engineResponseBuffer = 64
)

// loadFetchTimeout bounds a provider fetch performed inside the engine.
const loadFetchTimeout = 25 * time.Second

// Engine is the isolated dictionary-checking context: a single goroutine
// that owns one Checker (and therefore at most one loaded language) and
// serves typed requests over channels. It may run in true parallel with
// the orchestration but is itself strictly sequential.
//
// A panic anywhere in request handling is treated as a fatal crash: the
// run loop exits, Done is closed, and Err reports the cause. The engine
// is not restartable; the client creates a fresh one.
type Engine struct {
	checker  Checker
	provider Provider

	requests  chan Request
	responses chan Response
	stop      chan struct{}
	done      chan struct{}

	exitErr error
}

// NewEngine creates and starts an engine context hosting the given
// checker. Dictionary payloads are obtained through provider on
// LOAD_DICTIONARY requests.
func NewEngine(checker Checker, provider Provider) *Engine {
	e := &Engine{
		checker:   checker,
		provider:  provider,
		requests:  make(chan Request, engineRequestBuffer),
		responses: make(chan Response, engineResponseBuffer),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go e.run()
	return e
}

// Send submits a request to the engine. It fails with ErrWorkerCrash if
// the context has already exited fatally, or ErrNotReady if it was
// stopped.
func (e *Engine) Send(req Request) error {
	select {
	case <-e.done:
		if e.exitErr != nil {
			return ErrWorkerCrash
		}
		return ErrNotReady
	case e.requests <- req:
		return nil
	}
}

// Responses returns the channel carrying engine replies.
func (e *Engine) Responses() <-chan Response {
	return e.responses
}

// Done returns a channel closed when the engine context has exited,
// cleanly or fatally.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Err returns the fatal exit cause, or nil after a clean stop. Valid only
// after Done is closed.
func (e *Engine) Err() error {
	return e.exitErr
}

// Stop shuts the engine context down cleanly. Requests already queued are
// dropped.
func (e *Engine) Stop() {
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
}

// run is the engine context's single goroutine.
func (e *Engine) run() {
	defer func() {
		if r := recover(); r != nil {
			e.exitErr = fmt.Errorf("engine panic: %v", r)
		}
		close(e.done)
	}()

	for {
		select {
		case <-e.stop:
			return
		case req := <-e.requests:
			resp := e.handle(req)
			select {
			case e.responses <- resp:
			case <-e.stop:
				return
			}
		}
	}
}

// handle serves one request. Panics escape to run's recover and are
// treated as a crash of the whole context.
func (e *Engine) handle(req Request) Response {
	resp := Response{ID: req.ID}

	switch req.Kind {
	case KindLoadDictionary:
		ctx, cancel := context.WithTimeout(context.Background(), loadFetchTimeout)
		files, err := e.provider.Fetch(ctx, req.Language)
		cancel()
		if err == nil {
			err = e.checker.Load(req.Language, files)
		}
		if err != nil {
			return errorResponse(req.ID, err)
		}
		resp.Language = req.Language

	case KindCheckWord:
		if e.checker.Language() == "" {
			return errorResponse(req.ID, ErrNoLanguage)
		}
		resp.Correct = e.checker.Check(req.Word)

	case KindCheckWords:
		if e.checker.Language() == "" {
			return errorResponse(req.ID, ErrNoLanguage)
		}
		results := make(map[string]bool, len(req.Words))
		for _, w := range req.Words {
			results[w] = e.checker.Check(w)
		}
		resp.Results = results

	case KindGetSuggestions:
		if e.checker.Language() == "" {
			return errorResponse(req.ID, ErrNoLanguage)
		}
		resp.Suggestions = e.checker.Suggest(req.Word)

	case KindGetCurrentLanguage:
		resp.Language = e.checker.Language()

	default:
		return errorResponse(req.ID, fmt.Errorf("unknown request kind %d", req.Kind))
	}

	return resp
}

func errorResponse(id string, err error) Response {
	return Response{ID: id, Status: StatusError, Err: err.Error()}
}
