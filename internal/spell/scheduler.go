package spell

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/spellstorm/internal/document"
	"github.com/dshills/spellstorm/internal/extract"
)

// DefaultDebounce is the delay between the last qualifying document
// change and the start of a scan.
const DefaultDebounce = 500 * time.Millisecond

// Logger is the subset of the application logger the spell package uses.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// ScanPhase identifies where the scheduler is in its scan cycle.
type ScanPhase uint8

const (
	PhaseIdle ScanPhase = iota
	PhaseDebouncing
	PhaseScanning
	PhaseCommitting
)

// String returns a human-readable phase name.
func (p ScanPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDebouncing:
		return "debouncing"
	case PhaseScanning:
		return "scanning"
	case PhaseCommitting:
		return "committing"
	default:
		return "unknown"
	}
}

// Snapshotter provides point-in-time document snapshots.
type Snapshotter interface {
	Snapshot() *document.Snapshot
}

// Scheduler debounces document changes into scans and commits the
// resulting decoration set atomically. It owns the generation counter:
// a scan captures the generation when it starts and its results are
// discarded if the generation has moved by commit time.
type Scheduler struct {
	doc     Snapshotter
	service *Service
	log     Logger

	debounce time.Duration
	extract  extract.Options

	gen   Counter
	state atomic.Pointer[ScanState]

	mu         sync.Mutex
	enabled    bool
	language   string
	phase      ScanPhase
	timer      *time.Timer
	scanCancel context.CancelFunc
	stopped    bool

	wg       sync.WaitGroup
	onCommit func(*ScanState)
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithDebounce sets the debounce interval.
func WithDebounce(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithExtraction sets the word extraction options used by scans.
func WithExtraction(opts extract.Options) SchedulerOption {
	return func(s *Scheduler) {
		s.extract = opts
	}
}

// WithSchedulerLogger sets the logger.
func WithSchedulerLogger(l Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// WithCommitHook registers a callback invoked after every committed
// ScanState, outside the scheduler lock.
func WithCommitHook(fn func(*ScanState)) SchedulerOption {
	return func(s *Scheduler) {
		s.onCommit = fn
	}
}

// NewScheduler creates a scheduler over doc, checking words through
// service in the given language. The scheduler starts idle; call Start
// to run the initial scan.
func NewScheduler(doc Snapshotter, service *Service, language string, enabled bool, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		doc:      doc,
		service:  service,
		log:      nopLogger{},
		debounce: DefaultDebounce,
		enabled:  enabled,
		language: language,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(&ScanState{})
	return s
}

// Start runs the initial scan when checking is enabled.
func (s *Scheduler) Start() {
	s.mu.Lock()
	enabled := s.enabled && !s.stopped
	s.mu.Unlock()
	if enabled {
		s.armTimer(0)
	}
}

// Stop cancels any pending timer and in-flight scan and waits for the
// scan goroutine to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.scanCancel != nil {
		s.scanCancel()
		s.scanCancel = nil
	}
	s.phase = PhaseIdle
	s.mu.Unlock()
	s.wg.Wait()
}

// State returns the most recently committed scan state. Never nil.
func (s *Scheduler) State() *ScanState {
	return s.state.Load()
}

// Generation returns the current generation.
func (s *Scheduler) Generation() Generation {
	return s.gen.Current()
}

// Phase returns the current scan phase.
func (s *Scheduler) Phase() ScanPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Enabled reports whether checking is enabled.
func (s *Scheduler) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Language returns the active dictionary language.
func (s *Scheduler) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

func (s *Scheduler) setEnabled(on bool) {
	s.mu.Lock()
	s.enabled = on
	s.mu.Unlock()
}

func (s *Scheduler) setLanguage(lang string) {
	s.mu.Lock()
	s.language = lang
	s.mu.Unlock()
}

// Invalidate bumps the generation, cancels the pending debounce timer
// and any in-flight scan, and returns the new generation. Work started
// before the call can no longer commit.
func (s *Scheduler) Invalidate() Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	gen := s.gen.Bump()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.scanCancel != nil {
		s.scanCancel()
		s.scanCancel = nil
	}
	s.phase = PhaseIdle
	return gen
}

// DocumentChanged re-arms the debounce timer when the change completes
// a word. An insertion whose text does not end with a boundary leaves
// the word still being typed, so it does not trigger a scan; deletions
// always do because they can turn a misspelling into a correct word.
func (s *Scheduler) DocumentChanged(c document.Change) {
	if !s.Enabled() {
		return
	}
	if c.IsDeletion() || extract.EndsWithBoundary(c.NewText) {
		s.armTimer(s.debounce)
	}
}

// RequestRescan schedules a scan after the debounce interval.
func (s *Scheduler) RequestRescan() {
	s.armTimer(s.debounce)
}

// CommitEmpty atomically replaces the scan state with an empty
// decoration set at the current generation.
func (s *Scheduler) CommitEmpty() {
	gen := s.gen.Current()
	s.commit(gen, &ScanState{Generation: gen})
}

// armTimer starts or restarts the debounce timer. Only the most
// recently armed timer survives.
func (s *Scheduler) armTimer(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || !s.enabled {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.phase = PhaseDebouncing
	s.timer = time.AfterFunc(d, s.onDebounce)
}

func (s *Scheduler) onDebounce() {
	s.mu.Lock()
	if s.stopped || !s.enabled {
		s.phase = PhaseIdle
		s.mu.Unlock()
		return
	}
	gen := s.gen.Current()
	lang := s.language
	ctx, cancel := context.WithCancel(context.Background())
	s.scanCancel = cancel
	s.phase = PhaseScanning
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer cancel()
		s.scan(ctx, gen, lang)
	}()
}

// scan runs one scan cycle: snapshot, extract, check, fetch suggestions
// for misspellings, then commit. The captured generation is checked
// before and after every asynchronous step; on mismatch the scan aborts
// silently.
func (s *Scheduler) scan(ctx context.Context, gen Generation, lang string) {
	snap := s.doc.Snapshot()
	spans := extract.Words(snap, s.extract)
	if !s.validGen(ctx, gen) {
		s.settle()
		return
	}

	words := make([]string, 0, len(spans))
	seen := make(map[string]struct{}, len(spans))
	for _, sp := range spans {
		if _, dup := seen[sp.Text]; dup {
			continue
		}
		seen[sp.Text] = struct{}{}
		words = append(words, sp.Text)
	}

	results := s.service.CheckWords(ctx, lang, words)
	if !s.validGen(ctx, gen) {
		s.settle()
		return
	}

	var missed []extract.WordSpan
	for _, sp := range spans {
		if results[sp.Text].Outcome == OutcomeMisspelled {
			missed = append(missed, sp)
		}
	}

	// Suggestion fetches run concurrently but are all awaited before
	// commit, so a partial decoration set is never visible.
	suggestions := make([][]string, len(missed))
	var wg sync.WaitGroup
	for i, sp := range missed {
		wg.Add(1)
		go func(i int, word string) {
			defer wg.Done()
			suggestions[i] = s.service.Suggestions(ctx, lang, word)
		}(i, sp.Text)
	}
	wg.Wait()
	if !s.validGen(ctx, gen) {
		s.settle()
		return
	}

	if s.doc.Snapshot().Version() != snap.Version() {
		// The span layout is stale. Keep the previous decorations,
		// flag them, and let the next scan produce fresh ones.
		prev := s.state.Load()
		s.commit(gen, &ScanState{
			Decorations:  prev.Decorations,
			Generation:   prev.Generation,
			ShouldRescan: true,
		})
		s.armTimer(s.debounce)
		return
	}

	var decorations []Decoration
	for i, sp := range missed {
		if len(suggestions[i]) == 0 {
			continue
		}
		decorations = append(decorations, Decoration{
			Word:        sp.Text,
			Start:       sp.Start,
			End:         sp.End,
			Suggestions: suggestions[i],
		})
	}
	s.commit(gen, &ScanState{Decorations: decorations, Generation: gen})
}

// validGen reports whether work captured at gen may still proceed.
func (s *Scheduler) validGen(ctx context.Context, gen Generation) bool {
	if ctx.Err() != nil {
		return false
	}
	return gen == s.gen.Current()
}

// settle returns the phase to idle after an aborted scan.
func (s *Scheduler) settle() {
	s.mu.Lock()
	if s.phase == PhaseScanning {
		s.phase = PhaseIdle
	}
	s.mu.Unlock()
}

// commit atomically publishes st if the generation is still gen. It
// returns whether the state was stored.
func (s *Scheduler) commit(gen Generation, st *ScanState) bool {
	s.mu.Lock()
	if s.stopped || gen != s.gen.Current() {
		if s.phase == PhaseScanning {
			s.phase = PhaseIdle
		}
		s.mu.Unlock()
		return false
	}
	s.phase = PhaseCommitting
	s.state.Store(st)
	s.phase = PhaseIdle
	hook := s.onCommit
	s.mu.Unlock()

	if hook != nil {
		hook(st)
	}
	return true
}
