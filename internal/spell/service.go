package spell

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/spellstorm/internal/cache"
	"github.com/dshills/spellstorm/internal/dictionary"
)

// Client is the dictionary protocol surface the orchestration needs.
// *dictionary.Client satisfies it.
type Client interface {
	LoadDictionary(ctx context.Context, language string) error
	CheckWord(ctx context.Context, word, expectedLanguage string) (bool, error)
	CheckWords(ctx context.Context, words []string, expectedLanguage string) (map[string]bool, error)
	GetSuggestions(ctx context.Context, word, expectedLanguage string) ([]string, error)
	CurrentLanguage(ctx context.Context) (string, error)
	CancelAll()
}

// Outcome is the resolved verdict for a word after the fail-open policy
// has been applied.
type Outcome uint8

const (
	OutcomeCorrect Outcome = iota
	OutcomeMisspelled
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	if o == OutcomeMisspelled {
		return "misspelled"
	}
	return "correct"
}

// Result is the typed outcome of a word check. When Err is non-nil the
// outcome is the fail-open default, not a dictionary answer.
//
// Default-outcome table per error kind:
//
//	timeout           -> correct
//	cancelled         -> correct
//	language mismatch -> correct
//	worker crash      -> correct
//	any other failure -> correct
//
// A spelling engine must never flag a word it could not actually check.
type Result struct {
	Outcome Outcome
	Err     error
}

// failOpen is the Result for a word the engine could not answer about.
func failOpen(err error) Result {
	return Result{Outcome: OutcomeCorrect, Err: err}
}

// Service performs cache-backed, deduplicated word checks and suggestion
// lookups against the dictionary client. It is shared across all scans of
// one editor instance.
type Service struct {
	client      Client
	results     *cache.ResultCache
	suggestions *cache.SuggestionCache
	pending     *cache.PendingChecks

	minWordLength  int
	maxSuggestions int
	verifyLanguage bool
}

// ServiceOption configures the service.
type ServiceOption func(*Service)

// WithMinWordLength sets the minimum rune count below which words are
// always treated as correct and never sent to the engine.
func WithMinWordLength(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.minWordLength = n
		}
	}
}

// WithMaxSuggestions caps ranked suggestion lists.
func WithMaxSuggestions(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxSuggestions = n
		}
	}
}

// WithLanguageVerification makes every check/suggest call verify the
// engine's loaded language first, failing fast on mismatch instead of
// risking a wrong-language answer.
func WithLanguageVerification(enable bool) ServiceOption {
	return func(s *Service) {
		s.verifyLanguage = enable
	}
}

// NewService creates a service over the given client with fresh caches.
func NewService(client Client, opts ...ServiceOption) (*Service, error) {
	suggestions, err := cache.NewSuggestionCache(0)
	if err != nil {
		return nil, err
	}
	s := &Service{
		client:         client,
		results:        cache.NewResultCache(),
		suggestions:    suggestions,
		pending:        cache.NewPendingChecks(),
		minWordLength:  2,
		maxSuggestions: dictionary.MaxSuggestions,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CheckWord checks one word in a language. Cache hits resolve locally; a
// second check of a word already in flight waits on the same pending
// future instead of issuing a duplicate dictionary call. All protocol
// failures fail open.
func (s *Service) CheckWord(ctx context.Context, lang, word string) Result {
	word = strings.TrimSpace(word)
	if utf8.RuneCountInString(word) < s.minWordLength {
		return Result{Outcome: OutcomeCorrect}
	}

	if v := s.results.Lookup(lang, word); v != cache.Unknown {
		return verdictResult(v)
	}

	pc, leader := s.pending.Begin(lang, word)
	if !leader {
		correct, err := pc.Wait(ctx)
		if err != nil {
			return failOpen(err)
		}
		return boolResult(correct)
	}

	correct, err := s.checkBothCases(ctx, lang, word)
	if err != nil {
		s.pending.Complete(lang, word, false, err)
		return failOpen(err)
	}

	s.results.Record(lang, word, correct)
	s.pending.Complete(lang, word, correct, nil)
	return boolResult(correct)
}

// CheckWords checks a batch of words, resolving cache hits locally,
// joining in-flight duplicates, and batching the remaining misses into a
// single protocol call (plus one lowercase-fallback call when needed).
func (s *Service) CheckWords(ctx context.Context, lang string, words []string) map[string]Result {
	out := make(map[string]Result, len(words))

	var misses []string
	waiting := make(map[string]*cache.PendingCheck)

	for _, raw := range words {
		word := strings.TrimSpace(raw)
		if _, done := out[word]; done {
			continue
		}
		if _, wait := waiting[word]; wait {
			continue
		}
		if utf8.RuneCountInString(word) < s.minWordLength {
			out[word] = Result{Outcome: OutcomeCorrect}
			continue
		}
		if v := s.results.Lookup(lang, word); v != cache.Unknown {
			out[word] = verdictResult(v)
			continue
		}
		pc, leader := s.pending.Begin(lang, word)
		if !leader {
			waiting[word] = pc
			continue
		}
		misses = append(misses, word)
	}

	if len(misses) > 0 {
		resolved, failed := s.checkBatch(ctx, lang, misses)
		s.results.RecordBatch(lang, resolved)
		for _, word := range misses {
			if err, bad := failed[word]; bad {
				s.pending.Complete(lang, word, false, err)
				out[word] = failOpen(err)
				continue
			}
			correct := resolved[word]
			s.pending.Complete(lang, word, correct, nil)
			out[word] = boolResult(correct)
		}
	}

	for word, pc := range waiting {
		correct, err := pc.Wait(ctx)
		if err != nil {
			out[word] = failOpen(err)
			continue
		}
		out[word] = boolResult(correct)
	}

	return out
}

// Suggestions returns the ranked corrections for a word, at most the
// configured maximum, cached per language and word. An empty list is a
// legitimate outcome; protocol failures yield an empty list as well.
func (s *Service) Suggestions(ctx context.Context, lang, word string) []string {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil
	}

	if cached, ok := s.suggestions.Get(lang, word); ok {
		return cached
	}

	expected := s.expectedLanguage(lang)
	raw, err := s.client.GetSuggestions(ctx, word, expected)
	if err != nil {
		return nil
	}
	if len(raw) == 0 {
		if lower := s.lowercase(lang, word); lower != word {
			raw, err = s.client.GetSuggestions(ctx, lower, expected)
			if err != nil {
				return nil
			}
		}
	}

	ranked := dictionary.RankSuggestions(word, raw, s.maxSuggestions)
	s.suggestions.Add(lang, word, ranked)
	return ranked
}

// ClearCaches wipes the result and suggestion caches for all languages.
// Called on disable and on language switch; clearing is never partial.
func (s *Service) ClearCaches() {
	s.results.Clear()
	s.suggestions.Purge()
}

// CachedVerdict exposes the raw cache verdict, for tests and diagnostics.
func (s *Service) CachedVerdict(lang, word string) cache.Verdict {
	return s.results.Lookup(lang, word)
}

// checkBothCases checks the original case first (a capitalized proper
// noun may be correct while its lowercase form is not) and falls back to
// the lowercased form when it differs. The word is correct if either
// check succeeds.
func (s *Service) checkBothCases(ctx context.Context, lang, word string) (bool, error) {
	expected := s.expectedLanguage(lang)

	correct, err := s.client.CheckWord(ctx, word, expected)
	if err != nil {
		return false, err
	}
	if correct {
		return true, nil
	}

	lower := s.lowercase(lang, word)
	if lower == word {
		return false, nil
	}
	return s.client.CheckWord(ctx, lower, expected)
}

// checkBatch resolves a batch of words, applying the lowercase fallback
// to words the first round reported as incorrect. Words the engine could
// not answer about are returned in failed and never cached.
func (s *Service) checkBatch(ctx context.Context, lang string, words []string) (resolved map[string]bool, failed map[string]error) {
	expected := s.expectedLanguage(lang)
	resolved = make(map[string]bool, len(words))
	failed = make(map[string]error)

	first, err := s.client.CheckWords(ctx, words, expected)
	if err != nil {
		for _, word := range words {
			failed[word] = err
		}
		return resolved, failed
	}

	lowerFor := make(map[string]string)
	var fallback []string
	for _, word := range words {
		if first[word] {
			resolved[word] = true
			continue
		}
		lower := s.lowercase(lang, word)
		if lower != word {
			lowerFor[word] = lower
			fallback = append(fallback, lower)
			continue
		}
		resolved[word] = false
	}

	if len(fallback) > 0 {
		second, err := s.client.CheckWords(ctx, fallback, expected)
		for word, lower := range lowerFor {
			if err != nil {
				failed[word] = err
				continue
			}
			resolved[word] = second[lower]
		}
	}

	return resolved, failed
}

func (s *Service) expectedLanguage(lang string) string {
	if s.verifyLanguage {
		return lang
	}
	return ""
}

// lowercase lowercases a word using the language's casing rules when the
// tag parses, so locale-specific mappings hold.
func (s *Service) lowercase(lang, word string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return strings.ToLower(word)
	}
	return cases.Lower(tag).String(word)
}

func verdictResult(v cache.Verdict) Result {
	if v == cache.Misspelled {
		return Result{Outcome: OutcomeMisspelled}
	}
	return Result{Outcome: OutcomeCorrect}
}

func boolResult(correct bool) Result {
	if correct {
		return Result{Outcome: OutcomeCorrect}
	}
	return Result{Outcome: OutcomeMisspelled}
}
