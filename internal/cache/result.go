// Package cache holds per-language spell-check results, ranked suggestion
// lists, and the in-flight request dedup table. Entries persist across
// scans until explicitly cleared; clearing is always full, never partial.
package cache

import "sync"

// Verdict is the cached outcome of a word check. Unknown is implicit by
// absence and means the dictionary client must be consulted.
type Verdict uint8

const (
	Unknown Verdict = iota
	Correct
	Misspelled
)

// String returns a human-readable verdict name.
func (v Verdict) String() string {
	switch v {
	case Correct:
		return "correct"
	case Misspelled:
		return "misspelled"
	case Unknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// ResultCache stores known-correct and known-misspelled words per
// language as two disjoint sets. Membership is mutually exclusive:
// recording a word into one set removes it from the other. Words are
// stored case-sensitively so proper-noun outcomes do not leak into their
// lowercase forms.
type ResultCache struct {
	mu    sync.RWMutex
	langs map[string]*langSets
}

type langSets struct {
	correct    map[string]struct{}
	misspelled map[string]struct{}
}

// NewResultCache creates an empty result cache.
func NewResultCache() *ResultCache {
	return &ResultCache{langs: make(map[string]*langSets)}
}

// Lookup returns the cached verdict for a word in a language.
func (c *ResultCache) Lookup(language, word string) Verdict {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sets, ok := c.langs[language]
	if !ok {
		return Unknown
	}
	if _, ok := sets.correct[word]; ok {
		return Correct
	}
	if _, ok := sets.misspelled[word]; ok {
		return Misspelled
	}
	return Unknown
}

// Record stores the outcome for a single word.
func (c *ResultCache) Record(language, word string, correct bool) {
	c.RecordBatch(language, map[string]bool{word: correct})
}

// RecordBatch stores outcomes for several words atomically. For each word
// the insert into one set removes it from the other.
func (c *ResultCache) RecordBatch(language string, results map[string]bool) {
	if len(results) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	sets, ok := c.langs[language]
	if !ok {
		sets = &langSets{
			correct:    make(map[string]struct{}),
			misspelled: make(map[string]struct{}),
		}
		c.langs[language] = sets
	}

	for word, correct := range results {
		if correct {
			sets.correct[word] = struct{}{}
			delete(sets.misspelled, word)
		} else {
			sets.misspelled[word] = struct{}{}
			delete(sets.correct, word)
		}
	}
}

// Clear wipes all languages.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	c.langs = make(map[string]*langSets)
	c.mu.Unlock()
}

// Len returns the total number of cached entries across all languages.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, sets := range c.langs {
		n += len(sets.correct) + len(sets.misspelled)
	}
	return n
}
