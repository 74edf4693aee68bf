package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSuggestionCacheSize bounds the suggestion cache. Suggestion lists
// are larger than verdicts, so they are evicted LRU instead of growing
// without bound.
const DefaultSuggestionCacheSize = 512

// SuggestionCache stores ranked correction lists keyed by language and
// word. Entries persist until evicted or the cache is purged on a
// configuration change.
type SuggestionCache struct {
	entries *lru.Cache[string, []string]
}

// NewSuggestionCache creates a suggestion cache holding up to size
// entries. Size values below one fall back to the default.
func NewSuggestionCache(size int) (*SuggestionCache, error) {
	if size <= 0 {
		size = DefaultSuggestionCacheSize
	}
	entries, err := lru.New[string, []string](size)
	if err != nil {
		return nil, err
	}
	return &SuggestionCache{entries: entries}, nil
}

// Get returns the cached suggestions for a word, and whether an entry
// exists. A cached empty list is a legitimate "no suggestions" outcome.
func (c *SuggestionCache) Get(language, word string) ([]string, bool) {
	return c.entries.Get(suggestionKey(language, word))
}

// Add stores the ranked suggestions for a word.
func (c *SuggestionCache) Add(language, word string, suggestions []string) {
	c.entries.Add(suggestionKey(language, word), suggestions)
}

// Purge removes all entries.
func (c *SuggestionCache) Purge() {
	c.entries.Purge()
}

// Len returns the number of cached suggestion lists.
func (c *SuggestionCache) Len() int {
	return c.entries.Len()
}

func suggestionKey(language, word string) string {
	return language + ":" + word
}
