package dictionary

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DictionaryFiles holds the raw Hunspell-format payload for one language:
// the affix rules and the word list. The payload is immutable per language
// version and safe to cache long-term.
type DictionaryFiles struct {
	Affix []byte
	Words []byte
}

// Checker is the morphological checker hosted by the engine context. A
// checker holds at most one language's data; Load replaces any previously
// loaded language. Implementations are driven by a single goroutine and
// need no internal locking.
type Checker interface {
	// Load parses the dictionary payload for a language, discarding any
	// previously loaded one.
	Load(language string, files DictionaryFiles) error

	// Language returns the currently loaded language, or "" if none.
	Language() string

	// Check reports whether the word, exactly as given, is known.
	Check(word string) bool

	// Suggest returns raw correction candidates for a word, unranked.
	Suggest(word string) []string
}

// maxRawSuggestions caps the candidates a suggest pass collects before
// ranking truncates further.
const maxRawSuggestions = 20

// WordListChecker is a Checker backed by the word list of a Hunspell
// dictionary. It performs exact-match lookups (case handling is the
// caller's concern) and edit-distance candidate generation for
// suggestions. Affix expansion is not performed; flags after '/' are
// stripped.
type WordListChecker struct {
	language string
	words    map[string]struct{}
	byLength map[int][]string
}

// NewWordListChecker creates an empty checker. A dictionary must be
// loaded before checks succeed.
func NewWordListChecker() *WordListChecker {
	return &WordListChecker{}
}

// Load parses a .dic word list. The optional leading count line is
// skipped, affix flags after '/' are stripped, and blank lines are
// ignored. The affix payload is accepted but not expanded.
func (c *WordListChecker) Load(language string, files DictionaryFiles) error {
	if len(files.Words) == 0 {
		return fmt.Errorf("empty word list for %s", language)
	}

	words := make(map[string]struct{})
	byLength := make(map[int][]string)

	sc := bufio.NewScanner(bytes.NewReader(files.Words))
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if first {
			first = false
			if isCountLine(line) {
				continue
			}
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '/'); i >= 0 {
			line = line[:i]
		}
		if line == "" {
			continue
		}
		if _, ok := words[line]; ok {
			continue
		}
		words[line] = struct{}{}
		n := utf8.RuneCountInString(line)
		byLength[n] = append(byLength[n], line)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("parse word list for %s: %w", language, err)
	}
	if len(words) == 0 {
		return fmt.Errorf("no words in dictionary for %s", language)
	}

	c.language = language
	c.words = words
	c.byLength = byLength
	return nil
}

// Language returns the loaded language, or "".
func (c *WordListChecker) Language() string {
	return c.language
}

// Check reports whether word is in the loaded word list.
func (c *WordListChecker) Check(word string) bool {
	if c.words == nil {
		return false
	}
	_, ok := c.words[word]
	return ok
}

// Suggest returns dictionary words within edit distance 2 of word,
// unranked, capped at maxRawSuggestions. Only words of similar length are
// scanned.
func (c *WordListChecker) Suggest(word string) []string {
	if c.words == nil || word == "" {
		return nil
	}

	n := utf8.RuneCountInString(word)
	var out []string
	for length := n - 2; length <= n+2; length++ {
		if length < 1 {
			continue
		}
		for _, cand := range c.byLength[length] {
			if Levenshtein(strings.ToLower(word), strings.ToLower(cand)) <= 2 {
				out = append(out, cand)
				if len(out) >= maxRawSuggestions {
					return out
				}
			}
		}
	}
	return out
}

// isCountLine reports whether a .dic first line is the entry count.
func isCountLine(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
