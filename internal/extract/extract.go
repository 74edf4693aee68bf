// Package extract segments document snapshots into checkable word spans.
package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/spellstorm/internal/document"
)

// DefaultMinWordLength is the minimum rune count for a checkable word.
const DefaultMinWordLength = 2

// WordSpan is a checkable token with its byte offsets in the document.
// Text preserves the original case.
type WordSpan struct {
	Text  string
	Start document.Offset
	End   document.Offset
}

// Options configures word extraction.
type Options struct {
	// MinLength is the minimum rune count for a candidate word.
	// Zero means DefaultMinWordLength.
	MinLength int
}

func (o Options) minLength() int {
	if o.MinLength <= 0 {
		return DefaultMinWordLength
	}
	return o.MinLength
}

// Words returns the checkable word spans of a snapshot in document order.
// A candidate is included only when it is immediately followed, within the
// same text run, by a boundary character; a word with nothing observed
// after it is treated as still being typed. Verbatim runs are skipped.
func Words(snap *document.Snapshot, opts Options) []WordSpan {
	minLen := opts.minLength()

	var spans []WordSpan
	for _, run := range snap.Runs() {
		if run.Kind != document.RunText {
			continue
		}

		rest := run.Text
		pos := 0
		state := -1
		for len(rest) > 0 {
			var seg string
			seg, rest, state = uniseg.FirstWordInString(rest, state)
			segStart := pos
			pos += len(seg)

			word := seg
			if !isCandidate(word, minLen) {
				continue
			}
			if !boundaryFollows(run.Text, pos) {
				continue
			}
			spans = append(spans, WordSpan{
				Text:  word,
				Start: run.Start + document.Offset(segStart),
				End:   run.Start + document.Offset(segStart+len(word)),
			})
		}
	}
	return spans
}

// FindAllInstances returns every case-insensitive whole-word occurrence of
// word in the snapshot, in document order, for global replace. The
// boundary-follows rule does not apply here; a trailing word being typed
// is still a legitimate replace target. Verbatim runs are skipped.
func FindAllInstances(snap *document.Snapshot, word string) []WordSpan {
	if word == "" {
		return nil
	}

	var spans []WordSpan
	for _, run := range snap.Runs() {
		if run.Kind != document.RunText {
			continue
		}

		rest := run.Text
		pos := 0
		state := -1
		for len(rest) > 0 {
			var seg string
			seg, rest, state = uniseg.FirstWordInString(rest, state)
			segStart := pos
			pos += len(seg)

			if !strings.EqualFold(seg, word) {
				continue
			}
			spans = append(spans, WordSpan{
				Text:  seg,
				Start: run.Start + document.Offset(segStart),
				End:   run.Start + document.Offset(segStart+len(seg)),
			})
		}
	}
	return spans
}

// isCandidate reports whether a segment is worth spell checking: long
// enough, starts with a letter, and free of digits.
func isCandidate(seg string, minLen int) bool {
	if utf8.RuneCountInString(seg) < minLen {
		return false
	}
	first, _ := utf8.DecodeRuneInString(seg)
	if !unicode.IsLetter(first) {
		return false
	}
	for _, r := range seg {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// boundaryFollows reports whether the rune at pos in run text is a word
// boundary: whitespace, punctuation, or a closing bracket or quote. A
// word at the very end of its run has no observed boundary.
func boundaryFollows(text string, pos int) bool {
	if pos >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return IsBoundary(r)
}

// IsBoundary reports whether r terminates a word for scheduling and
// extraction purposes.
func IsBoundary(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	if unicode.IsPunct(r) {
		return true
	}
	switch r {
	case ')', ']', '}', '>', '"', '\'', '”', '’':
		return true
	}
	return false
}

// EndsWithBoundary reports whether the last rune of s is a boundary
// character. Used to detect completed-word document changes.
func EndsWithBoundary(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return IsBoundary(r)
}
