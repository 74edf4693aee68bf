package document

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Errors returned by document mutation.
var (
	ErrRangeInvalid = errors.New("invalid range")
	ErrEditsOverlap = errors.New("edits overlap")
)

// Document is a mutable in-memory text document. It produces immutable
// Snapshots for traversal and notifies registered listeners after every
// mutation. All methods are safe for concurrent use.
type Document struct {
	mu        sync.RWMutex
	text      string
	version   int64
	listeners []func(Change)
}

// New creates a document with the given initial text.
func New(text string) *Document {
	return &Document{text: text}
}

// Text returns the current document content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.text
}

// Len returns the current byte length.
func (d *Document) Len() Offset {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Offset(len(d.text))
}

// Version returns the current document version. The version increases by
// exactly one per mutation, including batch edits.
func (d *Document) Version() int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Snapshot returns an immutable view of the document with its text runs
// segmented by region kind.
func (d *Document) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return &Snapshot{
		text:    d.text,
		runs:    segmentRuns(d.text),
		version: d.version,
	}
}

// OnChange registers a listener invoked after every applied mutation.
// Listeners are called without the document lock held.
func (d *Document) OnChange(fn func(Change)) {
	d.mu.Lock()
	d.listeners = append(d.listeners, fn)
	d.mu.Unlock()
}

// ReplaceRange replaces the byte range [start, end) with text.
func (d *Document) ReplaceRange(start, end Offset, text string) error {
	return d.ApplyEdits([]Edit{{Start: start, End: end, Text: text}})
}

// ApplyEdits applies a batch of edits as one atomic mutation. Edits must
// not overlap; they are applied from the highest offset to the lowest so
// earlier replacements cannot invalidate later ones. The version is bumped
// once and listeners are notified once for the whole batch.
func (d *Document) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start > sorted[j].Start
	})

	d.mu.Lock()
	size := Offset(len(d.text))
	for i, e := range sorted {
		if e.Start < 0 || e.End < e.Start || e.End > size {
			d.mu.Unlock()
			return ErrRangeInvalid
		}
		if i > 0 && e.End > sorted[i-1].Start {
			d.mu.Unlock()
			return ErrEditsOverlap
		}
	}

	change := Change{
		Start:   sorted[len(sorted)-1].Start,
		End:     sorted[0].End,
		NewText: sorted[len(sorted)-1].Text,
	}
	change.OldText = d.text[change.Start:change.End]

	text := d.text
	for _, e := range sorted {
		text = text[:e.Start] + e.Text + text[e.End:]
	}
	d.text = text
	d.version++

	listeners := make([]func(Change), len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()

	for _, fn := range listeners {
		fn(change)
	}
	return nil
}

// segmentRuns splits text into ordered runs, tagging fenced code blocks
// (lines delimited by ```) and inline code spans (backtick pairs within a
// line) as verbatim. Runs cover the full text with no gaps.
func segmentRuns(text string) []Run {
	if text == "" {
		return nil
	}

	var runs []Run
	flush := func(start, end int, kind RunKind) {
		if start >= end {
			return
		}
		// Merge with the previous run when the kind matches so prose
		// spanning multiple lines stays a single run.
		if n := len(runs); n > 0 && runs[n-1].Kind == kind && runs[n-1].End() == Offset(start) {
			runs[n-1].Text = text[runs[n-1].Start:end]
			return
		}
		runs = append(runs, Run{Text: text[start:end], Start: Offset(start), Kind: kind})
	}

	inFence := false
	pos := 0
	for pos < len(text) {
		lineEnd := strings.IndexByte(text[pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd = pos + lineEnd + 1 // include the newline
		}
		line := text[pos:lineEnd]

		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "```") {
			flush(pos, lineEnd, RunVerbatim)
			inFence = !inFence
			pos = lineEnd
			continue
		}
		if inFence {
			flush(pos, lineEnd, RunVerbatim)
			pos = lineEnd
			continue
		}

		// Split the line on inline code spans.
		cur := pos
		for {
			rel := strings.IndexByte(text[cur:lineEnd], '`')
			if rel < 0 {
				flush(cur, lineEnd, RunText)
				break
			}
			open := cur + rel
			rel = strings.IndexByte(text[open+1:lineEnd], '`')
			if rel < 0 {
				// Unmatched backtick, treat the rest as prose.
				flush(cur, lineEnd, RunText)
				break
			}
			close := open + 1 + rel
			flush(cur, open, RunText)
			flush(open, close+1, RunVerbatim)
			cur = close + 1
		}
		pos = lineEnd
	}

	return runs
}
