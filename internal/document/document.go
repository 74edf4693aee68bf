// Package document provides the host-document boundary for spell checking:
// a read-only traversal of text runs with offsets and region kinds, and
// span-addressed mutation for applying corrections.
package document

import "fmt"

// Offset is a byte offset into the document text.
type Offset = int64

// RunKind tags a text run so consumers can skip regions that must not be
// spell checked.
type RunKind uint8

const (
	// RunText is ordinary prose, eligible for spell checking.
	RunText RunKind = iota
	// RunVerbatim is code or other literal content. Checkers must not
	// descend into verbatim runs.
	RunVerbatim
)

// String returns a human-readable kind name.
func (k RunKind) String() string {
	switch k {
	case RunText:
		return "text"
	case RunVerbatim:
		return "verbatim"
	default:
		return "unknown"
	}
}

// Run is a contiguous region of document text with a single kind.
// Start is the byte offset of the first byte of Text in the document.
type Run struct {
	Text  string
	Start Offset
	Kind  RunKind
}

// End returns the offset one past the last byte of the run.
func (r Run) End() Offset {
	return r.Start + Offset(len(r.Text))
}

// Snapshot is an immutable view of a document at a specific version.
// It is safe for concurrent use and never changes after creation.
type Snapshot struct {
	text    string
	runs    []Run
	version int64
}

// Text returns the full snapshot content.
func (s *Snapshot) Text() string { return s.text }

// Len returns the total byte length of the snapshot.
func (s *Snapshot) Len() Offset { return Offset(len(s.text)) }

// Version returns the document version this snapshot was taken at.
func (s *Snapshot) Version() int64 { return s.version }

// Runs returns the ordered text runs covering the whole document.
func (s *Snapshot) Runs() []Run { return s.runs }

// TextRange returns the text in [start, end). Out-of-range offsets are
// clamped to the document bounds.
func (s *Snapshot) TextRange(start, end Offset) string {
	if start < 0 {
		start = 0
	}
	if end > Offset(len(s.text)) {
		end = Offset(len(s.text))
	}
	if start >= end {
		return ""
	}
	return s.text[start:end]
}

// Edit replaces the byte range [Start, End) with Text.
type Edit struct {
	Start Offset
	End   Offset
	Text  string
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Start == e.End {
		return fmt.Sprintf("Insert(%d, %q)", e.Start, e.Text)
	}
	if e.Text == "" {
		return fmt.Sprintf("Delete[%d, %d)", e.Start, e.End)
	}
	return fmt.Sprintf("Replace[%d, %d) with %q", e.Start, e.End, e.Text)
}

// Change describes a mutation that was applied to a document. For batch
// edits, Start/End cover the union of the edited ranges and NewText holds
// the text of the last (lowest-offset) replacement.
type Change struct {
	Start   Offset
	End     Offset
	OldText string
	NewText string
}

// IsDeletion reports whether the change removed more text than it added.
func (c Change) IsDeletion() bool {
	return len(c.NewText) < len(c.OldText)
}
