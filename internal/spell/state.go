package spell

import "github.com/dshills/spellstorm/internal/document"

// Decoration marks one misspelled word span with its ranked corrections.
// Only words with at least one suggestion are decorated: no actionable
// correction means no underline.
type Decoration struct {
	Word        string
	Start       document.Offset
	End         document.Offset
	Suggestions []string
}

// ScanState is the committed result of a scan, the only thing the
// presentation layer observes. It is replaced atomically as a whole,
// never partially updated.
type ScanState struct {
	Decorations  []Decoration
	Generation   Generation
	ShouldRescan bool
}
