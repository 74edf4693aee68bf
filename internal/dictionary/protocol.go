// Package dictionary implements the request/response protocol between the
// spell-check orchestration and an isolated dictionary-checking context.
// The engine runs on its own goroutine, owns one loaded language at a
// time, and is reached only through typed messages matched by correlation
// id.
package dictionary

// RequestKind identifies a protocol operation.
type RequestKind uint8

const (
	KindLoadDictionary RequestKind = iota + 1
	KindCheckWord
	KindCheckWords
	KindGetSuggestions
	KindGetCurrentLanguage
)

// String returns a human-readable kind name.
func (k RequestKind) String() string {
	switch k {
	case KindLoadDictionary:
		return "loadDictionary"
	case KindCheckWord:
		return "checkWord"
	case KindCheckWords:
		return "checkWords"
	case KindGetSuggestions:
		return "getSuggestions"
	case KindGetCurrentLanguage:
		return "getCurrentLanguage"
	default:
		return "unknown"
	}
}

// Request is a typed message sent to the engine context.
type Request struct {
	Kind     RequestKind `json:"kind"`
	ID       string      `json:"correlationId"`
	Language string      `json:"language,omitempty"`
	Word     string      `json:"word,omitempty"`
	Words    []string    `json:"words,omitempty"`
}

// Status reports whether the engine handled a request.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusError
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Response is the engine's reply, matched to its request by ID. Only the
// fields relevant to the request kind are populated.
type Response struct {
	ID          string          `json:"correlationId"`
	Status      Status          `json:"status"`
	Correct     bool            `json:"correct,omitempty"`
	Results     map[string]bool `json:"results,omitempty"`
	Suggestions []string        `json:"suggestions,omitempty"`
	Language    string          `json:"language,omitempty"`
	Err         string          `json:"error,omitempty"`
}
