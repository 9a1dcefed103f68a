package domain

import "fmt"

// Encoding selects the output rendering for an answer.
type Encoding string

const (
	// EncodingStructured renders the answer as a JSON document.
	EncodingStructured Encoding = "structured"

	// EncodingTabular renders the answer as a plain-text grid.
	EncodingTabular Encoding = "tabular"

	// EncodingNarrative renders the answer as markdown prose.
	EncodingNarrative Encoding = "narrative"
)

// ParseEncoding validates an encoding name, defaulting to structured
// when empty.
func ParseEncoding(s string) (Encoding, error) {
	switch Encoding(s) {
	case "":
		return EncodingStructured, nil
	case EncodingStructured, EncodingTabular, EncodingNarrative:
		return Encoding(s), nil
	default:
		return "", fmt.Errorf("%w: unknown encoding %q", ErrInvalidInput, s)
	}
}

// Default limits, carried over from the deployed service.
const (
	// DefaultListLimit bounds fixed-shape listing tools.
	DefaultListLimit = 20

	// DefaultNoteLimit bounds clinical note retrieval.
	DefaultNoteLimit = 5

	// DefaultAnswerLimit bounds natural-language query results.
	DefaultAnswerLimit = 10
)

// Answer is the outcome of one question-answer cycle: the generated query,
// the normalized rows it produced, and whether generation was skipped
// because of a cache hit.
type Answer struct {
	// Question is the caller's literal question.
	Question string

	// Query is the executed graph query.
	Query string

	// Rows holds the normalized result rows, in store order.
	Rows []Row

	// Count is len(Rows).
	Count int

	// CacheHit reports whether the query came from the cache.
	CacheHit bool

	// Intro is the narrative introduction line, already formatted with the
	// question. Empty when no prompt store is wired; narrative rendering
	// falls back to a plain question heading.
	Intro string
}
