// Package render turns normalized answers into the three supported output
// encodings: structured (JSON), tabular (plain-text grid), and narrative
// (markdown). Rendering is a presentation concern downstream of
// normalization; both the natural-language path and the fixed-shape tools
// share these routines.
package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/clinigraph/clinigraph/internal/core/domain"
)

// Answer renders a question-answer cycle result in the given encoding.
func Answer(enc domain.Encoding, a *domain.Answer) (string, error) {
	switch enc {
	case domain.EncodingTabular:
		return answerTabular(a), nil
	case domain.EncodingNarrative:
		return answerNarrative(a), nil
	case domain.EncodingStructured, "":
		return answerStructured(a)
	default:
		return "", fmt.Errorf("%w: unknown encoding %q", domain.ErrInvalidInput, enc)
	}
}

// Structured renders any JSON-marshalable payload as indented JSON.
// Fixed-shape tools use this directly for their own outputs.
func Structured(payload any) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

func answerStructured(a *domain.Answer) (string, error) {
	rows := make([]map[string]any, len(a.Rows))
	for i, row := range a.Rows {
		rows[i] = row.AsMap()
	}
	return Structured(map[string]any{
		"question":     a.Question,
		"cypher_query": a.Query,
		"results":      rows,
		"count":        a.Count,
	})
}

func answerTabular(a *domain.Answer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "QUESTION: %s\n", a.Question)
	fmt.Fprintf(&b, "\nCYPHER QUERY:\n%s\n", a.Query)
	fmt.Fprintf(&b, "\nRESULTS (%d rows):\n", a.Count)
	if len(a.Rows) == 0 {
		b.WriteString("No results found.\n")
		return b.String()
	}
	b.WriteString(Grid(a.Rows))
	return b.String()
}

func answerNarrative(a *domain.Answer) string {
	var b strings.Builder
	if a.Intro != "" {
		fmt.Fprintf(&b, "%s\n\n", a.Intro)
	} else {
		fmt.Fprintf(&b, "## Question\n%s\n\n", a.Question)
	}
	fmt.Fprintf(&b, "## Generated Cypher Query\n```cypher\n%s\n```\n\n", a.Query)
	fmt.Fprintf(&b, "## Results (%d rows)\n\n", a.Count)

	if len(a.Rows) == 0 {
		b.WriteString("No results found.\n")
		return b.String()
	}

	b.WriteString(MarkdownTable(a.Rows))
	return b.String()
}

// MarkdownTable renders rows as a GitHub-style markdown table. Column
// headers come from the first row's key order.
func MarkdownTable(rows []domain.Row) string {
	if len(rows) == 0 {
		return ""
	}
	headers := rows[0].Keys

	var b strings.Builder
	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	seps := make([]string, len(headers))
	for i, h := range headers {
		seps[i] = strings.Repeat("-", len(h))
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")

	for _, row := range rows {
		m := row.AsMap()
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = cellString(m[h])
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// Grid renders rows as a bordered plain-text table. Column headers come
// from the first row's key order.
func Grid(rows []domain.Row) string {
	if len(rows) == 0 {
		return ""
	}
	headers := rows[0].Keys

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		m := row.AsMap()
		cells[r] = make([]string, len(headers))
		for c, h := range headers {
			s := cellString(m[h])
			cells[r][c] = s
			if len(s) > widths[c] {
				widths[c] = len(s)
			}
		}
	}

	var b strings.Builder
	writeRule := func() {
		b.WriteByte('+')
		for _, w := range widths {
			b.WriteString(strings.Repeat("-", w+2))
			b.WriteByte('+')
		}
		b.WriteByte('\n')
	}
	writeRow := func(values []string) {
		b.WriteByte('|')
		for i, v := range values {
			fmt.Fprintf(&b, " %-*s |", widths[i], v)
		}
		b.WriteByte('\n')
	}

	writeRule()
	writeRow(headers)
	writeRule()
	for _, row := range cells {
		writeRow(row)
	}
	writeRule()
	return b.String()
}

// cellString flattens a normalized value into a single table cell.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return truncateCell(val)
	case []any, map[string]any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return truncateCell(string(data))
	default:
		return fmt.Sprint(val)
	}
}

// maxCellWidth keeps note text from blowing up table layouts.
const maxCellWidth = 120

func truncateCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxCellWidth {
		return s
	}
	// Cut on a rune boundary so multi-byte note text stays valid UTF-8.
	cut := maxCellWidth - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
