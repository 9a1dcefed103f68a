package services

import (
	"fmt"
	"strings"

	"github.com/clinigraph/clinigraph/internal/core/domain"
)

// mutatingKeywords are Cypher clauses and constructs that write to the
// store or escape the read-only contract. Matched as whole words,
// case-insensitively, outside string literals.
var mutatingKeywords = []string{
	"create",
	"merge",
	"delete",
	"detach",
	"set",
	"remove",
	"drop",
	"foreach",
}

// ValidateQuery performs the static acceptance checks on a candidate
// query, in order: delimiter balance, read-only guarantee, bounding
// clause. A missing LIMIT is recoverable - the caller-supplied limit is
// injected rather than rejecting. Every other failure is terminal for
// this generation attempt; there is no automatic regeneration.
func ValidateQuery(candidate string, limit int) (string, error) {
	query := strings.TrimSpace(candidate)
	if query == "" {
		return "", rejected("empty query")
	}

	if err := checkBalanced(query); err != nil {
		return "", rejected(err.Error())
	}

	if kw := findMutatingKeyword(query); kw != "" {
		return "", rejected(fmt.Sprintf("mutating keyword %q is not allowed", strings.ToUpper(kw)))
	}

	if !hasTopLevelLimit(query) {
		query = fmt.Sprintf("%s\nLIMIT %d", strings.TrimRight(query, "; \t\n"), limit)
	}

	return query, nil
}

func rejected(reason string) error {
	return domain.NewTaxonomyError(domain.KindValidationRejected, reason, nil)
}

// checkBalanced verifies grouping delimiters pair up, ignoring anything
// inside single-quoted, double-quoted, or backtick-quoted runs.
func checkBalanced(query string) error {
	var stack []rune
	pairs := map[rune]rune{')': '(', ']': '[', '}': '{'}

	var quote rune
	escaped := false
	for _, r := range query {
		if escaped {
			escaped = false
			continue
		}
		if quote != 0 {
			switch r {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '\'', '"', '`':
			quote = r
		case '(', '[', '{':
			stack = append(stack, r)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairs[r] {
				return fmt.Errorf("unbalanced %q", r)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if quote != 0 {
		return fmt.Errorf("unterminated string literal")
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed %q", stack[len(stack)-1])
	}
	return nil
}

// findMutatingKeyword returns the first write keyword appearing as a bare
// word outside string literals, or "" when the query is read-only.
func findMutatingKeyword(query string) string {
	words := tokenizeBareWords(query)
	for i, word := range words {
		for _, kw := range mutatingKeywords {
			if word == kw {
				return kw
			}
		}
		// LOAD CSV reads from an arbitrary URI; "load" alone may be a
		// property name, so require the pair.
		if word == "load" && i+1 < len(words) && words[i+1] == "csv" {
			return "load csv"
		}
	}
	return ""
}

// hasTopLevelLimit reports whether LIMIT appears as a bare keyword at the
// top level of the query: outside string literals, outside any bracketed
// subexpression (so a LIMIT inside a CALL { } subquery does not count),
// and not as a property access like p.limit.
func hasTopLevelLimit(query string) bool {
	var current strings.Builder
	var quote rune
	escaped := false
	depth := 0
	afterDot := false

	flush := func() bool {
		if current.Len() == 0 {
			return false
		}
		word := strings.ToLower(current.String())
		current.Reset()
		return depth == 0 && !afterDot && word == "limit"
	}

	for _, r := range query {
		if escaped {
			escaped = false
			continue
		}
		if quote != 0 {
			switch r {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}
			continue
		}
		switch {
		case r == '\'' || r == '"' || r == '`':
			if flush() {
				return true
			}
			afterDot = false
			quote = r
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			current.WriteRune(r)
		case r == '.':
			current.Reset()
			afterDot = true
		case r == '(' || r == '[' || r == '{':
			if flush() {
				return true
			}
			afterDot = false
			depth++
		case r == ')' || r == ']' || r == '}':
			if flush() {
				return true
			}
			afterDot = false
			if depth > 0 {
				depth--
			}
		default:
			if flush() {
				return true
			}
			afterDot = false
		}
	}
	return flush()
}

// tokenizeBareWords yields the lowercase identifier-like tokens of a
// query, skipping string literals so data values never trip keyword
// checks.
func tokenizeBareWords(query string) []string {
	var words []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			words = append(words, strings.ToLower(current.String()))
			current.Reset()
		}
	}

	var quote rune
	escaped := false
	for _, r := range query {
		if escaped {
			escaped = false
			continue
		}
		if quote != 0 {
			switch r {
			case '\\':
				escaped = true
			case quote:
				quote = 0
			}
			continue
		}
		switch {
		case r == '\'' || r == '"' || r == '`':
			flush()
			quote = r
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9':
			current.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return words
}
