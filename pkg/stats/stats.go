// Package stats computes token statistics for a program and renders them
// as a bar chart.
package stats

import (
	"slices"

	"github.com/analizador-es/analizador/pkg/compiler/lexer"
)

// Entry is the number of tokens of one type.
type Entry struct {
	Type  lexer.TokenType `json:"tipo"`
	Count int             `json:"count"`
}

// Frequency counts tokens per type. Types that do not occur are omitted.
// Entries are sorted by count, highest first; ties keep the order of
// lexer.TokenTypes.
func Frequency(tokens []lexer.Token) []Entry {
	counts := make(map[lexer.TokenType]int)
	for _, tok := range tokens {
		counts[tok.Type]++
	}

	entries := make([]Entry, 0, len(counts))
	for _, typ := range lexer.TokenTypes() {
		if n := counts[typ]; n > 0 {
			entries = append(entries, Entry{Type: typ, Count: n})
		}
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Count - a.Count
	})
	return entries
}

// Summary describes a token sequence.
type Summary struct {
	Tokens      int      `json:"tokens"`
	Lines       int      `json:"lineas"`
	Identifiers []string `json:"identificadores"`
	Reserved    []string `json:"reservadas"`
	Frequency   []Entry  `json:"frequency"`
}

// Summarize builds a Summary. Identifiers and reserved words are distinct
// and sorted.
func Summarize(tokens []lexer.Token) Summary {
	s := Summary{
		Tokens:      len(tokens),
		Identifiers: []string{},
		Reserved:    []string{},
		Frequency:   Frequency(tokens),
	}

	for _, tok := range tokens {
		s.Lines = max(s.Lines, tok.Line)
		switch tok.Type {
		case lexer.TOKEN_IDENT:
			s.Identifiers = append(s.Identifiers, tok.Literal)
		case lexer.TOKEN_RESERVED:
			s.Reserved = append(s.Reserved, tok.Literal)
		}
	}

	slices.Sort(s.Identifiers)
	s.Identifiers = slices.Compact(s.Identifiers)
	slices.Sort(s.Reserved)
	s.Reserved = slices.Compact(s.Reserved)

	return s
}
