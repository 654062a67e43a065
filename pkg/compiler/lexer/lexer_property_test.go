package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property-based tests for the lexer.

func TestPropertyBlankInputProducesNoTokens(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("whitespace-only input yields no tokens", prop.ForAll(
		func(parts []string) bool {
			return len(Tokenize(strings.Join(parts, ""))) == 0
		},
		gen.SliceOf(gen.OneConstOf(" ", "\t", "\n", "\r", "\r\n", "\v", "\f", " ")),
	))

	properties.Property("comment-only input yields no tokens", prop.ForAll(
		func(comments []string) bool {
			var b strings.Builder
			for _, c := range comments {
				b.WriteString("  # ")
				b.WriteString(c)
				b.WriteString("\n")
			}
			return len(Tokenize(b.String())) == 0
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPropertyNumberLexemes(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	numbers := gopter.CombineGens(gen.UInt32(), gen.UInt16(), gen.Bool()).Map(func(values []interface{}) string {
		whole := values[0].(uint32)
		frac := values[1].(uint16)
		if values[2].(bool) {
			return fmt.Sprintf("%d.%d", whole, frac)
		}
		return strconv.FormatUint(uint64(whole), 10)
	})

	properties.Property("number lexemes classify as NUMERO", prop.ForAll(
		func(n string) bool {
			return Classify(n).Type == TOKEN_NUMBER
		},
		numbers,
	))

	properties.Property("number lexemes never match the operator check", prop.ForAll(
		func(n string) bool {
			return !operatorPattern.MatchString(n)
		},
		numbers,
	))

	properties.Property("a scanned number is a single NUMERO token", prop.ForAll(
		func(n string) bool {
			tokens := Tokenize(n)
			return len(tokens) == 1 && tokens[0].Type == TOKEN_NUMBER && tokens[0].Literal == n
		},
		numbers,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPropertyTokenizeIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("tokenizing the same text twice yields the same tokens", prop.ForAll(
		func(source string) bool {
			a := Tokenize(source)
			b := Tokenize(source)
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if a[i] != b[i] {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.Property("identifiers outside the reserved set classify as IDENTIFICADOR", prop.ForAll(
		func(name string) bool {
			for _, w := range ReservedWords {
				if name == w {
					return Classify(name).Type == TOKEN_RESERVED
				}
			}
			return Classify(name).Type == TOKEN_IDENT
		},
		gen.Identifier(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPropertyStringAfterPendingLexeme(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// A quote does not flush the pending lexeme: both end up in one token.
	properties.Property("a string glued to a word stays a single token", prop.ForAll(
		func(word, body string) bool {
			source := word + `"` + body + `"`
			tokens := Tokenize(source)
			return len(tokens) == 1 && tokens[0].Literal == source && tokens[0].Type != TOKEN_STRING
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.Property("a separated string is its own CADENA token", prop.ForAll(
		func(word, body string) bool {
			tokens := Tokenize(word + ` "` + body + `"`)
			return len(tokens) == 2 && tokens[1].Type == TOKEN_STRING && tokens[1].Literal == body
		},
		gen.Identifier(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
