package compiler

import (
	"fmt"
	"strings"

	"github.com/analizador-es/analizador/pkg/compiler/lexer"
)

// Phases reported by AnalysisError.
const (
	PhaseParser  = "parser"
	PhaseRuntime = "runtime"
)

// AnalysisError is the single error type returned by the pipeline.
// It implements the error interface and unwraps to the stage error
// (*parser.SyntaxError or *interpreter.RuntimeError).
type AnalysisError struct {
	// Phase is PhaseParser or PhaseRuntime.
	Phase string

	// Message is the stage's message, without location.
	Message string

	// Line is the 1-indexed line number, 0 when unknown.
	Line int

	// Column is the 1-indexed column number, 0 when unknown.
	Column int

	// Context shows the source lines around Line with a marker on the
	// failing one. Empty when Line is unknown.
	Context string

	// Tokens is only set for division by zero failures.
	Tokens []lexer.Token

	Err error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.Line <= 0 {
		return fmt.Sprintf("%s error: %s", e.Phase, e.Message)
	}
	if e.Column <= 0 {
		return fmt.Sprintf("%s error at line %d: %s", e.Phase, e.Line, e.Message)
	}
	return fmt.Sprintf("%s error at line %d, column %d: %s", e.Phase, e.Line, e.Column, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Detail returns Error() followed by the source context, if any.
func (e *AnalysisError) Detail() string {
	if e.Context == "" {
		return e.Error()
	}
	return e.Error() + "\n" + e.Context
}

// ColumnOf converts a character offset into source into a 1-indexed column
// on the given line. It returns 0 when the offset does not fall on that line.
func ColumnOf(source string, line, position int) int {
	if line <= 0 || position < 0 {
		return 0
	}

	current, col := 1, 1
	for i, r := range []rune(source) {
		if i == position {
			break
		}
		if r == '\n' {
			current++
			col = 1
			continue
		}
		col++
	}

	if current != line {
		return 0
	}
	return col
}

// GenerateErrorContext renders up to two lines before and after line, with
// line numbers, a ">" marker on the error line and a "^" under column when
// column is known.
//
// Example output:
//
//	  2 | entero b = 0
//	  3 |
//	> 4 | retornar a / b
//	    |            ^
//	  5 | # fin
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := max(line-3, 0)
	end := min(line+2, len(lines))
	width := len(fmt.Sprint(end))

	var buf strings.Builder
	for i := start; i < end; i++ {
		num := i + 1
		text := strings.TrimRight(lines[i], "\r")

		if num != line {
			fmt.Fprintf(&buf, "  %*d | %s\n", width, num, text)
			continue
		}

		fmt.Fprintf(&buf, "> %*d | %s\n", width, num, text)
		if column > 0 {
			fmt.Fprintf(&buf, "  %*s | %s^\n", width, "", strings.Repeat(" ", column-1))
		}
	}

	return buf.String()
}
