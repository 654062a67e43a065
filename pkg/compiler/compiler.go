// Package compiler provides the analysis pipeline: source text goes through
// the lexer, the parser and the interpreter, in that order.
//
// This package provides a unified API over the stages:
// - Tokenize: lexical analysis only
// - Parse: lexical and syntax analysis
// - Analyze: the full pipeline with default options
// - AnalyzeWithOptions: the full pipeline with a context and options
// - AnalyzeFile: loads a file (decoding its encoding) and analyzes it
package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/analizador-es/analizador/pkg/compiler/ast"
	"github.com/analizador-es/analizador/pkg/compiler/interpreter"
	"github.com/analizador-es/analizador/pkg/compiler/lexer"
	"github.com/analizador-es/analizador/pkg/compiler/parser"
	"github.com/analizador-es/analizador/pkg/logger"
	"github.com/analizador-es/analizador/pkg/script"
)

// DefaultMaxDepth bounds user function call nesting when Options.MaxDepth
// is zero.
const DefaultMaxDepth = 2000

// Options provides configuration options for analysis.
type Options struct {
	// MaxDepth limits nested user function calls. Zero selects
	// DefaultMaxDepth; a negative value disables the limit.
	MaxDepth int

	// Logger receives debug output. Nil selects the process logger.
	Logger *slog.Logger
}

// Result is a successful analysis.
type Result struct {
	Tokens  []lexer.Token
	Program *ast.Program
	Value   interpreter.Value
}

// Tokenize runs lexical analysis only. It never fails.
func Tokenize(source string) []lexer.Token {
	return lexer.Tokenize(source)
}

// Parse runs lexical and syntax analysis.
//
// Returns:
//   - *ast.Program: The parsed program (nil on failure)
//   - []lexer.Token: The token sequence, also returned on failure
//   - error: An *AnalysisError in the parser phase
func Parse(source string) (*ast.Program, []lexer.Token, error) {
	tokens := lexer.Tokenize(source)

	program, err := parser.Parse(tokens)
	if err != nil {
		return nil, tokens, newParserError(err, source)
	}

	return program, tokens, nil
}

// Analyze runs the whole pipeline with default options.
func Analyze(source string) (*Result, error) {
	return AnalyzeWithOptions(context.Background(), source, Options{})
}

// AnalyzeWithOptions runs the whole pipeline. Each call uses its own
// interpreter, so concurrent calls are independent. The context is checked
// on every user function call.
//
// On failure the error is an *AnalysisError. Its Tokens field carries the
// token sequence only when the failure is a division by zero.
func AnalyzeWithOptions(ctx context.Context, source string, opts Options) (*Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	start := time.Now()

	program, tokens, err := Parse(source)
	if err != nil {
		log.Debug("Parse failed", "tokens", len(tokens), "error", err)
		return nil, err
	}

	in := interpreter.New(
		interpreter.WithLogger(log),
		interpreter.WithMaxDepth(EffectiveMaxDepth(opts.MaxDepth)),
	)

	value, err := in.InterpretContext(ctx, program)
	if err != nil {
		log.Debug("Interpretation failed", "tokens", len(tokens), "error", err)
		return nil, newRuntimeError(err, source, tokens)
	}

	log.Debug("Analysis finished",
		"tokens", len(tokens),
		"statements", len(program.Statements),
		"result", value.Kind().String(),
		"duration", time.Since(start))

	return &Result{
		Tokens:  tokens,
		Program: program,
		Value:   value,
	}, nil
}

// AnalyzeFile loads path with the given encoding and analyzes its content.
func AnalyzeFile(ctx context.Context, path, encoding string, opts Options) (*Result, error) {
	s, err := script.LoadFile(path, encoding)
	if err != nil {
		return nil, err
	}
	return AnalyzeWithOptions(ctx, s.Content, opts)
}

// EffectiveMaxDepth maps an Options.MaxDepth value to the limit the
// interpreter understands: zero selects DefaultMaxDepth and a negative value
// becomes 0 (unlimited).
func EffectiveMaxDepth(n int) int {
	switch {
	case n == 0:
		return DefaultMaxDepth
	case n < 0:
		return 0
	}
	return n
}

func newParserError(err error, source string) *AnalysisError {
	var se *parser.SyntaxError
	if !errors.As(err, &se) {
		return &AnalysisError{Phase: PhaseParser, Message: err.Error(), Err: err}
	}

	column := ColumnOf(source, se.Line, se.Position)
	return &AnalysisError{
		Phase:   PhaseParser,
		Message: se.Message,
		Line:    se.Line,
		Column:  column,
		Context: GenerateErrorContext(source, se.Line, column),
		Err:     err,
	}
}

func newRuntimeError(err error, source string, tokens []lexer.Token) *AnalysisError {
	ae := &AnalysisError{Phase: PhaseRuntime, Message: err.Error(), Err: err}

	var re *interpreter.RuntimeError
	if errors.As(err, &re) {
		ae.Message = re.Message
		ae.Line = re.Line
		ae.Context = GenerateErrorContext(source, re.Line, 0)
	}

	if errors.Is(err, interpreter.ErrDivisionByZero) {
		ae.Tokens = tokens
	}

	return ae
}

// FormatValue renders a result for display. Strings are quoted so that "24"
// and 24 can be told apart.
func FormatValue(v interpreter.Value) string {
	switch v.Kind() {
	case interpreter.KindString:
		return fmt.Sprintf("%q", v.String())
	case interpreter.KindAbsent:
		return "(sin valor)"
	}
	return v.String()
}
