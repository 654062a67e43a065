package interpreter

import (
	"errors"
	"fmt"
)

// ErrorKind represents the kind of a runtime error.
type ErrorKind string

const (
	ErrorUndefinedVariable ErrorKind = "UNDEFINED_VARIABLE"
	ErrorUndefinedFunction ErrorKind = "UNDEFINED_FUNCTION"
	ErrorArityMismatch     ErrorKind = "ARITY_MISMATCH"
	ErrorUnknownOperator   ErrorKind = "UNKNOWN_OPERATOR"
	ErrorDivisionByZero    ErrorKind = "DIVISION_BY_ZERO"
	ErrorUnrecognizedNode  ErrorKind = "UNRECOGNIZED_NODE"

	// Raised by the optional execution guards, never by the language itself.
	ErrorRecursionLimit ErrorKind = "RECURSION_LIMIT"
	ErrorCancelled      ErrorKind = "CANCELLED"
)

// Sentinels for errors.Is. Every RuntimeError unwraps to the sentinel of its
// kind.
var (
	ErrUndefinedVariable = errors.New("undefined variable")
	ErrUndefinedFunction = errors.New("undefined function")
	ErrArityMismatch     = errors.New("arity mismatch")
	ErrUnknownOperator   = errors.New("unknown operator")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrUnrecognizedNode  = errors.New("unrecognized node")
	ErrRecursionLimit    = errors.New("recursion limit exceeded")
	ErrCancelled         = errors.New("execution cancelled")
)

var sentinels = map[ErrorKind]error{
	ErrorUndefinedVariable: ErrUndefinedVariable,
	ErrorUndefinedFunction: ErrUndefinedFunction,
	ErrorArityMismatch:     ErrArityMismatch,
	ErrorUnknownOperator:   ErrUnknownOperator,
	ErrorDivisionByZero:    ErrDivisionByZero,
	ErrorUnrecognizedNode:  ErrUnrecognizedNode,
	ErrorRecursionLimit:    ErrRecursionLimit,
	ErrorCancelled:         ErrCancelled,
}

// RuntimeError terminates the current interpretation.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	Line    int // 0 when unknown

	// Name is the variable, function or operator involved, if any.
	Name string

	// Expected and Actual are set for ErrorArityMismatch.
	Expected int
	Actual   int

	cause error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (línea %d)", e.Message, e.Line)
	}
	return e.Message
}

// Unwrap returns the sentinel for the error kind, or the underlying cause
// for cancellations.
func (e *RuntimeError) Unwrap() []error {
	errs := []error{sentinels[e.Kind]}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func newError(kind ErrorKind, line int, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	}
}
