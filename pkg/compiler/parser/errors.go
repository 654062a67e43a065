package parser

import (
	"fmt"
)

// SyntaxError reports the first grammar violation found by the parser.
//
// Line and Position come from the offending token. When the token stream ran
// out first, they come from the last token and Incomplete is set, which lets
// interactive callers ask for more input instead of failing.
type SyntaxError struct {
	Message    string
	Line       int
	Position   int
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	return e.Message
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	err := &SyntaxError{Message: fmt.Sprintf(format, args...)}

	if tok, ok := p.current(); ok {
		err.Line = tok.Line
		err.Position = tok.Position
		return err
	}

	err.Incomplete = true
	if n := len(p.tokens); n > 0 {
		err.Line = p.tokens[n-1].Line
		err.Position = p.tokens[n-1].Position
	} else {
		err.Line = 1
	}
	return err
}
