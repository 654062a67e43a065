package interpreter

import (
	"context"
	"maps"
	"slices"

	"github.com/analizador-es/analizador/pkg/compiler/ast"
)

// Session runs successive programs against the same variables and function
// table, the way an interactive prompt does. Each Eval starts with an empty
// output buffer.
type Session struct {
	in *Interpreter
}

// NewSession creates a session with an empty environment.
func NewSession(opts ...Option) *Session {
	return &Session{in: New(opts...)}
}

// Eval runs program, keeping the definitions it makes for later calls.
// When evaluation fails, the definitions made before the failure are kept.
func (s *Session) Eval(ctx context.Context, program *ast.Program) (Value, error) {
	return s.in.run(ctx, program)
}

// Variable looks up a global variable.
func (s *Session) Variable(name string) (Value, bool) {
	return s.in.globals.Get(name)
}

// Variables returns the defined variable names in sorted order.
func (s *Session) Variables() []string {
	return s.in.globals.Names()
}

// Functions returns the defined function names in sorted order.
func (s *Session) Functions() []string {
	return slices.Sorted(maps.Keys(s.in.functions))
}

// Reset forgets every variable and function.
func (s *Session) Reset() {
	s.in.globals = NewEnvironment()
	s.in.functions = make(map[string]*ast.FunctionDeclaration)
}
