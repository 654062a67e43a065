// Package interpreter evaluates a parsed program by walking its AST.
//
// All variables live in one flat Environment. A user function call saves a
// copy of that environment and of the output buffer, binds the parameters
// straight into the shared environment, runs the body and restores both
// copies afterwards. Whatever imprime wrote during an execution scope
// replaces the value that scope would otherwise produce.
package interpreter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/analizador-es/analizador/pkg/compiler/ast"
	"github.com/analizador-es/analizador/pkg/logger"
)

// PrintFunction is the name of the built-in print primitive.
const PrintFunction = "imprime"

// completion is the outcome of executing a statement. returning is set
// while a retornar unwinds towards the nearest call frame or the top level.
type completion struct {
	value     Value
	returning bool
}

// Interpreter executes programs. An Interpreter is not safe for concurrent
// use; concurrent analyses need separate instances.
type Interpreter struct {
	globals   *Environment
	functions map[string]*ast.FunctionDeclaration
	output    strings.Builder

	ctx      context.Context
	depth    int
	maxDepth int

	log *slog.Logger
}

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(in *Interpreter) {
		if log != nil {
			in.log = log
		}
	}
}

// WithMaxDepth limits how deeply user function calls may nest. Zero means
// no limit.
func WithMaxDepth(depth int) Option {
	return func(in *Interpreter) {
		in.maxDepth = depth
	}
}

// New creates a new Interpreter instance.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		globals:   NewEnvironment(),
		functions: make(map[string]*ast.FunctionDeclaration),
		ctx:       context.Background(),
		log:       logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(in)
	}

	return in
}

// Interpret runs program in a fresh environment and returns its result.
func (in *Interpreter) Interpret(program *ast.Program) (Value, error) {
	return in.InterpretContext(context.Background(), program)
}

// InterpretContext is like Interpret but stops with an ErrorCancelled
// RuntimeError once ctx is done. The context is checked on every user
// function call.
func (in *Interpreter) InterpretContext(ctx context.Context, program *ast.Program) (Value, error) {
	in.globals = NewEnvironment()
	in.functions = make(map[string]*ast.FunctionDeclaration)
	return in.run(ctx, program)
}

// Globals returns the variable environment left behind by the last run.
func (in *Interpreter) Globals() *Environment {
	return in.globals
}

// Output returns the text printed at the top level by the last run.
func (in *Interpreter) Output() string {
	return in.output.String()
}

// run executes program against the current environment and function table.
// Only the output buffer and call depth are reset.
func (in *Interpreter) run(ctx context.Context, program *ast.Program) (Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	in.ctx = ctx
	in.depth = 0
	in.output.Reset()

	// A retornar at the top level simply ends the program.
	c, err := in.execBlock(program.Statements)
	if err != nil {
		return Value{}, err
	}

	if in.output.Len() > 0 {
		return String(in.output.String()), nil
	}
	return c.value, nil
}

// execBlock runs statements in order. The result is the value of the last
// statement executed, or the returning completion that cut the list short.
func (in *Interpreter) execBlock(stmts []ast.Statement) (completion, error) {
	var last completion
	for _, stmt := range stmts {
		c, err := in.exec(stmt)
		if err != nil {
			return completion{}, err
		}
		if c.returning {
			return c, nil
		}
		last = c
	}
	return last, nil
}

func (in *Interpreter) exec(stmt ast.Statement) (completion, error) {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		value := Number(0)
		if s.Initializer != nil {
			v, err := in.eval(s.Initializer)
			if err != nil {
				return completion{}, err
			}
			value = v
		}
		in.globals.Set(s.Name, value)
		return completion{}, nil

	case *ast.FunctionDeclaration:
		in.functions[s.Name] = s
		return completion{}, nil

	case *ast.ExpressionStatement:
		v, err := in.eval(s.Expression)
		if err != nil {
			return completion{}, err
		}
		return completion{value: v}, nil

	case *ast.ReturnStatement:
		v, err := in.eval(s.Expression)
		if err != nil {
			return completion{}, err
		}
		return completion{value: v, returning: true}, nil

	case *ast.IfStatement:
		cond, err := in.eval(s.Condition)
		if err != nil {
			return completion{}, err
		}
		if cond.Truthy() {
			return in.execBlock(s.Then)
		}
		if s.Else != nil {
			return in.execBlock(s.Else)
		}
		return completion{}, nil
	}

	return completion{}, newError(ErrorUnrecognizedNode, lineOf(stmt), "Declaración desconocida: %s", describe(stmt))
}

func (in *Interpreter) eval(expr ast.Expression) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		if e.IsString {
			return String(e.Text), nil
		}
		return Number(e.Number), nil

	case *ast.Identifier:
		v, ok := in.globals.Get(e.Name)
		if !ok {
			err := newError(ErrorUndefinedVariable, e.Line(), "Variable %s no definida", e.Name)
			err.Name = e.Name
			return Value{}, err
		}
		return v, nil

	case *ast.BinaryExpression:
		left, err := in.eval(e.Left)
		if err != nil {
			return Value{}, err
		}
		right, err := in.eval(e.Right)
		if err != nil {
			return Value{}, err
		}
		return applyOperator(e.Operator, left, right, e.Line())

	case *ast.Grouping:
		return in.eval(e.Expression)

	case *ast.FunctionCall:
		return in.call(e)
	}

	return Value{}, newError(ErrorUnrecognizedNode, lineOf(expr), "Expresión desconocida: %s", describe(expr))
}

func (in *Interpreter) evalArguments(args []ast.Expression) ([]Value, error) {
	values := make([]Value, 0, len(args))
	for _, arg := range args {
		v, err := in.eval(arg)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (in *Interpreter) call(fc *ast.FunctionCall) (Value, error) {
	if fc.Callee == PrintFunction {
		return in.print(fc)
	}

	fn, ok := in.functions[fc.Callee]
	if !ok {
		err := newError(ErrorUndefinedFunction, fc.Line(), "Función no definida: %s", fc.Callee)
		err.Name = fc.Callee
		return Value{}, err
	}

	// Arguments are evaluated in the caller's environment.
	args, err := in.evalArguments(fc.Arguments)
	if err != nil {
		return Value{}, err
	}

	if len(args) != len(fn.Parameters) {
		err := newError(ErrorArityMismatch, fc.Line(), "Número incorrecto de argumentos para la función %s", fn.Name)
		err.Name = fn.Name
		err.Expected = len(fn.Parameters)
		err.Actual = len(args)
		return Value{}, err
	}

	if err := in.checkGuards(fc); err != nil {
		return Value{}, err
	}

	in.log.Debug("Calling function", "function", fn.Name, "args", len(args), "depth", in.depth+1, "line", fc.Line())

	prevGlobals := in.globals.Clone()
	prevOutput := in.output.String()
	in.output.Reset()

	for i, param := range fn.Parameters {
		in.globals.Set(param, args[i])
	}

	in.depth++
	c, err := in.execBlock(fn.Body)
	in.depth--

	printed := in.output.String()
	in.globals = prevGlobals
	in.output.Reset()
	in.output.WriteString(prevOutput)

	if err != nil {
		return Value{}, err
	}

	if printed != "" {
		return String(printed), nil
	}
	return c.value, nil
}

// print implements imprime: the arguments are joined with single spaces and
// appended to the current output buffer.
func (in *Interpreter) print(fc *ast.FunctionCall) (Value, error) {
	args, err := in.evalArguments(fc.Arguments)
	if err != nil {
		return Value{}, err
	}

	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = arg.String()
	}
	text := strings.Join(parts, " ")

	in.output.WriteString(text)
	return String(text), nil
}

func (in *Interpreter) checkGuards(fc *ast.FunctionCall) error {
	if err := in.ctx.Err(); err != nil {
		rerr := newError(ErrorCancelled, fc.Line(), "Ejecución cancelada")
		rerr.cause = err
		return rerr
	}
	if in.maxDepth > 0 && in.depth >= in.maxDepth {
		err := newError(ErrorRecursionLimit, fc.Line(), "Límite de recursión excedido (%d)", in.maxDepth)
		err.Name = fc.Callee
		return err
	}
	return nil
}

func lineOf(node ast.Node) int {
	if node == nil {
		return 0
	}
	return node.Line()
}

func describe(node ast.Node) string {
	if node == nil {
		return "<nil>"
	}
	return node.String()
}
