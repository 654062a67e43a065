package interpreter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/analizador-es/analizador/pkg/compiler/lexer"
	"github.com/analizador-es/analizador/pkg/compiler/parser"
)

// Property-based tests for the call protocol.

func TestPropertyCallRestoresGlobals(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("globals are restored and parameters vanish after a call", prop.ForAll(
		func(values []int, asParam []bool, fresh int) bool {
			var src strings.Builder
			var params, args []string

			for i, v := range values {
				fmt.Fprintf(&src, "entero g%d = %d\n", i, v)
				if i < len(asParam) && asParam[i] {
					params = append(params, fmt.Sprintf("g%d", i))
					args = append(args, fmt.Sprintf("%d", v+1000))
				}
			}
			for i := 0; i < fresh; i++ {
				params = append(params, fmt.Sprintf("p%d", i))
				args = append(args, "7")
			}

			body := "0"
			if len(params) > 0 {
				body = strings.Join(params, " + ")
			}
			fmt.Fprintf(&src, "funcion f(%s)\n  retornar %s\nfinfuncion\n", strings.Join(params, ", "), body)
			fmt.Fprintf(&src, "f(%s)\n", strings.Join(args, ", "))

			program, err := parser.Parse(lexer.Tokenize(src.String()))
			if err != nil {
				return false
			}

			in := New()
			if _, err := in.Interpret(program); err != nil {
				return false
			}

			globals := in.Globals()
			if globals.Size() != len(values) {
				return false
			}
			for i, v := range values {
				got, ok := globals.Get(fmt.Sprintf("g%d", i))
				if !ok || got.Float() != float64(v) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 1000)),
		gen.SliceOf(gen.Bool()),
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPropertyInterpretIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	operators := gen.OneConstOf("+", "-", "*", "/", "<", ">", "^")

	properties.Property("interpreting the same program twice gives the same result", prop.ForAll(
		func(operands []int, ops []string) bool {
			var src strings.Builder
			src.WriteString("1")
			for i, n := range operands {
				op := "+"
				if i < len(ops) {
					op = ops[i]
				}
				fmt.Fprintf(&src, " %s %d", op, n)
			}

			program, err := parser.Parse(lexer.Tokenize(src.String()))
			if err != nil {
				return false
			}

			a, errA := New().Interpret(program)
			b, errB := New().Interpret(program)
			if (errA == nil) != (errB == nil) {
				return false
			}
			if errA != nil {
				return errA.Error() == errB.Error()
			}
			return a.Kind() == b.Kind() && a.String() == b.String()
		},
		gen.SliceOf(gen.IntRange(0, 20)),
		gen.SliceOf(operators),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
