// Package repl implements the interactive prompt.
//
// Input is read until it parses as a complete program, so a function or an
// if statement can span several lines. Definitions persist across inputs.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/analizador-es/analizador/pkg/compiler"
	"github.com/analizador-es/analizador/pkg/compiler/ast"
	"github.com/analizador-es/analizador/pkg/compiler/interpreter"
	"github.com/analizador-es/analizador/pkg/compiler/parser"
	"github.com/analizador-es/analizador/pkg/logger"
	"github.com/analizador-es/analizador/pkg/script"
)

const (
	promptMain = "es> "
	promptCont = "... "

	banner = "Analizador interactivo. Escriba :ayuda para ver los comandos, :salir para terminar."

	helpText = `Comandos:
  :ayuda                 muestra esta ayuda
  :salir                 termina la sesión
  :vars                  lista las variables definidas
  :funciones             lista las funciones definidas
  :reiniciar             olvida variables y funciones
  :cargar <archivo>      ejecuta un archivo en la sesión
  :tokens <código>       muestra los tokens de una línea
  :ast <código>          muestra el árbol sintáctico de una línea
`
)

// LineReader is the prompt source. *liner.State implements it.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// Config holds the REPL settings.
type Config struct {
	// Timeout bounds each evaluation. Zero means no limit.
	Timeout time.Duration

	// MaxDepth limits nested calls, with the same meaning as
	// compiler.Options.MaxDepth.
	MaxDepth int

	// Encoding is used by :cargar.
	Encoding string

	// HistoryFile persists the line history. Empty disables it.
	HistoryFile string
}

// REPL evaluates lines against one interpreter session.
type REPL struct {
	in      LineReader
	out     io.Writer
	cfg     Config
	session *interpreter.Session
	log     *slog.Logger
}

// New creates a REPL reading from in and writing to out.
func New(in LineReader, out io.Writer, cfg Config) *REPL {
	log := logger.GetLogger()

	return &REPL{
		in:  in,
		out: out,
		cfg: cfg,
		session: interpreter.NewSession(
			interpreter.WithLogger(log),
			interpreter.WithMaxDepth(compiler.EffectiveMaxDepth(cfg.MaxDepth)),
		),
		log: log,
	}
}

// Session returns the underlying interpreter session.
func (r *REPL) Session() *interpreter.Session {
	return r.session
}

// Run reads and evaluates input until end of input, :salir or ctx is
// cancelled.
func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, banner)

	for ctx.Err() == nil {
		code, ok := r.read()
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		r.in.AppendHistory(strings.ReplaceAll(code, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			if exit := r.command(ctx, trimmed); exit {
				return nil
			}
			continue
		}

		r.eval(ctx, code)
	}

	return ctx.Err()
}

// read accumulates lines until the parser stops asking for more input.
// It returns false at end of input.
func (r *REPL) read() (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}

		line, err := r.in.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C discards the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !incomplete(src) {
			return src, true
		}
	}
}

// incomplete reports whether src fails to parse only because input ended
// too early.
func incomplete(src string) bool {
	_, _, err := compiler.Parse(src)
	var se *parser.SyntaxError
	return errors.As(err, &se) && se.Incomplete
}

func (r *REPL) eval(ctx context.Context, code string) {
	program, _, err := compiler.Parse(code)
	if err != nil {
		r.printError(err)
		return
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	value, err := r.session.Eval(ctx, program)
	if err != nil {
		r.printError(err)
		return
	}
	if !value.IsAbsent() {
		fmt.Fprintln(r.out, compiler.FormatValue(value))
	}
}

func (r *REPL) printError(err error) {
	var ae *compiler.AnalysisError
	if errors.As(err, &ae) {
		fmt.Fprintln(r.out, "Error:", ae.Detail())
		return
	}
	fmt.Fprintln(r.out, "Error:", err)
}

// command runs a ':' command and reports whether the session should end.
func (r *REPL) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case ":salir", ":quit", ":exit":
		return true

	case ":ayuda", ":help":
		fmt.Fprint(r.out, helpText)

	case ":vars":
		names := r.session.Variables()
		if len(names) == 0 {
			fmt.Fprintln(r.out, "(sin variables)")
		}
		for _, n := range names {
			v, _ := r.session.Variable(n)
			fmt.Fprintf(r.out, "%s = %s\n", n, compiler.FormatValue(v))
		}

	case ":funciones":
		names := r.session.Functions()
		if len(names) == 0 {
			fmt.Fprintln(r.out, "(sin funciones)")
		}
		for _, n := range names {
			fmt.Fprintln(r.out, n)
		}

	case ":reiniciar", ":reset":
		r.session.Reset()
		fmt.Fprintln(r.out, "Sesión reiniciada.")

	case ":cargar", ":load":
		if arg == "" {
			fmt.Fprintln(r.out, "Uso: :cargar <archivo>")
			return false
		}
		s, err := script.LoadFile(arg, r.cfg.Encoding)
		if err != nil {
			fmt.Fprintln(r.out, "Error:", err)
			return false
		}
		r.eval(ctx, s.Content)

	case ":tokens":
		for _, tok := range compiler.Tokenize(arg) {
			fmt.Fprintf(r.out, "%-18s %-12q línea %d, posición %d\n", tok.Type, tok.Literal, tok.Line, tok.Position)
		}

	case ":ast":
		program, _, err := compiler.Parse(arg)
		if err != nil {
			r.printError(err)
			return false
		}
		fmt.Fprint(r.out, ast.Print(program))

	default:
		fmt.Fprintf(r.out, "Comando desconocido: %s. Escriba :ayuda para ver los comandos.\n", name)
	}

	return false
}

// Start runs an interactive session on the terminal, with line editing and
// a persistent history when cfg.HistoryFile is set.
func Start(ctx context.Context, cfg Config) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	log := logger.GetLogger()
	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			if _, err := ln.ReadHistory(f); err != nil {
				log.Debug("Failed to read REPL history", "path", cfg.HistoryFile, "error", err)
			}
			f.Close()
		}
	}

	err := New(ln, os.Stdout, cfg).Run(ctx)

	if cfg.HistoryFile != "" {
		f, ferr := os.Create(cfg.HistoryFile)
		if ferr != nil {
			log.Warn("Failed to save REPL history", "path", cfg.HistoryFile, "error", ferr)
			return err
		}
		if _, werr := ln.WriteHistory(f); werr != nil {
			log.Warn("Failed to save REPL history", "path", cfg.HistoryFile, "error", werr)
		}
		f.Close()
	}

	return err
}
