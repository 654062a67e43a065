package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/analizador-es/analizador/pkg/cli"
	"github.com/analizador-es/analizador/pkg/compiler"
	"github.com/analizador-es/analizador/pkg/compiler/ast"
	"github.com/analizador-es/analizador/pkg/compiler/lexer"
	"github.com/analizador-es/analizador/pkg/gallery"
	"github.com/analizador-es/analizador/pkg/history"
	"github.com/analizador-es/analizador/pkg/logger"
	"github.com/analizador-es/analizador/pkg/repl"
	"github.com/analizador-es/analizador/pkg/script"
	"github.com/analizador-es/analizador/pkg/server"
	"github.com/analizador-es/analizador/pkg/stats"
)

const (
	// DefaultChartFile se usa cuando chart no recibe -o
	DefaultChartFile = "tokens.png"

	replHistoryFile = ".analizador_history"
	stdinName       = "<stdin>"
)

// Application gestiona la lógica principal de la aplicación
type Application struct {
	config *cli.Config
	log    *slog.Logger
	stdin  io.Reader
	stdout io.Writer
}

// New crea una Application que lee programas de stdin y escribe los
// resultados en stdout
func New(stdin io.Reader, stdout io.Writer) *Application {
	return &Application{
		stdin:  stdin,
		stdout: stdout,
	}
}

// Run ejecuta la aplicación
func (app *Application) Run(ctx context.Context, args []string) error {
	// 1. Análisis de los argumentos
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. Inicialización del logger
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Debug("Application started", "command", app.config.Command, "args", app.config.Args)

	// 3. Ejecución del comando
	switch app.config.Command {
	case cli.CommandTokens:
		return app.runTokens()
	case cli.CommandAST:
		return app.runAST()
	case cli.CommandChart:
		return app.runChart()
	case cli.CommandExamples:
		return app.runExamples(ctx)
	case cli.CommandServe:
		return app.runServe(ctx)
	case cli.CommandREPL:
		return app.runREPL(ctx)
	default:
		return app.runProgram(ctx)
	}
}

// parseArgs analiza los argumentos de la línea de comandos
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger inicializa el logger
func (app *Application) initLogger() error {
	if err := logger.InitLogger(app.config.LogLevel, app.config.LogFormat); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// loadSource lee el programa del archivo indicado o de la entrada estándar
func (app *Application) loadSource() (*script.Script, error) {
	path := app.config.Path()
	if path == "" {
		return script.Read(app.stdin, stdinName, app.config.Encoding)
	}
	return script.LoadFile(path, app.config.Encoding)
}

func (app *Application) options() compiler.Options {
	return compiler.Options{
		MaxDepth: app.config.MaxDepth,
		Logger:   app.log,
	}
}

func (app *Application) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if app.config.Timeout > 0 {
		return context.WithTimeout(ctx, app.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// runProgram ejecuta el programa y muestra su resultado
func (app *Application) runProgram(ctx context.Context) error {
	s, err := app.loadSource()
	if err != nil {
		return err
	}
	app.log.Debug("Script loaded", "name", s.FileName, "size", s.Size, "encoding", s.Encoding)

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	result, err := compiler.AnalyzeWithOptions(ctx, s.Content, app.options())
	if err != nil {
		var ae *compiler.AnalysisError
		if errors.As(err, &ae) && ae.Tokens != nil {
			writeTokens(app.stdout, ae.Tokens)
		}
		return err
	}

	app.log.Debug("Program finished", "tokens", len(result.Tokens), "duration", time.Since(start))
	fmt.Fprintln(app.stdout, compiler.FormatValue(result.Value))
	return nil
}

// runTokens muestra la tabla de tokens y el recuento por tipo
func (app *Application) runTokens() error {
	s, err := app.loadSource()
	if err != nil {
		return err
	}

	tokens := compiler.Tokenize(s.Content)
	writeTokens(app.stdout, tokens)

	fmt.Fprintln(app.stdout)
	w := tabwriter.NewWriter(app.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIPO\tCANTIDAD")
	for _, e := range stats.Frequency(tokens) {
		fmt.Fprintf(w, "%s\t%d\n", e.Type, e.Count)
	}
	return w.Flush()
}

func writeTokens(out io.Writer, tokens []lexer.Token) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTIPO\tVALOR\tLÍNEA\tPOSICIÓN")
	for i, tok := range tokens {
		fmt.Fprintf(w, "%d\t%s\t%q\t%d\t%d\n", i+1, tok.Type, tok.Literal, tok.Line, tok.Position)
	}
	w.Flush()
}

// runAST muestra el árbol sintáctico
func (app *Application) runAST() error {
	s, err := app.loadSource()
	if err != nil {
		return err
	}

	program, _, err := compiler.Parse(s.Content)
	if err != nil {
		return err
	}
	fmt.Fprint(app.stdout, ast.Print(program))
	return nil
}

// runChart genera el gráfico de frecuencia de tokens
func (app *Application) runChart() error {
	s, err := app.loadSource()
	if err != nil {
		return err
	}

	output := app.config.Output
	if output == "" {
		output = DefaultChartFile
	}

	img := stats.Chart(stats.Frequency(compiler.Tokenize(s.Content)),
		stats.WithTitle(filepath.Base(s.FileName)))

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := stats.Encode(f, img, stats.FormatFromPath(output)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	app.log.Info("Chart written", "path", output, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	fmt.Fprintln(app.stdout, output)
	return nil
}

// runExamples lista los ejemplos o ejecuta uno
func (app *Application) runExamples(ctx context.Context) error {
	g := gallery.Default()

	if len(app.config.Args) == 0 {
		w := tabwriter.NewWriter(app.stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNOMBRE")
		for _, ex := range g.List() {
			fmt.Fprintf(w, "%s\t%s\n", ex.ID, ex.Name)
		}
		return w.Flush()
	}

	id := app.config.Args[0]
	ex, ok := g.Get(id)
	if !ok {
		return fmt.Errorf("example not found: %s", id)
	}

	fmt.Fprintf(app.stdout, "%s\n\n%s\n", ex.Name, ex.Code)

	ctx, cancel := app.withTimeout(ctx)
	defer cancel()

	result, err := compiler.AnalyzeWithOptions(ctx, ex.Code, app.options())
	if err != nil {
		fmt.Fprintln(app.stdout, "Error:", FormatError(err))
	} else {
		fmt.Fprintln(app.stdout, "Resultado:", compiler.FormatValue(result.Value))
	}

	return gallery.Check(ctx, ex, app.options())
}

// runServe inicia el servidor HTTP
func (app *Application) runServe(ctx context.Context) error {
	opts := []server.Option{server.WithLogger(app.log)}

	if app.config.History != "" {
		// Opening must not fail because shutdown was already requested.
		store, err := history.Open(context.WithoutCancel(ctx), app.config.History, history.WithLogger(app.log))
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, server.WithHistory(store))
	}

	srv := server.New(server.Config{
		Addr:     app.config.Addr,
		Timeout:  app.config.Timeout,
		MaxDepth: app.config.MaxDepth,
	}, opts...)

	return srv.ListenAndServe(ctx)
}

// runREPL inicia la sesión interactiva
func (app *Application) runREPL(ctx context.Context) error {
	cfg := repl.Config{
		Timeout:  app.config.Timeout,
		MaxDepth: app.config.MaxDepth,
		Encoding: app.config.Encoding,
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, replHistoryFile)
	}
	return repl.Start(ctx, cfg)
}

// FormatError devuelve el texto a mostrar para err. Los errores de
// análisis incluyen las líneas de código alrededor del fallo.
func FormatError(err error) string {
	var ae *compiler.AnalysisError
	if errors.As(err, &ae) {
		return ae.Detail()
	}
	return err.Error()
}
