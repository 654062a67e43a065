package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/analizador-es/analizador/pkg/compiler"
	"github.com/analizador-es/analizador/pkg/logger"
	"github.com/analizador-es/analizador/pkg/script"
)

// Commands
const (
	CommandRun      = "run"
	CommandTokens   = "tokens"
	CommandAST      = "ast"
	CommandChart    = "chart"
	CommandExamples = "examples"
	CommandServe    = "serve"
	CommandREPL     = "repl"
)

// Commands lists every command in help order.
var Commands = []string{
	CommandRun, CommandTokens, CommandAST, CommandChart,
	CommandExamples, CommandServe, CommandREPL,
}

// Config contiene la configuración obtenida de la línea de comandos y del
// entorno
type Config struct {
	Command   string        // comando a ejecutar (run por defecto)
	Args      []string      // argumentos posicionales del comando
	Timeout   time.Duration // tiempo máximo por análisis (0 sin límite)
	LogLevel  string        // debug, info, warn, error
	LogFormat string        // text, json
	MaxDepth  int           // profundidad máxima de llamadas (0 valor por defecto)
	Encoding  string        // codificación de los archivos fuente
	Output    string        // archivo de salida (chart)
	Addr      string        // dirección del servidor (serve)
	History   string        // base de datos del historial (serve, vacío lo desactiva)
	ShowHelp  bool          // mostrar la ayuda
}

// Path devuelve el archivo indicado, o "" si el programa se lee de la
// entrada estándar.
func (c *Config) Path() string {
	if len(c.Args) == 0 || c.Args[0] == "-" {
		return ""
	}
	return c.Args[0]
}

// Environment variables read by ParseArgs.
const (
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
	EnvTimeout   = "TIMEOUT"
	EnvAddr      = "ANALIZADOR_ADDR"
	EnvHistory   = "ANALIZADOR_HISTORY"
	EnvEncoding  = "ANALIZADOR_ENCODING"
)

// DefaultAddr is the listen address of serve.
const DefaultAddr = "localhost:8080"

// boolFlags do not take a value.
var boolFlags = []string{"-h", "--h", "-help", "--help"}

// ParseArgs analiza los argumentos y devuelve la configuración. Las
// opciones de la línea de comandos tienen prioridad sobre las variables
// de entorno.
func ParseArgs(args []string) (*Config, error) {
	// Opciones delante, argumentos posicionales detrás
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("analizador", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	var timeoutSec int
	fs.IntVar(&timeoutSec, "timeout", 0, "tiempo máximo (segundos)")
	fs.IntVar(&timeoutSec, "t", 0, "tiempo máximo (segundos) (forma corta)")
	fs.StringVar(&config.LogLevel, "log-level", "info", "nivel de log (debug, info, warn, error)")
	fs.StringVar(&config.LogLevel, "l", "info", "nivel de log (forma corta)")
	fs.StringVar(&config.LogFormat, "log-format", "text", "formato de log (text, json)")
	fs.IntVar(&config.MaxDepth, "max-depth", 0, "profundidad máxima de llamadas")
	fs.StringVar(&config.Encoding, "encoding", script.DefaultEncoding, "codificación de los archivos")
	fs.StringVar(&config.Output, "output", "", "archivo de salida")
	fs.StringVar(&config.Output, "o", "", "archivo de salida (forma corta)")
	fs.StringVar(&config.Addr, "addr", DefaultAddr, "dirección del servidor")
	fs.StringVar(&config.History, "history", "", "base de datos del historial")
	fs.BoolVar(&config.ShowHelp, "help", false, "muestra la ayuda")
	fs.BoolVar(&config.ShowHelp, "h", false, "muestra la ayuda (forma corta)")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	isSet := func(names ...string) bool {
		return slices.ContainsFunc(names, func(n string) bool { return set[n] })
	}

	// Variables de entorno (las opciones tienen prioridad)
	if !isSet("log-level", "l") {
		if v := os.Getenv(EnvLogLevel); v != "" {
			config.LogLevel = strings.ToLower(v)
		}
	}
	if !isSet("log-format") {
		if v := os.Getenv(EnvLogFormat); v != "" {
			config.LogFormat = strings.ToLower(v)
		}
	}
	if !isSet("timeout", "t") {
		if v := os.Getenv(EnvTimeout); v != "" {
			t, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %s", EnvTimeout, v)
			}
			timeoutSec = t
		}
	}
	if !isSet("addr") {
		if v := os.Getenv(EnvAddr); v != "" {
			config.Addr = v
		}
	}
	if !isSet("history") {
		config.History = os.Getenv(EnvHistory)
	}
	if !isSet("encoding") {
		if v := os.Getenv(EnvEncoding); v != "" {
			config.Encoding = strings.ToLower(v)
		}
	}

	// Validación
	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}
	if config.LogFormat != logger.FormatText && config.LogFormat != logger.FormatJSON {
		return nil, fmt.Errorf("invalid log format: %s (must be text or json)", config.LogFormat)
	}
	if !script.ValidEncoding(config.Encoding) {
		return nil, fmt.Errorf("invalid encoding: %s (must be one of %s)",
			config.Encoding, strings.Join(script.Encodings(), ", "))
	}

	// Comando y argumentos posicionales
	positional := fs.Args()
	config.Command = CommandRun
	if len(positional) > 0 && slices.Contains(Commands, positional[0]) {
		config.Command = positional[0]
		positional = positional[1:]
	}
	config.Args = positional

	if config.ShowHelp {
		return config, nil
	}

	maxArgs := 1
	if config.Command == CommandServe || config.Command == CommandREPL {
		maxArgs = 0
	}
	if len(config.Args) > maxArgs {
		return nil, fmt.Errorf("too many arguments for %s: %s", config.Command, strings.Join(config.Args, " "))
	}

	return config, nil
}

// reorderArgs coloca las opciones delante y los argumentos posicionales
// detrás
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "-" alone names standard input
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// -t 5: the next argument is the value unless the flag is
			// boolean or carries its value after '='
			if !strings.Contains(arg, "=") && !slices.Contains(boolFlags, arg) &&
				i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp muestra la ayuda
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `analizador - analizador e intérprete de un lenguaje de enseñanza en español

Uso:
  analizador [opciones] [comando] [archivo]

Comandos:
  run [archivo]        ejecuta el programa y muestra el resultado (por defecto)
  tokens [archivo]     muestra la tabla de tokens
  ast [archivo]        muestra el árbol sintáctico
  chart [archivo]      genera un gráfico de frecuencia de tokens (PNG o BMP, -o)
  examples [id]        lista los ejemplos o ejecuta uno
  serve                inicia el servidor HTTP
  repl                 inicia la sesión interactiva

  Sin archivo, o con "-", el programa se lee de la entrada estándar.

Opciones:
  -t, --timeout <segundos>    tiempo máximo por análisis (por defecto: sin límite)
  -l, --log-level <nivel>     nivel de log: debug, info, warn, error (por defecto: info)
  --log-format <formato>      formato de log: text, json (por defecto: text)
  --max-depth <n>             profundidad máxima de llamadas (por defecto: %d, negativo: sin límite)
  --encoding <nombre>         codificación de los archivos: %s
  -o, --output <archivo>      archivo de salida de chart (por defecto: tokens.png)
  --addr <dirección>          dirección de serve (por defecto: %s)
  --history <archivo>         base de datos SQLite del historial de serve
  -h, --help                  muestra esta ayuda

Variables de entorno:
  LOG_LEVEL=<nivel>            nivel de log
  LOG_FORMAT=<formato>         formato de log
  TIMEOUT=<segundos>           tiempo máximo por análisis
  ANALIZADOR_ADDR=<dirección>  dirección de serve
  ANALIZADOR_HISTORY=<archivo> base de datos del historial
  ANALIZADOR_ENCODING=<nombre> codificación de los archivos

Ejemplos:
  analizador programa.txt                 ejecuta programa.txt
  analizador tokens programa.txt          muestra los tokens
  analizador chart -o grafico.png prog.txt
  analizador examples division-cero       ejecuta un ejemplo incluido
  analizador serve --addr :9000 --history historial.db
  echo 'imprime(1 + 1)' | analizador      lee el programa de la entrada estándar
`, compiler.DefaultMaxDepth, strings.Join(script.Encodings(), ", "), DefaultAddr)
}
