package app

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/analizador-es/analizador/pkg/compiler"
	"github.com/analizador-es/analizador/pkg/history"
)

func writeProgram(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "programa.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	// Keep test output quiet.
	args = append([]string{"-l", "error"}, args...)
	err := New(strings.NewReader(stdin), &out).Run(context.Background(), args)
	return out.String(), err
}

func TestRunProgram(t *testing.T) {
	path := writeProgram(t, "entero a = 10\nentero b = 7\nfuncion exponencial(a, b)\n retornar b + a * 2\nfinfuncion\nexponencial(b, a)")

	out, err := runApp(t, "", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "24\n" {
		t.Errorf("output = %q, want %q", out, "24\n")
	}
}

func TestRunProgramFromStdin(t *testing.T) {
	out, err := runApp(t, `imprime("hola", 1 + 1)`, "run", "-")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "\"hola 2\"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunProgramDivisionByZero(t *testing.T) {
	out, err := runApp(t, "entero a = 10\nentero b = 0\nretornar a / b")

	var ae *compiler.AnalysisError
	if !errors.As(err, &ae) || ae.Message != "División por cero" {
		t.Fatalf("expected division by zero, got %v", err)
	}
	// The token table is shown before the error.
	if !strings.Contains(out, "PALABRA_RESERVADA") || !strings.Contains(out, `"retornar"`) {
		t.Errorf("token table missing:\n%s", out)
	}

	msg := FormatError(err)
	if !strings.Contains(msg, "runtime error at line 3: División por cero") || !strings.Contains(msg, "> 3 | retornar a / b") {
		t.Errorf("FormatError = %q", msg)
	}
}

func TestRunProgramErrors(t *testing.T) {
	if _, err := runApp(t, "", "/no/existe.txt"); err == nil {
		t.Error("expected an error for a missing file")
	}

	_, err := runApp(t, "x")
	if err == nil || FormatError(err) == "" || !strings.Contains(err.Error(), "Variable x no definida") {
		t.Errorf("unexpected error %v", err)
	}

	if _, err := runApp(t, "", "--log-level", "trace"); err == nil {
		t.Error("expected an error for an invalid log level")
	}
}

func TestTokensCommand(t *testing.T) {
	out, err := runApp(t, "entero a = 10", "tokens")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"TIPO", "PALABRA_RESERVADA", `"entero"`, "IDENTIFICADOR", "CANTIDAD"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestASTCommand(t *testing.T) {
	out, err := runApp(t, "si (1) imprime(2) finsi", "ast")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "Program\n  IfStatement @1\n") {
		t.Errorf("output = %q", out)
	}

	if _, err := runApp(t, "si (1", "ast"); err == nil {
		t.Error("expected a syntax error")
	}
}

func TestChartCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeProgram(t, "entero a = 10\nimprime(a)")

	pngPath := filepath.Join(dir, "grafico.png")
	out, err := runApp(t, "", "chart", path, "-o", pngPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != pngPath {
		t.Errorf("output = %q", out)
	}
	f, err := os.Open(pngPath)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("chart is not a PNG: %v", err)
	}

	bmpPath := filepath.Join(dir, "grafico.bmp")
	if _, err := runApp(t, "", "chart", path, "--output", bmpPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(bmpPath)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if _, err := bmp.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("chart is not a BMP: %v", err)
	}
}

func TestExamplesCommand(t *testing.T) {
	out, err := runApp(t, "", "examples")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"aritmetica", "condicional", "division-cero", "saludo", "anidadas"} {
		if !strings.Contains(out, id) {
			t.Errorf("list missing %q:\n%s", id, out)
		}
	}

	out, err = runApp(t, "", "examples", "anidadas")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Resultado: 10") {
		t.Errorf("output = %q", out)
	}

	out, err = runApp(t, "", "examples", "division-cero")
	if err != nil {
		t.Fatalf("a failing example that fails as declared is not an error: %v", err)
	}
	if !strings.Contains(out, "Error: runtime error at line 4: División por cero") {
		t.Errorf("output = %q", out)
	}

	if _, err := runApp(t, "", "examples", "nada"); err == nil {
		t.Error("expected an error for an unknown example")
	}
}

func TestServeStopsWithContext(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "historial.db")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := New(strings.NewReader(""), &out).Run(ctx,
		[]string{"-l", "error", "serve", "--addr", "127.0.0.1:0", "--history", dbPath})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The history database was created.
	store, err := history.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("history not created: %v", err)
	}
	store.Close()
}

func TestHelp(t *testing.T) {
	out, err := runApp(t, "", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Uso:") || !strings.Contains(out, "analizador [opciones]") {
		t.Errorf("help output = %q", out)
	}
}
