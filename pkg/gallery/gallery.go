// Package gallery provides the example programs shipped with the binary.
//
// Examples are described in YAML. Each one carries either the expected
// result or the expected error message, so the gallery doubles as an
// end-to-end check of the pipeline.
package gallery

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/analizador-es/analizador/pkg/compiler"
)

//go:embed examples.yaml
var embedded string

// Example is a program with its expected outcome.
type Example struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Code   string `yaml:"code" json:"code"`
	Result string `yaml:"result,omitempty" json:"result,omitempty"`
	Error  string `yaml:"error,omitempty" json:"error,omitempty"`
	Line   int    `yaml:"line,omitempty" json:"line,omitempty"`
}

// ExpectsError reports whether the example is expected to fail.
func (e *Example) ExpectsError() bool {
	return e.Error != ""
}

// Gallery is an ordered, read-only set of examples.
type Gallery struct {
	examples []*Example
	byID     map[string]*Example
}

type galleryFile struct {
	Examples []*Example `yaml:"examples"`
}

// ValidationError aggregates gallery validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("gallery validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Load parses a gallery document.
func Load(r io.Reader) (*Gallery, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw galleryFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("gallery: empty document")
		}
		return nil, fmt.Errorf("gallery: parse: %w", err)
	}

	g := &Gallery{byID: make(map[string]*Example, len(raw.Examples))}
	var issues []string
	for i, ex := range raw.Examples {
		if ex == nil {
			issues = append(issues, fmt.Sprintf("examples[%d] is empty", i))
			continue
		}
		switch {
		case ex.ID == "":
			issues = append(issues, fmt.Sprintf("examples[%d] has no id", i))
		case g.byID[ex.ID] != nil:
			issues = append(issues, fmt.Sprintf("duplicate id %q", ex.ID))
		}
		if strings.TrimSpace(ex.Code) == "" {
			issues = append(issues, fmt.Sprintf("example %q has no code", ex.ID))
		}
		if ex.Result != "" && ex.Error != "" {
			issues = append(issues, fmt.Sprintf("example %q sets both result and error", ex.ID))
		}
		if ex.ID != "" && g.byID[ex.ID] == nil {
			g.byID[ex.ID] = ex
		}
		g.examples = append(g.examples, ex)
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	return g, nil
}

var loadDefault = sync.OnceValues(func() (*Gallery, error) {
	return Load(strings.NewReader(embedded))
})

// Default returns the embedded gallery.
func Default() *Gallery {
	g, err := loadDefault()
	if err != nil {
		// The embedded document is covered by tests.
		panic(err)
	}
	return g
}

// List returns the examples in document order.
func (g *Gallery) List() []*Example {
	return g.examples
}

// Get looks up an example by id.
func (g *Gallery) Get(id string) (*Example, bool) {
	ex, ok := g.byID[id]
	return ex, ok
}

// Len returns the number of examples.
func (g *Gallery) Len() int {
	return len(g.examples)
}

// Check runs the example through the pipeline and compares the outcome
// with the expected one. A nil error means the example behaves as declared.
func Check(ctx context.Context, ex *Example, opts compiler.Options) error {
	result, err := compiler.AnalyzeWithOptions(ctx, ex.Code, opts)

	if ex.ExpectsError() {
		if err == nil {
			return fmt.Errorf("%s: expected error %q, got result %q", ex.ID, ex.Error, result.Value.String())
		}
		var ae *compiler.AnalysisError
		if !errors.As(err, &ae) {
			return fmt.Errorf("%s: %w", ex.ID, err)
		}
		if ae.Message != ex.Error {
			return fmt.Errorf("%s: expected error %q, got %q", ex.ID, ex.Error, ae.Message)
		}
		if ex.Line != 0 && ae.Line != ex.Line {
			return fmt.Errorf("%s: expected error on line %d, got line %d", ex.ID, ex.Line, ae.Line)
		}
		return nil
	}

	if err != nil {
		return fmt.Errorf("%s: %w", ex.ID, err)
	}
	if got := result.Value.String(); got != ex.Result {
		return fmt.Errorf("%s: expected result %q, got %q", ex.ID, ex.Result, got)
	}
	return nil
}
