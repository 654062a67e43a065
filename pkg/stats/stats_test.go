package stats

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/analizador-es/analizador/pkg/compiler/lexer"
)

func TestFrequency(t *testing.T) {
	tokens := lexer.Tokenize("entero a = 10\nimprime(a)")

	expected := []Entry{
		{lexer.TOKEN_IDENT, 3},
		{lexer.TOKEN_PAREN, 2},
		{lexer.TOKEN_RESERVED, 1},
		{lexer.TOKEN_NUMBER, 1},
		{lexer.TOKEN_OPERATOR, 1},
	}

	got := Frequency(tokens)
	if !slices.Equal(got, expected) {
		t.Errorf("Frequency() = %v, want %v", got, expected)
	}
}

func TestFrequencyEmpty(t *testing.T) {
	got := Frequency(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Frequency(nil) = %#v, want empty non-nil slice", got)
	}
}

func TestEntryJSON(t *testing.T) {
	data, err := json.Marshal(Entry{lexer.TOKEN_STRING, 2})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"tipo":"CADENA","count":2}` {
		t.Errorf("Marshal = %s", data)
	}
}

func TestSummarize(t *testing.T) {
	source := "funcion f(x)\n retornar x\nfinfuncion\nentero x = f(2)\nsi (x) imprime(x) finsi"

	s := Summarize(lexer.Tokenize(source))

	if s.Tokens != len(lexer.Tokenize(source)) {
		t.Errorf("Tokens = %d", s.Tokens)
	}
	if s.Lines != 5 {
		t.Errorf("Lines = %d, want 5", s.Lines)
	}
	if !slices.Equal(s.Identifiers, []string{"f", "imprime", "x"}) {
		t.Errorf("Identifiers = %v", s.Identifiers)
	}
	if !slices.Equal(s.Reserved, []string{"entero", "finfuncion", "finsi", "funcion", "retornar", "si"}) {
		t.Errorf("Reserved = %v", s.Reserved)
	}
	if len(s.Frequency) == 0 || s.Frequency[0].Type != lexer.TOKEN_IDENT {
		t.Errorf("Frequency = %v", s.Frequency)
	}
}
