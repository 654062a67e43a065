package lexer

import (
	"testing"
)

func TestTokenize(t *testing.T) {
	input := `
entero a = 10
real b
funcion suma(x, y)
  retornar x + y
finfuncion
si (a > 3) { imprime("hola") ; }
`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
	}{
		{TOKEN_RESERVED, "entero"},
		{TOKEN_IDENT, "a"},
		{TOKEN_OPERATOR, "="},
		{TOKEN_NUMBER, "10"},

		{TOKEN_RESERVED, "real"},
		{TOKEN_IDENT, "b"},

		{TOKEN_RESERVED, "funcion"},
		{TOKEN_IDENT, "suma"},
		{TOKEN_PAREN, "("},
		{TOKEN_IDENT, "x"},
		{TOKEN_COMMA, ","},
		{TOKEN_IDENT, "y"},
		{TOKEN_PAREN, ")"},

		{TOKEN_RESERVED, "retornar"},
		{TOKEN_IDENT, "x"},
		{TOKEN_OPERATOR, "+"},
		{TOKEN_IDENT, "y"},
		{TOKEN_RESERVED, "finfuncion"},

		{TOKEN_RESERVED, "si"},
		{TOKEN_PAREN, "("},
		{TOKEN_IDENT, "a"},
		{TOKEN_OPERATOR, ">"},
		{TOKEN_NUMBER, "3"},
		{TOKEN_PAREN, ")"},
		{TOKEN_SYMBOL, "{"},
		{TOKEN_IDENT, "imprime"},
		{TOKEN_PAREN, "("},
		{TOKEN_STRING, "hola"},
		{TOKEN_PAREN, ")"},
		{TOKEN_SYMBOL, ";"},
		{TOKEN_SYMBOL, "}"},
	}

	tokens := Tokenize(input)
	if len(tokens) != len(tests) {
		t.Fatalf("token count wrong. expected=%d, got=%d (%v)", len(tests), len(tokens), tokens)
	}

	for i, tt := range tests {
		tok := tokens[i]

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestTokenizePositions(t *testing.T) {
	// The position is the cursor when the token is classified: for a flushed
	// lexeme that is the separator that ended it.
	tokens := Tokenize("entero a = 10")

	expected := []struct {
		literal  string
		position int
	}{
		{"entero", 6},
		{"a", 8},
		{"=", 9},
		{"10", 13},
	}

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, e := range expected {
		if tokens[i].Literal != e.literal || tokens[i].Position != e.position {
			t.Errorf("tokens[%d] = %q@%d, want %q@%d",
				i, tokens[i].Literal, tokens[i].Position, e.literal, e.position)
		}
	}
}

func TestTokenizePositionsCountCharacters(t *testing.T) {
	tokens := Tokenize(`"años" x`)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %v", tokens)
	}
	// Closing quote is character 5 even though it is byte 6.
	if tokens[0].Position != 5 {
		t.Errorf("string position = %d, want 5", tokens[0].Position)
	}
	if tokens[1].Position != 8 {
		t.Errorf("identifier position = %d, want 8", tokens[1].Position)
	}
}

func TestTokenizeLines(t *testing.T) {
	tokens := Tokenize("entero a\n\nreal b # comentario\nb")

	expected := []struct {
		literal string
		line    int
	}{
		{"entero", 1},
		{"a", 1}, // flushed by the newline before the counter moves
		{"real", 3},
		{"b", 3},
		{"b", 4},
	}

	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %v", len(expected), tokens)
	}
	for i, e := range expected {
		if tokens[i].Literal != e.literal || tokens[i].Line != e.line {
			t.Errorf("tokens[%d] = %q line %d, want %q line %d",
				i, tokens[i].Literal, tokens[i].Line, e.literal, e.line)
		}
	}
}

func TestTokenizeCommentFlushesAtNewline(t *testing.T) {
	tokens := Tokenize("abc# comentario\ndef")
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %v", tokens)
	}
	if tokens[0].Literal != "abc" || tokens[1].Literal != "def" {
		t.Errorf("got %q and %q", tokens[0].Literal, tokens[1].Literal)
	}
	if tokens[1].Line != 2 {
		t.Errorf("line after comment = %d, want 2", tokens[1].Line)
	}
}

func TestTokenizeEmptyInputs(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"\n\n\t  \r\n",
		"# solo un comentario",
		"# uno\n   # dos\n",
		"\uFEFF\n",
		"@ ? ~ $ ñ",
	}

	for _, input := range inputs {
		if tokens := Tokenize(input); len(tokens) != 0 {
			t.Errorf("Tokenize(%q) = %v, want no tokens", input, tokens)
		}
	}
}

func TestTokenizeStringQuirks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "pending lexeme absorbs the string",
			input: `abc"x"`,
			expected: []Token{
				{Type: TOKEN_IDENT, Literal: `abc"x"`, Line: 1, Position: 5},
			},
		},
		{
			name:  "reserved word prefix",
			input: `si"x"`,
			expected: []Token{
				{Type: TOKEN_RESERVED, Literal: `si"x"`, Line: 1, Position: 4},
			},
		},
		{
			name:  "unterminated string",
			input: `"hola mundo`,
			expected: []Token{
				{Type: TOKEN_IDENT, Literal: `"hola mundo`, Line: 1, Position: 11},
			},
		},
		{
			name:  "lone quote at end of input",
			input: `x "`,
			expected: []Token{
				{Type: TOKEN_IDENT, Literal: "x", Line: 1, Position: 1},
				{Type: TOKEN_STRING, Literal: `"`, Line: 1, Position: 3},
			},
		},
		{
			name:  "no escape processing",
			input: `"a\n#b"`,
			expected: []Token{
				{Type: TOKEN_STRING, Literal: `a\n#b`, Line: 1, Position: 6},
			},
		},
		{
			name:  "empty string",
			input: `""`,
			expected: []Token{
				{Type: TOKEN_STRING, Literal: "", Line: 1, Position: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) != len(tt.expected) {
				t.Fatalf("Tokenize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("tokens[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestTokenizeOperatorsAreSingleCharacters(t *testing.T) {
	tokens := Tokenize("a == b <= c != d")

	var literals []string
	for _, tok := range tokens {
		literals = append(literals, tok.Literal)
	}
	expected := []string{"a", "=", "=", "b", "<", "=", "c", "!", "=", "d"}
	if len(literals) != len(expected) {
		t.Fatalf("got %v, want %v", literals, expected)
	}
	for i := range expected {
		if literals[i] != expected[i] {
			t.Errorf("tokens[%d] = %q, want %q", i, literals[i], expected[i])
		}
	}
	if tokens[7].Type != TOKEN_UNKNOWN {
		t.Errorf("'!' should be DESCONOCIDO, got %s", tokens[7].Type)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []struct {
		input    string
		literal  string
		expected TokenType
	}{
		{"42", "42", TOKEN_NUMBER},
		{"3.14", "3.14", TOKEN_NUMBER},
		{"1.2.3", "1.23", TOKEN_NUMBER}, // second dot is dropped
		{"12.", "12.", TOKEN_NUMBER},
		{"3abc", "3abc", TOKEN_UNKNOWN},
		{"x.y", "xy", TOKEN_IDENT},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			if len(tokens) != 1 {
				t.Fatalf("expected one token, got %v", tokens)
			}
			if tokens[0].Literal != tt.literal || tokens[0].Type != tt.expected {
				t.Errorf("got %s %q, want %s %q", tokens[0].Type, tokens[0].Literal, tt.expected, tt.literal)
			}
		})
	}
}

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		lexeme   string
		expected TokenType
	}{
		{`"texto"`, TOKEN_STRING},
		{"entero", TOKEN_RESERVED},
		{"finmientras", TOKEN_RESERVED},
		{"sinosi", TOKEN_RESERVED},
		{"enteros", TOKEN_IDENT},
		{"_x1", TOKEN_IDENT},
		{"+", TOKEN_OPERATOR},
		{"^", TOKEN_OPERATOR},
		{"1+2", TOKEN_OPERATOR}, // contains test runs before the number test
		{"7", TOKEN_NUMBER},
		{"0.5", TOKEN_NUMBER},
		{"{", TOKEN_SYMBOL},
		{";", TOKEN_SYMBOL},
		{"(", TOKEN_PAREN},
		{")", TOKEN_PAREN},
		{",", TOKEN_COMMA},
		{"", TOKEN_EOF},
		{"%", TOKEN_UNKNOWN},
		{"!", TOKEN_UNKNOWN},
		{"9x", TOKEN_UNKNOWN},
	}

	for _, tt := range tests {
		t.Run(tt.lexeme, func(t *testing.T) {
			if got := Classify(tt.lexeme).Type; got != tt.expected {
				t.Errorf("Classify(%q) = %s, want %s", tt.lexeme, got, tt.expected)
			}
		})
	}
}
