// Package lexer provides lexical analysis for programs written in the
// Spanish-keyword teaching language (entero, funcion, si, retornar, ...).
package lexer

import "fmt"

// TokenType represents the classification of a token.
type TokenType int

// Token types
const (
	TOKEN_UNKNOWN TokenType = iota // unrecognized lexeme
	TOKEN_EOF                      // empty lexeme

	TOKEN_RESERVED // entero, real, si, sino, funcion, retornar, ...
	TOKEN_IDENT    // identifier
	TOKEN_NUMBER   // 10, 3.14
	TOKEN_STRING   // "texto" (quotes stripped)
	TOKEN_OPERATOR // = + - * / < > ^

	TOKEN_SYMBOL // { } ;
	TOKEN_PAREN  // ( )
	TOKEN_COMMA  // ,
)

// Token represents a lexical token.
//
// Position is the scanner cursor at the moment the token was classified,
// counted in characters. For tokens flushed by a separator it points at the
// separator, not at the first character of the lexeme.
type Token struct {
	Type     TokenType `json:"tipo"`
	Literal  string    `json:"valor"`
	Line     int       `json:"linea"`
	Position int       `json:"posicion"`
}

// String returns a compact description used in diagnostics.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Literal, t.Line, t.Position)
}

// tokenTypeNames maps TokenType to the names used on the wire.
var tokenTypeNames = map[TokenType]string{
	TOKEN_UNKNOWN:  "DESCONOCIDO",
	TOKEN_EOF:      "EOF",
	TOKEN_RESERVED: "PALABRA_RESERVADA",
	TOKEN_IDENT:    "IDENTIFICADOR",
	TOKEN_NUMBER:   "NUMERO",
	TOKEN_STRING:   "CADENA",
	TOKEN_OPERATOR: "OPERADOR",
	TOKEN_SYMBOL:   "SIMBOLO",
	TOKEN_PAREN:    "PARENTESIS",
	TOKEN_COMMA:    "COMA",
}

// String returns the wire name of the token type.
func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return "DESCONOCIDO"
}

// MarshalText encodes the token type by its wire name.
func (t TokenType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a wire name back into a TokenType.
func (t *TokenType) UnmarshalText(text []byte) error {
	for typ, name := range tokenTypeNames {
		if name == string(text) {
			*t = typ
			return nil
		}
	}
	return fmt.Errorf("unknown token type %q", text)
}

// TokenTypes returns every token type in declaration order.
func TokenTypes() []TokenType {
	return []TokenType{
		TOKEN_RESERVED, TOKEN_IDENT, TOKEN_NUMBER, TOKEN_STRING, TOKEN_OPERATOR,
		TOKEN_SYMBOL, TOKEN_PAREN, TOKEN_COMMA, TOKEN_UNKNOWN, TOKEN_EOF,
	}
}

// ReservedWords lists the language keywords. mientras and finmientras are
// reserved but no loop construct uses them.
var ReservedWords = []string{
	"entero", "real", "si", "sinosi", "sino", "mientras",
	"finsi", "finmientras", "funcion", "finfuncion", "retornar",
}

// Is reports whether the token has the given type and literal.
func (t Token) Is(typ TokenType, literal string) bool {
	return t.Type == typ && t.Literal == literal
}
