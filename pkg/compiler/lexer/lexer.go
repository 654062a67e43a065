package lexer

import (
	"regexp"
	"strings"
	"unicode"
)

// Classification patterns. Reserved words, identifiers and numbers are
// searched for anywhere in the lexeme between word boundaries; the symbol
// pattern is the only anchored one.
var (
	reservedPattern = regexp.MustCompile(`\b(entero|real|si|sinosi|sino|mientras|finsi|finmientras|funcion|finfuncion|retornar)\b`)
	identPattern    = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*\b`)
	operatorPattern = regexp.MustCompile(`[=+\-*/<>^]`)
	numberPattern   = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
	symbolPattern   = regexp.MustCompile(`^[{};]$`)
	parenPattern    = regexp.MustCompile(`[()]`)
	integerPattern  = regexp.MustCompile(`^\d+$`)
)

const (
	operatorChars  = ",+-*/%=!^<>"
	delimiterChars = "(){};"
)

// Lexer tokenizes source code with a single forward scan.
type Lexer struct {
	input    []rune
	position int // cursor, in characters
	line     int
}

// New creates a new Lexer.
func New(input string) *Lexer {
	return &Lexer{
		input: []rune(input),
		line:  1,
	}
}

// Tokenize scans the whole input and returns the classified tokens.
// Scanning never fails: characters that cannot start or continue a lexeme are
// skipped, and odd lexemes are classified as TOKEN_UNKNOWN.
func Tokenize(source string) []Token {
	return New(source).Tokenize()
}

// Tokenize scans the whole input and returns the classified tokens.
func (l *Lexer) Tokenize() []Token {
	tokens := []Token{}
	var lexeme strings.Builder

	flush := func() {
		if lexeme.Len() > 0 {
			tokens = append(tokens, l.Classify(lexeme.String()))
			lexeme.Reset()
		}
	}

	for l.position < len(l.input) {
		ch := l.input[l.position]

		switch {
		case ch == '#':
			// The newline that ends the comment is handled by the next iteration.
			l.skipComment()
			continue
		case ch == '\n':
			flush()
			l.line++
		case isSpace(ch):
			flush()
		case isLetter(ch):
			lexeme.WriteRune(ch)
		case strings.ContainsRune(operatorChars, ch):
			flush()
			tokens = append(tokens, l.Classify(string(ch)))
		case isDigit(ch):
			lexeme.WriteRune(ch)
		case ch == '.' && integerPattern.MatchString(lexeme.String()):
			lexeme.WriteRune(ch)
		case ch == '"':
			// The pending lexeme is not flushed first: the quoted text is
			// appended to whatever was being accumulated.
			l.readString(&lexeme)
			tokens = append(tokens, l.Classify(lexeme.String()))
			lexeme.Reset()
		case strings.ContainsRune(delimiterChars, ch):
			flush()
			tokens = append(tokens, l.Classify(string(ch)))
		}
		l.position++
	}
	flush()

	return tokens
}

// readString appends a quoted literal to lexeme, leaving the cursor on the
// closing quote (or at end of input when the literal is unterminated).
func (l *Lexer) readString(lexeme *strings.Builder) {
	lexeme.WriteRune('"')
	l.position++
	for l.position < len(l.input) && l.input[l.position] != '"' {
		lexeme.WriteRune(l.input[l.position])
		l.position++
	}
	if l.position < len(l.input) {
		lexeme.WriteRune('"')
	}
}

// skipComment advances to the next newline without consuming it.
func (l *Lexer) skipComment() {
	for l.position < len(l.input) && l.input[l.position] != '\n' {
		l.position++
	}
}

// Classify turns a lexeme into a token stamped with the current line and
// cursor. The checks run in a fixed priority order and the first match wins.
func (l *Lexer) Classify(lexeme string) Token {
	return Token{
		Type:     classifyType(lexeme),
		Literal:  literalOf(lexeme),
		Line:     l.line,
		Position: l.position,
	}
}

// Classify classifies a lexeme outside of any scan (line 1, position 0).
func Classify(lexeme string) Token {
	return New("").Classify(lexeme)
}

func classifyType(lexeme string) TokenType {
	switch {
	case isQuoted(lexeme):
		return TOKEN_STRING
	case reservedPattern.MatchString(lexeme):
		return TOKEN_RESERVED
	case identPattern.MatchString(lexeme):
		return TOKEN_IDENT
	case operatorPattern.MatchString(lexeme):
		return TOKEN_OPERATOR
	case numberPattern.MatchString(lexeme):
		return TOKEN_NUMBER
	case symbolPattern.MatchString(lexeme):
		return TOKEN_SYMBOL
	case parenPattern.MatchString(lexeme):
		return TOKEN_PAREN
	case strings.Contains(lexeme, ","):
		return TOKEN_COMMA
	case lexeme == "":
		return TOKEN_EOF
	}
	return TOKEN_UNKNOWN
}

func literalOf(lexeme string) string {
	if !isQuoted(lexeme) {
		return lexeme
	}
	// A lone quote is kept as is.
	if len(lexeme) < 2 {
		return lexeme
	}
	return lexeme[1 : len(lexeme)-1]
}

func isQuoted(lexeme string) bool {
	return strings.HasPrefix(lexeme, `"`) && strings.HasSuffix(lexeme, `"`)
}

// isLetter checks if a character is an ASCII letter or underscore.
func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

// isDigit checks if a character is an ASCII digit.
func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

// isSpace matches the ECMAScript whitespace class: Unicode spaces plus the
// byte order mark, but not NEL.
func isSpace(ch rune) bool {
	if ch == '\uFEFF' {
		return true
	}
	return ch != '\u0085' && unicode.IsSpace(ch)
}
