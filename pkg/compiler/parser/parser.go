// Package parser builds an AST from a token sequence by recursive descent.
//
// Operator levels, loosest first: equality (== !=), comparison (< > <= >=),
// term (+ -), factor (* / % ^), call, primary. Every level is left
// associative.
package parser

import (
	"math"
	"regexp"
	"strconv"

	"github.com/analizador-es/analizador/pkg/compiler/ast"
	"github.com/analizador-es/analizador/pkg/compiler/lexer"
)

var numberPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Parser consumes tokens with a single forward cursor.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a new Parser.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse is a shorthand for New(tokens).ParseProgram().
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	return New(tokens).ParseProgram()
}

// ParseProgram parses the entire program. Parsing stops at the first error.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{Statements: []ast.Statement{}}

	for !p.atEnd() {
		stmt, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		program.Statements = append(program.Statements, stmt)
	}

	return program, nil
}

func (p *Parser) parseDeclaration() (ast.Statement, error) {
	if p.curIs(lexer.TOKEN_RESERVED, "entero") || p.curIs(lexer.TOKEN_RESERVED, "real") {
		return p.parseVarDeclaration()
	}
	if p.curIs(lexer.TOKEN_RESERVED, "funcion") {
		return p.parseFunctionDeclaration()
	}
	return p.parseStatement()
}

func (p *Parser) parseVarDeclaration() (ast.Statement, error) {
	typeTok, err := p.consume(lexer.TOKEN_RESERVED, "Se esperaba tipo de variable")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.consume(lexer.TOKEN_IDENT, "Se esperaba identificador de variable")
	if err != nil {
		return nil, err
	}

	stmt := &ast.VarDeclaration{Token: typeTok, Type: typeTok.Literal, Name: nameTok.Literal}

	if p.curIs(lexer.TOKEN_OPERATOR, "=") {
		p.pos++
		stmt.Initializer, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}

	return stmt, nil
}

func (p *Parser) parseFunctionDeclaration() (ast.Statement, error) {
	fnTok, err := p.consume(lexer.TOKEN_RESERVED, "Se esperaba 'funcion'")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.consume(lexer.TOKEN_IDENT, "Se esperaba el nombre de la función")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TOKEN_PAREN, "Se esperaba '(' al inicio de parámetros"); err != nil {
		return nil, err
	}

	fn := &ast.FunctionDeclaration{Token: fnTok, Name: nameTok.Literal, Parameters: []string{}}

	if !p.curIs(lexer.TOKEN_PAREN, ")") {
		for {
			param, err := p.consume(lexer.TOKEN_IDENT, "Se esperaba parámetro")
			if err != nil {
				return nil, err
			}
			fn.Parameters = append(fn.Parameters, param.Literal)
			if !p.curType(lexer.TOKEN_COMMA) {
				break
			}
			p.pos++
		}
	}
	if _, err := p.consume(lexer.TOKEN_PAREN, "Se esperaba ')' al final de parámetros"); err != nil {
		return nil, err
	}

	fn.Body, err = p.parseBlock("finfuncion")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TOKEN_RESERVED, "Se esperaba 'finfuncion' al final de la función"); err != nil {
		return nil, err
	}

	return fn, nil
}

// parseBlock parses statements until one of the terminating reserved words
// (left unconsumed) or the end of the token stream.
func (p *Parser) parseBlock(terminators ...string) ([]ast.Statement, error) {
	stmts := []ast.Statement{}
	for !p.atEnd() && !p.curIsReserved(terminators...) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.curIs(lexer.TOKEN_RESERVED, "si"):
		return p.parseIfStatement()
	case p.curIs(lexer.TOKEN_RESERVED, "retornar"):
		return p.parseReturnStatement()
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseIfStatement() (ast.Statement, error) {
	siTok, err := p.consume(lexer.TOKEN_RESERVED, "Se esperaba 'si'")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TOKEN_PAREN, "Se esperaba '(' en la condición del if"); err != nil {
		return nil, err
	}
	condition, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TOKEN_PAREN, "Se esperaba ')' al finalizar la condición del if"); err != nil {
		return nil, err
	}

	stmt := &ast.IfStatement{Token: siTok, Condition: condition}

	stmt.Then, err = p.parseBlock("sino", "finsi")
	if err != nil {
		return nil, err
	}

	if p.curIs(lexer.TOKEN_RESERVED, "sino") {
		p.pos++
		stmt.Else, err = p.parseBlock("finsi")
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(lexer.TOKEN_RESERVED, "Se esperaba 'finsi' al final del if"); err != nil {
		return nil, err
	}

	return stmt, nil
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	tok, err := p.consume(lexer.TOKEN_RESERVED, "Se esperaba 'retornar'")
	if err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Token: tok, Expression: expr}, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	tok, _ := p.current()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}, nil
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseEquality()
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	return p.parseBinary(p.parseComparison, "==", "!=")
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	return p.parseBinary(p.parseTerm, "<", ">", "<=", ">=")
}

func (p *Parser) parseTerm() (ast.Expression, error) {
	return p.parseBinary(p.parseFactor, "+", "-")
}

func (p *Parser) parseFactor() (ast.Expression, error) {
	return p.parseBinary(p.parseCall, "*", "/", "%", "^")
}

// parseBinary parses one left-associative precedence level.
func (p *Parser) parseBinary(next func() (ast.Expression, error), operators ...string) (ast.Expression, error) {
	expr, err := next()
	if err != nil {
		return nil, err
	}

	for p.curIsOperator(operators...) {
		opTok := p.tokens[p.pos]
		p.pos++
		right, err := next()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpression{Token: opTok, Operator: opTok.Literal, Left: expr, Right: right}
	}

	return expr, nil
}

func (p *Parser) parseCall() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.curIs(lexer.TOKEN_PAREN, "(") {
		expr, err = p.finishCall(expr)
		if err != nil {
			return nil, err
		}
	}

	return expr, nil
}

func (p *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	ident, ok := callee.(*ast.Identifier)
	if !ok {
		return nil, p.errorf("Se esperaba un identificador para llamada de función")
	}
	if _, err := p.consume(lexer.TOKEN_PAREN, "Se esperaba '(' en llamada de función"); err != nil {
		return nil, err
	}

	call := &ast.FunctionCall{Token: ident.Token, Callee: ident.Name, Arguments: []ast.Expression{}}

	if !p.curIs(lexer.TOKEN_PAREN, ")") {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			call.Arguments = append(call.Arguments, arg)
			if !p.curType(lexer.TOKEN_COMMA) {
				break
			}
			p.pos++
		}
	}
	if _, err := p.consume(lexer.TOKEN_PAREN, "Se esperaba ')' al finalizar llamada de función"); err != nil {
		return nil, err
	}

	return call, nil
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok, ok := p.current()
	if !ok {
		return nil, p.errorf("Fin inesperado de tokens")
	}

	switch {
	case tok.Type == lexer.TOKEN_NUMBER:
		p.pos++
		return &ast.Literal{Token: tok, Number: ParseNumber(tok.Literal)}, nil
	case tok.Type == lexer.TOKEN_STRING:
		p.pos++
		return &ast.Literal{Token: tok, Text: tok.Literal, IsString: true}, nil
	case tok.Type == lexer.TOKEN_IDENT:
		p.pos++
		return &ast.Identifier{Token: tok, Name: tok.Literal}, nil
	case tok.Is(lexer.TOKEN_PAREN, "("):
		p.pos++
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TOKEN_PAREN, "Se esperaba ')' después de la expresión"); err != nil {
			return nil, err
		}
		return &ast.Grouping{Token: tok, Expression: expr}, nil
	}

	return nil, p.errorf("Token inesperado en primary: %s", tok.Literal)
}

// ParseNumber reads the longest numeric prefix of text, the way number
// lexemes such as "12." or "1.5abc" are given their value. It returns NaN
// when there is no numeric prefix.
func ParseNumber(text string) float64 {
	prefix := numberPrefix.FindString(text)
	if prefix == "" {
		return math.NaN()
	}
	// Out-of-range prefixes come back as ±Inf alongside a range error.
	v, _ := strconv.ParseFloat(prefix, 64)
	return v
}

// current returns the token under the cursor.
func (p *Parser) current() (lexer.Token, bool) {
	if p.atEnd() {
		return lexer.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *Parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) curType(typ lexer.TokenType) bool {
	tok, ok := p.current()
	return ok && tok.Type == typ
}

func (p *Parser) curIs(typ lexer.TokenType, literal string) bool {
	tok, ok := p.current()
	return ok && tok.Is(typ, literal)
}

func (p *Parser) curIsReserved(words ...string) bool {
	for _, w := range words {
		if p.curIs(lexer.TOKEN_RESERVED, w) {
			return true
		}
	}
	return false
}

func (p *Parser) curIsOperator(operators ...string) bool {
	for _, op := range operators {
		if p.curIs(lexer.TOKEN_OPERATOR, op) {
			return true
		}
	}
	return false
}

// consume returns the current token and advances when it has the expected
// type. Only the type is checked, never the literal.
func (p *Parser) consume(typ lexer.TokenType, message string) (lexer.Token, error) {
	if p.curType(typ) {
		tok := p.tokens[p.pos]
		p.pos++
		return tok, nil
	}
	return lexer.Token{}, p.errorf("%s", message)
}
