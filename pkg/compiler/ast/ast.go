// Package ast defines the abstract syntax tree produced by the parser.
//
// The node set is closed: Program, six statement kinds and five expression
// kinds. Every node owns its children; there are no parent links or shared
// subtrees.
package ast

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/analizador-es/analizador/pkg/compiler/lexer"
)

type Node interface {
	TokenLiteral() string
	Line() int
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Program is the root node
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Line() int {
	if len(p.Statements) > 0 {
		return p.Statements[0].Line()
	}
	return 0
}

func (p *Program) String() string {
	var out bytes.Buffer
	out.WriteString("(program")
	for _, s := range p.Statements {
		out.WriteString(" ")
		out.WriteString(s.String())
	}
	out.WriteString(")")
	return out.String()
}

// VarDeclaration binds a name. Type is "entero" or "real" and has no effect
// at run time. Initializer is nil when the declaration has no "= expr".
type VarDeclaration struct {
	Token       lexer.Token // entero or real
	Type        string
	Name        string
	Initializer Expression
}

func (vd *VarDeclaration) statementNode()       {}
func (vd *VarDeclaration) TokenLiteral() string { return vd.Token.Literal }
func (vd *VarDeclaration) Line() int            { return vd.Token.Line }
func (vd *VarDeclaration) String() string {
	if vd.Initializer == nil {
		return "(var " + vd.Type + " " + vd.Name + ")"
	}
	return "(var " + vd.Type + " " + vd.Name + " " + vd.Initializer.String() + ")"
}

// FunctionDeclaration
type FunctionDeclaration struct {
	Token      lexer.Token // funcion
	Name       string
	Parameters []string
	Body       []Statement
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) Line() int            { return fd.Token.Line }
func (fd *FunctionDeclaration) String() string {
	var out bytes.Buffer
	out.WriteString("(funcion ")
	out.WriteString(fd.Name)
	out.WriteString(" (")
	out.WriteString(strings.Join(fd.Parameters, " "))
	out.WriteString(")")
	writeBlock(&out, fd.Body)
	out.WriteString(")")
	return out.String()
}

// ExpressionStatement
type ExpressionStatement struct {
	Token      lexer.Token // The first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Line() int            { return es.Token.Line }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// ReturnStatement
type ReturnStatement struct {
	Token      lexer.Token // retornar
	Expression Expression
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) Line() int            { return rs.Token.Line }
func (rs *ReturnStatement) String() string {
	return "(retornar " + rs.Expression.String() + ")"
}

// IfStatement. Else is nil when there is no sino branch, and an empty (non
// nil) slice for an empty one.
type IfStatement struct {
	Token     lexer.Token // si
	Condition Expression
	Then      []Statement
	Else      []Statement
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Line() int            { return is.Token.Line }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("(si ")
	out.WriteString(is.Condition.String())
	out.WriteString(" (entonces")
	writeBlock(&out, is.Then)
	out.WriteString(")")
	if is.Else != nil {
		out.WriteString(" (sino")
		writeBlock(&out, is.Else)
		out.WriteString(")")
	}
	out.WriteString(")")
	return out.String()
}

// BinaryExpression
type BinaryExpression struct {
	Token    lexer.Token // the operator
	Operator string
	Left     Expression
	Right    Expression
}

func (be *BinaryExpression) expressionNode()      {}
func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Line() int            { return be.Token.Line }
func (be *BinaryExpression) String() string {
	return "(" + be.Operator + " " + be.Left.String() + " " + be.Right.String() + ")"
}

// Literal holds a number or a string. IsString selects which field is set.
type Literal struct {
	Token    lexer.Token
	Number   float64
	Text     string
	IsString bool
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.Token.Literal }
func (l *Literal) Line() int            { return l.Token.Line }
func (l *Literal) String() string {
	if l.IsString {
		return strconv.Quote(l.Text)
	}
	return strconv.FormatFloat(l.Number, 'g', -1, 64)
}

// Identifier
type Identifier struct {
	Token lexer.Token
	Name  string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Line() int            { return i.Token.Line }
func (i *Identifier) String() string       { return i.Name }

// FunctionCall. The callee is always a bare name.
type FunctionCall struct {
	Token     lexer.Token // the callee identifier
	Callee    string
	Arguments []Expression
}

func (fc *FunctionCall) expressionNode()      {}
func (fc *FunctionCall) TokenLiteral() string { return fc.Token.Literal }
func (fc *FunctionCall) Line() int            { return fc.Token.Line }
func (fc *FunctionCall) String() string {
	var out bytes.Buffer
	out.WriteString("(llamar ")
	out.WriteString(fc.Callee)
	for _, a := range fc.Arguments {
		out.WriteString(" ")
		out.WriteString(a.String())
	}
	out.WriteString(")")
	return out.String()
}

// Grouping is a parenthesized expression.
type Grouping struct {
	Token      lexer.Token // (
	Expression Expression
}

func (g *Grouping) expressionNode()      {}
func (g *Grouping) TokenLiteral() string { return g.Token.Literal }
func (g *Grouping) Line() int            { return g.Token.Line }
func (g *Grouping) String() string       { return "(grupo " + g.Expression.String() + ")" }

func writeBlock(out *bytes.Buffer, stmts []Statement) {
	for _, s := range stmts {
		out.WriteString(" ")
		out.WriteString(s.String())
	}
}
