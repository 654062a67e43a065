package ast

import (
	"fmt"
	"strings"
)

// Print renders node as an indented tree with one node per line, each
// annotated with its source line. The output is deterministic.
//
// Example:
//
//	Program
//	  FunctionDeclaration suma(x, y) @1
//	    ReturnStatement @2
//	      BinaryExpression + @2
//	        Identifier x @2
//	        Identifier y @2
func Print(node Node) string {
	var b strings.Builder
	printNode(&b, node, 0)
	return b.String()
}

func printNode(b *strings.Builder, node Node, depth int) {
	indent := strings.Repeat("  ", depth)
	line := func(format string, args ...interface{}) {
		b.WriteString(indent)
		fmt.Fprintf(b, format, args...)
		b.WriteString("\n")
	}

	switch n := node.(type) {
	case *Program:
		line("Program")
		printBlock(b, n.Statements, depth+1)
	case *VarDeclaration:
		line("VarDeclaration %s %s @%d", n.Type, n.Name, n.Line())
		if n.Initializer != nil {
			printNode(b, n.Initializer, depth+1)
		}
	case *FunctionDeclaration:
		line("FunctionDeclaration %s(%s) @%d", n.Name, strings.Join(n.Parameters, ", "), n.Line())
		printBlock(b, n.Body, depth+1)
	case *ExpressionStatement:
		line("ExpressionStatement @%d", n.Line())
		if n.Expression != nil {
			printNode(b, n.Expression, depth+1)
		}
	case *ReturnStatement:
		line("ReturnStatement @%d", n.Line())
		printNode(b, n.Expression, depth+1)
	case *IfStatement:
		line("IfStatement @%d", n.Line())
		printNode(b, n.Condition, depth+1)
		b.WriteString(indent + "  Then\n")
		printBlock(b, n.Then, depth+2)
		if n.Else != nil {
			b.WriteString(indent + "  Else\n")
			printBlock(b, n.Else, depth+2)
		}
	case *BinaryExpression:
		line("BinaryExpression %s @%d", n.Operator, n.Line())
		printNode(b, n.Left, depth+1)
		printNode(b, n.Right, depth+1)
	case *Literal:
		line("Literal %s @%d", n.String(), n.Line())
	case *Identifier:
		line("Identifier %s @%d", n.Name, n.Line())
	case *FunctionCall:
		line("FunctionCall %s @%d", n.Callee, n.Line())
		for _, arg := range n.Arguments {
			printNode(b, arg, depth+1)
		}
	case *Grouping:
		line("Grouping @%d", n.Line())
		printNode(b, n.Expression, depth+1)
	case nil:
		line("<nil>")
	default:
		line("%T", node)
	}
}

func printBlock(b *strings.Builder, stmts []Statement, depth int) {
	for _, s := range stmts {
		printNode(b, s, depth)
	}
}
