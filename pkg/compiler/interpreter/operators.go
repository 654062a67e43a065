package interpreter

import (
	"math"
)

// applyOperator evaluates a binary operator on two already evaluated
// operands. line is used for error reporting only.
func applyOperator(op string, left, right Value, line int) (Value, error) {
	switch op {
	case "+":
		if left.kind == KindString || right.kind == KindString {
			return String(left.String() + right.String()), nil
		}
		return Number(left.Float() + right.Float()), nil
	case "-":
		return Number(left.Float() - right.Float()), nil
	case "*":
		return Number(left.Float() * right.Float()), nil
	case "/":
		// Only a literal numeric zero divides by zero; "0" or false do not.
		if right.kind == KindNumber && right.num == 0 {
			return Value{}, newError(ErrorDivisionByZero, line, "División por cero")
		}
		return Number(left.Float() / right.Float()), nil
	case "^":
		return Number(pow(left.Float(), right.Float())), nil
	case "==":
		return Boolean(left.Equal(right)), nil
	case "!=":
		return Boolean(!left.Equal(right)), nil
	case "<", ">", "<=", ">=":
		return Boolean(compare(op, left, right)), nil
	}

	err := newError(ErrorUnknownOperator, line, "Operador desconocido: %s", op)
	err.Name = op
	return Value{}, err
}

// compare orders two strings lexicographically and everything else
// numerically. Any comparison involving NaN is false.
func compare(op string, left, right Value) bool {
	if left.kind == KindString && right.kind == KindString {
		a, b := left.str, right.str
		switch op {
		case "<":
			return a < b
		case ">":
			return a > b
		case "<=":
			return a <= b
		}
		return a >= b
	}

	a, b := left.Float(), right.Float()
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	}
	return a >= b
}

// pow differs from math.Pow where exponentiation of ±1 by NaN or ±Inf is
// concerned: those results are NaN.
func pow(x, y float64) float64 {
	if math.IsNaN(y) {
		return math.NaN()
	}
	if math.Abs(x) == 1 && math.IsInf(y, 0) {
		return math.NaN()
	}
	return math.Pow(x, y)
}
