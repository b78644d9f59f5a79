package vm

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
)

// Bindings are the named values a param expression can refer to, e.g.
// frequency, gain, startTime and stopTime of the note being compiled.
type Bindings map[string]float64

var errDivisionByZero = errors.New("division by zero")

// Eval evaluates an arithmetic expression such as "frequency * 2 * (4 - gain) /
// 4". Numbers, identifiers found in the bindings, parentheses, unary signs and
// the operators + - * / are supported.
func Eval(expr string, b Bindings) (float64, error) {
	return evalString(expr, func(name string) (float64, bool) {
		v, ok := b[name]
		return v, ok
	})
}

func evalString(expr string, lookup func(string) (float64, bool)) (float64, error) {
	e, err := parser.ParseExpr(expr)
	if err != nil {
		return 0, fmt.Errorf("could not parse %q: %w", expr, err)
	}
	return eval(e, lookup)
}

func eval(e ast.Expr, lookup func(string) (float64, bool)) (float64, error) {
	switch x := e.(type) {
	case *ast.BasicLit:
		switch x.Kind {
		case token.FLOAT:
			return strconv.ParseFloat(x.Value, 64)
		case token.INT:
			i, err := strconv.ParseInt(x.Value, 0, 64)
			return float64(i), err
		}
	case *ast.Ident:
		if v, ok := lookup(x.Name); ok {
			return v, nil
		}
		return 0, fmt.Errorf("unknown binding %q", x.Name)
	case *ast.ParenExpr:
		return eval(x.X, lookup)
	case *ast.UnaryExpr:
		v, err := eval(x.X, lookup)
		if err != nil {
			return 0, err
		}
		switch x.Op {
		case token.SUB:
			return -v, nil
		case token.ADD:
			return v, nil
		}
	case *ast.BinaryExpr:
		a, err := eval(x.X, lookup)
		if err != nil {
			return 0, err
		}
		b, err := eval(x.Y, lookup)
		if err != nil {
			return 0, err
		}
		switch x.Op {
		case token.ADD:
			return a + b, nil
		case token.SUB:
			return a - b, nil
		case token.MUL:
			return a * b, nil
		case token.QUO:
			if b == 0 {
				return 0, errDivisionByZero
			}
			return a / b, nil
		}
	}
	return 0, fmt.Errorf("unsupported expression %T", e)
}
