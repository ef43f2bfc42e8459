package qasm

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnboundParam = errors.New("unbound parameter")
	ErrNotExpr      = errors.New("not an expression")
)

// Eval computes the value of an expression node. Identifiers are looked up
// in env, which holds the parameters of the enclosing gate.
func Eval(expr Node, env map[string]float64) (float64, error) {
	switch e := expr.(type) {
	case *Real:
		return e.Value, nil
	case *Int:
		return float64(e.Value), nil
	case *ID:
		v, ok := env[e.Ident]
		if !ok {
			return 0, fmt.Errorf("%q: %w", e.Ident, ErrUnboundParam)
		}
		return v, nil
	case *Prefix:
		v, err := Eval(e.Operand, env)
		if err != nil {
			return 0, err
		}
		if e.Op == "-" {
			return -v, nil
		}
		return v, nil
	case *BinaryOp:
		l, err := Eval(e.Left, env)
		if err != nil {
			return 0, err
		}
		r, err := Eval(e.Right, env)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case "+":
			return l + r, nil
		case "-":
			return l - r, nil
		case "*":
			return l * r, nil
		case "/":
			return l / r, nil
		case "^":
			return math.Pow(l, r), nil
		}
		return 0, fmt.Errorf("operator %q: %w", e.Op, ErrNotExpr)
	case *External:
		v, err := Eval(e.Arg, env)
		if err != nil {
			return 0, err
		}
		switch e.Func {
		case "sin":
			return math.Sin(v), nil
		case "cos":
			return math.Cos(v), nil
		case "tan":
			return math.Tan(v), nil
		case "exp":
			return math.Exp(v), nil
		case "ln":
			return math.Log(v), nil
		case "sqrt":
			return math.Sqrt(v), nil
		}
		return 0, fmt.Errorf("function %q: %w", e.Func, ErrNotExpr)
	}
	if expr == nil {
		return 0, ErrNotExpr
	}
	return 0, fmt.Errorf("%s: %w", expr.Kind(), ErrNotExpr)
}

// EvalList evaluates every expression of an ExpressionList. A nil list
// gives no values.
func EvalList(list Node, env map[string]float64) ([]float64, error) {
	if list == nil {
		return nil, nil
	}
	exprs := list.Children()
	out := make([]float64, len(exprs))
	for i, e := range exprs {
		v, err := Eval(e, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
