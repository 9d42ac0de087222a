// Package expression compiles small arithmetic formulas into closures.
//
// Formulas use Go expression syntax restricted to numeric literals,
// variables, the constants pi and e, unary and binary + - * /, and calls
// to exp, log, sqrt, abs, sin, cos, tanh, pow, min and max. Anything else
// is rejected at compile time, so configuration strings are never
// evaluated as code.
package expression

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"math"
	"strconv"
)

// ErrSyntax is returned for formulas outside the supported grammar.
var ErrSyntax = errors.New("unsupported expression")

type node func(env []float64) float64

// Expr is a compiled formula. It is immutable and safe for concurrent use.
type Expr struct {
	src  string
	eval node
	used []string
}

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var unaryFuncs = map[string]func(float64) float64{
	"exp":  math.Exp,
	"log":  math.Log,
	"sqrt": math.Sqrt,
	"abs":  math.Abs,
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tanh": math.Tanh,
}

var binaryFuncs = map[string]func(float64, float64) float64{
	"pow": math.Pow,
	"min": math.Min,
	"max": math.Max,
}

// Compile parses src. vars lists the variable names in environment order:
// Eval reads variable vars[i] from env[i].
func Compile(src string, vars []string) (*Expr, error) {
	tree, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, src, err)
	}
	slots := make(map[string]int, len(vars))
	for i, v := range vars {
		slots[v] = i
	}
	c := &compiler{slots: slots, seen: make(map[string]bool)}
	eval, err := c.compile(tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrSyntax, src, err)
	}
	return &Expr{src: src, eval: eval, used: c.used}, nil
}

// MustCompile is Compile for formulas known to be valid.
func MustCompile(src string, vars []string) *Expr {
	e, err := Compile(src, vars)
	if err != nil {
		panic(err)
	}
	return e
}

// Eval evaluates the formula against env.
func (e *Expr) Eval(env []float64) float64 { return e.eval(env) }

// Variables returns the variables referenced by the formula in first-use order.
func (e *Expr) Variables() []string { return e.used }

func (e *Expr) String() string { return e.src }

type compiler struct {
	slots map[string]int
	seen  map[string]bool
	used  []string
}

func (c *compiler) compile(n ast.Expr) (node, error) {
	switch n := n.(type) {
	case *ast.ParenExpr:
		return c.compile(n.X)

	case *ast.BasicLit:
		if n.Kind != token.INT && n.Kind != token.FLOAT {
			return nil, fmt.Errorf("literal %s is not a number", n.Value)
		}
		v, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, err
		}
		return func([]float64) float64 { return v }, nil

	case *ast.Ident:
		if slot, ok := c.slots[n.Name]; ok {
			if !c.seen[n.Name] {
				c.seen[n.Name] = true
				c.used = append(c.used, n.Name)
			}
			return func(env []float64) float64 { return env[slot] }, nil
		}
		if v, ok := constants[n.Name]; ok {
			return func([]float64) float64 { return v }, nil
		}
		return nil, fmt.Errorf("unknown variable %s", n.Name)

	case *ast.UnaryExpr:
		x, err := c.compile(n.X)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.ADD:
			return x, nil
		case token.SUB:
			return func(env []float64) float64 { return -x(env) }, nil
		}
		return nil, fmt.Errorf("unary operator %s", n.Op)

	case *ast.BinaryExpr:
		x, err := c.compile(n.X)
		if err != nil {
			return nil, err
		}
		y, err := c.compile(n.Y)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case token.ADD:
			return func(env []float64) float64 { return x(env) + y(env) }, nil
		case token.SUB:
			return func(env []float64) float64 { return x(env) - y(env) }, nil
		case token.MUL:
			return func(env []float64) float64 { return x(env) * y(env) }, nil
		case token.QUO:
			return func(env []float64) float64 { return x(env) / y(env) }, nil
		}
		return nil, fmt.Errorf("binary operator %s", n.Op)

	case *ast.CallExpr:
		return c.compileCall(n)
	}
	return nil, fmt.Errorf("node %T", n)
}

func (c *compiler) compileCall(n *ast.CallExpr) (node, error) {
	fn, ok := n.Fun.(*ast.Ident)
	if !ok || n.Ellipsis.IsValid() {
		return nil, fmt.Errorf("call target %T", n.Fun)
	}
	args := make([]node, len(n.Args))
	for i, a := range n.Args {
		arg, err := c.compile(a)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}
	if f, ok := unaryFuncs[fn.Name]; ok {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s takes 1 argument, got %d", fn.Name, len(args))
		}
		x := args[0]
		return func(env []float64) float64 { return f(x(env)) }, nil
	}
	if f, ok := binaryFuncs[fn.Name]; ok {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s takes 2 arguments, got %d", fn.Name, len(args))
		}
		x, y := args[0], args[1]
		return func(env []float64) float64 { return f(x(env), y(env)) }, nil
	}
	return nil, fmt.Errorf("unknown function %s", fn.Name)
}
