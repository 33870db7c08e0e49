// Package symbolic provides the deterministic algebra kernel used by calcsteps.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat)
//   - Immutable expression trees with a canonical, stable ordering
//   - Authoritative derivatives for the step narrator
//   - sympy-compatible LaTeX output
package symbolic

import (
	"math"
	"sort"
)

// ============================================================
// Core Interface
// ============================================================

// Kind tags the concrete node type behind an Expr.
type Kind int

const (
	KindNum Kind = iota
	KindSym
	KindAdd
	KindMul
	KindPow
	KindFunc
)

func (k Kind) String() string {
	switch k {
	case KindNum:
		return "num"
	case KindSym:
		return "sym"
	case KindAdd:
		return "add"
	case KindMul:
		return "mul"
	case KindPow:
		return "pow"
	case KindFunc:
		return "func"
	}
	return "unknown"
}

// Expr is an immutable expression node. Every method returns new nodes or
// references into the receiver; nothing is edited in place.
type Expr interface {
	Kind() Kind
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
}

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

// Float evaluates e numerically. Symbols other than the constants pi and e
// make the evaluation fail.
func Float(e Expr) (float64, bool) {
	n, ok := e.Eval()
	if !ok {
		return 0, false
	}
	f := n.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IsAtomic reports whether e is a Number or Symbol leaf.
func IsAtomic(e Expr) bool {
	switch e.(type) {
	case *Num, *Sym:
		return true
	}
	return false
}

// IsNegated reports whether e carries an extractable minus sign: a negative
// number, a product with a negative coefficient, or a sum led by one.
func IsNegated(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsNegative()
	case *Mul:
		if len(v.factors) > 0 {
			if c, ok := v.factors[0].(*Num); ok {
				return c.IsNegative()
			}
		}
	case *Add:
		return len(v.terms) > 0 && IsNegated(v.terms[0])
	}
	return false
}

// Neg returns -e, simplified.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// ============================================================
// Free Symbols
// ============================================================

// FreeSymbols returns the sorted names of every symbol in e, excluding the
// constants pi and e.
func FreeSymbols(e Expr) []string {
	seen := map[string]struct{}{}
	collectSymbols(e, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Depends reports whether e contains the symbol varName.
func Depends(e Expr, varName string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == varName
	case *Add:
		for _, t := range v.terms {
			if Depends(t, varName) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if Depends(f, varName) {
				return true
			}
		}
	case *Pow:
		return Depends(v.base, varName) || Depends(v.exp, varName)
	case *Func:
		return Depends(v.arg, varName)
	}
	return false
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		if !v.IsConstant() {
			out[v.name] = struct{}{}
		}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}
