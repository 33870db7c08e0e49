package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"strings"
)

// ============================================================
// Num - exact rational number
// ============================================================

type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NFloat(f float64) *Num { return &Num{val: new(big.Rat).SetFloat64(f)} }
func NRat(r *big.Rat) *Num  { return &Num{val: new(big.Rat).Set(r)} }

// ParseNum reads an integer or decimal literal ("42", "0.25") exactly.
func ParseNum(s string) (*Num, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		return nil, fmt.Errorf("symbolic: invalid number %q", s)
	}
	return &Num{val: r}, nil
}

func (n *Num) Kind() Kind            { return KindNum }
func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

// Int64 returns the value when it is an integer that fits in an int64.
func (n *Num) Int64() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "- "
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numSub(a, b *Num) *Num { return &Num{val: new(big.Rat).Sub(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }

// numPowInt raises a to an integer power exactly. Zero to a negative power
// panics like any other division by zero.
func numPowInt(a *Num, e int64) *Num {
	neg := e < 0
	if neg {
		e = -e
	}
	bigE := big.NewInt(e)
	num := new(big.Int).Exp(a.val.Num(), bigE, nil)
	den := new(big.Int).Exp(a.val.Denom(), bigE, nil)
	r := &Num{val: new(big.Rat).SetFrac(num, den)}
	if neg {
		return numRecip(r)
	}
	return r
}

// numRoot returns the exact q-th root of a non-negative rational when one
// exists.
func numRoot(a *Num, q int64) (*Num, bool) {
	if a.IsNegative() || q < 2 {
		return nil, false
	}
	num, ok := intRoot(a.val.Num(), q)
	if !ok {
		return nil, false
	}
	den, ok := intRoot(a.val.Denom(), q)
	if !ok {
		return nil, false
	}
	return &Num{val: new(big.Rat).SetFrac(num, den)}, true
}

func intRoot(x *big.Int, q int64) (*big.Int, bool) {
	if q == 2 {
		r := new(big.Int).Sqrt(x)
		return r, new(big.Int).Mul(r, r).Cmp(x) == 0
	}
	f, _ := new(big.Float).SetInt(x).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(q))))
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c < 0 {
			continue
		}
		r := big.NewInt(c)
		if new(big.Int).Exp(r, big.NewInt(q), nil).Cmp(x) == 0 {
			return r, true
		}
	}
	return nil, false
}
