package symbolic

import (
	"math"
	"strings"
)

// ============================================================
// Pow - base^exponent
// ============================================================

type Pow struct {
	base, exp Expr
	canonical bool
}

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// SqrtOf is base^(1/2); square roots are powers, as in sympy.
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Kind() Kind { return KindPow }

func (p *Pow) Simplify() Expr {
	if p.canonical {
		return p
	}
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}

	if bn, ok := base.(*Num); ok {
		switch {
		case bn.IsZero():
			// 0^0 is indeterminate; 0^negative is division by zero.
			if expIsNum && !en.IsPositive() {
				return &Pow{base: base, exp: exp, canonical: true}
			}
			return N(0)
		case bn.IsOne():
			return N(1)
		}
		if expIsNum {
			if e, ok := en.Int64(); ok && e >= -64 && e <= 64 {
				return numPowInt(bn, e)
			}
			if r, ok := rationalPow(bn, en); ok {
				return r
			}
		}
	}

	if s, ok := base.(*Sym); ok && s.name == "e" {
		return ExpOf(exp)
	}

	if inner, ok := base.(*Pow); ok && expIsNum && en.IsInteger() {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	if inner, ok := base.(*Func); ok && inner.name == "exp" && expIsNum && en.IsInteger() {
		return ExpOf(MulOf(inner.arg, exp))
	}
	if m, ok := base.(*Mul); ok && expIsNum && en.IsInteger() {
		factors := make([]Expr, len(m.factors))
		for i, f := range m.factors {
			factors[i] = PowOf(f, exp)
		}
		return MulOf(factors...)
	}
	return &Pow{base: base, exp: exp, canonical: true}
}

// rationalPow evaluates b^(p/q) when the q-th root of b is exact.
func rationalPow(b, e *Num) (Expr, bool) {
	q := e.val.Denom()
	p := e.val.Num()
	if !q.IsInt64() || !p.IsInt64() || q.Int64() > 16 {
		return nil, false
	}
	root, ok := numRoot(b, q.Int64())
	if !ok {
		return nil, false
	}
	pi := p.Int64()
	if pi < -64 || pi > 64 {
		return nil, false
	}
	return numPowInt(root, pi), true
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	expStr := p.exp.String()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "(" + baseStr + ")"
	}
	switch p.exp.(type) {
	case *Add, *Mul, *Pow:
		expStr = "(" + expStr + ")"
	case *Num:
		if !p.exp.(*Num).IsInteger() || p.exp.(*Num).IsNegative() {
			expStr = "(" + expStr + ")"
		}
	}
	return baseStr + "^" + expStr
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok {
		if en.IsNegative() {
			return "\\frac{1}{" + PowOf(p.base, numNeg(en)).LaTeX() + "}"
		}
		if !en.IsInteger() && en.val.Num().IsInt64() && en.val.Num().Int64() == 1 {
			q := en.val.Denom().Int64()
			if q == 2 {
				return "\\sqrt{" + p.base.LaTeX() + "}"
			}
			return "\\sqrt[" + en.val.Denom().String() + "]{" + p.base.LaTeX() + "}"
		}
		if en.IsInteger() {
			if f, ok := p.base.(*Func); ok && f.hasOperatorName() {
				return f.latexPower(en.LaTeX())
			}
		}
	}
	return wrapBase(p.base) + "^{" + p.exp.LaTeX() + "}"
}

func wrapBase(b Expr) string {
	s := b.LaTeX()
	switch v := b.(type) {
	case *Add, *Mul, *Pow:
		return "\\left(" + s + "\\right)"
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			return "\\left(" + s + "\\right)"
		}
	case *Func:
		if strings.HasPrefix(s, "e^") {
			return "\\left(" + s + "\\right)"
		}
	}
	return s
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	if !Depends(p.exp, varName) {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	dv := p.exp.Diff(varName)
	if !Depends(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LogOf(p.base), dv)
	}
	logTerm := MulOf(dv, LogOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if ok1 && ok2 {
		if ei, ok := e.Int64(); ok && ei >= -64 && ei <= 64 && !(b.IsZero() && ei < 0) {
			return numPowInt(b, ei), true
		}
		pf := math.Pow(b.Float64(), e.Float64())
		if math.IsNaN(pf) || math.IsInf(pf, 0) {
			return nil, false
		}
		return NFloat(pf), true
	}
	return nil, false
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }
