package symbolic

import (
	"math/big"
	"strings"
)

// ============================================================
// Mul - product of factors
// ============================================================

type Mul struct {
	factors   []Expr
	canonical bool
}

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Kind() Kind { return KindMul }

// Simplify flattens nested products, folds the numeric coefficient, merges
// like bases by adding exponents and distributes a bare coefficient over a
// single sum.
func (m *Mul) Simplify() Expr {
	if m.canonical {
		return m
	}
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	coeff := N(1)
	exps := map[string][]Expr{}
	bases := map[string]Expr{}
	order := []string{}
	for _, f := range flat {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		base, exp := splitPow(f)
		key := base.String()
		if _, seen := bases[key]; !seen {
			order = append(order, key)
			bases[key] = base
		}
		exps[key] = append(exps[key], exp)
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := make([]Expr, 0, len(order))
	reflatten := false
	for _, key := range order {
		var merged Expr
		if len(exps[key]) == 1 {
			merged = (&Pow{base: bases[key], exp: exps[key][0]}).Simplify()
		} else {
			merged = PowOf(bases[key], AddOf(exps[key]...))
		}
		switch v := merged.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			reflatten = true
			others = append(others, v.factors...)
		default:
			others = append(others, merged)
		}
	}
	if reflatten {
		return MulOf(append([]Expr{coeff}, others...)...)
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}
	if len(others) == 1 {
		if coeff.IsOne() {
			return others[0]
		}
		if sum, ok := others[0].(*Add); ok {
			terms := make([]Expr, len(sum.terms))
			for i, t := range sum.terms {
				terms[i] = MulOf(coeff, t)
			}
			return AddOf(terms...)
		}
	}

	sortFactors(others)
	if coeff.IsOne() {
		return &Mul{factors: others, canonical: true}
	}
	return &Mul{factors: append([]Expr{coeff}, others...), canonical: true}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	parts := make([]string, len(m.factors))
	for i, f := range m.factors {
		_, isAdd := f.(*Add)
		if isAdd {
			parts[i] = "(" + f.String() + ")"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "*")
}

// LaTeX renders the product as a fraction when it has negative powers or a
// rational coefficient, matching sympy: \frac{x}{2}, - \frac{1}{x^{2}}.
func (m *Mul) LaTeX() string {
	coeff, rest := m.Coefficient()
	var numer, denom []Expr
	for _, f := range rest {
		if p, ok := f.(*Pow); ok {
			if e, ok := p.exp.(*Num); ok && e.IsNegative() {
				denom = append(denom, PowOf(p.base, numNeg(e)))
				continue
			}
		}
		numer = append(numer, f)
	}

	sign := ""
	if coeff.IsNegative() {
		sign = "- "
		coeff = numNeg(coeff)
	}
	cNum := &Num{val: new(big.Rat).SetInt(coeff.val.Num())}
	cDen := &Num{val: new(big.Rat).SetInt(coeff.val.Denom())}
	if !cNum.IsOne() {
		numer = append([]Expr{cNum}, numer...)
	}
	if !cDen.IsOne() {
		denom = append([]Expr{cDen}, denom...)
	}

	top := "1"
	if len(numer) > 0 {
		top = joinFactors(numer)
	}
	if len(denom) == 0 {
		return sign + top
	}
	return sign + "\\frac{" + top + "}{" + joinFactors(denom) + "}"
}

func joinFactors(fs []Expr) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		s := f.LaTeX()
		if _, isAdd := f.(*Add); isAdd && len(fs) > 1 {
			s = "\\left(" + s + "\\right)"
		}
		if i > 0 {
			if _, isNum := f.(*Num); isNum {
				parts[i] = "\\cdot " + s
				continue
			}
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors))
		others = append(others, dfi)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		terms[i] = MulOf(others...)
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

// Factors returns a copy of the factors in canonical order, coefficient first.
func (m *Mul) Factors() []Expr { return append([]Expr(nil), m.factors...) }

// Coefficient splits off the leading numeric factor (1 when absent).
func (m *Mul) Coefficient() (*Num, []Expr) {
	if len(m.factors) > 0 {
		if c, ok := m.factors[0].(*Num); ok {
			return c, append([]Expr(nil), m.factors[1:]...)
		}
	}
	return N(1), append([]Expr(nil), m.factors...)
}
