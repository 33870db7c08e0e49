package steps

import "github.com/njchilds90/calcsteps/symbolic"

// Operands is the pair a binary rule works on. For Chain, U is the outer
// node and V the inner argument.
type Operands struct {
	U, V symbolic.Expr
}

// Extract splits e according to cat. It reports false rather than return
// a partial pair.
func Extract(e symbolic.Expr, cat Category) (Operands, bool) {
	switch cat {
	case Quotient:
		return extractQuotient(e)

	case Product:
		if m, ok := e.(*symbolic.Mul); ok {
			if fs := m.Factors(); len(fs) >= 2 {
				return Operands{U: fs[0], V: symbolic.MulOf(fs[1:]...)}, true
			}
		}

	case Sum, Difference:
		if a, ok := e.(*symbolic.Add); ok {
			if ts := a.Terms(); len(ts) >= 2 {
				return Operands{U: ts[0], V: symbolic.AddOf(ts[1:]...)}, true
			}
		}

	case Chain:
		switch v := e.(type) {
		case *symbolic.Pow:
			return Operands{U: v, V: v.Base()}, true
		case *symbolic.Func:
			return Operands{U: v, V: v.Arg()}, true
		}
	}
	return Operands{}, false
}

func extractQuotient(e symbolic.Expr) (Operands, bool) {
	switch v := e.(type) {
	case *symbolic.Pow:
		if den, ok := denominator(v); ok {
			return Operands{U: symbolic.N(1), V: den}, true
		}

	case *symbolic.Mul:
		fs := v.Factors()
		idx := -1
		for i, f := range fs {
			if p, ok := f.(*symbolic.Pow); ok {
				if n, ok := p.Exponent().(*symbolic.Num); ok && n.IsNegOne() {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			for i, f := range fs {
				if negativePower(f) {
					idx = i
					break
				}
			}
		}
		if idx >= 0 {
			den, _ := denominator(fs[idx].(*symbolic.Pow))
			rest := make([]symbolic.Expr, 0, len(fs)-1)
			rest = append(rest, fs[:idx]...)
			rest = append(rest, fs[idx+1:]...)
			num := symbolic.Expr(symbolic.N(1))
			if len(rest) > 0 {
				num = symbolic.MulOf(rest...)
			}
			return Operands{U: num, V: den}, true
		}
	}

	if cs := children(e); len(cs) == 2 {
		return Operands{U: cs[0], V: cs[1]}, true
	}
	return Operands{}, false
}

// denominator turns base^(-n) into base^n.
func denominator(p *symbolic.Pow) (symbolic.Expr, bool) {
	n, ok := p.Exponent().(*symbolic.Num)
	if !ok || !n.IsNegative() {
		return nil, false
	}
	if n.IsNegOne() {
		return p.Base(), true
	}
	return symbolic.PowOf(p.Base(), symbolic.Neg(n)), true
}

func children(e symbolic.Expr) []symbolic.Expr {
	switch v := e.(type) {
	case *symbolic.Add:
		return v.Terms()
	case *symbolic.Mul:
		return v.Factors()
	case *symbolic.Pow:
		return []symbolic.Expr{v.Base(), v.Exponent()}
	case *symbolic.Func:
		return []symbolic.Expr{v.Arg()}
	}
	return nil
}
