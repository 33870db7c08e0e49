package symbolic

// ============================================================
// Integration (rule-based symbolic + numerical)
// ============================================================

// Integrate returns an antiderivative of expr with respect to varName,
// without the constant of integration. The second result is false when no
// rule applies.
func Integrate(expr Expr, varName string) (Expr, bool) {
	return integrate(expr.Simplify(), varName, true)
}

// maxPartsDegree bounds repeated integration by parts on x^n * g(x).
const maxPartsDegree = 8

func integrate(expr Expr, varName string, allowExpand bool) (Expr, bool) {
	x := S(varName)
	if !Depends(expr, varName) {
		return MulOf(expr, x), true
	}
	switch v := expr.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(x, N(2))), true
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			it, ok := integrate(t, varName, allowExpand)
			if !ok {
				return nil, false
			}
			terms[i] = it
		}
		return AddOf(terms...), true
	case *Mul:
		if r, ok := integrateProduct(v, varName, allowExpand); ok {
			return r, true
		}
	case *Pow:
		if r, ok := integratePow(v, varName); ok {
			return r, true
		}
	case *Func:
		if r, ok := integrateFunc(v, varName); ok {
			return r, true
		}
	}
	if allowExpand {
		if ex := Expand(expr); !ex.Equal(expr) {
			return integrate(ex, varName, false)
		}
	}
	return nil, false
}

func integrateProduct(m *Mul, varName string, allowExpand bool) (Expr, bool) {
	var consts, deps []Expr
	for _, f := range m.factors {
		if Depends(f, varName) {
			deps = append(deps, f)
		} else {
			consts = append(consts, f)
		}
	}
	if len(consts) > 0 {
		inner, ok := integrate(MulOf(deps...), varName, allowExpand)
		if !ok {
			return nil, false
		}
		return MulOf(append(consts, inner)...), true
	}
	if len(deps) == 2 {
		if r, ok := integrateByParts(deps[0], deps[1], varName); ok {
			return r, true
		}
		if r, ok := integrateByParts(deps[1], deps[0], varName); ok {
			return r, true
		}
	}
	return nil, false
}

// integrateByParts handles x^n * g where g is exp, sin or cos of a linear
// argument: ∫x^n g = x^n G - n ∫x^(n-1) G.
func integrateByParts(poly, g Expr, varName string) (Expr, bool) {
	n := polyPower(poly, varName)
	if n < 1 || n > maxPartsDegree {
		return nil, false
	}
	f, ok := g.(*Func)
	if !ok || (f.name != "exp" && f.name != "sin" && f.name != "cos") {
		return nil, false
	}
	G, ok := integrateFunc(f, varName)
	if !ok {
		return nil, false
	}
	rest, ok := integrate(MulOf(N(n), PowOf(S(varName), N(n-1)), G), varName, false)
	if !ok {
		return nil, false
	}
	return AddOf(MulOf(poly, G), Neg(rest)), true
}

// polyPower returns n when e is varName^n for a positive integer n, else 0.
func polyPower(e Expr, varName string) int64 {
	switch v := e.(type) {
	case *Sym:
		if v.name == varName {
			return 1
		}
	case *Pow:
		if s, ok := v.base.(*Sym); ok && s.name == varName {
			if n, ok := v.exp.(*Num); ok {
				if i, ok := n.Int64(); ok && i > 0 {
					return i
				}
			}
		}
	}
	return 0
}

// linear reports whether e is a*var + b with a, b free of var and a != 0.
func linear(e Expr, varName string) (a Expr, ok bool) {
	d := Diff(e, varName)
	if Depends(d, varName) {
		return nil, false
	}
	if n, isNum := d.(*Num); isNum && n.IsZero() {
		return nil, false
	}
	return d, true
}

func overSlope(e, a Expr) Expr { return MulOf(e, PowOf(a, N(-1))) }

func integratePow(p *Pow, varName string) (Expr, bool) {
	if !Depends(p.exp, varName) {
		// (a x + b)^n
		if a, ok := linear(p.base, varName); ok {
			if n, isNum := p.exp.(*Num); isNum && n.IsNegOne() {
				return overSlope(LogOf(p.base), a), true
			}
			np1 := AddOf(p.exp, N(1))
			return overSlope(MulOf(PowOf(p.base, np1), PowOf(np1, N(-1))), a), true
		}
		// sec^2(u), csc^2(u)
		if f, ok := p.base.(*Func); ok {
			if n, isNum := p.exp.(*Num); isNum && n.Equal(N(2)) {
				if a, ok := linear(f.arg, varName); ok {
					switch f.name {
					case "sec":
						return overSlope(TanOf(f.arg), a), true
					case "csc":
						return overSlope(Neg(FuncOf("cot", f.arg)), a), true
					}
				}
			}
		}
		return nil, false
	}
	// c^(a x + b)
	if !Depends(p.base, varName) {
		if a, ok := linear(p.exp, varName); ok {
			return MulOf(p, PowOf(MulOf(a, LogOf(p.base)), N(-1))), true
		}
	}
	return nil, false
}

func integrateFunc(f *Func, varName string) (Expr, bool) {
	a, ok := linear(f.arg, varName)
	if !ok {
		return nil, false
	}
	u := f.arg
	var r Expr
	switch f.name {
	case "sin":
		r = Neg(CosOf(u))
	case "cos":
		r = SinOf(u)
	case "tan":
		r = Neg(LogOf(CosOf(u)))
	case "exp":
		r = ExpOf(u)
	case "sinh":
		r = CoshOf(u)
	case "cosh":
		r = SinhOf(u)
	case "log":
		r = AddOf(MulOf(u, LogOf(u)), Neg(u))
	case "asin":
		r = AddOf(MulOf(u, FuncOf("asin", u)), SqrtOf(AddOf(N(1), Neg(PowOf(u, N(2))))))
	case "atan":
		r = AddOf(MulOf(u, FuncOf("atan", u)), MulOf(F(-1, 2), LogOf(AddOf(PowOf(u, N(2)), N(1)))))
	default:
		return nil, false
	}
	return overSlope(r, a), true
}

// DefiniteIntegrate approximates the integral over [a, b] with 10-point
// Gauss-Legendre quadrature. It fails when the integrand cannot be
// evaluated at a node.
func DefiniteIntegrate(expr Expr, varName string, a, b float64) (float64, bool) {
	nodes := []float64{
		-0.9739065285, -0.8650633667, -0.6794095683,
		-0.4333953941, -0.1488743390, 0.1488743390,
		0.4333953941, 0.6794095683, 0.8650633667, 0.9739065285,
	}
	weights := []float64{
		0.0666713443, 0.1494513492, 0.2190863625,
		0.2692667193, 0.2955242247, 0.2955242247,
		0.2692667193, 0.2190863625, 0.1494513492, 0.0666713443,
	}
	sum := 0.0
	mid := (a + b) / 2
	half := (b - a) / 2
	for i, t := range nodes {
		xi := mid + half*t
		f, ok := Float(expr.Sub(varName, NFloat(xi)))
		if !ok {
			return 0, false
		}
		sum += weights[i] * f
	}
	return half * sum, true
}
