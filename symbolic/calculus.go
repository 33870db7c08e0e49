package symbolic

// ============================================================
// Differentiation and expansion
// ============================================================

// Diff is the exact derivative of expr with respect to varName, simplified.
func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func Diff2(expr Expr, varName string) Expr {
	return Diff(Diff(expr, varName), varName)
}

// DiffN differentiates n times; n <= 0 returns expr unchanged.
func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = Diff(result, varName)
	}
	return result
}

// Expand distributes products over sums and multiplies out small
// non-negative integer powers of sums.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

const maxExpandPower = 10

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			a, ok := f.(*Add)
			if !ok {
				continue
			}
			rest := make([]Expr, 0, len(expanded)-1)
			for j, ef := range expanded {
				if j != i {
					rest = append(rest, ef)
				}
			}
			terms := make([]Expr, len(a.terms))
			for k, t := range a.terms {
				terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
			}
			return AddOf(terms...)
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok {
			if exp, ok := n.Int64(); ok && exp >= 0 && exp <= maxExpandPower {
				if _, isSum := base.(*Add); isSum {
					result := Expr(N(1))
					for i := int64(0); i < exp; i++ {
						result = distribute(result, base)
					}
					return result
				}
			}
		}
		return PowOf(base, expandExpr(v.exp))
	case *Func:
		return FuncOf(v.name, expandExpr(v.arg))
	}
	return e
}

// distribute multiplies two already expanded expressions term by term.
// Building the product through MulOf would merge equal sums back into a
// power.
func distribute(a, b Expr) Expr {
	as, bs := addends(a), addends(b)
	terms := make([]Expr, 0, len(as)*len(bs))
	for _, ta := range as {
		for _, tb := range bs {
			terms = append(terms, expandExpr(MulOf(ta, tb)))
		}
	}
	return AddOf(terms...)
}

func addends(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}
