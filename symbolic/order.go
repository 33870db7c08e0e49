package symbolic

import "sort"

// ============================================================
// Canonical ordering
// ============================================================

// Terms of a sum are ordered by descending polynomial degree, then by their
// plain-text form; numbers always come last. Factors of a product are ordered
// numeric-base powers first, then symbols and their powers, then compound
// factors. Both orders are total, so simplification is deterministic.

func degree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		if v.IsConstant() {
			return 0
		}
		return 1
	case *Pow:
		if s, ok := v.base.(*Sym); ok && !s.IsConstant() {
			if n, ok := v.exp.(*Num); ok {
				return n.Float64()
			}
		}
	case *Mul:
		d := 0.0
		for _, f := range v.factors {
			d += degree(f)
		}
		return d
	}
	return 0
}

func sortTerms(terms []Expr) {
	type keyed struct {
		e     Expr
		isNum bool
		deg   float64
		key   string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		_, isNum := t.(*Num)
		ks[i] = keyed{e: t, isNum: isNum, deg: degree(t), key: termKey(t)}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.isNum != b.isNum {
			return b.isNum
		}
		if a.deg != b.deg {
			return a.deg > b.deg
		}
		return a.key < b.key
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

// termKey orders terms by their non-coefficient part so that 3*x and x sort
// together.
func termKey(e Expr) string {
	_, rest := splitCoeff(e)
	return rest.String()
}

func factorRank(e Expr) int {
	base, _ := splitPow(e)
	switch b := base.(type) {
	case *Num:
		return 0
	case *Sym:
		if b.IsConstant() {
			return 2
		}
		return 1
	}
	return 2
}

func sortFactors(factors []Expr) {
	type keyed struct {
		e    Expr
		rank int
		key  string
	}
	ks := make([]keyed, len(factors))
	for i, f := range factors {
		base, exp := splitPow(f)
		ks[i] = keyed{e: f, rank: factorRank(f), key: base.String() + "^" + exp.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].rank != ks[j].rank {
			return ks[i].rank < ks[j].rank
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		factors[i] = ks[i].e
	}
}

// splitCoeff separates the numeric coefficient of a term from the rest.
func splitCoeff(e Expr) (*Num, Expr) {
	switch v := e.(type) {
	case *Num:
		return v, N(1)
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			rest := v.factors[1:]
			if len(rest) == 1 {
				return c, rest[0]
			}
			return c, &Mul{factors: append([]Expr(nil), rest...), canonical: true}
		}
	}
	return N(1), e
}

// splitPow views any factor as base^exp.
func splitPow(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}
