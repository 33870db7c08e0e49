package steps

import "github.com/njchilds90/calcsteps/symbolic"

// Classification is the outcome of classifying one node. Function is set
// only for NamedFunction.
type Classification struct {
	Category Category
	Function string
}

// NodeClassifier assigns a Category to one node. Classifier is the
// built-in implementation.
type NodeClassifier interface {
	Classify(e symbolic.Expr, variable string) Classification
}

// Classifier maps a node to exactly one Category. The checks run in a
// fixed priority order and the first match wins.
type Classifier struct {
	// ChainDetection routes powers of compound bases and functions of
	// compound arguments to Chain.
	ChainDetection bool
}

// Classify never fails; shapes no rule recognizes are Unknown.
func (c Classifier) Classify(e symbolic.Expr, variable string) Classification {
	switch v := e.(type) {
	case *symbolic.Add:
		for _, t := range v.Terms() {
			if symbolic.IsNegated(t) {
				return Classification{Category: Difference}
			}
		}
		return Classification{Category: Sum}

	case *symbolic.Mul:
		fs := v.Factors()
		for _, f := range fs {
			if negativePower(f) {
				return Classification{Category: Quotient}
			}
		}
		if len(fs) > 1 {
			return Classification{Category: Product}
		}

	case *symbolic.Pow:
		if negativePower(v) {
			return Classification{Category: Quotient}
		}
		if !symbolic.IsAtomic(v.Base()) && c.ChainDetection {
			return Classification{Category: Chain}
		}
		return Classification{Category: Power}

	case *symbolic.Func:
		if _, nested := v.Arg().(*symbolic.Func); nested {
			return Classification{Category: Chain}
		}
		if !symbolic.IsAtomic(v.Arg()) && c.ChainDetection {
			return Classification{Category: Chain}
		}
		return Classification{Category: NamedFunction, Function: v.Name()}

	case *symbolic.Num:
		return Classification{Category: Constant}

	case *symbolic.Sym:
		if v.Name() == variable {
			return Classification{Category: IdentityVariable}
		}
		return Classification{Category: Constant}
	}
	return Classification{Category: Unknown}
}

// negativePower reports whether e is a Pow with a negative numeric exponent.
func negativePower(e symbolic.Expr) bool {
	p, ok := e.(*symbolic.Pow)
	if !ok {
		return false
	}
	n, ok := p.Exponent().(*symbolic.Num)
	return ok && n.IsNegative()
}
