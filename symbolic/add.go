package symbolic

import "strings"

// ============================================================
// Add - sum of terms
// ============================================================

type Add struct {
	terms     []Expr
	canonical bool
}

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Kind() Kind { return KindAdd }

// Simplify flattens nested sums, folds numbers and collects like terms by
// their non-coefficient part.
func (a *Add) Simplify() Expr {
	if a.canonical {
		return a
	}
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	numAccum := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, n)
			continue
		}
		c, rest := splitCoeff(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], c)
	}

	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		c := coeffs[key]
		switch {
		case c.IsZero():
		case c.IsOne():
			result = append(result, rests[key])
		default:
			result = append(result, MulOf(c, rests[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	sortTerms(result)
	return &Add{terms: result, canonical: true}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " + ")
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		s := t.LaTeX()
		if i == 0 {
			sb.WriteString(s)
			continue
		}
		switch {
		case strings.HasPrefix(s, "- "):
			sb.WriteString(" - " + s[2:])
		case strings.HasPrefix(s, "-"):
			sb.WriteString(" - " + s[1:])
		default:
			sb.WriteString(" + " + s)
		}
	}
	return sb.String()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

// Terms returns a copy of the addends in canonical order.
func (a *Add) Terms() []Expr { return append([]Expr(nil), a.terms...) }
