package steps

import (
	"github.com/njchilds90/calcsteps/symbolic"
)

// Renderer turns an expression into LaTeX.
type Renderer interface {
	LaTeX(e symbolic.Expr) string
}

// Differentiator computes the authoritative derivative that every
// narration ends with.
type Differentiator interface {
	Diff(e symbolic.Expr, variable string) symbolic.Expr
}

// Kernel is the Renderer and Differentiator backed by package symbolic.
type Kernel struct{}

func (Kernel) LaTeX(e symbolic.Expr) string { return symbolic.LaTeX(e) }

func (Kernel) Diff(e symbolic.Expr, variable string) symbolic.Expr {
	return symbolic.Diff(e, variable)
}

// ============================================================
// LaTeX fragments
// ============================================================

func ddx(variable string) string { return `\frac{d}{d` + variable + `}` }

func paren(s string) string { return `\left(` + s + `\right)` }

func bracket(s string) string { return `\left[` + s + `\right]` }

// group wraps s in parentheses when e would not survive juxtaposition
// after an operator.
func group(s string, e symbolic.Expr) string {
	if _, ok := e.(*symbolic.Add); ok || symbolic.IsNegated(e) {
		return paren(s)
	}
	return s
}

// ============================================================
// Binary rule narration
// ============================================================

// binaryText holds the wording of the sum, difference, product and
// quotient narrations. The math builders take the ddx prefix and the
// operands; gu and gv are the operands grouped for use next to an
// operator.
type binaryText struct {
	intro       string
	formula     func(d string, o operands) string
	first       string
	firstDone   string
	second      string
	secondDone  string
	both        string
	substitute  string
	substituted func(d string, o operands, du, dv string) string
}

// operands are the rendered u and v of a binary rule.
type operands struct {
	u, v   string
	gu, gv string
}

var binaryTexts = map[Category]binaryText{
	Quotient: {
		intro: `This is a quotient of the form $\frac{f(x)}{g(x)}$, so we'll use the quotient rule: ` +
			`$\frac{d}{dx}[\frac{f(x)}{g(x)}] = \frac{g(x) \cdot f'(x) - f(x) \cdot g'(x)}{g(x)^{2}}$`,
		formula: func(d string, o operands) string {
			return d + bracket(`\frac{`+o.u+`}{`+o.v+`}`) + ` = \frac{` + o.gv + ` \cdot ` + d + paren(o.u) +
				` - ` + o.gu + ` \cdot ` + d + paren(o.v) + `}{` + paren(o.v) + `^{2}}`
		},
		first:      "Let's find the derivative of the numerator:",
		firstDone:  "The derivative of the numerator is:",
		second:     "Now let's find the derivative of the denominator:",
		secondDone: "The derivative of the denominator is:",
		both:       "The derivatives of the numerator and denominator are:",
		substitute: `Now substitute these derivatives into the quotient rule formula ` +
			`$\frac{g(x) \cdot f'(x) - f(x) \cdot g'(x)}{g(x)^{2}}$:`,
		substituted: func(d string, o operands, du, dv string) string {
			return d + bracket(`\frac{`+o.u+`}{`+o.v+`}`) + ` = \frac{` + o.gv + ` \cdot ` + paren(du) +
				` - ` + o.gu + ` \cdot ` + paren(dv) + `}{` + paren(o.v) + `^{2}}`
		},
	},
	Product: {
		intro: `This is a product of the form $f(x) \cdot g(x)$, so we'll use the product rule: ` +
			`$\frac{d}{dx}[f(x) \cdot g(x)] = f(x) \cdot g'(x) + g(x) \cdot f'(x)$`,
		formula: func(d string, o operands) string {
			return d + bracket(o.gu+` \cdot `+o.gv) + ` = ` + o.gu + ` \cdot ` + d + bracket(o.v) +
				` + ` + o.gv + ` \cdot ` + d + bracket(o.u)
		},
		first:      "Let's find the derivative of the first factor:",
		firstDone:  "The derivative of the first factor is:",
		second:     "Now let's find the derivative of the second factor:",
		secondDone: "The derivative of the second factor is:",
		both:       "The derivatives of the factors are:",
		substitute: "Now substitute these derivatives into the product rule formula:",
		substituted: func(d string, o operands, du, dv string) string {
			return d + bracket(o.gu+` \cdot `+o.gv) + ` = ` + o.gu + ` \cdot ` + paren(dv) +
				` + ` + o.gv + ` \cdot ` + paren(du)
		},
	},
	Sum: {
		intro: `This is a $sum$ of the form $f(x) + g(x)$, so we'll use the $sum$ rule: ` +
			`$\frac{d}{dx}[f(x) + g(x)] = f'(x) + g'(x)$`,
		formula: func(d string, o operands) string {
			return d + bracket(o.u+` + `+o.v) + ` = ` + d + bracket(o.u) + ` + ` + d + bracket(o.v)
		},
		first:      "Let's differentiate the first part:",
		firstDone:  "The derivative of the first part is:",
		second:     "Now differentiate the second part:",
		secondDone: "The derivative of the second part is:",
		both:       "The derivatives of the parts are:",
		substitute: "Now substitute these into the rule:",
		substituted: func(d string, o operands, du, dv string) string {
			return d + bracket(o.u+` + `+o.v) + ` = ` + du + ` + ` + dv
		},
	},
	Difference: {
		intro: `This is a $difference$ of the form $f(x) - g(x)$, so we'll use the $difference$ rule: ` +
			`$\frac{d}{dx}[f(x) - g(x)] = f'(x) - g'(x)$`,
		formula: func(d string, o operands) string {
			return d + bracket(o.u+` - `+o.gv) + ` = ` + d + bracket(o.u) + ` - ` + d + bracket(o.gv)
		},
		first:      "Let's differentiate the first part:",
		firstDone:  "The derivative of the first part is:",
		second:     "Now differentiate the second part:",
		secondDone: "The derivative of the second part is:",
		both:       "The derivatives of the parts are:",
		substitute: "Now substitute these into the rule:",
		substituted: func(d string, o operands, du, dv string) string {
			return d + bracket(o.u+` - `+o.gv) + ` = ` + du + ` - ` + dv
		},
	},
}

// ============================================================
// Function narration
// ============================================================

var familyIntro = map[Family]string{
	FamilyTrig:        "This is a trigonometric function $%s$. Its derivative follows the standard rule $%s$:",
	FamilyInverseTrig: "This is an inverse trigonometric function $%s$. We'll differentiate using its standard rule $%s$:",
	FamilyLogarithm:   "This is a natural logarithm function $%s$. We'll use the rule $%s$:",
	FamilyExponential: "This is an exponential function $%s$. We'll use the rule $%s$:",
	FamilyRoot:        "This is a root function $%s$. We'll use the rule $%s$:",
	FamilyHyperbolic:  "This is a hyperbolic function $%s$. Its derivative follows the standard rule $%s$:",
	FamilyGeneric:     "This is the function $%s$, with derivative written $%s$:",
}

var familyFinal = map[Family]string{
	FamilyTrig:        "Applying the chain rule, the final derivative is:",
	FamilyInverseTrig: "Using the chain rule, the final derivative is:",
	FamilyLogarithm:   "Thus, the final derivative is:",
}

func finalText(f Family) string {
	if s, ok := familyFinal[f]; ok {
		return s
	}
	return "The final derivative is:"
}
