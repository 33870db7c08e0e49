package steps

import "strings"

// Family groups the elementary functions whose derivatives are narrated
// the same way.
type Family string

const (
	FamilyTrig        Family = "trig"
	FamilyInverseTrig Family = "inverse-trig"
	FamilyExponential Family = "exponential"
	FamilyLogarithm   Family = "logarithm"
	FamilyRoot        Family = "root"
	FamilyHyperbolic  Family = "hyperbolic"
	FamilyGeneric     Family = "generic"
)

// Rule describes the elementary derivative of one named function.
// Templates are LaTeX with the placeholder {u} standing for the argument.
type Rule struct {
	Name   string
	Family Family
	// Display renders f(u).
	Display string
	// Outer renders f'(u).
	Outer string
	// Prose is the derivative stated in words, as f(u) and f'(u) in
	// inline math.
	Prose string
}

// Apply renders f(inner).
func (r Rule) Apply(inner string) string { return fill(r.Display, inner) }

// Derivative renders f'(inner).
func (r Rule) Derivative(inner string) string { return fill(r.Outer, inner) }

// Statement renders d/dvar [f(var)] = f'(var) with the given ddx prefix.
func (r Rule) Statement(ddx, variable string) string {
	return ddx + `\left[` + r.Apply(variable) + `\right] = ` + r.Derivative(variable)
}

func fill(tmpl, inner string) string { return strings.ReplaceAll(tmpl, "{u}", inner) }

var rules = map[string]Rule{
	"sin": {Family: FamilyTrig, Display: `\sin\left({u}\right)`, Outer: `\cos\left({u}\right)`,
		Prose: `The derivative of $\sin(u)$ is $\cos(u)$`},
	"cos": {Family: FamilyTrig, Display: `\cos\left({u}\right)`, Outer: `-\sin\left({u}\right)`,
		Prose: `The derivative of $\cos(u)$ is $-\sin(u)$`},
	"tan": {Family: FamilyTrig, Display: `\tan\left({u}\right)`, Outer: `\sec^{2}\left({u}\right)`,
		Prose: `The derivative of $\tan(u)$ is $\sec^{2}(u)$`},
	"csc": {Family: FamilyTrig, Display: `\csc\left({u}\right)`, Outer: `-\csc\left({u}\right) \cot\left({u}\right)`,
		Prose: `The derivative of $\csc(u)$ is $-\csc(u)\cot(u)$`},
	"sec": {Family: FamilyTrig, Display: `\sec\left({u}\right)`, Outer: `\sec\left({u}\right) \tan\left({u}\right)`,
		Prose: `The derivative of $\sec(u)$ is $\sec(u)\tan(u)$`},
	"cot": {Family: FamilyTrig, Display: `\cot\left({u}\right)`, Outer: `-\csc^{2}\left({u}\right)`,
		Prose: `The derivative of $\cot(u)$ is $-\csc^{2}(u)$`},

	"asin": {Family: FamilyInverseTrig, Display: `\operatorname{asin}\left({u}\right)`,
		Outer: `\frac{1}{\sqrt{1-\left({u}\right)^{2}}}`,
		Prose: `The derivative of $\operatorname{asin}(u)$ is $\frac{1}{\sqrt{1-u^{2}}}$`},
	"acos": {Family: FamilyInverseTrig, Display: `\operatorname{acos}\left({u}\right)`,
		Outer: `-\frac{1}{\sqrt{1-\left({u}\right)^{2}}}`,
		Prose: `The derivative of $\operatorname{acos}(u)$ is $-\frac{1}{\sqrt{1-u^{2}}}$`},
	"atan": {Family: FamilyInverseTrig, Display: `\operatorname{atan}\left({u}\right)`,
		Outer: `\frac{1}{1+\left({u}\right)^{2}}`,
		Prose: `The derivative of $\operatorname{atan}(u)$ is $\frac{1}{1+u^{2}}$`},
	"acsc": {Family: FamilyInverseTrig, Display: `\operatorname{acsc}\left({u}\right)`,
		Outer: `-\frac{1}{\left|{u}\right|\sqrt{\left({u}\right)^{2}-1}}`,
		Prose: `The derivative of $\operatorname{acsc}(u)$ is $-\frac{1}{|u|\sqrt{u^{2}-1}}$`},
	"asec": {Family: FamilyInverseTrig, Display: `\operatorname{asec}\left({u}\right)`,
		Outer: `\frac{1}{\left|{u}\right|\sqrt{\left({u}\right)^{2}-1}}`,
		Prose: `The derivative of $\operatorname{asec}(u)$ is $\frac{1}{|u|\sqrt{u^{2}-1}}$`},
	"acot": {Family: FamilyInverseTrig, Display: `\operatorname{acot}\left({u}\right)`,
		Outer: `-\frac{1}{1+\left({u}\right)^{2}}`,
		Prose: `The derivative of $\operatorname{acot}(u)$ is $-\frac{1}{1+u^{2}}$`},

	"exp": {Family: FamilyExponential, Display: `e^{{u}}`, Outer: `e^{{u}}`,
		Prose: `The derivative of $e^{u}$ is $e^{u}$`},
	"log": {Family: FamilyLogarithm, Display: `\ln\left({u}\right)`, Outer: `\frac{1}{{u}}`,
		Prose: `The derivative of $\ln(u)$ is $\frac{1}{u}$`},
	"sqrt": {Family: FamilyRoot, Display: `\sqrt{{u}}`, Outer: `\frac{1}{2\sqrt{{u}}}`,
		Prose: `The derivative of $\sqrt{u}$ is $\frac{1}{2\sqrt{u}}$`},

	"sinh": {Family: FamilyHyperbolic, Display: `\sinh\left({u}\right)`, Outer: `\cosh\left({u}\right)`,
		Prose: `The derivative of $\sinh(u)$ is $\cosh(u)$`},
	"cosh": {Family: FamilyHyperbolic, Display: `\cosh\left({u}\right)`, Outer: `\sinh\left({u}\right)`,
		Prose: `The derivative of $\cosh(u)$ is $\sinh(u)$`},
	"tanh": {Family: FamilyHyperbolic, Display: `\tanh\left({u}\right)`, Outer: `1-\tanh^{2}\left({u}\right)`,
		Prose: `The derivative of $\tanh(u)$ is $1-\tanh^{2}(u)$`},
}

// LookupRule returns the rule for name. A miss yields the generic
// "derivative of f is f'" rule and false, never an error.
func LookupRule(name string) (Rule, bool) {
	if r, ok := rules[name]; ok {
		r.Name = name
		return r, true
	}
	return genericRule(name), false
}

func genericRule(name string) Rule {
	f := `\operatorname{` + name + `}`
	return Rule{
		Name:    name,
		Family:  FamilyGeneric,
		Display: f + `\left({u}\right)`,
		Outer:   f + `'\left({u}\right)`,
		Prose:   `The derivative of $` + f + `(u)$ is $` + f + `'(u)$`,
	}
}
