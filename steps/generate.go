// Package steps narrates symbolic differentiation as an ordered list of
// human-readable, LaTeX-annotated steps.
//
// A Generator classifies each node, picks the matching rule, recurses into
// the operands until a depth budget runs out, and always closes with the
// exact derivative reported by its Differentiator. The narration in
// between may be approximate; the last step never is.
package steps

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/njchilds90/calcsteps/symbolic"
)

// DefaultMaxDepth is the recursion budget used when none is configured.
const DefaultMaxDepth = 2

// DerivationContext travels by value down one generation call tree.
type DerivationContext struct {
	Variable     *symbolic.Sym
	CurrentDepth int
	MaxDepth     int
}

// Exhausted reports whether the node must be differentiated directly.
func (c DerivationContext) Exhausted() bool { return c.CurrentDepth >= c.MaxDepth }

// CanRecurse reports whether operands may get their own sub-derivation.
func (c DerivationContext) CanRecurse() bool { return c.CurrentDepth < c.MaxDepth-1 }

// Descend returns the context one level deeper.
func (c DerivationContext) Descend() DerivationContext {
	c.CurrentDepth++
	return c
}

// Generator produces step narrations. It holds no per-request state and
// is safe for concurrent use.
type Generator struct {
	maxDepth   int
	classifier NodeClassifier
	renderer   Renderer
	diff       Differentiator
	logger     *zap.Logger
}

type Option func(*Generator)

func WithMaxDepth(n int) Option {
	return func(g *Generator) {
		if n < 0 {
			n = 0
		}
		g.maxDepth = n
	}
}

// WithChainDetection installs the built-in Classifier with chain
// detection on or off, replacing any classifier set before it.
func WithChainDetection(on bool) Option {
	return func(g *Generator) { g.classifier = Classifier{ChainDetection: on} }
}

func WithClassifier(c NodeClassifier) Option {
	return func(g *Generator) {
		if c != nil {
			g.classifier = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.logger = l
		}
	}
}

func WithRenderer(r Renderer) Option {
	return func(g *Generator) { g.renderer = r }
}

func WithDifferentiator(d Differentiator) Option {
	return func(g *Generator) { g.diff = d }
}

// NewGenerator returns a Generator backed by Kernel with chain detection
// on and a depth budget of DefaultMaxDepth.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		maxDepth:   DefaultMaxDepth,
		classifier: Classifier{ChainDetection: true},
		renderer:   Kernel{},
		diff:       Kernel{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) MaxDepth() int { return g.maxDepth }

// Generate narrates d/dvariable of e from depth 0. The result is never
// empty and its last step's Math is the rendered exact derivative.
func (g *Generator) Generate(e symbolic.Expr, variable *symbolic.Sym) []Step {
	return g.GenerateContext(e, DerivationContext{Variable: variable, MaxDepth: g.maxDepth})
}

// GenerateContext narrates e starting from an explicit context.
func (g *Generator) GenerateContext(e symbolic.Expr, ctx DerivationContext) []Step {
	n := &narration{
		g:   g,
		ctx: ctx,
		w:   &stepWriter{},
		d:   ddx(ctx.Variable.LaTeX()),
		x:   ctx.Variable.LaTeX(),
	}
	n.run(e)
	return n.w.steps
}

// narration is the state of one generate call.
type narration struct {
	g   *Generator
	ctx DerivationContext
	w   *stepWriter
	d   string
	x   string
}

func (n *narration) tex(e symbolic.Expr) string { return n.g.renderer.LaTeX(e) }

func (n *narration) derivative(e symbolic.Expr) symbolic.Expr {
	return n.g.diff.Diff(e, n.ctx.Variable.Name())
}

// final emits the closing step: the exact derivative of e, rendered.
func (n *narration) final(text string, e symbolic.Expr) {
	n.w.add(text, n.tex(n.derivative(e)))
}

func (n *narration) run(e symbolic.Expr) {
	log := n.g.logger.With(zap.Int("depth", n.ctx.CurrentDepth))
	if n.ctx.Exhausted() {
		log.Debug("depth limit reached", zap.Stringer("expr", e))
		n.final("Computing the derivative of $"+n.tex(e)+"$ directly:", e)
		return
	}

	cls := n.g.classifier.Classify(e, n.ctx.Variable.Name())
	log.Debug("classified",
		zap.Stringer("expr", e),
		zap.Stringer("category", cls.Category),
		zap.String("function", cls.Function))

	switch cls.Category {
	case Constant:
		n.final("This is a constant with respect to $"+n.x+"$, so the derivative is $0$.", e)
		return
	case IdentityVariable:
		n.final("This is just $"+n.x+"$, so the derivative is $1$.", e)
		return
	case Unknown:
		n.final("Taking the derivative directly:", e)
		return
	}

	n.w.add("To find the derivative of $"+n.tex(e)+"$, we need to identify what rule to use.",
		n.d+bracket(n.tex(e)))

	switch cls.Category {
	case Sum, Difference, Product, Quotient:
		ops, ok := Extract(e, cls.Category)
		if !ok {
			log.Debug("operand extraction failed", zap.Stringer("category", cls.Category))
			n.final("Taking the derivative directly:", e)
			return
		}
		n.binary(e, cls.Category, ops)
	case Power:
		n.power(e)
	case Chain:
		n.chain(e)
	case NamedFunction:
		f, _ := e.(*symbolic.Func)
		rule, _ := LookupRule(cls.Function)
		n.function(e, rule, f.Arg(), false)
	}
}

// inner narrates the derivative of one operand, recursing when the budget
// allows, and returns it.
func (n *narration) inner(ask, done string, e symbolic.Expr) symbolic.Expr {
	de := n.derivative(e)
	stated := n.d + bracket(n.tex(e)) + " = " + n.tex(de)
	if n.ctx.CanRecurse() {
		n.w.add(ask, n.d+bracket(n.tex(e)))
		n.w.addWith(done, stated, n.g.GenerateContext(e, n.ctx.Descend()))
	} else {
		n.w.add(done, stated)
	}
	return de
}

func (n *narration) binary(e symbolic.Expr, cat Category, ops Operands) {
	u, v := ops.U, ops.V
	if cat == Difference {
		// u - w with w = -v; a lone negated first term reads as a sum.
		if symbolic.IsNegated(v) {
			v = symbolic.Neg(v)
		} else {
			cat = Sum
		}
	}
	text := binaryTexts[cat]

	o := operands{u: n.tex(u), v: n.tex(v)}
	o.gu, o.gv = group(o.u, u), group(o.v, v)
	n.w.add(text.intro, text.formula(n.d, o))

	var dU, dV symbolic.Expr
	if n.ctx.CanRecurse() {
		dU = n.inner(text.first, text.firstDone, u)
		dV = n.inner(text.second, text.secondDone, v)
	} else {
		dU, dV = n.derivative(u), n.derivative(v)
		n.w.add(text.both, n.d+bracket(o.u)+" = "+n.tex(dU)+`, \quad `+n.d+bracket(o.v)+" = "+n.tex(dV))
	}
	du, dv := n.tex(dU), n.tex(dV)
	switch cat {
	case Difference:
		dv = paren(dv)
	case Sum:
		dv = group(dv, dV)
	}
	n.w.add(text.substitute, text.substituted(n.d, o, du, dv))
	n.final("The final derivative is:", e)
}

func (n *narration) power(e symbolic.Expr) {
	p, ok := e.(*symbolic.Pow)
	if !ok {
		n.final("Taking the derivative directly:", e)
		return
	}
	x := n.ctx.Variable.Name()
	base, exp := p.Base(), p.Exponent()
	switch {
	case !symbolic.Depends(base, x) && !symbolic.Depends(exp, x):
		n.final("This is a constant with respect to $"+n.x+"$, so the derivative is $0$.", e)
	case symbolic.Depends(exp, x):
		n.generalPower(p)
	case base.Equal(n.ctx.Variable):
		nl := group(n.tex(exp), exp)
		n.w.add(
			"This is a power function of the form $"+n.tex(e)+`$, so we'll use the power rule `+
				`$\frac{d}{dx}[x^{n}] = n \cdot x^{(n-1)}$:`,
			n.d+bracket(n.tex(e))+" = "+nl+` \cdot `+n.tex(base)+"^{"+n.tex(symbolic.AddOf(exp, symbolic.N(-1)))+"}")
		n.final("The final derivative is:", e)
	default:
		n.final("For this power expression with a non-$"+n.x+
			"$ base, we need a combination of power rule and chain rule:", e)
	}
}

// generalPower covers exponents that depend on the variable, where the
// power rule does not apply.
func (n *narration) generalPower(p *symbolic.Pow) {
	if !symbolic.Depends(p.Base(), n.ctx.Variable.Name()) {
		n.final(`This is an exponential function of the form $a^{g(x)}$, so we'll use the rule `+
			`$\frac{d}{dx}[a^{g(x)}] = a^{g(x)} \ln(a) \cdot g'(x)$:`, p)
		return
	}
	n.final(`The exponent depends on $`+n.x+`$, so the power rule does not apply. `+
		`We combine it with the chain rule through $\frac{d}{dx}[f^{g}] = f^{g}\left(g' \ln f + \frac{g f'}{f}\right)$:`, p)
}

func (n *narration) chain(e symbolic.Expr) {
	ops, ok := Extract(e, Chain)
	if !ok {
		n.g.logger.Debug("operand extraction failed", zap.Stringer("category", Chain))
		n.final("Taking the derivative directly:", e)
		return
	}
	switch v := e.(type) {
	case *symbolic.Pow:
		exp := v.Exponent()
		if symbolic.Depends(exp, n.ctx.Variable.Name()) {
			n.generalPower(v)
			return
		}
		if exp.Equal(symbolic.F(1, 2)) {
			rule, _ := LookupRule("sqrt")
			n.function(e, rule, ops.V, true)
			return
		}
		n.chainPower(v)
	case *symbolic.Func:
		rule, _ := LookupRule(v.Name())
		n.function(e, rule, ops.V, true)
	}
}

func (n *narration) chainPower(p *symbolic.Pow) {
	base, exp := p.Base(), p.Exponent()
	bl := paren(n.tex(base))
	nl := group(n.tex(exp), exp)
	lowered := n.tex(symbolic.AddOf(exp, symbolic.N(-1)))

	n.w.add(
		"This is a composite function of the form $g(x)^{"+n.tex(exp)+`}$, so we'll use the chain rule with power rule `+
			`$\frac{d}{dx}[(f(x))^{n}] = n(f(x))^{n-1} \cdot f'(x)$:`,
		n.d+bracket(bl+"^{"+n.tex(exp)+"}")+" = "+nl+` \cdot `+bl+"^{"+lowered+`} \cdot `+n.d+bracket(n.tex(base)))

	db := n.tex(n.inner("Let's find the derivative of the inner function:", "The derivative of the inner function is:", base))

	n.w.add(
		`Now substitute this derivative into the chain rule with power rule formula `+
			`$n(f(x))^{n-1} \cdot f'(x)$:`,
		n.d+bracket(bl+"^{"+n.tex(exp)+"}")+" = "+nl+` \cdot `+bl+"^{"+lowered+`} \cdot `+paren(db))
	n.final("The final derivative is:", p)
}

// function narrates f(inner) through rule. chained selects the composite
// wording used when inner is itself compound.
func (n *narration) function(e symbolic.Expr, rule Rule, inner symbolic.Expr, chained bool) {
	il, ol := n.tex(inner), n.tex(e)
	outer := n.d + bracket(ol) + ` = f'` + paren(il) + ` \cdot ` + n.d + bracket(il)

	if chained {
		n.w.add(
			"This is a composite function of the form $"+rule.Apply("g(x)")+`$, so we'll use the chain rule `+
				`$\frac{d}{dx}[f(g(x))] = f'(g(x)) \cdot g'(x)$:`,
			outer)
		n.w.add(rule.Prose+":", "f'"+paren(il)+" = "+rule.Derivative(il))
		di := n.tex(n.inner("Let's find the derivative of the inner function:", "The derivative of the inner function is:", inner))
		n.w.add("Now substitute both into the chain rule:",
			n.d+bracket(ol)+" = "+rule.Derivative(il)+` \cdot `+paren(di))
		n.final("The final derivative by the chain rule is:", e)
		return
	}

	n.w.add(fmt.Sprintf(familyIntro[rule.Family], rule.Apply(n.x), rule.Statement(n.d, n.x)), outer)
	n.w.add(rule.Prose+".", n.d+bracket(ol)+" = "+rule.Derivative(il)+` \times `+n.d+bracket(il))
	n.inner("Now, find the derivative of the inside function:", "The derivative of the inside function is:", inner)
	n.final(finalText(rule.Family), e)
}
