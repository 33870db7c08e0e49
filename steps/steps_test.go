package steps_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/njchilds90/calcsteps/latex"
	"github.com/njchilds90/calcsteps/steps"
	"github.com/njchilds90/calcsteps/symbolic"
)

var x = symbolic.S("x")

func mustParse(t *testing.T, src string) symbolic.Expr {
	t.Helper()
	e, err := latex.Parse(src)
	require.NoError(t, err, src)
	return e.Simplify()
}

// opaque is an expression shape the classifier has no rule for.
type opaque struct{}

func (opaque) Kind() symbolic.Kind                       { return symbolic.Kind(99) }
func (o opaque) Simplify() symbolic.Expr                 { return o }
func (opaque) String() string                            { return "opaque" }
func (opaque) LaTeX() string                             { return `\mathcal{O}` }
func (o opaque) Sub(string, symbolic.Expr) symbolic.Expr { return o }
func (opaque) Diff(string) symbolic.Expr                 { return symbolic.N(0) }
func (opaque) Eval() (*symbolic.Num, bool)               { return nil, false }
func (opaque) Equal(other symbolic.Expr) bool            { _, ok := other.(opaque); return ok }

// ============================================================
// Classifier
// ============================================================

func TestClassify(t *testing.T) {
	c := steps.Classifier{ChainDetection: true}
	cases := []struct {
		in   string
		want steps.Category
	}{
		{"x^2", steps.Power},
		{`\sin(x^2)`, steps.Chain},
		{`x \sin(x)`, steps.Product},
		{"x^{-1}", steps.Quotient},
		{`\frac{x}{x+1}`, steps.Quotient},
		{`\frac{x \sin(x) e^{x}}{x+1}`, steps.Quotient},
		{"5", steps.Constant},
		{"y", steps.Constant},
		{"x", steps.IdentityVariable},
		{"x + 1", steps.Sum},
		{"x - 1", steps.Difference},
		{"-x^2 + 3", steps.Difference},
		{`\sin(x)`, steps.NamedFunction},
		{"(x+1)^2", steps.Chain},
		{`\sin(\cos(x))`, steps.Chain},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e := mustParse(t, tc.in)
			got := c.Classify(e, "x")
			assert.Equal(t, tc.want, got.Category, "got %s", got.Category)
			assert.Equal(t, got, c.Classify(e, "x"), "classification must be repeatable")
		})
	}
}

func TestClassify_NamedFunctionCarriesName(t *testing.T) {
	got := steps.Classifier{ChainDetection: true}.Classify(mustParse(t, `\arctan x`), "x")
	assert.Equal(t, steps.NamedFunction, got.Category)
	assert.Equal(t, "atan", got.Function)
}

func TestClassify_ChainDetectionOff(t *testing.T) {
	c := steps.Classifier{}
	assert.Equal(t, steps.Power, c.Classify(mustParse(t, "(x+1)^2"), "x").Category)
	assert.Equal(t, steps.NamedFunction, c.Classify(mustParse(t, `\sin(x^2)`), "x").Category)
	// a function of a function is always a chain
	assert.Equal(t, steps.Chain, c.Classify(mustParse(t, `\sin(\cos(x))`), "x").Category)
}

func TestClassify_Unknown(t *testing.T) {
	got := steps.Classifier{ChainDetection: true}.Classify(opaque{}, "x")
	assert.Equal(t, steps.Unknown, got.Category)
	assert.Equal(t, "unknown", got.Category.String())
	assert.True(t, got.Category.Terminal())
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "identity-variable", steps.IdentityVariable.String())
	assert.Equal(t, "named-function", steps.NamedFunction.String())
	assert.Equal(t, "difference", steps.Difference.String())
}

// ============================================================
// Extractor
// ============================================================

func TestExtract(t *testing.T) {
	cases := []struct {
		in   string
		cat  steps.Category
		u, v string
	}{
		{`x \sin(x)`, steps.Product, "x", `\sin{\left(x\right)}`},
		{"x^{-1}", steps.Quotient, "1", "x"},
		{"x^{-2}", steps.Quotient, "1", "x^{2}"},
		{`\frac{x}{x+1}`, steps.Quotient, "x", "x + 1"},
		{`\frac{3x}{y^2}`, steps.Quotient, "3 x", "y^{2}"},
		{"x^2 + x + 1", steps.Sum, "x^{2}", "x + 1"},
		{"x^2 - x", steps.Difference, "x^{2}", "- x"},
		{`\sin(x^2)`, steps.Chain, `\sin{\left(x^{2}\right)}`, "x^{2}"},
		{"(x+1)^3", steps.Chain, `\left(x + 1\right)^{3}`, "x + 1"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			ops, ok := steps.Extract(mustParse(t, tc.in), tc.cat)
			require.True(t, ok)
			assert.Equal(t, tc.u, symbolic.LaTeX(ops.U))
			assert.Equal(t, tc.v, symbolic.LaTeX(ops.V))
		})
	}
}

func TestExtract_NoOperands(t *testing.T) {
	for _, tc := range []struct {
		e   symbolic.Expr
		cat steps.Category
	}{
		{symbolic.N(5), steps.Constant},
		{x, steps.Product},
		{x, steps.Quotient},
		{symbolic.SinOf(x), steps.Sum},
		{opaque{}, steps.Chain},
	} {
		ops, ok := steps.Extract(tc.e, tc.cat)
		assert.False(t, ok)
		assert.Nil(t, ops.U)
		assert.Nil(t, ops.V)
	}
}

func TestExtract_QuotientFallsBackToChildren(t *testing.T) {
	// x^2 has no negative exponent but exposes exactly two children.
	ops, ok := steps.Extract(mustParse(t, "x^2"), steps.Quotient)
	require.True(t, ok)
	assert.Equal(t, "x", symbolic.LaTeX(ops.U))
	assert.Equal(t, "2", symbolic.LaTeX(ops.V))
}

// ============================================================
// Rules
// ============================================================

func TestLookupRule(t *testing.T) {
	for _, name := range []string{
		"sin", "cos", "tan", "csc", "sec", "cot",
		"asin", "acos", "atan", "acsc", "asec", "acot",
		"exp", "log", "sqrt", "sinh", "cosh", "tanh",
	} {
		r, ok := steps.LookupRule(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, r.Name)
		assert.NotEmpty(t, r.Prose, name)
		assert.NotContains(t, r.Derivative("x"), "{u}", name)
	}

	r, _ := steps.LookupRule("cos")
	assert.Equal(t, `-\sin\left(x^{2}\right)`, r.Derivative("x^{2}"))
	assert.Equal(t, steps.FamilyTrig, r.Family)

	r, _ = steps.LookupRule("exp")
	assert.Equal(t, `e^{2 x}`, r.Derivative("2 x"))
}

func TestLookupRule_MissIsGeneric(t *testing.T) {
	r, ok := steps.LookupRule("f")
	assert.False(t, ok)
	assert.Equal(t, steps.FamilyGeneric, r.Family)
	assert.Equal(t, `\operatorname{f}'\left(x\right)`, r.Derivative("x"))
}

// ============================================================
// Generator
// ============================================================

func TestGenerate_Scenarios(t *testing.T) {
	g := steps.NewGenerator()
	cases := []struct {
		in    string
		final string
	}{
		{"x^2", "2 x"},
		{`\sin(x^2)`, `2 x \cos{\left(x^{2}\right)}`},
		{`x \cdot \sin(x)`, `x \cos{\left(x\right)} + \sin{\left(x\right)}`},
		{"x^{-1}", `- \frac{1}{x^{2}}`},
		{"5", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := g.Generate(mustParse(t, tc.in), x)
			require.NotEmpty(t, got)
			assert.Equal(t, tc.final, got[len(got)-1].Math)
		})
	}
}

func TestGenerate_ChainNarratesOuterAndInner(t *testing.T) {
	got := steps.NewGenerator().Generate(mustParse(t, `\sin(x^2)`), x)

	var all strings.Builder
	for _, s := range got {
		all.WriteString(s.Math)
		all.WriteString("\n")
	}
	assert.Contains(t, all.String(), `\cos\left(x^{2}\right)`)
	assert.Contains(t, all.String(), `\frac{d}{dx}\left[x^{2}\right] = 2 x`)
}

func TestGenerate_ConstantIsSingleStep(t *testing.T) {
	for _, depth := range []int{0, 1, 2, 5} {
		got := steps.NewGenerator(steps.WithMaxDepth(depth)).Generate(symbolic.N(5), x)
		require.Len(t, got, 1)
		assert.Equal(t, "0", got[0].Math)
		assert.Equal(t, 1, got[0].Number)
	}
}

func TestGenerate_IdentityIsSingleStep(t *testing.T) {
	got := steps.NewGenerator().Generate(x, x)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].Math)
}

func TestGenerate_UnknownIsSingleStep(t *testing.T) {
	got := steps.NewGenerator().Generate(opaque{}, x)
	require.Len(t, got, 1)
	assert.Equal(t, "Taking the derivative directly:", got[0].Text)
	assert.Equal(t, "0", got[0].Math)
}

func TestGenerate_ZeroDepthIsDirect(t *testing.T) {
	g := steps.NewGenerator(steps.WithMaxDepth(0))
	for _, in := range []string{"x^2", `\sin(x^2)`, `x \sin(x)`, `\frac{1}{x}`, "x^2 - 3x + 1"} {
		e := mustParse(t, in)
		got := g.Generate(e, x)
		require.Len(t, got, 1, in)
		assert.True(t, strings.HasPrefix(got[0].Text, "Computing the derivative"), in)
		assert.Equal(t, symbolic.LaTeX(symbolic.Diff(e, "x")), got[0].Math, in)
	}
}

func TestGenerate_FinalStepIsExactDerivative(t *testing.T) {
	inputs := []string{
		"x^2", "x^3 - 2x + 7", `\frac{x}{x+1}`, `\frac{x \sin(x) e^{x}}{x+1}`,
		`\sin(\cos(x))`, `\sqrt{x^2 + 1}`, `\ln(x^2)`, `e^{3x}`, `\arcsin(2x)`,
		`\tan x`, `\sec x`, `\sinh(x^2)`, "(x+1)^5", "x^x", "2^x", "y x^2",
		`\frac{1}{x^2}`, "-x^2 + 3", `x^2 - x - 1`, `\operatorname{f}(x)`,
	}
	for depth := 0; depth <= 3; depth++ {
		g := steps.NewGenerator(steps.WithMaxDepth(depth))
		for _, in := range inputs {
			e := mustParse(t, in)
			got := g.Generate(e, x)
			require.NotEmpty(t, got, in)
			assert.Equal(t, symbolic.LaTeX(symbolic.Diff(e, "x")), got[len(got)-1].Math,
				"%s at depth %d", in, depth)
			assertNumbered(t, got)
		}
	}
}

func assertNumbered(t *testing.T, list []steps.Step) {
	t.Helper()
	for i, s := range list {
		assert.Equal(t, i+1, s.Number)
		assertNumbered(t, s.Substeps)
	}
}

func TestGenerate_ProductRecursesAtDepthTwo(t *testing.T) {
	got := steps.NewGenerator().Generate(mustParse(t, `x \sin(x)`), x)
	require.Len(t, got, 8)
	assert.Equal(t, "The derivative of the first factor is:", got[3].Text)
	require.NotEmpty(t, got[3].Substeps)
	assert.Equal(t, 1, got[3].Substeps[0].Number)
	assert.Equal(t, "The derivative of the second factor is:", got[5].Text)
	require.NotEmpty(t, got[5].Substeps)
	assert.Equal(t, "The final derivative is:", got[7].Text)
}

func TestGenerate_QuotientAtDepthOne(t *testing.T) {
	got := steps.NewGenerator(steps.WithMaxDepth(1)).Generate(mustParse(t, "x^{-1}"), x)
	want := []steps.Step{
		{Number: 1, Text: `To find the derivative of $\frac{1}{x}$, we need to identify what rule to use.`,
			Math: `\frac{d}{dx}\left[\frac{1}{x}\right]`},
		{Number: 2, Text: `This is a quotient of the form $\frac{f(x)}{g(x)}$, so we'll use the quotient rule: ` +
			`$\frac{d}{dx}[\frac{f(x)}{g(x)}] = \frac{g(x) \cdot f'(x) - f(x) \cdot g'(x)}{g(x)^{2}}$`,
			Math: `\frac{d}{dx}\left[\frac{1}{x}\right] = \frac{x \cdot \frac{d}{dx}\left(1\right) - 1 \cdot \frac{d}{dx}\left(x\right)}{\left(x\right)^{2}}`},
		{Number: 3, Text: "The derivatives of the numerator and denominator are:",
			Math: `\frac{d}{dx}\left[1\right] = 0, \quad \frac{d}{dx}\left[x\right] = 1`},
		{Number: 4, Text: `Now substitute these derivatives into the quotient rule formula ` +
			`$\frac{g(x) \cdot f'(x) - f(x) \cdot g'(x)}{g(x)^{2}}$:`,
			Math: `\frac{d}{dx}\left[\frac{1}{x}\right] = \frac{x \cdot \left(0\right) - 1 \cdot \left(1\right)}{\left(x\right)^{2}}`},
		{Number: 5, Text: "The final derivative is:", Math: `- \frac{1}{x^{2}}`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("steps mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_GroupsSumOperands(t *testing.T) {
	g := steps.NewGenerator(steps.WithMaxDepth(1))

	product := g.Generate(mustParse(t, `(x+1) \sin(x)`), x)
	require.Len(t, product, 5)
	for _, s := range product[1:4] {
		assert.NotContains(t, s.Math, ` \cdot x + 1`)
		assert.NotContains(t, s.Math, `x + 1 \cdot`)
	}
	assert.Contains(t, product[1].Math, `\left(x + 1\right) \cdot \frac{d}{dx}`)
	assert.Contains(t, product[3].Math, `\left(x + 1\right) \cdot \left(`)

	quotient := g.Generate(mustParse(t, `\frac{x+1}{x-1}`), x)
	require.Len(t, quotient, 5)
	assert.Equal(t,
		`\frac{d}{dx}\left[\frac{x + 1}{x - 1}\right] = \frac{\left(x - 1\right) \cdot \frac{d}{dx}\left(x + 1\right) - `+
			`\left(x + 1\right) \cdot \frac{d}{dx}\left(x - 1\right)}{\left(x - 1\right)^{2}}`,
		quotient[1].Math)
	assert.Equal(t,
		`\frac{d}{dx}\left[\frac{x + 1}{x - 1}\right] = \frac{\left(x - 1\right) \cdot \left(1\right) - `+
			`\left(x + 1\right) \cdot \left(1\right)}{\left(x - 1\right)^{2}}`,
		quotient[3].Math)

	sum := g.Generate(mustParse(t, `x^2 + \cos(x)`), x)
	require.Len(t, sum, 5)
	assert.Contains(t, sum[3].Math, `\left(- \sin{\left(x\right)}\right)`)
	assert.NotContains(t, sum[3].Math, "+ - ")
}

// forced classifies every node as one category.
type forced steps.Category

func (f forced) Classify(symbolic.Expr, string) steps.Classification {
	return steps.Classification{Category: steps.Category(f)}
}

func TestGenerate_ExtractionFailureIsDirect(t *testing.T) {
	e := mustParse(t, "x^2")
	want := symbolic.LaTeX(symbolic.Diff(e, "x"))
	for _, cat := range []steps.Category{steps.Product, steps.Quotient, steps.Sum, steps.Chain} {
		t.Run(cat.String(), func(t *testing.T) {
			// a lone symbol has no operands for any binary or chain split
			got := steps.NewGenerator(steps.WithClassifier(forced(cat))).Generate(x, x)
			require.Len(t, got, 2)
			assert.Equal(t, "Taking the derivative directly:", got[1].Text)
			assert.Equal(t, "1", got[1].Math)
		})
	}

	got := steps.NewGenerator(steps.WithClassifier(forced(steps.Product))).Generate(e, x)
	require.Len(t, got, 2)
	assert.Equal(t, want, got[1].Math)
}

func TestGenerate_ChainDetectionReplacesClassifier(t *testing.T) {
	g := steps.NewGenerator(steps.WithClassifier(forced(steps.Unknown)), steps.WithChainDetection(true))
	got := g.Generate(mustParse(t, `\sin(x^2)`), x)
	assert.Greater(t, len(got), 1)
}

func TestGenerate_SymbolicExponent(t *testing.T) {
	e := symbolic.PowOf(x, symbolic.S("n"))
	got := steps.NewGenerator().Generate(e, x)
	require.Len(t, got, 3)
	assert.Contains(t, got[1].Math, "n - 1")
	assert.Equal(t, symbolic.LaTeX(symbolic.Diff(e, "x")), got[2].Math)
}

func TestGenerate_VariableExponent(t *testing.T) {
	got := steps.NewGenerator().Generate(mustParse(t, "x^x"), x)
	require.Len(t, got, 2)
	assert.Contains(t, got[1].Text, "power rule does not apply")

	got = steps.NewGenerator().Generate(mustParse(t, "2^x"), x)
	require.Len(t, got, 2)
	assert.Contains(t, got[1].Text, "exponential function")
}

func TestGenerate_DifferenceNarration(t *testing.T) {
	got := steps.NewGenerator(steps.WithMaxDepth(1)).Generate(mustParse(t, "x^2 - x"), x)
	require.Len(t, got, 5)
	assert.Contains(t, got[1].Text, "$difference$")
	assert.Equal(t, `\frac{d}{dx}\left[x^{2} - x\right] = \frac{d}{dx}\left[x^{2}\right] - \frac{d}{dx}\left[x\right]`, got[1].Math)
	assert.Equal(t, `\frac{d}{dx}\left[x^{2} - x\right] = 2 x - \left(1\right)`, got[3].Math)
}

func TestGenerate_OtherVariable(t *testing.T) {
	theta := symbolic.S("theta")
	got := steps.NewGenerator().Generate(symbolic.SinOf(theta), theta)
	assert.Contains(t, got[0].Math, `\frac{d}{d\theta}`)
	assert.Equal(t, `\cos{\left(\theta\right)}`, got[len(got)-1].Math)
}

func TestGenerate_LogsClassification(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g := steps.NewGenerator(steps.WithLogger(zap.New(core)))
	g.Generate(mustParse(t, `x \sin(x)`), x)
	assert.Positive(t, logs.FilterMessage("classified").Len())
	assert.Zero(t, logs.FilterMessage("depth limit reached").Len())

	steps.NewGenerator(steps.WithMaxDepth(0), steps.WithLogger(zap.New(core))).Generate(x, x)
	assert.Equal(t, 1, logs.FilterMessage("depth limit reached").Len())
}

type fixedDiff struct{ out symbolic.Expr }

func (f fixedDiff) Diff(symbolic.Expr, string) symbolic.Expr { return f.out }

func TestGenerate_UsesInjectedDifferentiator(t *testing.T) {
	g := steps.NewGenerator(steps.WithDifferentiator(fixedDiff{out: symbolic.S("D")}))
	got := g.Generate(mustParse(t, "x^2"), x)
	assert.Equal(t, "D", got[len(got)-1].Math)
}

func TestRenumber(t *testing.T) {
	in := []steps.Step{{Number: 4, Text: "a"}, {Number: 1, Text: "b", Substeps: []steps.Step{{Number: 1}}}}
	out := steps.Renumber(in)
	assert.Equal(t, 1, out[0].Number)
	assert.Equal(t, 2, out[1].Number)
	assert.Equal(t, 1, out[1].Substeps[0].Number)
	assert.Equal(t, 4, in[0].Number)
}
