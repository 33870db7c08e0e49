package symbolic_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/njchilds90/calcsteps/symbolic"
)

var x = symbolic.S("x")

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := symbolic.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := symbolic.F(2, 6)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_LaTeX_Rational(t *testing.T) {
	if got := symbolic.F(2, 5).LaTeX(); got != `\frac{2}{5}` {
		t.Errorf("want \\frac{2}{5}, got %s", got)
	}
	if got := symbolic.F(-1, 2).LaTeX(); got != `- \frac{1}{2}` {
		t.Errorf("want - \\frac{1}{2}, got %s", got)
	}
}

func TestParseNum_Decimal(t *testing.T) {
	n, err := symbolic.ParseNum("0.25")
	if err != nil {
		t.Fatal(err)
	}
	if n.String() != "1/4" {
		t.Errorf("want 1/4, got %s", n.String())
	}
	if _, err := symbolic.ParseNum("1.2.3"); err == nil {
		t.Error("expected error for malformed number")
	}
}

func TestNum_Diff_IsZero(t *testing.T) {
	result := symbolic.N(5).Diff("x")
	if symbolic.String(result) != "0" {
		t.Errorf("d/dx(5) should be 0, got %s", symbolic.String(result))
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Sub(t *testing.T) {
	if got := symbolic.String(x.Sub("x", symbolic.N(3))); got != "3" {
		t.Errorf("want 3, got %s", got)
	}
	if got := symbolic.String(x.Sub("y", symbolic.N(3))); got != "x" {
		t.Errorf("want x, got %s", got)
	}
}

func TestSym_LaTeX(t *testing.T) {
	cases := map[string]string{
		"x":     "x",
		"theta": `\theta`,
		"x_1":   "x_{1}",
		"pi":    `\pi`,
	}
	for name, want := range cases {
		if got := symbolic.S(name).LaTeX(); got != want {
			t.Errorf("%s: want %s, got %s", name, want, got)
		}
	}
}

func TestSym_Diff(t *testing.T) {
	if got := symbolic.String(x.Diff("x")); got != "1" {
		t.Errorf("d/dx(x) should be 1, got %s", got)
	}
	if got := symbolic.String(symbolic.S("y").Diff("x")); got != "0" {
		t.Errorf("d/dx(y) should be 0, got %s", got)
	}
}

// ============================================================
// Add / Mul tests
// ============================================================

func TestAdd_Simple(t *testing.T) {
	e := symbolic.AddOf(symbolic.N(2), x)
	if got := symbolic.String(e); got != "x + 2" {
		t.Errorf("want x + 2, got %s", got)
	}
}

func TestAdd_CollapseToZero(t *testing.T) {
	e := symbolic.AddOf(x, symbolic.Neg(x))
	if got := symbolic.String(e); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestAdd_LikeTerms(t *testing.T) {
	e := symbolic.AddOf(x, x, symbolic.MulOf(symbolic.N(3), x))
	if got := symbolic.String(e); got != "5*x" {
		t.Errorf("want 5*x, got %s", got)
	}
}

func TestAdd_DegreeOrder(t *testing.T) {
	e := symbolic.AddOf(symbolic.N(1), x, symbolic.PowOf(x, symbolic.N(3)))
	if got := symbolic.LaTeX(e); got != "x^{3} + x + 1" {
		t.Errorf("want x^{3} + x + 1, got %s", got)
	}
}

func TestAdd_LaTeX_Minus(t *testing.T) {
	e := symbolic.AddOf(x, symbolic.N(-1))
	if got := symbolic.LaTeX(e); got != "x - 1" {
		t.Errorf("want x - 1, got %s", got)
	}
}

func TestMul_ZeroCollapse(t *testing.T) {
	if got := symbolic.String(symbolic.MulOf(x, symbolic.N(0))); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestMul_OneElide(t *testing.T) {
	if got := symbolic.String(symbolic.MulOf(symbolic.N(1), x)); got != "x" {
		t.Errorf("want x, got %s", got)
	}
}

func TestMul_MergeBases(t *testing.T) {
	e := symbolic.MulOf(x, symbolic.PowOf(x, symbolic.N(2)))
	if got := symbolic.LaTeX(e); got != "x^{3}" {
		t.Errorf("want x^{3}, got %s", got)
	}
	if got := symbolic.String(symbolic.MulOf(x, symbolic.PowOf(x, symbolic.N(-1)))); got != "1" {
		t.Errorf("x * x^-1 should be 1, got %s", got)
	}
}

func TestMul_LaTeX(t *testing.T) {
	cases := []struct {
		name string
		e    symbolic.Expr
		want string
	}{
		{"coefficient", symbolic.MulOf(symbolic.N(2), x), "2 x"},
		{"half", symbolic.MulOf(symbolic.F(1, 2), x), `\frac{x}{2}`},
		{"negative reciprocal", symbolic.MulOf(symbolic.N(-1), symbolic.PowOf(x, symbolic.N(-2))), `- \frac{1}{x^{2}}`},
		{"quotient", symbolic.MulOf(symbolic.SinOf(x), symbolic.PowOf(x, symbolic.N(-1))), `\frac{\sin{\left(x\right)}}{x}`},
		{"negated function", symbolic.Neg(symbolic.CosOf(x)), `- \cos{\left(x\right)}`},
	}
	for _, c := range cases {
		if got := symbolic.LaTeX(c.e); got != c.want {
			t.Errorf("%s: want %s, got %s", c.name, c.want, got)
		}
	}
}

// ============================================================
// Pow / Func tests
// ============================================================

func TestPow_Simple(t *testing.T) {
	if got := symbolic.String(symbolic.PowOf(x, symbolic.N(0))); got != "1" {
		t.Errorf("x^0: want 1, got %s", got)
	}
	if got := symbolic.String(symbolic.PowOf(x, symbolic.N(1))); got != "x" {
		t.Errorf("x^1: want x, got %s", got)
	}
	if got := symbolic.String(symbolic.PowOf(symbolic.N(2), symbolic.N(10))); got != "1024" {
		t.Errorf("2^10: want 1024, got %s", got)
	}
}

func TestPow_ExactRoot(t *testing.T) {
	if got := symbolic.String(symbolic.SqrtOf(symbolic.N(9))); got != "3" {
		t.Errorf("sqrt(9): want 3, got %s", got)
	}
	if got := symbolic.LaTeX(symbolic.SqrtOf(symbolic.N(2))); got != `\sqrt{2}` {
		t.Errorf("sqrt(2): want \\sqrt{2}, got %s", got)
	}
}

func TestPow_LaTeX(t *testing.T) {
	cases := []struct {
		e    symbolic.Expr
		want string
	}{
		{symbolic.PowOf(x, symbolic.N(2)), "x^{2}"},
		{symbolic.SqrtOf(x), `\sqrt{x}`},
		{symbolic.PowOf(x, symbolic.F(1, 3)), `\sqrt[3]{x}`},
		{symbolic.PowOf(x, symbolic.N(-1)), `\frac{1}{x}`},
		{symbolic.PowOf(symbolic.SinOf(x), symbolic.N(2)), `\sin^{2}{\left(x\right)}`},
		{symbolic.PowOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.N(2)), `\left(x + 1\right)^{2}`},
	}
	for _, c := range cases {
		if got := symbolic.LaTeX(c.e); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}

func TestFunc_SpecialValues(t *testing.T) {
	cases := map[string]symbolic.Expr{
		"0": symbolic.SinOf(symbolic.N(0)),
		"1": symbolic.CosOf(symbolic.N(0)),
		"x": symbolic.ExpOf(symbolic.LogOf(x)),
	}
	for want, e := range cases {
		if got := symbolic.String(e); got != want {
			t.Errorf("want %s, got %s", want, got)
		}
	}
	if got := symbolic.String(symbolic.SinOf(symbolic.N(2))); got != "sin(2)" {
		t.Errorf("sin(2) should stay symbolic, got %s", got)
	}
}

func TestFunc_StandardAngles(t *testing.T) {
	pi := func(p, q int64) symbolic.Expr { return symbolic.MulOf(symbolic.F(p, q), symbolic.Pi) }
	exact := []struct {
		e    symbolic.Expr
		want string
	}{
		{symbolic.SinOf(pi(1, 6)), "1/2"},
		{symbolic.SinOf(pi(1, 2)), "1"},
		{symbolic.CosOf(pi(1, 3)), "1/2"},
		{symbolic.CosOf(pi(2, 3)), "-1/2"},
		{symbolic.SinOf(pi(-1, 6)), "-1/2"},
		{symbolic.SinOf(pi(13, 6)), "1/2"},
		{symbolic.CosOf(pi(1, 2)), "0"},
		{symbolic.TanOf(pi(1, 4)), "1"},
	}
	for _, c := range exact {
		if got := symbolic.String(c.e); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}

	numeric := []struct {
		e    symbolic.Expr
		want float64
	}{
		{symbolic.SinOf(pi(1, 4)), math.Sqrt2 / 2},
		{symbolic.CosOf(pi(5, 6)), -math.Sqrt(3) / 2},
		{symbolic.TanOf(pi(1, 3)), math.Sqrt(3)},
	}
	for _, c := range numeric {
		if _, isFunc := c.e.(*symbolic.Func); isFunc {
			t.Errorf("%s should fold to an exact value", symbolic.String(c.e))
			continue
		}
		got, ok := symbolic.Float(c.e)
		if !ok || math.Abs(got-c.want) > 1e-12 {
			t.Errorf("want %g, got %g", c.want, got)
		}
	}

	if _, ok := symbolic.TanOf(pi(1, 2)).(*symbolic.Func); !ok {
		t.Errorf("tan(pi/2) should stay symbolic")
	}
	if _, ok := symbolic.SinOf(pi(1, 5)).(*symbolic.Func); !ok {
		t.Errorf("sin(pi/5) should stay symbolic")
	}
}

func TestFunc_LaTeX(t *testing.T) {
	cases := []struct {
		e    symbolic.Expr
		want string
	}{
		{symbolic.SinOf(x), `\sin{\left(x\right)}`},
		{symbolic.ExpOf(x), `e^{x}`},
		{symbolic.LogOf(x), `\log{\left(x\right)}`},
		{symbolic.FuncOf("asin", x), `\operatorname{asin}{\left(x\right)}`},
		{symbolic.AbsOf(x), `\left|{x}\right|`},
	}
	for _, c := range cases {
		if got := symbolic.LaTeX(c.e); got != c.want {
			t.Errorf("want %s, got %s", c.want, got)
		}
	}
}

func TestFunc_Numeric_Eval(t *testing.T) {
	f, ok := symbolic.Float(symbolic.SinOf(symbolic.N(0)))
	if !ok || f != 0 {
		t.Errorf("sin(0) should evaluate to 0, got %v", f)
	}
	if _, ok := symbolic.Float(symbolic.LogOf(symbolic.N(-1))); ok {
		t.Error("log(-1) must not evaluate")
	}
}

// ============================================================
// Differentiation tests
// ============================================================

func TestDiff_LaTeX(t *testing.T) {
	cases := []struct {
		name string
		e    symbolic.Expr
		want string
	}{
		{"power", symbolic.PowOf(x, symbolic.N(2)), "2 x"},
		{"chain", symbolic.SinOf(symbolic.PowOf(x, symbolic.N(2))), `2 x \cos{\left(x^{2}\right)}`},
		{"product", symbolic.MulOf(x, symbolic.SinOf(x)), `x \cos{\left(x\right)} + \sin{\left(x\right)}`},
		{"reciprocal", symbolic.PowOf(x, symbolic.N(-1)), `- \frac{1}{x^{2}}`},
		{"tan", symbolic.TanOf(x), `\tan^{2}{\left(x\right)} + 1`},
		{"log", symbolic.LogOf(x), `\frac{1}{x}`},
		{"exp", symbolic.ExpOf(symbolic.MulOf(symbolic.N(2), x)), `2 e^{2 x}`},
		{"constant", symbolic.S("y"), "0"},
	}
	for _, c := range cases {
		if got := symbolic.LaTeX(symbolic.Diff(c.e, "x")); got != c.want {
			t.Errorf("%s: want %s, got %s", c.name, c.want, got)
		}
	}
}

func TestDiff_SymbolicExponent(t *testing.T) {
	n := symbolic.S("n")
	got := symbolic.Diff(symbolic.PowOf(x, n), "x")
	want := symbolic.MulOf(n, symbolic.PowOf(x, symbolic.AddOf(n, symbolic.N(-1))))
	if !got.Equal(want) {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestDiff_FiniteDifference(t *testing.T) {
	exprs := []symbolic.Expr{
		symbolic.AddOf(symbolic.PowOf(x, symbolic.N(3)), symbolic.MulOf(x, symbolic.SinOf(x))),
		symbolic.MulOf(symbolic.ExpOf(x), symbolic.CosOf(symbolic.MulOf(symbolic.N(3), x))),
		symbolic.PowOf(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(1)), symbolic.F(1, 2)),
		symbolic.FuncOf("atan", symbolic.PowOf(x, symbolic.N(2))),
		symbolic.PowOf(x, x),
	}
	const h = 1e-5
	for _, e := range exprs {
		d := symbolic.Diff(e, "x")
		for _, p := range []float64{0.3, 0.7, 1.9} {
			fp, ok1 := symbolic.Float(e.Sub("x", symbolic.NFloat(p+h)))
			fm, ok2 := symbolic.Float(e.Sub("x", symbolic.NFloat(p-h)))
			dv, ok3 := symbolic.Float(d.Sub("x", symbolic.NFloat(p)))
			if !ok1 || !ok2 || !ok3 {
				t.Fatalf("%s: evaluation failed at %v", e, p)
			}
			numeric := (fp - fm) / (2 * h)
			if math.Abs(numeric-dv) > 1e-4*math.Max(1, math.Abs(dv)) {
				t.Errorf("d/dx %s at %v: symbolic %v, numeric %v", e, p, dv, numeric)
			}
		}
	}
}

func TestDiff2(t *testing.T) {
	got := symbolic.Diff2(symbolic.PowOf(x, symbolic.N(3)), "x")
	if symbolic.String(got) != "6*x" {
		t.Errorf("want 6*x, got %s", got)
	}
}

func TestDiffN(t *testing.T) {
	got := symbolic.DiffN(symbolic.PowOf(x, symbolic.N(4)), "x", 4)
	if symbolic.String(got) != "24" {
		t.Errorf("want 24, got %s", got)
	}
	if got := symbolic.DiffN(x, "x", 0); !got.Equal(x) {
		t.Errorf("zeroth derivative should be x, got %s", got)
	}
}

// ============================================================
// Expand / Simplify tests
// ============================================================

func TestExpand_Square(t *testing.T) {
	e := symbolic.PowOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.N(2))
	if got := symbolic.String(symbolic.Expand(e)); got != "x^2 + 2*x + 1" {
		t.Errorf("want x^2 + 2*x + 1, got %s", got)
	}
}

func TestExpand_Distribution(t *testing.T) {
	e := symbolic.MulOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.AddOf(x, symbolic.N(-1)))
	if got := symbolic.String(symbolic.Expand(e)); got != "x^2 + -1" {
		t.Errorf("want x^2 + -1, got %s", got)
	}
}

func TestSimplify_Idempotent(t *testing.T) {
	exprs := []symbolic.Expr{
		symbolic.AddOf(x, symbolic.MulOf(symbolic.N(2), symbolic.SinOf(x)), symbolic.N(3)),
		symbolic.MulOf(symbolic.PowOf(x, symbolic.N(-1)), symbolic.AddOf(x, symbolic.N(1))),
		symbolic.PowOf(symbolic.MulOf(symbolic.N(2), x), symbolic.N(3)),
	}
	for _, e := range exprs {
		once := symbolic.Simplify(e)
		twice := symbolic.Simplify(once)
		if once.LaTeX() != twice.LaTeX() {
			t.Errorf("not idempotent: %s then %s", once.LaTeX(), twice.LaTeX())
		}
	}
}

func TestDeterminism(t *testing.T) {
	build := func() string {
		return symbolic.LaTeX(symbolic.AddOf(
			symbolic.SinOf(x), symbolic.MulOf(symbolic.N(3), x, symbolic.S("y")),
			symbolic.CosOf(x), symbolic.N(7), symbolic.PowOf(x, symbolic.N(2)),
		))
	}
	first := build()
	for i := 0; i < 20; i++ {
		if got := build(); got != first {
			t.Fatalf("non-deterministic output: %s vs %s", first, got)
		}
	}
}

func TestFreeSymbols(t *testing.T) {
	e := symbolic.AddOf(x, symbolic.MulOf(symbolic.S("y"), symbolic.Pi))
	got := strings.Join(symbolic.FreeSymbols(e), ",")
	if got != "x,y" {
		t.Errorf("want x,y, got %s", got)
	}
}

// ============================================================
// Integration tests
// ============================================================

func TestIntegrate_Basic(t *testing.T) {
	cases := []struct {
		name string
		e    symbolic.Expr
		want string
	}{
		{"constant", symbolic.N(3), "3 x"},
		{"variable", x, `\frac{x^{2}}{2}`},
		{"power", symbolic.PowOf(x, symbolic.N(2)), `\frac{x^{3}}{3}`},
		{"inverse", symbolic.PowOf(x, symbolic.N(-1)), `\log{\left(x\right)}`},
		{"sin", symbolic.SinOf(x), `- \cos{\left(x\right)}`},
		{"cos", symbolic.CosOf(x), `\sin{\left(x\right)}`},
		{"exp", symbolic.ExpOf(x), `e^{x}`},
	}
	for _, c := range cases {
		got, ok := symbolic.Integrate(c.e, "x")
		if !ok {
			t.Errorf("%s: no antiderivative found", c.name)
			continue
		}
		if symbolic.LaTeX(got) != c.want {
			t.Errorf("%s: want %s, got %s", c.name, c.want, symbolic.LaTeX(got))
		}
	}
}

func TestIntegrate_DerivativeRoundTrip(t *testing.T) {
	exprs := []symbolic.Expr{
		symbolic.MulOf(x, symbolic.ExpOf(x)),
		symbolic.MulOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.CosOf(x)),
		symbolic.SinOf(symbolic.AddOf(symbolic.MulOf(symbolic.N(2), x), symbolic.N(1))),
		symbolic.MulOf(symbolic.N(4), symbolic.PowOf(x, symbolic.N(3))),
		symbolic.PowOf(symbolic.AddOf(x, symbolic.N(1)), symbolic.N(2)),
	}
	for _, e := range exprs {
		F, ok := symbolic.Integrate(e, "x")
		if !ok {
			t.Errorf("%s: no antiderivative found", e)
			continue
		}
		back := symbolic.Expand(symbolic.Diff(F, "x"))
		if !back.Equal(symbolic.Expand(e)) {
			t.Errorf("d/dx ∫%s = %s", e, back)
		}
	}
}

func TestIntegrate_Unsupported(t *testing.T) {
	if _, ok := symbolic.Integrate(symbolic.ExpOf(symbolic.PowOf(x, symbolic.N(2))), "x"); ok {
		t.Error("exp(x^2) has no elementary antiderivative")
	}
}

func TestDefiniteIntegrate(t *testing.T) {
	got, ok := symbolic.DefiniteIntegrate(symbolic.PowOf(x, symbolic.N(2)), "x", 0, 1)
	if !ok || math.Abs(got-1.0/3) > 1e-6 {
		t.Errorf("want 1/3, got %v", got)
	}
}

// ============================================================
// Matrix tests
// ============================================================

func matrix(t *testing.T, rows [][]int64) *symbolic.Matrix {
	t.Helper()
	es := make([][]symbolic.Expr, len(rows))
	for i, r := range rows {
		for _, v := range r {
			es[i] = append(es[i], symbolic.N(v))
		}
	}
	m, err := symbolic.MatrixFromRows(es)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMatrix_Det(t *testing.T) {
	det, err := matrix(t, [][]int64{{1, 2}, {3, 4}}).Det()
	if err != nil || symbolic.String(det) != "-2" {
		t.Errorf("want -2, got %v (%v)", det, err)
	}
	det3, _ := matrix(t, [][]int64{{2, 0, 1}, {1, 3, 2}, {1, 1, 2}}).Det()
	if symbolic.String(det3) != "6" {
		t.Errorf("want 6, got %s", det3)
	}
}

func TestMatrix_Inverse(t *testing.T) {
	inv, err := matrix(t, [][]int64{{1, 2}, {3, 4}}).Inverse()
	if err != nil {
		t.Fatal(err)
	}
	want := `\begin{pmatrix}-2 & 1\\\frac{3}{2} & - \frac{1}{2}\end{pmatrix}`
	if inv.LaTeX() != want {
		t.Errorf("want %s, got %s", want, inv.LaTeX())
	}
	if _, err := matrix(t, [][]int64{{1, 2}, {2, 4}}).Inverse(); err != symbolic.ErrSingular {
		t.Errorf("want ErrSingular, got %v", err)
	}
}

func TestMatrix_MulTranspose(t *testing.T) {
	a := matrix(t, [][]int64{{1, 2}, {3, 4}})
	p, err := a.MatMul(a)
	if err != nil {
		t.Fatal(err)
	}
	if p.String() != "[[7, 10], [15, 22]]" {
		t.Errorf("got %s", p.String())
	}
	if a.Transpose().String() != "[[1, 3], [2, 4]]" {
		t.Errorf("got %s", a.Transpose().String())
	}
	if _, err := a.MatMul(matrix(t, [][]int64{{1, 2, 3}})); err == nil {
		t.Error("expected dimension error")
	}
}

func TestMatrix_RaggedRows(t *testing.T) {
	_, err := symbolic.MatrixFromRows([][]symbolic.Expr{{symbolic.N(1)}, {symbolic.N(1), symbolic.N(2)}})
	if err == nil {
		t.Error("expected error for ragged rows")
	}
}

// ============================================================
// JSON tests
// ============================================================

func TestToJSON_Pow(t *testing.T) {
	s, err := symbolic.ToJSON(symbolic.PowOf(x, symbolic.N(2)))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		t.Fatal(err)
	}
	if m["type"] != "pow" {
		t.Errorf("want type pow, got %v", m["type"])
	}
}
