package symbolic

import (
	"math"
	"math/big"
	"strings"
)

// ============================================================
// Func - named elementary function of one argument
// ============================================================

type Func struct {
	name      string
	arg       Expr
	canonical bool
}

// FuncOf builds name(arg). "ln" is folded into "log" (natural log) and
// "sqrt" becomes a power.
func FuncOf(name string, arg Expr) Expr {
	switch name {
	case "ln":
		name = "log"
	case "sqrt":
		return SqrtOf(arg)
	}
	return (&Func{name: name, arg: arg}).Simplify()
}

func SinOf(arg Expr) Expr  { return FuncOf("sin", arg) }
func CosOf(arg Expr) Expr  { return FuncOf("cos", arg) }
func TanOf(arg Expr) Expr  { return FuncOf("tan", arg) }
func ExpOf(arg Expr) Expr  { return FuncOf("exp", arg) }
func LogOf(arg Expr) Expr  { return FuncOf("log", arg) }
func AbsOf(arg Expr) Expr  { return FuncOf("abs", arg) }
func SinhOf(arg Expr) Expr { return FuncOf("sinh", arg) }
func CoshOf(arg Expr) Expr { return FuncOf("cosh", arg) }

func (f *Func) Kind() Kind   { return KindFunc }
func (f *Func) Name() string { return f.name }
func (f *Func) Arg() Expr    { return f.arg }

// Simplify folds exact special values only; sin(2) stays symbolic.
func (f *Func) Simplify() Expr {
	if f.canonical {
		return f
	}
	arg := f.arg.Simplify()
	n, isNum := arg.(*Num)
	zero := isNum && n.IsZero()

	if v, ok := trigSpecial(f.name, arg); ok {
		return v
	}

	switch f.name {
	case "sin", "tan":
		if zero || arg.Equal(Pi) {
			return N(0)
		}
	case "asin", "atan", "sinh", "tanh":
		if zero {
			return N(0)
		}
	case "cos", "cosh":
		if zero {
			return N(1)
		}
		if f.name == "cos" && arg.Equal(Pi) {
			return N(-1)
		}
	case "exp":
		if zero {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "log" {
			return inner.arg
		}
	case "log":
		if isNum && n.IsOne() {
			return N(0)
		}
		if arg.Equal(E) {
			return N(1)
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "abs":
		if isNum {
			if n.IsNegative() {
				return numNeg(n)
			}
			return n
		}
	}
	return &Func{name: f.name, arg: arg, canonical: true}
}

// ============================================================
// Standard angles
// ============================================================

// piMultiple reports q for arguments of the form q*pi.
func piMultiple(e Expr) (*big.Rat, bool) {
	if e.Equal(Pi) {
		return big.NewRat(1, 1), true
	}
	m, ok := e.(*Mul)
	if !ok {
		return nil, false
	}
	c, rest := m.Coefficient()
	if len(rest) != 1 || !rest[0].Equal(Pi) {
		return nil, false
	}
	return c.Rat(), true
}

// sinPi is sin(q*pi) for the multiples of pi/6 and pi/4.
func sinPi(q *big.Rat) (Expr, bool) {
	// r = q mod 2
	half := new(big.Rat).Quo(q, big.NewRat(2, 1))
	fl := new(big.Int).Div(half.Num(), half.Denom())
	r := new(big.Rat).Sub(q, new(big.Rat).SetInt(new(big.Int).Mul(fl, big.NewInt(2))))

	one := big.NewRat(1, 1)
	sign := int64(1)
	if r.Cmp(one) >= 0 {
		r.Sub(r, one)
		sign = -1
	}
	if r.Cmp(big.NewRat(1, 2)) > 0 {
		r.Sub(one, r)
	}

	var v Expr
	switch {
	case r.Sign() == 0:
		return N(0), true
	case r.Cmp(big.NewRat(1, 6)) == 0:
		v = F(1, 2)
	case r.Cmp(big.NewRat(1, 4)) == 0:
		v = MulOf(F(1, 2), SqrtOf(N(2)))
	case r.Cmp(big.NewRat(1, 3)) == 0:
		v = MulOf(F(1, 2), SqrtOf(N(3)))
	case r.Cmp(big.NewRat(1, 2)) == 0:
		v = N(1)
	default:
		return nil, false
	}
	return MulOf(N(sign), v), true
}

func trigSpecial(name string, arg Expr) (Expr, bool) {
	if name != "sin" && name != "cos" && name != "tan" {
		return nil, false
	}
	q, ok := piMultiple(arg)
	if !ok {
		return nil, false
	}
	sin, sok := sinPi(q)
	cos, cok := sinPi(new(big.Rat).Add(q, big.NewRat(1, 2)))
	switch name {
	case "sin":
		return sin, sok
	case "cos":
		return cos, cok
	}
	if !sok || !cok {
		return nil, false
	}
	if c, isNum := cos.(*Num); isNum && c.IsZero() {
		return nil, false
	}
	return MulOf(sin, PowOf(cos, N(-1))), true
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

var latexFuncNames = map[string]string{
	"sin": "\\sin", "cos": "\\cos", "tan": "\\tan",
	"csc": "\\csc", "sec": "\\sec", "cot": "\\cot",
	"sinh": "\\sinh", "cosh": "\\cosh", "tanh": "\\tanh",
	"log": "\\log",
}

// powerFoldable functions render powers on the name: \sin^{2}{\left(x\right)}.
var powerFoldable = map[string]bool{
	"sin": true, "cos": true, "tan": true, "csc": true, "sec": true, "cot": true,
	"sinh": true, "cosh": true, "tanh": true,
	"asin": true, "acos": true, "atan": true, "acsc": true, "asec": true, "acot": true,
}

func (f *Func) latexName() string {
	if cmd, ok := latexFuncNames[f.name]; ok {
		return cmd
	}
	if powerFoldable[f.name] {
		return "\\operatorname{" + f.name + "}"
	}
	if len(f.name) == 1 || strings.HasSuffix(f.name, "'") {
		return f.name
	}
	return "\\operatorname{" + f.name + "}"
}

func (f *Func) hasOperatorName() bool { return powerFoldable[f.name] }

func (f *Func) latexPower(exp string) string {
	return f.latexName() + "^{" + exp + "}{\\left(" + f.arg.LaTeX() + "\\right)}"
}

func (f *Func) LaTeX() string {
	switch f.name {
	case "exp":
		return "e^{" + f.arg.LaTeX() + "}"
	case "abs":
		return "\\left|{" + f.arg.LaTeX() + "}\\right|"
	}
	return f.latexName() + "{\\left(" + f.arg.LaTeX() + "\\right)}"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return FuncOf(f.name, f.arg.Sub(varName, value))
}

// Diff applies the chain rule with the outer derivative from OuterDerivative.
func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	if n, ok := du.(*Num); ok && n.IsZero() {
		return N(0)
	}
	return MulOf(OuterDerivative(f.name, f.arg), du)
}

// OuterDerivative returns f'(u) for the named function, without the inner
// factor du/dx. Unknown names yield the placeholder function f'(u).
func OuterDerivative(name string, u Expr) Expr {
	one := N(1)
	switch name {
	case "sin":
		return CosOf(u)
	case "cos":
		return Neg(SinOf(u))
	case "tan":
		return AddOf(PowOf(TanOf(u), N(2)), one)
	case "csc":
		return Neg(MulOf(FuncOf("cot", u), FuncOf("csc", u)))
	case "sec":
		return MulOf(TanOf(u), FuncOf("sec", u))
	case "cot":
		return Neg(AddOf(PowOf(FuncOf("cot", u), N(2)), one))
	case "asin":
		return PowOf(AddOf(one, Neg(PowOf(u, N(2)))), F(-1, 2))
	case "acos":
		return Neg(PowOf(AddOf(one, Neg(PowOf(u, N(2)))), F(-1, 2)))
	case "atan":
		return PowOf(AddOf(PowOf(u, N(2)), one), N(-1))
	case "acot":
		return Neg(PowOf(AddOf(PowOf(u, N(2)), one), N(-1)))
	case "asec":
		return MulOf(PowOf(u, N(-2)), PowOf(AddOf(one, Neg(PowOf(u, N(-2)))), F(-1, 2)))
	case "acsc":
		return Neg(MulOf(PowOf(u, N(-2)), PowOf(AddOf(one, Neg(PowOf(u, N(-2)))), F(-1, 2))))
	case "sinh":
		return CoshOf(u)
	case "cosh":
		return SinhOf(u)
	case "tanh":
		return AddOf(one, Neg(PowOf(FuncOf("tanh", u), N(2))))
	case "exp":
		return ExpOf(u)
	case "log":
		return PowOf(u, N(-1))
	case "abs":
		return MulOf(u, PowOf(AbsOf(u), N(-1)))
	}
	return FuncOf(strings.TrimSuffix(name, "'")+"'", u)
}

var evalFuncs = map[string]func(float64) float64{
	"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
	"csc":  func(x float64) float64 { return 1 / math.Sin(x) },
	"sec":  func(x float64) float64 { return 1 / math.Cos(x) },
	"cot":  func(x float64) float64 { return 1 / math.Tan(x) },
	"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
	"acsc": func(x float64) float64 { return math.Asin(1 / x) },
	"asec": func(x float64) float64 { return math.Acos(1 / x) },
	"acot": func(x float64) float64 { return math.Atan(1 / x) },
	"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
	"exp": math.Exp, "log": math.Log, "abs": math.Abs,
}

func (f *Func) Eval() (*Num, bool) {
	v, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	fn, known := evalFuncs[f.name]
	if !known {
		return nil, false
	}
	r := fn(v.Float64())
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil, false
	}
	return NFloat(r), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

// IsKnownFunction reports whether name has a built-in derivative.
func IsKnownFunction(name string) bool {
	_, ok := evalFuncs[name]
	return ok
}
