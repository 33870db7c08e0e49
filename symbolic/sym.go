package symbolic

import (
	"math"
	"strings"
)

// ============================================================
// Sym - symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

// Pi and E are the symbols the parser produces for \pi and e.
var (
	Pi = S("pi")
	E  = S("e")
)

var greekLetters = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"varepsilon": true, "zeta": true, "eta": true, "theta": true, "vartheta": true,
	"iota": true, "kappa": true, "lambda": true, "mu": true, "nu": true, "xi": true,
	"pi": true, "rho": true, "sigma": true, "tau": true, "upsilon": true, "phi": true,
	"varphi": true, "chi": true, "psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true, "Xi": true,
	"Pi": true, "Sigma": true, "Phi": true, "Psi": true, "Omega": true,
}

// IsGreek reports whether name is a Greek letter command without its backslash.
func IsGreek(name string) bool { return greekLetters[name] }

func (s *Sym) Kind() Kind     { return KindSym }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) Name() string   { return s.name }

// IsConstant reports whether the symbol names a mathematical constant.
func (s *Sym) IsConstant() bool { return s.name == "pi" || s.name == "e" }

func (s *Sym) LaTeX() string {
	base, sub, hasSub := strings.Cut(s.name, "_")
	if greekLetters[base] {
		base = "\\" + base
	}
	if !hasSub {
		return base
	}
	return base + "_{" + sub + "}"
}

func (s *Sym) Eval() (*Num, bool) {
	switch s.name {
	case "pi":
		return NFloat(math.Pi), true
	case "e":
		return NFloat(math.E), true
	}
	return nil, false
}

func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }

func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}
