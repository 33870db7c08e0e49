package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/njchilds90/calcsteps/symbolic"
)

// The matrix expression language: Matrix([[..],[..]]) literals,
// Rational(p, q), numbers, + - * / **, parentheses, and the postfix forms
// .T .det() .inv() .transpose() .trace().

var errScalarMatrix = errors.New("operation mixes a matrix and a scalar")

// value is either a matrix or a scalar expression.
type value struct {
	m *symbolic.Matrix
	s symbolic.Expr
}

func (v value) latex() string {
	if v.m != nil {
		return v.m.LaTeX()
	}
	return symbolic.LaTeX(v.s.Simplify())
}

type mtoken struct {
	text string
	pos  int
	num  bool
	name bool
}

func lexMatrix(src string) ([]mtoken, error) {
	var toks []mtoken
	for i := 0; i < len(src); {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case unicode.IsDigit(c) || (c == '.' && i+1 < len(src) && unicode.IsDigit(rune(src[i+1])) &&
			(len(toks) == 0 || !closesValue(toks[len(toks)-1]))):
			j := i
			for j < len(src) && (unicode.IsDigit(rune(src[j])) || src[j] == '.') {
				j++
			}
			toks = append(toks, mtoken{text: src[i:j], pos: i, num: true})
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(src) && (unicode.IsLetter(rune(src[j])) || unicode.IsDigit(rune(src[j])) || src[j] == '_') {
				j++
			}
			toks = append(toks, mtoken{text: src[i:j], pos: i, name: true})
			i = j
		case strings.HasPrefix(src[i:], "**"):
			toks = append(toks, mtoken{text: "**", pos: i})
			i += 2
		case strings.ContainsRune("()[],+-*/.", c):
			toks = append(toks, mtoken{text: string(c), pos: i})
			i++
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", c, i)
		}
	}
	return toks, nil
}

// closesValue reports whether a '.' after t starts a method call.
func closesValue(t mtoken) bool {
	return t.text == ")" || t.text == "]" || t.name || t.num
}

type matrixParser struct {
	toks []mtoken
	pos  int
}

func evalMatrixExpr(src string) (value, error) {
	toks, err := lexMatrix(src)
	if err != nil {
		return value{}, err
	}
	p := &matrixParser{toks: toks}
	v, err := p.expr()
	if err != nil {
		return value{}, err
	}
	if p.pos < len(p.toks) {
		t := p.toks[p.pos]
		return value{}, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
	return v, nil
}

func (p *matrixParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos].text
	}
	return ""
}

func (p *matrixParser) accept(text string) bool {
	if p.peek() == text {
		p.pos++
		return true
	}
	return false
}

func (p *matrixParser) expect(text string) error {
	if p.accept(text) {
		return nil
	}
	if p.pos < len(p.toks) {
		t := p.toks[p.pos]
		return fmt.Errorf("expected %q at position %d, found %q", text, t.pos, t.text)
	}
	return fmt.Errorf("expected %q at end of input", text)
}

func (p *matrixParser) expr() (value, error) {
	left, err := p.term()
	if err != nil {
		return value{}, err
	}
	for {
		switch {
		case p.accept("+"):
			right, err := p.term()
			if err != nil {
				return value{}, err
			}
			if left, err = add(left, right, false); err != nil {
				return value{}, err
			}
		case p.accept("-"):
			right, err := p.term()
			if err != nil {
				return value{}, err
			}
			if left, err = add(left, right, true); err != nil {
				return value{}, err
			}
		default:
			return left, nil
		}
	}
}

func (p *matrixParser) term() (value, error) {
	left, err := p.unary()
	if err != nil {
		return value{}, err
	}
	for {
		switch {
		case p.accept("*"):
			right, err := p.unary()
			if err != nil {
				return value{}, err
			}
			if left, err = mul(left, right); err != nil {
				return value{}, err
			}
		case p.accept("/"):
			right, err := p.unary()
			if err != nil {
				return value{}, err
			}
			if left, err = div(left, right); err != nil {
				return value{}, err
			}
		default:
			return left, nil
		}
	}
}

func (p *matrixParser) unary() (value, error) {
	if p.accept("-") {
		v, err := p.unary()
		if err != nil {
			return value{}, err
		}
		return mul(value{s: symbolic.N(-1)}, v)
	}
	if p.accept("+") {
		return p.unary()
	}
	return p.power()
}

func (p *matrixParser) power() (value, error) {
	base, err := p.postfix()
	if err != nil {
		return value{}, err
	}
	if !p.accept("**") {
		return base, nil
	}
	exp, err := p.unary()
	if err != nil {
		return value{}, err
	}
	return pow(base, exp)
}

func (p *matrixParser) postfix() (value, error) {
	v, err := p.primary()
	if err != nil {
		return value{}, err
	}
	for p.accept(".") {
		if p.pos >= len(p.toks) || !p.toks[p.pos].name {
			return value{}, errors.New("expected attribute name after '.'")
		}
		name := p.toks[p.pos].text
		p.pos++
		if name != "T" {
			if err := p.expect("("); err != nil {
				return value{}, err
			}
			if err := p.expect(")"); err != nil {
				return value{}, err
			}
		}
		if v, err = method(v, name); err != nil {
			return value{}, err
		}
	}
	return v, nil
}

func (p *matrixParser) primary() (value, error) {
	if p.pos >= len(p.toks) {
		return value{}, errors.New("unexpected end of input")
	}
	t := p.toks[p.pos]
	p.pos++
	switch {
	case t.num:
		n, err := symbolic.ParseNum(t.text)
		if err != nil {
			return value{}, err
		}
		return value{s: n}, nil
	case t.text == "(":
		v, err := p.expr()
		if err != nil {
			return value{}, err
		}
		return v, p.expect(")")
	case t.name && t.text == "Matrix":
		return p.matrixLiteral()
	case t.name && t.text == "Rational":
		return p.rational()
	case t.name:
		return value{}, fmt.Errorf("name '%s' is not defined", t.text)
	}
	return value{}, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
}

func (p *matrixParser) scalar() (symbolic.Expr, error) {
	v, err := p.expr()
	if err != nil {
		return nil, err
	}
	if v.m != nil {
		return nil, errors.New("matrix entries must be scalars")
	}
	return v.s, nil
}

func (p *matrixParser) matrixLiteral() (value, error) {
	if err := p.expect("("); err != nil {
		return value{}, err
	}
	if err := p.expect("["); err != nil {
		return value{}, err
	}
	var rows [][]symbolic.Expr
	for {
		var row []symbolic.Expr
		if p.accept("[") {
			for {
				s, err := p.scalar()
				if err != nil {
					return value{}, err
				}
				row = append(row, s)
				if !p.accept(",") {
					break
				}
			}
			if err := p.expect("]"); err != nil {
				return value{}, err
			}
		} else {
			// Matrix([1, 2, 3]) is a column vector.
			s, err := p.scalar()
			if err != nil {
				return value{}, err
			}
			row = []symbolic.Expr{s}
		}
		rows = append(rows, row)
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect("]"); err != nil {
		return value{}, err
	}
	if err := p.expect(")"); err != nil {
		return value{}, err
	}
	m, err := symbolic.MatrixFromRows(rows)
	if err != nil {
		return value{}, err
	}
	return value{m: m}, nil
}

func (p *matrixParser) rational() (value, error) {
	if err := p.expect("("); err != nil {
		return value{}, err
	}
	num, err := p.scalar()
	if err != nil {
		return value{}, err
	}
	if err := p.expect(","); err != nil {
		return value{}, err
	}
	den, err := p.scalar()
	if err != nil {
		return value{}, err
	}
	if err := p.expect(")"); err != nil {
		return value{}, err
	}
	return div(value{s: num}, value{s: den})
}

// ============================================================
// Operations
// ============================================================

func add(a, b value, subtract bool) (value, error) {
	switch {
	case a.m != nil && b.m != nil:
		var m *symbolic.Matrix
		var err error
		if subtract {
			m, err = a.m.MatSub(b.m)
		} else {
			m, err = a.m.MatAdd(b.m)
		}
		return value{m: m}, err
	case a.m == nil && b.m == nil:
		if subtract {
			return value{s: symbolic.AddOf(a.s, symbolic.Neg(b.s))}, nil
		}
		return value{s: symbolic.AddOf(a.s, b.s)}, nil
	}
	return value{}, errScalarMatrix
}

func mul(a, b value) (value, error) {
	switch {
	case a.m != nil && b.m != nil:
		m, err := a.m.MatMul(b.m)
		return value{m: m}, err
	case a.m != nil:
		return value{m: a.m.Scale(b.s)}, nil
	case b.m != nil:
		return value{m: b.m.Scale(a.s)}, nil
	}
	return value{s: symbolic.MulOf(a.s, b.s)}, nil
}

func div(a, b value) (value, error) {
	if b.m != nil {
		return value{}, errors.New("cannot divide by a matrix")
	}
	if n, ok := b.s.(*symbolic.Num); ok && n.IsZero() {
		return value{}, errors.New("division by zero")
	}
	return mul(a, value{s: symbolic.PowOf(b.s, symbolic.N(-1))})
}

func pow(base, exp value) (value, error) {
	if exp.m != nil {
		return value{}, errors.New("exponent must be a scalar")
	}
	if base.m == nil {
		return value{s: symbolic.PowOf(base.s, exp.s)}, nil
	}
	n, ok := exp.s.(*symbolic.Num)
	k, isInt := int64(0), false
	if ok {
		k, isInt = n.Int64()
	}
	if !isInt {
		return value{}, errors.New("matrix powers must be integers")
	}
	if base.m.Rows() != base.m.Cols() {
		return value{}, symbolic.ErrNotSquare
	}
	m := base.m
	if k < 0 {
		inv, err := m.Inverse()
		if err != nil {
			return value{}, err
		}
		m, k = inv, -k
	}
	result := symbolic.Identity(m.Rows())
	for i := int64(0); i < k; i++ {
		var err error
		if result, err = result.MatMul(m); err != nil {
			return value{}, err
		}
	}
	return value{m: result}, nil
}

func method(v value, name string) (value, error) {
	if v.m == nil {
		return value{}, fmt.Errorf("scalar has no attribute '%s'", name)
	}
	switch name {
	case "T", "transpose":
		return value{m: v.m.Transpose()}, nil
	case "det":
		d, err := v.m.Det()
		return value{s: d}, err
	case "inv":
		m, err := v.m.Inverse()
		return value{m: m}, err
	case "trace":
		t, err := v.m.Trace()
		return value{s: t}, err
	}
	return value{}, fmt.Errorf("matrix has no attribute '%s'", name)
}
