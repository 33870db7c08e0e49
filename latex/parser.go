// Package latex parses the LaTeX subset used by calculator front ends into
// symbolic expression trees.
package latex

import (
	"fmt"
	"strings"

	"github.com/njchilds90/calcsteps/symbolic"
)

// ParseError reports unsupported or malformed input at a byte offset.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("latex: %s at position %d", e.Msg, e.Pos)
}

// Parse converts src into an expression tree. The result is not simplified
// beyond what the symbolic constructors do.
func Parse(src string) (symbolic.Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &ParseError{Pos: 0, Msg: "empty expression"}
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %s", t)
	}
	return e, nil
}

// ParseSymbol parses a differentiation variable such as "x", "t" or
// "\theta".
func ParseSymbol(src string) (*symbolic.Sym, error) {
	e, err := Parse(src)
	if err != nil {
		return nil, err
	}
	s, ok := e.(*symbolic.Sym)
	if !ok || s.IsConstant() {
		return nil, &ParseError{Pos: 0, Msg: fmt.Sprintf("%q is not a variable", src)}
	}
	return s, nil
}

type parser struct {
	toks     []token
	pos      int
	absDepth int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...interface{}) error {
	return &ParseError{Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) isCommand(names ...string) bool {
	t := p.peek()
	if t.kind != tokCommand {
		return false
	}
	for _, n := range names {
		if t.text == n {
			return true
		}
	}
	return false
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, found %s", what, t)
	}
	return t, nil
}

// expr := term (('+' | '-') term)*
func (p *parser) parseExpr() (symbolic.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []symbolic.Expr{left}
	for p.isOp("+") || p.isOp("-") {
		op := p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if op.text == "-" {
			right = symbolic.Neg(right)
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return left, nil
	}
	return symbolic.AddOf(terms...), nil
}

// term := unary ((mulop | implicit) unary)*
func (p *parser) parseTerm() (symbolic.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("*") || p.isCommand("cdot", "times"):
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = symbolic.MulOf(left, right)
		case p.isOp("/") || p.isCommand("div"):
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = divide(left, right)
		case p.startsFactor():
			right, err := p.parsePostfix()
			if err != nil {
				return nil, err
			}
			left = symbolic.MulOf(left, right)
		default:
			return left, nil
		}
	}
}

// divide builds num * den^-1. A zero denominator stays symbolic and fails
// at evaluation.
func divide(num, den symbolic.Expr) symbolic.Expr {
	return symbolic.MulOf(num, symbolic.PowOf(den, symbolic.N(-1)))
}

// startsFactor reports whether the next token can begin an implicitly
// multiplied factor.
func (p *parser) startsFactor() bool {
	t := p.peek()
	switch t.kind {
	case tokNumber, tokLetter, tokLParen, tokLBrace:
		return true
	case tokPipe:
		return p.absDepth == 0
	case tokCommand:
		switch t.text {
		case "cdot", "times", "div", "right", "}", "|":
			return false
		}
		return true
	}
	return false
}

// unary := ('-' | '+') unary | postfix
func (p *parser) parseUnary() (symbolic.Expr, error) {
	if p.isOp("-") {
		p.next()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return symbolic.Neg(e), nil
	}
	if p.isOp("+") {
		p.next()
		return p.parseUnary()
	}
	return p.parsePostfix()
}

// postfix := primary ('^' exponent)*
func (p *parser) parsePostfix() (symbolic.Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isOp("^") {
		p.next()
		exp, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		base = symbolic.PowOf(base, exp)
	}
	return base, nil
}

// parseExponent reads a braced group or a single token; x^23 is x^2 * 3 as
// in TeX.
func (p *parser) parseExponent() (symbolic.Expr, error) {
	t := p.peek()
	switch {
	case t.kind == tokLBrace:
		return p.parseGroup(tokLBrace, tokRBrace, "}")
	case t.kind == tokNumber && len(t.text) > 1:
		p.toks[p.pos].text = t.text[1:]
		p.toks[p.pos].pos++
		return symbolic.ParseNum(t.text[:1])
	case t.kind == tokOp && t.text == "-":
		p.next()
		e, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		return symbolic.Neg(e), nil
	}
	return p.parsePrimary()
}

func (p *parser) parseGroup(open, close tokenKind, closeText string) (symbolic.Expr, error) {
	if _, err := p.expect(open, "group"); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(close, fmt.Sprintf("%q", closeText)); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *parser) parsePrimary() (symbolic.Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		n, err := symbolic.ParseNum(t.text)
		if err != nil {
			return nil, p.errorf(t, "invalid number %s", t)
		}
		return n, nil
	case tokLetter:
		p.next()
		return p.parseSubscript(t.text)
	case tokLParen:
		return p.parseGroup(tokLParen, tokRParen, ")")
	case tokLBracket:
		return p.parseGroup(tokLBracket, tokRBracket, "]")
	case tokLBrace:
		return p.parseGroup(tokLBrace, tokRBrace, "}")
	case tokPipe:
		p.next()
		p.absDepth++
		e, err := p.parseExpr()
		p.absDepth--
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokPipe, `"|"`); err != nil {
			return nil, err
		}
		return symbolic.AbsOf(e), nil
	case tokCommand:
		return p.parseCommand()
	case tokEOF:
		return nil, p.errorf(t, "unexpected end of input")
	}
	return nil, p.errorf(t, "unexpected %s", t)
}

// parseSubscript turns x_1 or x_{ab} into a single symbol name.
func (p *parser) parseSubscript(name string) (symbolic.Expr, error) {
	if !p.isOp("_") {
		if name == "e" {
			return symbolic.E, nil
		}
		return symbolic.S(name), nil
	}
	p.next()
	var sub strings.Builder
	t := p.next()
	switch t.kind {
	case tokNumber, tokLetter:
		sub.WriteString(t.text)
	case tokLBrace:
		for {
			in := p.next()
			if in.kind == tokRBrace {
				break
			}
			if in.kind != tokNumber && in.kind != tokLetter {
				return nil, p.errorf(in, "unsupported subscript %s", in)
			}
			sub.WriteString(in.text)
		}
	default:
		return nil, p.errorf(t, "unsupported subscript %s", t)
	}
	if sub.Len() == 0 {
		return nil, p.errorf(t, "empty subscript")
	}
	return symbolic.S(name + "_" + sub.String()), nil
}

// functionCommands maps LaTeX function commands to kernel names.
var functionCommands = map[string]string{
	"sin": "sin", "cos": "cos", "tan": "tan",
	"csc": "csc", "sec": "sec", "cot": "cot",
	"arcsin": "asin", "arccos": "acos", "arctan": "atan",
	"arccsc": "acsc", "arcsec": "asec", "arccot": "acot",
	"asin": "asin", "acos": "acos", "atan": "atan",
	"acsc": "acsc", "asec": "asec", "acot": "acot",
	"sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
	"ln": "log", "log": "log", "exp": "exp",
}

var inverses = map[string]string{
	"sin": "asin", "cos": "acos", "tan": "atan",
	"csc": "acsc", "sec": "asec", "cot": "acot",
}

func (p *parser) parseCommand() (symbolic.Expr, error) {
	t := p.next()
	switch t.text {
	case "frac", "dfrac", "tfrac":
		num, err := p.parseGroup(tokLBrace, tokRBrace, "}")
		if err != nil {
			return nil, err
		}
		den, err := p.parseGroup(tokLBrace, tokRBrace, "}")
		if err != nil {
			return nil, err
		}
		return divide(num, den), nil
	case "sqrt":
		var index symbolic.Expr = symbolic.N(2)
		if p.peek().kind == tokLBracket {
			idx, err := p.parseGroup(tokLBracket, tokRBracket, "]")
			if err != nil {
				return nil, err
			}
			index = idx
		}
		arg, err := p.parseGroup(tokLBrace, tokRBrace, "}")
		if err != nil {
			return nil, err
		}
		return symbolic.PowOf(arg, symbolic.PowOf(index, symbolic.N(-1))), nil
	case "left":
		return p.parseLeftRight(t)
	case "pi":
		return symbolic.Pi, nil
	case "infty":
		return nil, p.errorf(t, "infinity is not supported")
	case "operatorname", "mathrm", "text":
		name, err := p.parseWord()
		if err != nil {
			return nil, err
		}
		if fn, ok := functionCommands[name]; ok {
			return p.parseFunction(t, fn)
		}
		if t.text != "operatorname" && len(name) == 1 {
			return p.parseSubscript(name)
		}
		return p.parseFunction(t, name)
	}
	if fn, ok := functionCommands[t.text]; ok {
		return p.parseFunction(t, fn)
	}
	if symbolic.IsGreek(t.text) {
		return p.parseSubscript(t.text)
	}
	return nil, p.errorf(t, "unsupported command \\%s", t.text)
}

// parseWord reads the letters of {name} after \operatorname or \mathrm.
func (p *parser) parseWord() (string, error) {
	if _, err := p.expect(tokLBrace, `"{"`); err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		t := p.next()
		switch t.kind {
		case tokRBrace:
			if sb.Len() == 0 {
				return "", p.errorf(t, "empty name")
			}
			return sb.String(), nil
		case tokLetter:
			sb.WriteString(t.text)
		default:
			return "", p.errorf(t, "unexpected %s in name", t)
		}
	}
}

// parseFunction handles \sin x, \sin(x), \sin^{2}(x), \sin^{-1}(x) and
// \log_{b}(x).
func (p *parser) parseFunction(cmd token, name string) (symbolic.Expr, error) {
	var base symbolic.Expr
	if name == "log" && p.isOp("_") {
		p.next()
		b, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		base = b
	}
	var power symbolic.Expr
	if p.isOp("^") {
		p.next()
		e, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		if n, ok := e.(*symbolic.Num); ok && n.IsNegOne() {
			inv, ok := inverses[name]
			if !ok {
				return nil, p.errorf(cmd, "no inverse for %s", name)
			}
			name = inv
		} else {
			power = e
		}
	}
	arg, err := p.parseFunctionArg(cmd)
	if err != nil {
		return nil, err
	}
	result := symbolic.FuncOf(name, arg)
	if base != nil {
		result = symbolic.MulOf(result, symbolic.PowOf(symbolic.LogOf(base), symbolic.N(-1)))
	}
	if power != nil {
		result = symbolic.PowOf(result, power)
	}
	return result, nil
}

// parseFunctionArg reads a delimited argument, or without delimiters a run of
// implicitly multiplied factors: \sin 2x is sin(2x).
func (p *parser) parseFunctionArg(cmd token) (symbolic.Expr, error) {
	t := p.peek()
	switch {
	case t.kind == tokLParen:
		return p.parseGroup(tokLParen, tokRParen, ")")
	case t.kind == tokLBrace:
		return p.parseGroup(tokLBrace, tokRBrace, "}")
	case t.kind == tokCommand && t.text == "left":
		return p.parsePrimary()
	case t.kind == tokEOF:
		return nil, p.errorf(cmd, "missing argument for \\%s", cmd.text)
	}
	arg, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.startsFactor() && !p.startsFunction() {
		f, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		arg = symbolic.MulOf(arg, f)
	}
	return arg, nil
}

func (p *parser) startsFunction() bool {
	t := p.peek()
	if t.kind != tokCommand {
		return false
	}
	_, ok := functionCommands[t.text]
	return ok || t.text == "operatorname" || t.text == "frac" || t.text == "sqrt"
}

// parseLeftRight parses \left( ... \right) and the other delimiter pairs; a
// \left| pair is an absolute value.
func (p *parser) parseLeftRight(left token) (symbolic.Expr, error) {
	open := p.next()
	abs := false
	switch {
	case open.kind == tokLParen, open.kind == tokLBracket:
	case open.kind == tokCommand && open.text == "{":
	case open.kind == tokPipe, open.kind == tokCommand && open.text == "|":
		abs = true
		p.absDepth++
	default:
		return nil, p.errorf(open, "unsupported delimiter after \\left")
	}
	saved := p.absDepth
	if !abs {
		p.absDepth = 0
	}
	e, err := p.parseExpr()
	p.absDepth = saved
	if abs {
		p.absDepth--
	}
	if err != nil {
		return nil, err
	}
	right := p.next()
	if right.kind != tokCommand || right.text != "right" {
		return nil, p.errorf(right, "expected \\right to close \\left at position %d", left.pos)
	}
	closeTok := p.next()
	if closeTok.kind == tokEOF {
		return nil, p.errorf(closeTok, "missing delimiter after \\right")
	}
	if abs {
		return symbolic.AbsOf(e), nil
	}
	return e, nil
}
