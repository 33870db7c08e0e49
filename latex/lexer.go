package latex

import (
	"fmt"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokLetter
	tokCommand
	tokOp
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokPipe
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.text)
}

// spacing commands carry no meaning for the expression tree.
var spacing = map[string]bool{
	",": true, ";": true, ":": true, "!": true, " ": true,
	"quad": true, "qquad": true, "displaystyle": true,
}

func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	// byte offsets for error positions
	offs := make([]int, len(rs)+1)
	b := 0
	for i, r := range rs {
		offs[i] = b
		b += len(string(r))
	}
	offs[len(rs)] = b

	for i := 0; i < len(rs); {
		r := rs[i]
		start := offs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			j := i
			seenDot := false
			for j < len(rs) && (unicode.IsDigit(rs[j]) || (rs[j] == '.' && !seenDot)) {
				if rs[j] == '.' {
					seenDot = true
				}
				j++
			}
			toks = append(toks, token{kind: tokNumber, text: string(rs[i:j]), pos: start})
			i = j
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			toks = append(toks, token{kind: tokLetter, text: string(r), pos: start})
			i++
		case r == '\\':
			j := i + 1
			for j < len(rs) && rs[j] < unicode.MaxASCII && unicode.IsLetter(rs[j]) {
				j++
			}
			if j == i+1 {
				if j >= len(rs) {
					return nil, &ParseError{Pos: start, Msg: "dangling backslash"}
				}
				j++
			}
			name := string(rs[i+1 : j])
			i = j
			if spacing[name] {
				continue
			}
			toks = append(toks, token{kind: tokCommand, text: name, pos: start})
		default:
			kind, ok := punct[r]
			if !ok {
				return nil, &ParseError{Pos: start, Msg: fmt.Sprintf("unexpected character %q", r)}
			}
			toks = append(toks, token{kind: kind, text: string(r), pos: start})
			i++
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

var punct = map[rune]tokenKind{
	'+': tokOp, '-': tokOp, '*': tokOp, '/': tokOp, '^': tokOp, '_': tokOp, '=': tokOp, '!': tokOp,
	'(': tokLParen, ')': tokRParen,
	'{': tokLBrace, '}': tokRBrace,
	'[': tokLBracket, ']': tokRBracket,
	'|': tokPipe, ',': tokComma,
}
