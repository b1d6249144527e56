// Package condition implements the inclusion-condition language for template
// file entries: a small, closed boolean grammar over variable references.
//
// Grammar:
//
//	expr   := term { "||" term }
//	term   := factor { "&&" factor }
//	factor := "!" factor | "(" expr ")" | ident
//
// Evaluation is a pure tree walk over an explicit expression tree. The same
// variable environment always yields the same decision, which is what makes
// regeneration idempotent.
package condition

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Expr is a parsed inclusion condition.
type Expr interface {
	// Eval reports whether the condition holds under the given variables.
	// Variables are truthy when: bool true, non-empty string, non-zero int.
	Eval(vars map[string]any) bool

	// String returns the canonical text form of the expression.
	String() string

	collectVars(set map[string]bool)
}

// ParseError describes a syntax error with its byte offset in the source.
type ParseError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d in %q: %s", e.Offset, e.Input, e.Msg)
}

// Parse parses an inclusion condition. An empty or all-whitespace input is
// invalid; callers represent "no condition" by a nil Expr.
func Parse(input string) (Expr, error) {
	p := &parser{input: input}
	p.next()

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.err != nil {
		return nil, p.err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
	return expr, nil
}

// Vars returns the sorted set of variable names referenced by expr.
// Template loading uses this to reject references to undeclared variables
// before any answer is resolved.
func Vars(expr Expr) []string {
	set := make(map[string]bool)
	expr.collectVars(set)

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Truthy reports whether a variable value counts as true in a condition.
func Truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return v != nil
	}
}

// Expression tree nodes

type varRef struct {
	name string
}

func (v *varRef) Eval(vars map[string]any) bool {
	return Truthy(vars[v.name])
}

func (v *varRef) String() string { return v.name }

func (v *varRef) collectVars(set map[string]bool) { set[v.name] = true }

type notExpr struct {
	inner Expr
}

func (n *notExpr) Eval(vars map[string]any) bool { return !n.inner.Eval(vars) }

func (n *notExpr) String() string { return "!" + n.inner.String() }

func (n *notExpr) collectVars(set map[string]bool) { n.inner.collectVars(set) }

type andExpr struct {
	left, right Expr
}

func (a *andExpr) Eval(vars map[string]any) bool {
	return a.left.Eval(vars) && a.right.Eval(vars)
}

func (a *andExpr) String() string {
	return fmt.Sprintf("(%s && %s)", a.left.String(), a.right.String())
}

func (a *andExpr) collectVars(set map[string]bool) {
	a.left.collectVars(set)
	a.right.collectVars(set)
}

type orExpr struct {
	left, right Expr
}

func (o *orExpr) Eval(vars map[string]any) bool {
	return o.left.Eval(vars) || o.right.Eval(vars)
}

func (o *orExpr) String() string {
	return fmt.Sprintf("(%s || %s)", o.left.String(), o.right.String())
}

func (o *orExpr) collectVars(set map[string]bool) {
	o.left.collectVars(set)
	o.right.collectVars(set)
}

// Lexer

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNot
	tokAnd
	tokOr
	tokLParen
	tokRParen
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

type parser struct {
	input string
	pos   int
	tok   token
	err   error
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Input: p.input, Offset: p.tok.offset, Msg: fmt.Sprintf(format, args...)}
}

// next advances to the following token. Lexing errors are stored in p.err
// and surface as an EOF token so the parser fails at the right position.
func (p *parser) next() {
	for p.pos < len(p.input) && unicode.IsSpace(rune(p.input[p.pos])) {
		p.pos++
	}

	start := p.pos
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF, offset: start}
		return
	}

	c := p.input[p.pos]
	switch {
	case c == '!':
		p.pos++
		p.tok = token{kind: tokNot, text: "!", offset: start}
	case c == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "(", offset: start}
	case c == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")", offset: start}
	case strings.HasPrefix(p.input[p.pos:], "&&"):
		p.pos += 2
		p.tok = token{kind: tokAnd, text: "&&", offset: start}
	case strings.HasPrefix(p.input[p.pos:], "||"):
		p.pos += 2
		p.tok = token{kind: tokOr, text: "||", offset: start}
	case isIdentStart(c):
		for p.pos < len(p.input) && isIdentPart(p.input[p.pos]) {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.input[start:p.pos], offset: start}
	default:
		p.tok = token{kind: tokEOF, text: string(c), offset: start}
		p.err = &ParseError{Input: p.input, Offset: start, Msg: fmt.Sprintf("unexpected character %q", c)}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || ('0' <= c && c <= '9')
}

// Parser

func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokOr {
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &orExpr{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.tok.kind == tokAnd {
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &andExpr{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseFactor() (Expr, error) {
	if p.err != nil {
		return nil, p.err
	}

	switch p.tok.kind {
	case tokNot:
		p.next()
		inner, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &notExpr{inner: inner}, nil

	case tokLParen:
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("expected closing parenthesis")
		}
		p.next()
		return expr, nil

	case tokIdent:
		name := p.tok.text
		p.next()
		return &varRef{name: name}, nil

	case tokEOF:
		if p.err != nil {
			return nil, p.err
		}
		return nil, p.errorf("unexpected end of expression")

	default:
		return nil, p.errorf("unexpected %q", p.tok.text)
	}
}
