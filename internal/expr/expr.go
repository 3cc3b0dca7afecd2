// Package expr evaluates the boolean expressions accepted by #if directives.
// The grammar is parsed by recursive descent and evaluated as it is parsed;
// there is no intermediate tree. Identifiers resolve to strings through a
// Resolver, string and number literals resolve to their own text, and a bare
// value with no comparison is reduced to a boolean by truthiness.
package expr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Resolver supplies the value of an identifier. Names that are not defined
// resolve to the empty string.
type Resolver interface {
	Value(name string) string
}

// Rules are tried in order, so the doubled operators must precede their
// single-character counterparts. The single '&', '|' and '=' rules plus the
// trailing catch-all keep lexing total; tokenize rejects them with the
// messages the caller expects.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "BadString", Pattern: `"(\\.|[^"\\])*`},
	{Name: "Number", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "And", Pattern: `&&`},
	{Name: "Or", Pattern: `\|\|`},
	{Name: "Eq", Pattern: `==`},
	{Name: "Ne", Pattern: `!=`},
	{Name: "Not", Pattern: `!`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Amp", Pattern: `&`},
	{Name: "Pipe", Pattern: `\|`},
	{Name: "Assign", Pattern: `=`},
	{Name: "Any", Pattern: `.`},
})

var symbolNames = func() map[lexer.TokenType]string {
	names := make(map[lexer.TokenType]string, len(exprLexer.Symbols()))
	for name, typ := range exprLexer.Symbols() {
		names[typ] = name
	}
	return names
}()

type kind int

const (
	tokIdent kind = iota
	tokString
	tokNumber
	tokAnd
	tokOr
	tokEq
	tokNe
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind kind
	text string
}

// Eval tokenizes and evaluates input in one pass. Trailing tokens after a
// complete parse are an error.
func Eval(input string, defs Resolver) (bool, error) {
	toks, err := tokenize(input)
	if err != nil {
		return false, err
	}
	p := parser{toks: toks, defs: defs}
	v, err := p.parseOr()
	if err != nil {
		return false, err
	}
	if p.pos != len(p.toks) {
		return false, fmt.Errorf("invalid expression: unexpected token at position %d", p.pos)
	}
	return v, nil
}

func tokenize(input string) ([]token, error) {
	lx, err := exprLexer.LexString("", input)
	if err != nil {
		return nil, fmt.Errorf("invalid expression: %v", err)
	}
	var toks []token
	for {
		t, err := lx.Next()
		if err != nil {
			return nil, fmt.Errorf("invalid expression: %v", err)
		}
		if t.EOF() {
			return toks, nil
		}
		switch symbolNames[t.Type] {
		case "Whitespace":
		case "Ident":
			toks = append(toks, token{tokIdent, t.Value})
		case "String":
			toks = append(toks, token{tokString, unquote(t.Value)})
		case "Number":
			toks = append(toks, token{tokNumber, t.Value})
		case "And":
			toks = append(toks, token{kind: tokAnd})
		case "Or":
			toks = append(toks, token{kind: tokOr})
		case "Eq":
			toks = append(toks, token{kind: tokEq})
		case "Ne":
			toks = append(toks, token{kind: tokNe})
		case "Not":
			toks = append(toks, token{kind: tokNot})
		case "LParen":
			toks = append(toks, token{kind: tokLParen})
		case "RParen":
			toks = append(toks, token{kind: tokRParen})
		case "BadString":
			return nil, errors.New("invalid expression: unterminated string")
		case "Amp":
			return nil, errors.New("invalid expression: single '&'")
		case "Pipe":
			return nil, errors.New("invalid expression: single '|'")
		case "Assign":
			return nil, errors.New("invalid expression: single '='")
		default:
			return nil, fmt.Errorf("invalid expression: unexpected char '%s'", t.Value)
		}
	}
}

// unquote strips the surrounding quotes and resolves escapes: a backslash
// drops and the following character is kept literally, whatever it is.
func unquote(s string) string {
	runes := []rune(s[1 : len(s)-1])
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) {
			i++
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}

// Grammar, precedence low to high:
//
//	or    := and ( '||' and )*
//	and   := not ( '&&' not )*
//	not   := '!' not | cmp
//	cmp   := '(' or ')' | value ( ('==' | '!=') value )?
//	value := IDENT | STRING | NUMBER
type parser struct {
	toks []token
	pos  int
	defs Resolver
}

func (p *parser) parseOr() (bool, error) {
	left, err := p.parseAnd()
	if err != nil {
		return false, err
	}
	for p.accept(tokOr) {
		right, err := p.parseAnd()
		if err != nil {
			return false, err
		}
		left = left || right
	}
	return left, nil
}

func (p *parser) parseAnd() (bool, error) {
	left, err := p.parseNot()
	if err != nil {
		return false, err
	}
	for p.accept(tokAnd) {
		right, err := p.parseNot()
		if err != nil {
			return false, err
		}
		left = left && right
	}
	return left, nil
}

func (p *parser) parseNot() (bool, error) {
	if p.accept(tokNot) {
		v, err := p.parseNot()
		if err != nil {
			return false, err
		}
		return !v, nil
	}
	return p.parseCmp()
}

func (p *parser) parseCmp() (bool, error) {
	if p.accept(tokLParen) {
		v, err := p.parseOr()
		if err != nil {
			return false, err
		}
		if !p.accept(tokRParen) {
			return false, errors.New("invalid expression: missing ')'")
		}
		return v, nil
	}
	left, err := p.parseValue()
	if err != nil {
		return false, err
	}
	if p.accept(tokEq) {
		right, err := p.parseValue()
		if err != nil {
			return false, err
		}
		return left == right, nil
	}
	if p.accept(tokNe) {
		right, err := p.parseValue()
		if err != nil {
			return false, err
		}
		return left != right, nil
	}
	return truthy(left), nil
}

func (p *parser) parseValue() (string, error) {
	if p.pos >= len(p.toks) {
		return "", errors.New("invalid expression: unexpected end")
	}
	t := p.toks[p.pos]
	switch t.kind {
	case tokIdent:
		p.pos++
		return p.defs.Value(t.text), nil
	case tokString, tokNumber:
		p.pos++
		return t.text, nil
	}
	return "", errors.New("invalid expression: expected value")
}

func (p *parser) accept(k kind) bool {
	if p.pos < len(p.toks) && p.toks[p.pos].kind == k {
		p.pos++
		return true
	}
	return false
}

// truthy converts a resolved string to a boolean: empty is false, and so are
// "0", "F", "FALSE" and "NO" in any case; everything else is true.
func truthy(v string) bool {
	if v == "" {
		return false
	}
	switch strings.ToUpper(v) {
	case "0", "F", "FALSE", "NO":
		return false
	}
	return true
}
