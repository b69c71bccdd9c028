// Package parser implements the EdgeRules parser: a small
// operator-precedence (Pratt) parser that folds a token stream into a
// context-object tree (spec.md §4.2).
package parser

import (
	"fmt"

	"github.com/rimvydasb/edgerules-sub002/internal/ast"
	"github.com/rimvydasb/edgerules-sub002/internal/lexer"
	"github.com/shopspring/decimal"
)

// Precedence levels, lowest to highest, matching spec.md §4.2's rank
// list: or < xor < and < not < comparisons < range `..` < additive <
// multiplicative < unary minus < function-call/field-access/indexing.
const (
	LOWEST = iota * 10
	OR
	XOR
	AND
	NOT
	COMPARE
	RANGE
	ADDITIVE
	MULTIPLICATIVE
	UNARY
	CALL
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:         OR,
	lexer.XOR:        XOR,
	lexer.AND:        AND,
	lexer.ASSIGN:     COMPARE,
	lexer.NOT_EQ:     COMPARE,
	lexer.LESS:       COMPARE,
	lexer.LESS_EQ:    COMPARE,
	lexer.GREATER:    COMPARE,
	lexer.GREATER_EQ: COMPARE,
	lexer.DOTDOT:     RANGE,
	lexer.PLUS:       ADDITIVE,
	lexer.MINUS:      ADDITIVE,
	lexer.ASTERISK:   MULTIPLICATIVE,
	lexer.SLASH:      MULTIPLICATIVE,
	lexer.AS:         CALL,
	lexer.LPAREN:     CALL,
	lexer.LBRACK:     CALL,
	lexer.DOT:        CALL,
}

// ParseError is a single parse failure with its source offset
// (spec.md §4.2).
type ParseError struct {
	Message string
	Pos     lexer.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Message, e.Pos.Line, e.Pos.Column)
}

// Parser folds a lexer.Lexer's token stream into a *ast.ContextObject.
type Parser struct {
	l    *lexer.Lexer
	errs []*ParseError

	cur  lexer.Token
	peek lexer.Token
}

// New creates a Parser over l and primes the two-token lookahead.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []*ParseError { return p.errs }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(pos lexer.Position, format string, args ...interface{}) {
	p.errs = append(p.errs, &ParseError{Message: fmt.Sprintf(format, args...), Pos: pos})
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

// skipSeparators consumes any run of ';' and newline tokens, both of
// which terminate a field (spec.md §4.1).
func (p *Parser) skipSeparators() {
	for p.curIs(lexer.SEMI) || p.curIs(lexer.NEWLINE) {
		p.next()
	}
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
	return false
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseModel parses a full source text into the root context object.
// The outermost brace is optional at the top level (spec.md §4.2).
func ParseModel(source string) (*ast.ContextObject, []*ParseError) {
	p := New(lexer.New(source))
	root := p.parseTopLevel()
	return root, p.errs
}

func (p *Parser) parseTopLevel() *ast.ContextObject {
	p.skipSeparators()
	if p.curIs(lexer.LBRACE) {
		ctx := ast.NewContextObject(nil)
		p.next()
		p.parseObjectBodyInto(ctx)
		return ctx
	}
	ctx := ast.NewContextObject(nil)
	p.parseFieldsUntil(ctx, lexer.EOF)
	return ctx
}

// parseObjectBodyInto parses `field ; field ... }` assuming the
// opening brace has already been consumed.
func (p *Parser) parseObjectBodyInto(ctx *ast.ContextObject) {
	p.parseFieldsUntil(ctx, lexer.RBRACE)
	if p.curIs(lexer.RBRACE) {
		p.next()
	} else {
		p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
	}
}

func (p *Parser) parseFieldsUntil(ctx *ast.ContextObject, end lexer.TokenType) {
	p.skipSeparators()
	for !p.curIs(end) && !p.curIs(lexer.EOF) {
		p.parseOneField(ctx)
		p.skipSeparators()
	}
}

// parseInlineObject parses a `{ ... }` expression, with the opening
// brace already consumed, returning the nested context object.
func (p *Parser) parseInlineObject(parent *ast.ContextObject) *ast.ContextObject {
	ctx := ast.NewContextObject(parent)
	p.parseObjectBodyInto(ctx)
	return ctx
}

func cloneDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
