package parser

import (
	"github.com/rimvydasb/edgerules-sub002/internal/ast"
	"github.com/rimvydasb/edgerules-sub002/internal/lexer"
)

// parseExpression is the Pratt-parser core: parse a prefix term, then
// fold in infix operators while their precedence exceeds minPrec.
func (p *Parser) parseExpression(ctx *ast.ContextObject, minPrec int) ast.Expression {
	left := p.parsePrefix(ctx)
	if left == nil {
		return nil
	}
	for !p.curIs(lexer.SEMI) && !p.curIs(lexer.NEWLINE) && precedences[p.cur.Type] > minPrec {
		left = p.parseInfix(ctx, left)
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parsePrefix(ctx *ast.ContextObject) ast.Expression {
	switch p.cur.Type {
	case lexer.NUMBER:
		tok := p.cur
		p.next()
		return ast.NewNumberLiteral(tok.Pos, tok.Literal, cloneDecimal(tok.Literal))
	case lexer.STRING:
		tok := p.cur
		p.next()
		return ast.NewStringLiteral(tok.Pos, tok.Literal)
	case lexer.TRUE:
		tok := p.cur
		p.next()
		return ast.NewBooleanLiteral(tok.Pos, true)
	case lexer.FALSE:
		tok := p.cur
		p.next()
		return ast.NewBooleanLiteral(tok.Pos, false)
	case lexer.ELLIPSIS:
		tok := p.cur
		p.next()
		return ast.NewWildcardExpr(tok.Pos)
	case lexer.IDENT:
		return p.parseIdentifierOrKeywordIdent(ctx)
	case lexer.NOT:
		tok := p.cur
		p.next()
		operand := p.parseExpression(ctx, NOT)
		return ast.NewUnaryExpr(tok.Pos, "not", operand)
	case lexer.MINUS:
		tok := p.cur
		p.next()
		operand := p.parseExpression(ctx, UNARY)
		return ast.NewUnaryExpr(tok.Pos, "-", operand)
	case lexer.LPAREN:
		p.next()
		inner := p.parseExpression(ctx, LOWEST)
		p.expect(lexer.RPAREN)
		return inner
	case lexer.LBRACK:
		return p.parseListLiteral(ctx)
	case lexer.LBRACE:
		tok := p.cur
		p.next()
		inner := p.parseInlineObject(ctx)
		return ast.NewObjectLiteral(tok.Pos, inner)
	case lexer.IF:
		return p.parseIfExpr(ctx)
	case lexer.FOR:
		return p.parseForExpr(ctx)
	case lexer.LESS:
		return p.parsePlaceholder()
	default:
		p.errorf(p.cur.Pos, "Unsupported expression")
		p.next()
		return nil
	}
}

// parseIdentifierOrKeywordIdent treats `it` as the filter wildcard
// identifier and otherwise parses a plain Identifier.
func (p *Parser) parseIdentifierOrKeywordIdent(_ *ast.ContextObject) ast.Expression {
	tok := p.cur
	p.next()
	if tok.Literal == "it" {
		return ast.NewWildcardExpr(tok.Pos)
	}
	return ast.NewIdentifier(tok.Pos, tok.Literal)
}

func (p *Parser) parseInfix(ctx *ast.ContextObject, left ast.Expression) ast.Expression {
	switch p.cur.Type {
	case lexer.DOT:
		p.next()
		if !p.curIs(lexer.IDENT) {
			p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
			return nil
		}
		seg := p.cur.Literal
		pos := p.cur.Pos
		p.next()
		return ast.NewPathAccess(pos, left, seg)
	case lexer.LPAREN:
		return p.parseCall(ctx, left)
	case lexer.LBRACK:
		return p.parseFilter(ctx, left)
	case lexer.AS:
		pos := p.cur.Pos
		p.next()
		if !p.curIs(lexer.IDENT) {
			p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
			return nil
		}
		name := p.cur.Literal
		p.next()
		return ast.NewCastExpr(pos, left, name)
	case lexer.DOTDOT:
		pos := p.cur.Pos
		p.next()
		right := p.parseExpression(ctx, RANGE)
		return ast.NewRangeExpr(pos, left, right)
	default:
		op := p.cur
		prec := precedences[op.Type]
		p.next()
		right := p.parseExpression(ctx, prec)
		return ast.NewBinaryExpr(op.Pos, opLiteral(op), left, right)
	}
}

func opLiteral(tok lexer.Token) string {
	switch tok.Type {
	case lexer.AND:
		return "and"
	case lexer.OR:
		return "or"
	case lexer.XOR:
		return "xor"
	case lexer.NOT_EQ:
		return "!="
	default:
		return tok.Literal
	}
}

func (p *Parser) parseListLiteral(ctx *ast.ContextObject) ast.Expression {
	pos := p.cur.Pos
	p.next() // consume '['
	var elems []ast.Expression
	for !p.curIs(lexer.RBRACK) && !p.curIs(lexer.EOF) {
		e := p.parseExpression(ctx, LOWEST)
		if e != nil {
			elems = append(elems, e)
		}
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RBRACK)
	return ast.NewListLiteral(pos, elems)
}

func (p *Parser) parseIfExpr(ctx *ast.ContextObject) ast.Expression {
	pos := p.cur.Pos
	p.next() // if
	cond := p.parseExpression(ctx, LOWEST)
	if !p.expect(lexer.THEN) {
		return nil
	}
	then := p.parseExpression(ctx, LOWEST)
	if !p.expect(lexer.ELSE) {
		return nil
	}
	els := p.parseExpression(ctx, LOWEST)
	return ast.NewIfExpr(pos, cond, then, els)
}

func (p *Parser) parseForExpr(ctx *ast.ContextObject) ast.Expression {
	pos := p.cur.Pos
	p.next() // for
	if !p.curIs(lexer.IDENT) {
		p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
		return nil
	}
	varName := p.cur.Literal
	p.next()
	if !p.expect(lexer.IN) {
		return nil
	}
	source := p.parseExpression(ctx, LOWEST)
	if !p.expect(lexer.RETURN) {
		return nil
	}
	body := p.parseExpression(ctx, LOWEST)
	return ast.NewForExpr(pos, varName, source, body)
}

func (p *Parser) parseCall(ctx *ast.ContextObject, callee ast.Expression) ast.Expression {
	pos := p.cur.Pos
	p.next() // '('
	var args []ast.Expression
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		a := p.parseExpression(ctx, LOWEST)
		if a != nil {
			args = append(args, a)
		}
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	return ast.NewCallExpr(pos, callee, args)
}

// parseFilter parses `base[ ... ]`: a range (lo..hi), an index, or a
// predicate. The parser only disambiguates the syntactically
// unambiguous range form; index vs. predicate is resolved by the
// linker from the selector's static type (spec.md §4.2/§4.4).
func (p *Parser) parseFilter(ctx *ast.ContextObject, base ast.Expression) ast.Expression {
	pos := p.cur.Pos
	p.next() // '['
	selector := p.parseExpression(ctx, LOWEST)
	p.expect(lexer.RBRACK)
	return ast.NewIndexOrPredicateFilter(pos, base, selector)
}

// parsePlaceholder parses a bare type placeholder `<number>` or
// `<number[]>` used as a field's value.
func (p *Parser) parsePlaceholder() ast.Expression {
	pos := p.cur.Pos
	p.next() // '<'
	if !p.curIs(lexer.IDENT) {
		p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
		return nil
	}
	name := p.cur.Literal
	p.next()
	suffix := ""
	for p.curIs(lexer.LBRACK) {
		p.next()
		if !p.expect(lexer.RBRACK) {
			break
		}
		suffix += "[]"
	}
	if !p.curIs(lexer.GREATER) {
		p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
		return nil
	}
	p.next()
	return ast.NewPlaceholderExpr(pos, name+suffix)
}
