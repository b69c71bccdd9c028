package parser

import (
	"github.com/rimvydasb/edgerules-sub002/internal/ast"
	"github.com/rimvydasb/edgerules-sub002/internal/lexer"
	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

// parseOneField dispatches on the field kind: a user function, a user
// type, a metadata entry, or a plain `name: expr` field (spec.md §4.2).
func (p *Parser) parseOneField(ctx *ast.ContextObject) {
	switch p.cur.Type {
	case lexer.FUNC:
		p.parseFunctionDef(ctx)
	case lexer.TYPE:
		p.parseUserTypeDef(ctx)
	case lexer.AT:
		p.parseMetadata(ctx)
	case lexer.IDENT:
		p.parseFieldAssignment(ctx)
	default:
		p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
		p.next()
	}
}

func (p *Parser) parseFieldAssignment(ctx *ast.ContextObject) {
	tok := p.cur
	name := tok.Literal
	p.next()
	if !p.curIs(lexer.COLON) {
		p.errorf(p.cur.Pos, "assignment side is not complete")
		return
	}
	p.next()
	expr := p.parseExpression(ctx, LOWEST)
	if expr == nil {
		p.errorf(tok.Pos, "Left assignment side is not complete")
		return
	}
	if err := ctx.AddField(ast.Field{Name: name, Expr: expr, Pos: tok.Pos}); err != nil {
		p.errorf(tok.Pos, "%s", err.Error())
	}
}

func (p *Parser) parseFunctionDef(ctx *ast.ContextObject) {
	pos := p.cur.Pos
	p.next() // 'func'
	if !p.curIs(lexer.IDENT) {
		p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
		return
	}
	name := p.cur.Literal
	p.next()
	if !p.expect(lexer.LPAREN) {
		return
	}
	var params []ast.Param
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
			break
		}
		param := ast.Param{Name: p.cur.Literal}
		p.next()
		if p.curIs(lexer.COLON) {
			p.next()
			param.Declared, param.HasDeclared = p.parseTypeRef()
		}
		params = append(params, param)
		if p.curIs(lexer.COMMA) {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN)
	if !p.expect(lexer.COLON) {
		return
	}
	body := p.parseFunctionBody(ctx)
	fn := &ast.UserFunction{Name: name, Params: params, Body: body, Pos: pos}
	if err := ctx.AddFunction(fn); err != nil {
		p.errorf(pos, "%s", err.Error())
	}
}

// parseTypeRef parses a (possibly list) type name following a ':',
// used by function parameter declarations.
func (p *Parser) parseTypeRef() (types.Type, bool) {
	if !p.curIs(lexer.IDENT) {
		return types.Type{}, false
	}
	t, ok := types.ParseTypeName(p.cur.Literal)
	p.next()
	for p.curIs(lexer.LBRACK) {
		p.next()
		p.expect(lexer.RBRACK)
		t = types.List(t)
	}
	return t, ok
}

// parseFunctionBody parses either an object body `{ ... }` or a single
// inline expression, which is transparently wrapped into an object
// with one `return` field (spec.md §4.2).
func (p *Parser) parseFunctionBody(ctx *ast.ContextObject) *ast.ContextObject {
	if p.curIs(lexer.LBRACE) {
		p.next()
		return p.parseInlineObject(ctx)
	}
	body := ast.NewContextObject(ctx)
	expr := p.parseExpression(body, LOWEST)
	if expr != nil {
		_ = body.AddField(ast.Field{Name: "return", Expr: expr})
	}
	return body
}

// parseUserTypeDef parses `type Name: { field: <type[, default]>; ... }`.
func (p *Parser) parseUserTypeDef(ctx *ast.ContextObject) {
	pos := p.cur.Pos
	p.next() // 'type'
	if !p.curIs(lexer.IDENT) {
		p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
		return
	}
	name := p.cur.Literal
	p.next()
	if !p.expect(lexer.COLON) {
		return
	}
	if !p.expect(lexer.LBRACE) {
		return
	}
	var fields []ast.TypeFieldDefault
	p.skipSeparators()
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
			break
		}
		fname := p.cur.Literal
		p.next()
		if !p.expect(lexer.COLON) {
			break
		}
		if !p.expect(lexer.LESS) {
			break
		}
		ftype, _ := p.parseTypeRef()
		var def ast.Expression
		if p.curIs(lexer.COMMA) {
			p.next()
			def = p.parseExpression(ctx, COMPARE)
		}
		if !p.expect(lexer.GREATER) {
			break
		}
		fields = append(fields, ast.TypeFieldDefault{Name: fname, Type: ftype, Default: def})
		p.skipSeparators()
	}
	p.expect(lexer.RBRACE)
	ut := &ast.UserType{Name: name, Fields: fields, Pos: pos}
	if err := ctx.AddType(ut); err != nil {
		p.errorf(pos, "%s", err.Error())
	}
}

// parseMetadata parses `@key: value` (spec.md §3.2's "metadata" kind:
// version, model name).
func (p *Parser) parseMetadata(ctx *ast.ContextObject) {
	p.next() // '@'
	if !p.curIs(lexer.IDENT) {
		p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
		return
	}
	key := p.cur.Literal
	p.next()
	if !p.expect(lexer.COLON) {
		return
	}
	if !p.curIs(lexer.STRING) && !p.curIs(lexer.IDENT) && !p.curIs(lexer.NUMBER) {
		p.errorf(p.cur.Pos, "Unexpected '%s'", p.cur.Literal)
		return
	}
	value := p.cur.Literal
	p.next()
	ctx.Metadata.Set(key, value)
}
