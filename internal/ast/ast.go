// Package ast defines the EdgeRules abstract syntax tree: expression
// variants, definition variants (field, user function, user type,
// metadata), and the context object that owns them.
package ast

import (
	"strings"

	"github.com/rimvydasb/edgerules-sub002/internal/lexer"
	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

// Node is the base interface for every AST node.
type Node interface {
	Pos() lexer.Position
	String() string
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
	// LinkedType returns the static type attached by the linker, or
	// types.Unresolved before linking.
	LinkedType() types.Type
	SetLinkedType(types.Type)
}

// baseExpr factors the position + linked-type bookkeeping shared by
// every Expression variant.
type baseExpr struct {
	pos        lexer.Position
	linkedType types.Type
}

func (b *baseExpr) Pos() lexer.Position        { return b.pos }
func (b *baseExpr) LinkedType() types.Type     { return b.linkedType }
func (b *baseExpr) SetLinkedType(t types.Type) { b.linkedType = t }
func (*baseExpr) expressionNode()              {}

func newBase(pos lexer.Position) baseExpr {
	return baseExpr{pos: pos, linkedType: types.Unresolved}
}

// Text renders source-like text for an expression, used by the linker
// and runtime errors to report "the offending expression text"
// (spec.md §4.3/§7).
func Text(e Expression) string {
	if e == nil {
		return ""
	}
	return e.String()
}

func joinExprs(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
