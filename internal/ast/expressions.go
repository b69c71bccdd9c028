package ast

import (
	"strings"

	"github.com/rimvydasb/edgerules-sub002/internal/lexer"
	"github.com/shopspring/decimal"
)

// NumberLiteral is a decimal numeric literal.
type NumberLiteral struct {
	baseExpr
	Value decimal.Decimal
	Raw   string
}

func NewNumberLiteral(pos lexer.Position, raw string, v decimal.Decimal) *NumberLiteral {
	return &NumberLiteral{baseExpr: newBase(pos), Value: v, Raw: raw}
}
func (n *NumberLiteral) String() string { return n.Value.String() }

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	baseExpr
	Value string
}

func NewStringLiteral(pos lexer.Position, v string) *StringLiteral {
	return &StringLiteral{baseExpr: newBase(pos), Value: v}
}
func (s *StringLiteral) String() string { return "'" + strings.ReplaceAll(s.Value, "'", "\\'") + "'" }

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	baseExpr
	Value bool
}

func NewBooleanLiteral(pos lexer.Position, v bool) *BooleanLiteral {
	return &BooleanLiteral{baseExpr: newBase(pos), Value: v}
}
func (b *BooleanLiteral) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// Identifier is a bare name reference, resolved by the linker against
// the enclosing context object chain or the built-in function table.
type Identifier struct {
	baseExpr
	Name string
	// Ref is populated by the linker (see internal/linker.LinkedNode).
	Ref interface{}
}

func NewIdentifier(pos lexer.Position, name string) *Identifier {
	return &Identifier{baseExpr: newBase(pos), Name: name}
}
func (i *Identifier) String() string { return i.Name }

// PathAccess is a dotted reference `base.segment`, resolved one
// segment at a time against the previously resolved schema.
type PathAccess struct {
	baseExpr
	Base    Expression
	Segment string
}

func NewPathAccess(pos lexer.Position, base Expression, segment string) *PathAccess {
	return &PathAccess{baseExpr: newBase(pos), Base: base, Segment: segment}
}
func (p *PathAccess) String() string { return p.Base.String() + "." + p.Segment }

// UnaryExpr is a prefix operator: `not x`, `-x`.
type UnaryExpr struct {
	baseExpr
	Op      string
	Operand Expression
}

func NewUnaryExpr(pos lexer.Position, op string, operand Expression) *UnaryExpr {
	return &UnaryExpr{baseExpr: newBase(pos), Op: op, Operand: operand}
}
func (u *UnaryExpr) String() string { return u.Op + " " + u.Operand.String() }

// BinaryExpr is an infix operator application.
type BinaryExpr struct {
	baseExpr
	Op    string
	Left  Expression
	Right Expression
}

func NewBinaryExpr(pos lexer.Position, op string, left, right Expression) *BinaryExpr {
	return &BinaryExpr{baseExpr: newBase(pos), Op: op, Left: left, Right: right}
}
func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

// RangeExpr is `lo..hi`.
type RangeExpr struct {
	baseExpr
	Low  Expression
	High Expression
}

func NewRangeExpr(pos lexer.Position, low, high Expression) *RangeExpr {
	return &RangeExpr{baseExpr: newBase(pos), Low: low, High: high}
}
func (r *RangeExpr) String() string { return r.Low.String() + ".." + r.High.String() }

// IfExpr is `if cond then then_ else else_`.
type IfExpr struct {
	baseExpr
	Cond Expression
	Then Expression
	Else Expression
}

func NewIfExpr(pos lexer.Position, cond, then, els Expression) *IfExpr {
	return &IfExpr{baseExpr: newBase(pos), Cond: cond, Then: then, Else: els}
}
func (f *IfExpr) String() string {
	return "if " + f.Cond.String() + " then " + f.Then.String() + " else " + f.Else.String()
}

// ForExpr is a list comprehension `for name in source return body`.
type ForExpr struct {
	baseExpr
	Var    string
	Source Expression
	Body   Expression
}

func NewForExpr(pos lexer.Position, v string, source, body Expression) *ForExpr {
	return &ForExpr{baseExpr: newBase(pos), Var: v, Source: source, Body: body}
}
func (f *ForExpr) String() string {
	return "for " + f.Var + " in " + f.Source.String() + " return " + f.Body.String()
}

// ListLiteral is `[e1, e2, ...]`.
type ListLiteral struct {
	baseExpr
	Elements []Expression
}

func NewListLiteral(pos lexer.Position, elems []Expression) *ListLiteral {
	return &ListLiteral{baseExpr: newBase(pos), Elements: elems}
}
func (l *ListLiteral) String() string { return "[" + joinExprs(l.Elements) + "]" }

// ObjectLiteral is an inline `{ name: expr; ... }` expression, most
// often seen on the left side of an `as` cast.
type ObjectLiteral struct {
	baseExpr
	Context *ContextObject
}

func NewObjectLiteral(pos lexer.Position, ctx *ContextObject) *ObjectLiteral {
	return &ObjectLiteral{baseExpr: newBase(pos), Context: ctx}
}
func (o *ObjectLiteral) String() string { return o.Context.String() }

// CastExpr is `E as Name`, attaching a user-type schema (and default
// expansion) to the value produced by Value.
type CastExpr struct {
	baseExpr
	Value    Expression
	TypeName string
	// ResolvedType is populated by the linker once TypeName has been
	// resolved against the enclosing context chain.
	ResolvedType *UserType
}

func NewCastExpr(pos lexer.Position, value Expression, typeName string) *CastExpr {
	return &CastExpr{baseExpr: newBase(pos), Value: value, TypeName: typeName}
}
func (c *CastExpr) String() string { return c.Value.String() + " as " + c.TypeName }

// FilterKind distinguishes the three forms of `E[...]`. A parser only
// ever produces FilterRange (syntactically unambiguous, `lo..hi`) or
// FilterUnresolved; the linker resolves FilterUnresolved to
// FilterIndex or FilterPredicate once the Selector's static type is
// known (Number -> index, Boolean -> predicate).
type FilterKind int

const (
	FilterUnresolved FilterKind = iota
	FilterIndex
	FilterRange
	FilterPredicate
)

// FilterExpr is `Base[Index]`, `Base[Low..High]`, or `Base[Predicate]`.
// Inside Predicate, both `it` and the `...` wildcard refer to the
// current element.
type FilterExpr struct {
	baseExpr
	Base     Expression
	Kind     FilterKind
	Selector Expression // index or predicate; nil when Kind == FilterRange
	Low, High Expression // FilterRange
}

func NewIndexOrPredicateFilter(pos lexer.Position, base, selector Expression) *FilterExpr {
	if r, ok := selector.(*RangeExpr); ok {
		return &FilterExpr{baseExpr: newBase(pos), Base: base, Kind: FilterRange, Low: r.Low, High: r.High}
	}
	return &FilterExpr{baseExpr: newBase(pos), Base: base, Kind: FilterUnresolved, Selector: selector}
}
func (f *FilterExpr) String() string {
	switch f.Kind {
	case FilterRange:
		return f.Base.String() + "[" + f.Low.String() + ".." + f.High.String() + "]"
	default:
		return f.Base.String() + "[" + f.Selector.String() + "]"
	}
}

// CallExpr is `callee(arg1, ..., argN)`: a built-in or user function
// call, or (when Callee is a PathAccess/Identifier resolving to a
// FunctionRef) a user function invocation.
type CallExpr struct {
	baseExpr
	Callee Expression
	Args   []Expression
	// Ref is populated by the linker with a *linker.LinkedNode: either a
	// RefBuiltinCall naming a built-in, or a RefUserFunctionCall carrying
	// the resolved user function to invoke.
	Ref interface{}
}

func NewCallExpr(pos lexer.Position, callee Expression, args []Expression) *CallExpr {
	return &CallExpr{baseExpr: newBase(pos), Callee: callee, Args: args}
}
func (c *CallExpr) String() string { return c.Callee.String() + "(" + joinExprs(c.Args) + ")" }

// PlaceholderExpr is a bare type placeholder used as a field's value,
// e.g. `identification: <number>`. It carries no computed value; the
// linker assigns its Declared type directly instead of inferring one,
// and evaluating it yields Missing.
type PlaceholderExpr struct {
	baseExpr
	TypeName string // as written, e.g. "number", "number[]"
}

func NewPlaceholderExpr(pos lexer.Position, typeName string) *PlaceholderExpr {
	return &PlaceholderExpr{baseExpr: newBase(pos), TypeName: typeName}
}
func (ph *PlaceholderExpr) String() string { return "<" + ph.TypeName + ">" }

// WildcardExpr is `it` or `...` inside a filter predicate.
type WildcardExpr struct{ baseExpr }

func NewWildcardExpr(pos lexer.Position) *WildcardExpr { return &WildcardExpr{baseExpr: newBase(pos)} }
func (*WildcardExpr) String() string                   { return "it" }
