package linker

import "github.com/rimvydasb/edgerules-sub002/internal/ast"

// RefKind tags what an Identifier or CallExpr was resolved to.
type RefKind int

const (
	RefField RefKind = iota
	RefParam
	RefFunctionValue
	RefBuiltinCall
	RefUserFunctionCall
)

// LinkedNode is the resolution the linker attaches to Identifier.Ref
// and CallExpr.Ref (spec.md §4.3's "reference pass").
type LinkedNode struct {
	Kind RefKind

	// RefField: the context object that owns the field (may be an
	// ancestor of the expression's own context) and the field name.
	Owner *ast.ContextObject
	Name  string

	// RefParam: index into the owning function's Params.
	ParamIndex int
	Function   *ast.UserFunction

	// RefBuiltinCall: the registered built-in name (== Name).
}
