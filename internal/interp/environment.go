// Package interp evaluates a linked EdgeRules context object tree into
// portable runtime values, using the memoized, cycle-safe execution
// frame described in spec.md §4.4.
package interp

import (
	"fmt"

	"github.com/rimvydasb/edgerules-sub002/internal/ast"
	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

type fieldState int

const (
	unseen fieldState = iota
	inProgress
	computed
	failed
)

// Environment is one runtime instance of a ContextObject: object
// literals and the root get exactly one, memoized for their whole
// lifetime; each user-function call gets a fresh one so recursion-safe
// per-call memoization never leaks across calls (spec.md §4.4).
type Environment struct {
	Ctx    *ast.ContextObject
	Parent *Environment

	values map[string]types.Value
	states map[string]fieldState
	errs   map[string]error

	// params holds a function-call Environment's pre-evaluated,
	// already-bound argument values (never recomputed).
	params []types.Value
}

// NewEnvironment creates a fresh, empty-memoization instance over ctx.
func NewEnvironment(ctx *ast.ContextObject, parent *Environment) *Environment {
	return &Environment{
		Ctx:    ctx,
		Parent: parent,
		values: map[string]types.Value{},
		states: map[string]fieldState{},
		errs:   map[string]error{},
	}
}

// findEnv walks the Parent chain to the Environment instance backing
// the given ContextObject AST node.
func (env *Environment) findEnv(ctx *ast.ContextObject) *Environment {
	for e := env; e != nil; e = e.Parent {
		if e.Ctx == ctx {
			return e
		}
	}
	return nil
}

// CyclicEvaluationError is the runtime counterpart of the linker's
// CyclicReference — unreachable in practice since the linker already
// rejects cyclic field graphs, kept as a defensive guard.
type CyclicEvaluationError struct{ Name string }

func (e *CyclicEvaluationError) Error() string {
	return fmt.Sprintf("cyclic evaluation of '%s'", e.Name)
}
