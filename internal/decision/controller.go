// Package decision wraps a linked EdgeRules model as a decision
// service: named functions callable from outside with a request
// value, plus mutation entry points (set/remove/rename an entry) that
// re-link atomically, and a portable ordered-mapping serialization of
// the whole model (spec.md §4.5, §6.3).
package decision

import (
	"fmt"
	"strings"

	"github.com/rimvydasb/edgerules-sub002/internal/ast"
	"github.com/rimvydasb/edgerules-sub002/internal/interp"
	"github.com/rimvydasb/edgerules-sub002/internal/linker"
	"github.com/rimvydasb/edgerules-sub002/internal/parser"
	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

// ErrorKind tags a controller-level failure: path not found, duplicate
// name, cross-context rename, invalid payload, or a failed re-link.
type ErrorKind int

const (
	NotFound ErrorKind = iota
	DuplicateName
	CrossContextRename
	InvalidPayload
	RelinkFailed
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case DuplicateName:
		return "DuplicateName"
	case CrossContextRename:
		return "CrossContextRename"
	case InvalidPayload:
		return "InvalidPayload"
	case RelinkFailed:
		return "RelinkFailed"
	default:
		return "Unknown"
	}
}

// ControllerError is a single decision-controller failure.
type ControllerError struct {
	Kind    ErrorKind
	Path    string
	Message string
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Path)
}

// Controller wraps one linked model for decision-service use. It is
// not safe for concurrent use (spec.md §5): callers needing
// concurrency run one Controller per goroutine.
type Controller struct {
	root    *ast.ContextObject
	ev      *interp.Evaluator
	rootEnv *interp.Environment
}

// FromSource parses and links src into a new Controller.
func FromSource(src string) (*Controller, error) {
	root, perrs := parser.ParseModel(src)
	if len(perrs) > 0 {
		parts := make([]string, len(perrs))
		for i, e := range perrs {
			parts[i] = e.Error()
		}
		return nil, fmt.Errorf("parse failed: %s", strings.Join(parts, "; "))
	}
	return FromPortable(root)
}

// FromPortable adopts an already-parsed+linked root context object.
// Linking is (re-)performed here so the Controller never wraps a
// partially-linked tree.
func FromPortable(root *ast.ContextObject) (*Controller, error) {
	linked, lerrs := linker.Link(root)
	if len(lerrs) > 0 {
		return nil, fmt.Errorf("link failed: %s", joinLinkErrs(lerrs))
	}
	c := &Controller{root: linked}
	c.resetEvaluator()
	return c, nil
}

func (c *Controller) resetEvaluator() {
	c.ev = interp.NewEvaluator()
	c.rootEnv = c.ev.Root(c.root)
}

// Execute looks up a user function named method and calls it with its
// sole parameter bound to request (spec.md §4.5).
func (c *Controller) Execute(method string, request types.Value) (types.Value, error) {
	fn, ok := c.root.Function(method)
	if !ok {
		return nil, &ControllerError{Kind: NotFound, Path: method, Message: "no such function"}
	}
	return c.ev.CallFunction(fn, c.rootEnv, []types.Value{request})
}

// GetLinkedType returns the static type at path; "*" returns the root
// object schema.
func (c *Controller) GetLinkedType(path string) (types.Type, error) {
	if path == "*" {
		return types.Object(c.root.Schema), nil
	}
	parts := splitPath(path)
	schema := c.root.Schema
	for i, seg := range parts {
		t, ok := schema.Lookup(seg)
		if !ok {
			return types.Type{}, &ControllerError{Kind: NotFound, Path: path, Message: "field '" + seg + "' not found"}
		}
		if i == len(parts)-1 {
			return t, nil
		}
		if t.Kind != types.KindObject && t.Kind != types.KindUserType {
			return types.Type{}, &ControllerError{Kind: NotFound, Path: path, Message: "'" + seg + "' is not a nested object"}
		}
		schema = t.Schema
	}
	return types.Type{}, &ControllerError{Kind: NotFound, Path: path, Message: "empty path"}
}

// GetEntry returns the portable representation of the entry at path
// ("*" returns the full model snapshot).
func (c *Controller) GetEntry(path string) (PortableValue, error) {
	if path == "*" {
		return c.ModelSnapshot()
	}
	env, ctx, name, err := c.resolveReadTarget(path)
	if err != nil {
		return nil, err
	}
	if idx := ctx.FieldIndex(name); idx >= 0 {
		v, err := c.ev.EvalField(env, name)
		if err != nil {
			return nil, err
		}
		return valueToPortable(v), nil
	}
	if fn, ok := ctx.Function(name); ok {
		return functionMarker(fn), nil
	}
	if ut, ok := ctx.UserTypeByName(name); ok {
		return typeMarker(ut), nil
	}
	return nil, &ControllerError{Kind: NotFound, Path: path, Message: "not found"}
}

// ModelSnapshot serializes the whole model into a portable ordered
// mapping (spec.md §4.5/§6.3).
func (c *Controller) ModelSnapshot() (PortableValue, error) {
	return c.snapshotContext(c.root, c.rootEnv)
}

func (c *Controller) snapshotContext(ctx *ast.ContextObject, env *interp.Environment) (*Object, error) {
	obj := &Object{}
	for _, t := range ctx.Types {
		obj.set(t.Name, typeMarker(t))
	}
	for _, fn := range ctx.Functions {
		obj.set(fn.Name, functionMarker(fn))
	}
	for _, f := range ctx.Fields {
		v, err := c.ev.EvalField(env, f.Name)
		if err != nil {
			return nil, err
		}
		if lit, ok := f.Expr.(*ast.ObjectLiteral); ok && (len(lit.Context.Types) > 0 || len(lit.Context.Functions) > 0) {
			if nestedEnv := c.ev.EnvFor(lit.Context); nestedEnv != nil {
				nested, err := c.snapshotContext(lit.Context, nestedEnv)
				if err != nil {
					return nil, err
				}
				obj.set(f.Name, nested)
				continue
			}
		}
		obj.set(f.Name, valueToPortable(v))
	}
	return obj, nil
}

// SetEntry inserts or replaces a field at path, re-linking afterwards.
// Numeric/boolean/string/nested-object payloads map to their value
// variants (spec.md §4.5); creating @type/@function entries this way
// is not supported (see DESIGN.md).
func (c *Controller) SetEntry(path string, payload PortableValue) (PortableValue, error) {
	ctx, name, err := c.resolveWriteTarget(path)
	if err != nil {
		return nil, err
	}
	expr, err := portableToExpr(ctx, payload)
	if err != nil {
		return nil, &ControllerError{Kind: InvalidPayload, Path: path, Message: err.Error()}
	}
	field := ast.Field{Name: name, Expr: expr, Pos: zeroPos}

	if err := c.mutate(ctx, func() error {
		if idx := ctx.FieldIndex(name); idx >= 0 {
			ctx.ReplaceField(idx, field)
			return nil
		}
		if err := ctx.AddField(field); err != nil {
			return &ControllerError{Kind: DuplicateName, Path: path, Message: err.Error()}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return c.GetEntry(path)
}

// RemoveEntry deletes the named field and re-links.
func (c *Controller) RemoveEntry(path string) error {
	ctx, name, err := c.resolveWriteTarget(path)
	if err != nil {
		return err
	}
	if ctx.FieldIndex(name) < 0 {
		return &ControllerError{Kind: NotFound, Path: path, Message: "not found"}
	}
	return c.mutate(ctx, func() error {
		ctx.RemoveField(name)
		return nil
	})
}

// RenameEntry renames a field in place. Both paths must resolve to
// the same parent context; the destination name must not already
// exist.
func (c *Controller) RenameEntry(oldPath, newPath string) error {
	oldCtx, oldName, err := c.resolveWriteTarget(oldPath)
	if err != nil {
		return err
	}
	newCtx, newName, err := c.resolveWriteTarget(newPath)
	if err != nil {
		return err
	}
	if oldCtx != newCtx {
		return &ControllerError{Kind: CrossContextRename, Path: oldPath, Message: "rename target '" + newPath + "' is in a different context"}
	}
	return c.mutate(oldCtx, func() error {
		if err := oldCtx.RenameField(oldName, newName); err != nil {
			return &ControllerError{Kind: DuplicateName, Path: newPath, Message: err.Error()}
		}
		return nil
	})
}

// mutate applies fn to ctx, then re-links the whole model. On
// re-link failure the prior field state is restored atomically
// (spec.md §4.5). On success the Evaluator's memoization is reset,
// since mutation invalidates any previously cached field values.
func (c *Controller) mutate(ctx *ast.ContextObject, fn func() error) error {
	snap := ctx.SnapshotFields()
	if err := fn(); err != nil {
		return err
	}
	_, lerrs := linker.Link(c.root)
	if len(lerrs) > 0 {
		ctx.RestoreFields(snap)
		linker.Link(c.root)
		return &ControllerError{Kind: RelinkFailed, Message: joinLinkErrs(lerrs)}
	}
	c.resetEvaluator()
	return nil
}

// resolveWriteTarget walks the pure AST structure (no evaluation
// needed: nested object literal Context pointers exist as soon as the
// model is parsed) to find the ContextObject that should own the
// final path segment.
func (c *Controller) resolveWriteTarget(path string) (*ast.ContextObject, string, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, "", &ControllerError{Kind: NotFound, Path: path, Message: "empty path"}
	}
	ctx := c.root
	for _, seg := range parts[:len(parts)-1] {
		idx := ctx.FieldIndex(seg)
		if idx < 0 {
			return nil, "", &ControllerError{Kind: NotFound, Path: path, Message: "field '" + seg + "' not found"}
		}
		lit, ok := ctx.Fields[idx].Expr.(*ast.ObjectLiteral)
		if !ok {
			return nil, "", &ControllerError{Kind: NotFound, Path: path, Message: "'" + seg + "' is not a nested object"}
		}
		ctx = lit.Context
	}
	return ctx, parts[len(parts)-1], nil
}

// resolveReadTarget mirrors resolveWriteTarget but also forces
// evaluation of each intermediate object-valued field so the
// corresponding Environment exists to read the final segment from.
func (c *Controller) resolveReadTarget(path string) (*interp.Environment, *ast.ContextObject, string, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, nil, "", &ControllerError{Kind: NotFound, Path: path, Message: "empty path"}
	}
	ctx := c.root
	env := c.rootEnv
	for _, seg := range parts[:len(parts)-1] {
		idx := ctx.FieldIndex(seg)
		if idx < 0 {
			return nil, nil, "", &ControllerError{Kind: NotFound, Path: path, Message: "field '" + seg + "' not found"}
		}
		lit, ok := ctx.Fields[idx].Expr.(*ast.ObjectLiteral)
		if !ok {
			return nil, nil, "", &ControllerError{Kind: NotFound, Path: path, Message: "'" + seg + "' is not a nested object"}
		}
		if _, err := c.ev.EvalField(env, seg); err != nil {
			return nil, nil, "", err
		}
		nextEnv := c.ev.EnvFor(lit.Context)
		if nextEnv == nil {
			return nil, nil, "", fmt.Errorf("internal error: no environment for '%s'", seg)
		}
		ctx, env = lit.Context, nextEnv
	}
	return env, ctx, parts[len(parts)-1], nil
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func joinLinkErrs(errs []*linker.LinkError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
