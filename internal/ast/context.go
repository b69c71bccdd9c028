package ast

import (
	"strings"

	"github.com/rimvydasb/edgerules-sub002/internal/lexer"
	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

// ContextObject is the central aggregate (spec.md §3.2): a named scope
// owning ordered fields, user functions, user types, and metadata. The
// Parent pointer is a non-owning back-edge; ownership flows only
// top-down through Fields[i].Expr / Functions[i].Body / nested object
// literals.
type ContextObject struct {
	Fields    []Field
	Functions []*UserFunction
	Types     []*UserType
	Metadata  *Metadata

	Parent *ContextObject

	// allNames is used for duplicate-name detection across all three
	// definition kinds (spec.md §3.2 invariant).
	allNames map[string]bool

	// Schema is the derived static type, populated once linking
	// completes.
	Schema *types.Schema
}

// NewContextObject creates an empty context object.
func NewContextObject(parent *ContextObject) *ContextObject {
	return &ContextObject{
		Metadata: NewMetadata(),
		Parent:   parent,
		allNames: map[string]bool{},
	}
}

// DuplicateNameError reports a name collision within one context object.
type DuplicateNameError struct {
	Kind string // "field" | "function" | "user type"
	Name string
}

func (e *DuplicateNameError) Error() string {
	return "Duplicate " + e.Kind + " '" + e.Name + "'"
}

func (c *ContextObject) checkUnique(kind, name string) error {
	if c.allNames[name] {
		return &DuplicateNameError{Kind: kind, Name: name}
	}
	c.allNames[name] = true
	return nil
}

// AddField appends a field, enforcing name uniqueness.
func (c *ContextObject) AddField(f Field) error {
	if err := c.checkUnique("field", f.Name); err != nil {
		return err
	}
	c.Fields = append(c.Fields, f)
	return nil
}

// AddFunction appends a user function, enforcing name uniqueness.
func (c *ContextObject) AddFunction(f *UserFunction) error {
	if err := c.checkUnique("function", f.Name); err != nil {
		return err
	}
	c.Functions = append(c.Functions, f)
	return nil
}

// AddType appends a user type, enforcing name uniqueness.
func (c *ContextObject) AddType(t *UserType) error {
	if err := c.checkUnique("user type", t.Name); err != nil {
		return err
	}
	c.Types = append(c.Types, t)
	return nil
}

// FieldIndex returns the index of the named field, or -1.
func (c *ContextObject) FieldIndex(name string) int {
	for i, f := range c.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Function looks up a user function by name in this context only.
func (c *ContextObject) Function(name string) (*UserFunction, bool) {
	for _, f := range c.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// UserTypeByName looks up a user type by name in this context only.
func (c *ContextObject) UserTypeByName(name string) (*UserType, bool) {
	for _, t := range c.Types {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// ReplaceField replaces the expression at path index i (used by the
// decision service's set_entry, spec.md §4.5).
func (c *ContextObject) ReplaceField(i int, f Field) {
	c.Fields[i] = f
}

// RemoveField deletes a field by name, re-opening its name for reuse.
func (c *ContextObject) RemoveField(name string) bool {
	for i, f := range c.Fields {
		if f.Name == name {
			c.Fields = append(c.Fields[:i], c.Fields[i+1:]...)
			delete(c.allNames, name)
			return true
		}
	}
	return false
}

// RenameField renames a field in place.
func (c *ContextObject) RenameField(oldName, newName string) error {
	idx := c.FieldIndex(oldName)
	if idx < 0 {
		return &FieldNotFoundError{Name: oldName}
	}
	if c.allNames[newName] {
		return &DuplicateNameError{Kind: "field", Name: newName}
	}
	delete(c.allNames, oldName)
	c.allNames[newName] = true
	c.Fields[idx].Name = newName
	return nil
}

// FieldsSnapshot is a point-in-time copy of a ContextObject's field
// list and name set, used to roll back a decision-controller mutation
// that fails to re-link (spec.md §4.5: "Re-linking after mutation must
// be atomic: on failure, the prior linked state is restored").
type FieldsSnapshot struct {
	fields []Field
	names  map[string]bool
}

// SnapshotFields captures the current Fields/allNames state.
func (c *ContextObject) SnapshotFields() FieldsSnapshot {
	names := make(map[string]bool, len(c.allNames))
	for k, v := range c.allNames {
		names[k] = v
	}
	return FieldsSnapshot{fields: append([]Field{}, c.Fields...), names: names}
}

// RestoreFields reverts to a previously captured snapshot.
func (c *ContextObject) RestoreFields(s FieldsSnapshot) {
	c.Fields = s.fields
	c.allNames = s.names
}

// FieldNotFoundError reports a missing field/name lookup (controller
// errors, spec.md §4.5/§7).
type FieldNotFoundError struct{ Name string }

func (e *FieldNotFoundError) Error() string { return "field '" + e.Name + "' not found" }

// String renders the context object in brace surface syntax: user types
// first, then functions, then fields, each group in declaration order.
func (c *ContextObject) String() string {
	var sb strings.Builder
	sb.WriteString("{ ")
	first := true
	for _, t := range c.Types {
		if !first {
			sb.WriteString("; ")
		}
		sb.WriteString(t.String())
		first = false
	}
	for _, fn := range c.Functions {
		if !first {
			sb.WriteString("; ")
		}
		sb.WriteString(fn.String())
		first = false
	}
	for _, f := range c.Fields {
		if !first {
			sb.WriteString("; ")
		}
		sb.WriteString(f.Name + ": " + f.Expr.String())
		first = false
	}
	sb.WriteString(" }")
	return sb.String()
}

func (c *ContextObject) Pos() lexer.Position {
	if len(c.Fields) > 0 {
		return c.Fields[0].Pos
	}
	return lexer.Position{Line: 1, Column: 1}
}

// ToSchema builds the object's static type from its cached Schema
// (populated by the linker's schema pass).
func (c *ContextObject) ToSchema() types.Type {
	return types.Object(c.Schema)
}
