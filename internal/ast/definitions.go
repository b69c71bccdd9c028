package ast

import (
	"strings"

	"github.com/rimvydasb/edgerules-sub002/internal/lexer"
	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

// Field is a named expression owned by exactly one ContextObject.
type Field struct {
	Name string
	Expr Expression
	Pos  lexer.Position
	// Declared/HasDeclared hold an optional explicit field type. The
	// parser leaves them unset: a placeholder such as `<number>` in
	// `identification: <number>` is stored in Expr as a *PlaceholderExpr.
	Declared    types.Type
	HasDeclared bool
}

// Param is one ordered, optionally-typed user function parameter.
type Param struct {
	Name        string
	Declared    types.Type
	HasDeclared bool
}

// UserFunction is a source-defined function: name, ordered parameters,
// and a context-object body whose `return` field (if any) is the call
// result (spec.md Glossary).
type UserFunction struct {
	Name   string
	Params []Param
	Body   *ContextObject
	Pos    lexer.Position
}

func (f *UserFunction) String() string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return "func " + f.Name + "(" + strings.Join(names, ", ") + "): " + f.Body.String()
}

// TypeFieldDefault is one field of a UserType: its static type and an
// optional default-value expression used during `as` cast expansion.
type TypeFieldDefault struct {
	Name    string
	Type    types.Type
	Default Expression // nil if no default
}

// UserType is a named schema with per-field defaults (spec.md Glossary).
type UserType struct {
	Name   string
	Fields []TypeFieldDefault
	Pos    lexer.Position
}

func (t *UserType) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "type " + t.Name + ": { " + strings.Join(parts, "; ") + " }"
}

// Schema returns the UserType's fields as a types.Schema.
func (t *UserType) Schema() *types.Schema {
	fields := make([]types.Field, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = types.Field{Name: f.Name, Type: f.Type}
	}
	return types.NewSchema(fields...)
}

// Metadata holds model-level assignments like `version` and `name`
// that are not fields (spec.md §3.2).
type Metadata struct {
	Entries map[string]string
	Order   []string
}

func NewMetadata() *Metadata { return &Metadata{Entries: map[string]string{}} }

func (m *Metadata) Set(key, value string) {
	if _, exists := m.Entries[key]; !exists {
		m.Order = append(m.Order, key)
	}
	m.Entries[key] = value
}
