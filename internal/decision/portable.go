package decision

import (
	"fmt"

	"github.com/rimvydasb/edgerules-sub002/internal/ast"
	"github.com/rimvydasb/edgerules-sub002/internal/lexer"
	"github.com/rimvydasb/edgerules-sub002/internal/types"
	"github.com/shopspring/decimal"
)

// PortableValue is the dynamic payload shape set_entry/get_entry/
// model_snapshot move across the controller boundary: nil, bool,
// string, Number, float64/int (convenience numeric literals), a
// *Object (nested mapping), or []interface{} (a list).
type PortableValue = interface{}

// Number is a portable numeric value carried as exact decimal text, so
// a value round-tripped through set_entry/get_entry never loses
// precision the way a float64 would (spec.md §8.1 law 6).
type Number string

// NumberFrom renders a decimal.Decimal as a portable Number.
func NumberFrom(d decimal.Decimal) Number { return Number(d.String()) }

// Entry is one named slot of an Object, in declaration order.
type Entry struct {
	Key   string
	Value interface{}
}

// Object is the portable format's ordered mapping (spec.md §6.3):
// keys preserve declaration order across a load/snapshot round-trip,
// which a plain Go map cannot guarantee.
type Object struct {
	Entries []Entry
}

// Get looks up an entry by key.
func (o *Object) Get(key string) (interface{}, bool) {
	for _, e := range o.Entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func (o *Object) set(key string, v interface{}) {
	o.Entries = append(o.Entries, Entry{Key: key, Value: v})
}

var zeroPos = lexer.Position{Line: 1, Column: 1}

// valueToPortable renders an evaluated runtime Value as its portable
// counterpart (spec.md §6.3's scalar/nested-mapping forms).
func valueToPortable(v types.Value) interface{} {
	switch val := v.(type) {
	case types.NumberValue:
		return NumberFrom(val.V)
	case types.StringValue:
		return val.V
	case types.BooleanValue:
		return val.V
	case types.MissingValue:
		return nil
	case types.ListValue:
		out := make([]interface{}, len(val.Elements))
		for i, e := range val.Elements {
			out[i] = valueToPortable(e)
		}
		return out
	case types.ObjectValue:
		obj := &Object{}
		for _, f := range val.Fields {
			obj.set(f.Name, valueToPortable(f.Value))
		}
		return obj
	default:
		return val.String()
	}
}

// typeMarker renders a UserType declaration in the `@type: "type"` form
// (spec.md §6.3).
func typeMarker(ut *ast.UserType) *Object {
	obj := &Object{}
	obj.set("@type", "type")
	for _, f := range ut.Fields {
		typeStr := f.Type.String()
		if f.Default != nil {
			typeStr += ", " + f.Default.String()
		}
		obj.set(f.Name, typeStr)
	}
	return obj
}

// functionMarker renders a UserFunction declaration in the
// `@type: "function"` form (spec.md §6.3). Parameters and body fields
// are rendered structurally (surface syntax), not evaluated, since a
// function body cannot be evaluated without a call.
func functionMarker(fn *ast.UserFunction) *Object {
	obj := &Object{}
	obj.set("@type", "function")
	params := &Object{}
	for _, p := range fn.Params {
		typeName := "any"
		if p.HasDeclared {
			typeName = p.Declared.String()
		}
		params.set(p.Name, typeName)
	}
	obj.set("@parameters", params)
	for _, f := range fn.Body.Fields {
		obj.set(f.Name, f.Expr.String())
	}
	return obj
}

// portableToExpr builds the literal expression tree backing a
// set_entry payload. parent is the context object that will own the
// resulting field, needed so a nested object literal's Context.Parent
// matches what the parser would have produced (required for linker
// name resolution).
func portableToExpr(parent *ast.ContextObject, v interface{}) (ast.Expression, error) {
	switch val := v.(type) {
	case nil:
		return ast.NewPlaceholderExpr(zeroPos, "any"), nil
	case bool:
		return ast.NewBooleanLiteral(zeroPos, val), nil
	case string:
		return ast.NewStringLiteral(zeroPos, val), nil
	case Number:
		d, err := decimal.NewFromString(string(val))
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return ast.NewNumberLiteral(zeroPos, string(val), d), nil
	case float64:
		return ast.NewNumberLiteral(zeroPos, "", decimal.NewFromFloat(val)), nil
	case int:
		return ast.NewNumberLiteral(zeroPos, "", decimal.NewFromInt(int64(val))), nil
	case []interface{}:
		elems := make([]ast.Expression, len(val))
		for i, e := range val {
			ex, err := portableToExpr(parent, e)
			if err != nil {
				return nil, err
			}
			elems[i] = ex
		}
		return ast.NewListLiteral(zeroPos, elems), nil
	case *Object:
		if kind, ok := val.Get("@type"); ok {
			return nil, fmt.Errorf("set_entry does not support creating @type:%v entries; declare them in source instead", kind)
		}
		ctx := ast.NewContextObject(parent)
		for _, e := range val.Entries {
			ex, err := portableToExpr(ctx, e.Value)
			if err != nil {
				return nil, err
			}
			if err := ctx.AddField(ast.Field{Name: e.Key, Expr: ex, Pos: zeroPos}); err != nil {
				return nil, err
			}
		}
		return ast.NewObjectLiteral(zeroPos, ctx), nil
	default:
		return nil, fmt.Errorf("unsupported portable value type %T", v)
	}
}
