package interp

import (
	"fmt"
	"math"

	"github.com/rimvydasb/edgerules-sub002/internal/types"
	"github.com/shopspring/decimal"
)

func asNumber(v types.Value, who string) (decimal.Decimal, error) {
	n, ok := v.(types.NumberValue)
	if !ok {
		return decimal.Zero, fmt.Errorf("%s requires a number, got %s", who, v.Kind())
	}
	return n.V, nil
}

func mathBuiltins() map[string]func(args []types.Value) (types.Value, error) {
	return map[string]func(args []types.Value) (types.Value, error){
		"abs": func(args []types.Value) (types.Value, error) {
			n, err := asNumber(args[0], "abs")
			if err != nil {
				return nil, err
			}
			return types.NumberValue{V: n.Abs()}, nil
		},
		"round": func(args []types.Value) (types.Value, error) {
			n, err := asNumber(args[0], "round")
			if err != nil {
				return nil, err
			}
			places := int32(0)
			if len(args) > 1 {
				p, err := asNumber(args[1], "round")
				if err != nil {
					return nil, err
				}
				places = int32(p.IntPart())
			}
			return types.NumberValue{V: n.Round(places)}, nil
		},
		"floor": func(args []types.Value) (types.Value, error) {
			n, err := asNumber(args[0], "floor")
			if err != nil {
				return nil, err
			}
			return types.NumberValue{V: n.Floor()}, nil
		},
		"ceil": func(args []types.Value) (types.Value, error) {
			n, err := asNumber(args[0], "ceil")
			if err != nil {
				return nil, err
			}
			return types.NumberValue{V: n.Ceil()}, nil
		},
		"sqrt": func(args []types.Value) (types.Value, error) {
			n, err := asNumber(args[0], "sqrt")
			if err != nil {
				return nil, err
			}
			f, _ := n.Float64()
			if f < 0 {
				return nil, fmt.Errorf("sqrt of a negative number")
			}
			return types.NumberValue{V: decimal.NewFromFloat(math.Sqrt(f))}, nil
		},
		"pow": func(args []types.Value) (types.Value, error) {
			base, err := asNumber(args[0], "pow")
			if err != nil {
				return nil, err
			}
			exp, err := asNumber(args[1], "pow")
			if err != nil {
				return nil, err
			}
			return types.NumberValue{V: base.Pow(exp)}, nil
		},
		"mod": func(args []types.Value) (types.Value, error) {
			a, err := asNumber(args[0], "mod")
			if err != nil {
				return nil, err
			}
			b, err := asNumber(args[1], "mod")
			if err != nil {
				return nil, err
			}
			if b.IsZero() {
				return nil, fmt.Errorf("mod by zero")
			}
			return types.NumberValue{V: a.Mod(b)}, nil
		},
	}
}
