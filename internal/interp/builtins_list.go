package interp

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rimvydasb/edgerules-sub002/internal/types"
	"github.com/shopspring/decimal"
)

func asList(v types.Value, who string) (types.ListValue, error) {
	l, ok := v.(types.ListValue)
	if !ok {
		return types.ListValue{}, fmt.Errorf("%s requires a list, got %s", who, v.Kind())
	}
	return l, nil
}

func listBuiltins() map[string]func(args []types.Value) (types.Value, error) {
	return map[string]func(args []types.Value) (types.Value, error){
		"all": func(args []types.Value) (types.Value, error) {
			l, err := asList(args[0], "all")
			if err != nil {
				return nil, err
			}
			for _, e := range l.Elements {
				b, ok := e.(types.BooleanValue)
				if !ok || !b.V {
					return types.BooleanValue{V: false}, nil
				}
			}
			return types.BooleanValue{V: true}, nil
		},
		"any": func(args []types.Value) (types.Value, error) {
			l, err := asList(args[0], "any")
			if err != nil {
				return nil, err
			}
			for _, e := range l.Elements {
				if b, ok := e.(types.BooleanValue); ok && b.V {
					return types.BooleanValue{V: true}, nil
				}
			}
			return types.BooleanValue{V: false}, nil
		},
		"append": func(args []types.Value) (types.Value, error) {
			l, err := asList(args[0], "append")
			if err != nil {
				return nil, err
			}
			out := append(append([]types.Value{}, l.Elements...), args[1])
			return types.ListValue{Elements: out, ElemType: l.ElemType}, nil
		},
		"concatenate": func(args []types.Value) (types.Value, error) {
			var out []types.Value
			elemType := types.Any
			for i, a := range args {
				l, err := asList(a, "concatenate")
				if err != nil {
					return nil, err
				}
				if i == 0 {
					elemType = l.ElemType
				}
				out = append(out, l.Elements...)
			}
			return types.ListValue{Elements: out, ElemType: elemType}, nil
		},
		"remove": func(args []types.Value) (types.Value, error) {
			l, err := asList(args[0], "remove")
			if err != nil {
				return nil, err
			}
			n, err := asNumber(args[1], "remove")
			if err != nil {
				return nil, err
			}
			idx := int(n.IntPart())
			if idx < 0 || idx >= len(l.Elements) {
				return l, nil
			}
			out := append([]types.Value{}, l.Elements[:idx]...)
			out = append(out, l.Elements[idx+1:]...)
			return types.ListValue{Elements: out, ElemType: l.ElemType}, nil
		},
		"reverse": func(args []types.Value) (types.Value, error) {
			l, err := asList(args[0], "reverse")
			if err != nil {
				return nil, err
			}
			out := make([]types.Value, len(l.Elements))
			for i, e := range l.Elements {
				out[len(out)-1-i] = e
			}
			return types.ListValue{Elements: out, ElemType: l.ElemType}, nil
		},
		"sort": func(args []types.Value) (types.Value, error) {
			return sortList(args[0], false)
		},
		"sortDescending": func(args []types.Value) (types.Value, error) {
			return sortList(args[0], true)
		},
		"union": func(args []types.Value) (types.Value, error) {
			var out []types.Value
			elemType := types.Any
			seen := map[string]bool{}
			for i, a := range args {
				l, err := asList(a, "union")
				if err != nil {
					return nil, err
				}
				if i == 0 {
					elemType = l.ElemType
				}
				for _, e := range l.Elements {
					key := e.String()
					if !seen[key] {
						seen[key] = true
						out = append(out, e)
					}
				}
			}
			return types.ListValue{Elements: out, ElemType: elemType}, nil
		},
		"distinctValues": func(args []types.Value) (types.Value, error) {
			l, err := asList(args[0], "distinctValues")
			if err != nil {
				return nil, err
			}
			seen := map[string]bool{}
			var out []types.Value
			for _, e := range l.Elements {
				key := e.String()
				if !seen[key] {
					seen[key] = true
					out = append(out, e)
				}
			}
			return types.ListValue{Elements: out, ElemType: l.ElemType}, nil
		},
		"duplicateValues": func(args []types.Value) (types.Value, error) {
			l, err := asList(args[0], "duplicateValues")
			if err != nil {
				return nil, err
			}
			seen := map[string]bool{}
			reported := map[string]bool{}
			var out []types.Value
			for _, e := range l.Elements {
				key := e.String()
				if seen[key] && !reported[key] {
					out = append(out, e)
					reported[key] = true
				}
				seen[key] = true
			}
			return types.ListValue{Elements: out, ElemType: l.ElemType}, nil
		},
		"flatten": func(args []types.Value) (types.Value, error) {
			l, err := asList(args[0], "flatten")
			if err != nil {
				return nil, err
			}
			var out []types.Value
			elemType := types.Any
			for _, e := range l.Elements {
				if inner, ok := e.(types.ListValue); ok {
					elemType = inner.ElemType
					out = append(out, inner.Elements...)
				} else {
					out = append(out, e)
				}
			}
			return types.ListValue{Elements: out, ElemType: elemType}, nil
		},
		"join": func(args []types.Value) (types.Value, error) {
			l, err := asList(args[0], "join")
			if err != nil {
				return nil, err
			}
			sep := ""
			if len(args) > 1 {
				sep, err = asString(args[1], "join")
				if err != nil {
					return nil, err
				}
			}
			parts := make([]string, len(l.Elements))
			for i, e := range l.Elements {
				if s, ok := e.(types.StringValue); ok {
					parts[i] = s.V
				} else {
					parts[i] = e.String()
				}
			}
			return types.StringValue{V: strings.Join(parts, sep)}, nil
		},
		"isEmpty": func(args []types.Value) (types.Value, error) {
			l, err := asList(args[0], "isEmpty")
			if err != nil {
				return nil, err
			}
			return types.BooleanValue{V: len(l.Elements) == 0}, nil
		},
		"min": func(args []types.Value) (types.Value, error) { return listExtreme(args[0], true) },
		"max": func(args []types.Value) (types.Value, error) { return listExtreme(args[0], false) },
		"sum": func(args []types.Value) (types.Value, error) {
			nums, missing, err := numericElements(args[0], "sum")
			if err != nil {
				return nil, err
			}
			if missing != nil {
				return missing, nil
			}
			total := decimal.Zero
			for _, n := range nums {
				total = total.Add(n)
			}
			return types.NumberValue{V: total}, nil
		},
		"product": func(args []types.Value) (types.Value, error) {
			nums, missing, err := numericElements(args[0], "product")
			if err != nil {
				return nil, err
			}
			if missing != nil {
				return missing, nil
			}
			total := decimal.NewFromInt(1)
			for _, n := range nums {
				total = total.Mul(n)
			}
			return types.NumberValue{V: total}, nil
		},
		"mean": func(args []types.Value) (types.Value, error) {
			nums, missing, err := numericElements(args[0], "mean")
			if err != nil {
				return nil, err
			}
			if missing != nil {
				return missing, nil
			}
			if len(nums) == 0 {
				return nil, fmt.Errorf("mean of an empty list")
			}
			total := decimal.Zero
			for _, n := range nums {
				total = total.Add(n)
			}
			return types.NumberValue{V: total.DivRound(decimal.NewFromInt(int64(len(nums))), 20)}, nil
		},
		"median": func(args []types.Value) (types.Value, error) {
			nums, missing, err := numericElements(args[0], "median")
			if err != nil {
				return nil, err
			}
			if missing != nil {
				return missing, nil
			}
			if len(nums) == 0 {
				return nil, fmt.Errorf("median of an empty list")
			}
			sorted := append([]decimal.Decimal{}, nums...)
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cmp(sorted[j]) < 0 })
			mid := len(sorted) / 2
			if len(sorted)%2 == 1 {
				return types.NumberValue{V: sorted[mid]}, nil
			}
			return types.NumberValue{V: sorted[mid-1].Add(sorted[mid]).DivRound(decimal.NewFromInt(2), 20)}, nil
		},
		"stddev": func(args []types.Value) (types.Value, error) {
			nums, missing, err := numericElements(args[0], "stddev")
			if err != nil {
				return nil, err
			}
			if missing != nil {
				return missing, nil
			}
			if len(nums) < 2 {
				return nil, fmt.Errorf("stddev requires at least two values")
			}
			total := decimal.Zero
			for _, n := range nums {
				total = total.Add(n)
			}
			mean := total.DivRound(decimal.NewFromInt(int64(len(nums))), 20)
			sq := decimal.Zero
			for _, n := range nums {
				diff := n.Sub(mean)
				sq = sq.Add(diff.Mul(diff))
			}
			variance := sq.DivRound(decimal.NewFromInt(int64(len(nums)-1)), 20)
			f, _ := variance.Float64()
			return types.NumberValue{V: decimal.NewFromFloat(math.Sqrt(f))}, nil
		},
		"count": func(args []types.Value) (types.Value, error) {
			l, err := asList(args[0], "count")
			if err != nil {
				return nil, err
			}
			return types.NumberValue{V: decimal.NewFromInt(int64(len(l.Elements)))}, nil
		},
	}
}

// numericElements unpacks a list of numbers for an aggregate builtin.
// If an element is Missing, it short-circuits: missing is the
// first-encountered Missing value and nums is nil, so the caller
// returns missing as the aggregate's result instead of computing one
// (spec.md §4.4: an aggregate over a list containing a Missing returns
// the first encountered Missing).
func numericElements(v types.Value, who string) (nums []decimal.Decimal, missing types.Value, err error) {
	l, err := asList(v, who)
	if err != nil {
		return nil, nil, err
	}
	out := make([]decimal.Decimal, 0, len(l.Elements))
	for _, e := range l.Elements {
		if m, ok := types.IsMissing(e); ok {
			return nil, m, nil
		}
		n, ok := e.(types.NumberValue)
		if !ok {
			return nil, nil, fmt.Errorf("%s requires a list of numbers, found %s", who, e.Kind())
		}
		out = append(out, n.V)
	}
	return out, nil, nil
}

func listExtreme(v types.Value, wantMin bool) (types.Value, error) {
	l, err := asList(v, "min/max")
	if err != nil {
		return nil, err
	}
	if len(l.Elements) == 0 {
		return types.NewMissing("N/A"), nil
	}
	best := l.Elements[0]
	for _, e := range l.Elements[1:] {
		c, err := compareOp("<", e, best)
		if err != nil {
			return nil, err
		}
		if m, ok := types.IsMissing(c); ok {
			return m, nil
		}
		lt := c.(types.BooleanValue).V
		if lt == wantMin {
			best = e
		}
	}
	return best, nil
}

func sortList(v types.Value, descending bool) (types.Value, error) {
	l, err := asList(v, "sort")
	if err != nil {
		return nil, err
	}
	out := append([]types.Value{}, l.Elements...)
	var sortErr error
	var missing types.Value
	sort.SliceStable(out, func(i, j int) bool {
		if missing != nil {
			return false
		}
		c, err := compareOp("<", out[i], out[j])
		if err != nil {
			sortErr = err
			return false
		}
		if m, ok := types.IsMissing(c); ok {
			missing = m
			return false
		}
		lt := c.(types.BooleanValue).V
		if descending {
			return !lt && !valuesEqual(out[i], out[j])
		}
		return lt
	})
	if missing != nil {
		return missing, nil
	}
	if sortErr != nil {
		return nil, sortErr
	}
	return types.ListValue{Elements: out, ElemType: l.ElemType}, nil
}
