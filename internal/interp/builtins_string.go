package interp

import (
	"fmt"
	"strings"

	"github.com/rimvydasb/edgerules-sub002/internal/types"
	"github.com/shopspring/decimal"
)

func asString(v types.Value, who string) (string, error) {
	s, ok := v.(types.StringValue)
	if !ok {
		return "", fmt.Errorf("%s requires a string, got %s", who, v.Kind())
	}
	return s.V, nil
}

// clampStringIndex turns a (possibly negative, possibly out-of-range)
// 0-based index into a valid rune-slice boundary, matching the
// language's 0-based list-indexing convention (spec.md §Filter).
func clampStringIndex(i int, n int) int {
	if i < 0 {
		i = n + i
	}
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i
}

func stringBuiltins() map[string]func(args []types.Value) (types.Value, error) {
	return map[string]func(args []types.Value) (types.Value, error){
		"substring": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "substring")
			if err != nil {
				return nil, err
			}
			start, err := asNumber(args[1], "substring")
			if err != nil {
				return nil, err
			}
			runes := []rune(s)
			from := clampStringIndex(int(start.IntPart()), len(runes))
			to := len(runes)
			if len(args) > 2 {
				length, err := asNumber(args[2], "substring")
				if err != nil {
					return nil, err
				}
				to = clampStringIndex(from+int(length.IntPart()), len(runes))
			}
			if to < from {
				to = from
			}
			return types.StringValue{V: string(runes[from:to])}, nil
		},
		"length": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "length")
			if err != nil {
				return nil, err
			}
			return types.NumberValue{V: decimal.NewFromInt(int64(len([]rune(s))))}, nil
		},
		"toUpperCase": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "toUpperCase")
			if err != nil {
				return nil, err
			}
			return types.StringValue{V: strings.ToUpper(s)}, nil
		},
		"toLowerCase": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "toLowerCase")
			if err != nil {
				return nil, err
			}
			return types.StringValue{V: strings.ToLower(s)}, nil
		},
		"substringBefore": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "substringBefore")
			if err != nil {
				return nil, err
			}
			sep, err := asString(args[1], "substringBefore")
			if err != nil {
				return nil, err
			}
			if idx := strings.Index(s, sep); idx >= 0 {
				return types.StringValue{V: s[:idx]}, nil
			}
			return types.StringValue{V: ""}, nil
		},
		"substringAfter": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "substringAfter")
			if err != nil {
				return nil, err
			}
			sep, err := asString(args[1], "substringAfter")
			if err != nil {
				return nil, err
			}
			if idx := strings.Index(s, sep); idx >= 0 {
				return types.StringValue{V: s[idx+len(sep):]}, nil
			}
			return types.StringValue{V: ""}, nil
		},
		"contains": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "contains")
			if err != nil {
				return nil, err
			}
			sub, err := asString(args[1], "contains")
			if err != nil {
				return nil, err
			}
			return types.BooleanValue{V: strings.Contains(s, sub)}, nil
		},
		"startsWith": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "startsWith")
			if err != nil {
				return nil, err
			}
			p, err := asString(args[1], "startsWith")
			if err != nil {
				return nil, err
			}
			return types.BooleanValue{V: strings.HasPrefix(s, p)}, nil
		},
		"endsWith": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "endsWith")
			if err != nil {
				return nil, err
			}
			p, err := asString(args[1], "endsWith")
			if err != nil {
				return nil, err
			}
			return types.BooleanValue{V: strings.HasSuffix(s, p)}, nil
		},
		"split": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "split")
			if err != nil {
				return nil, err
			}
			sep, err := asString(args[1], "split")
			if err != nil {
				return nil, err
			}
			parts := strings.Split(s, sep)
			elems := make([]types.Value, len(parts))
			for i, p := range parts {
				elems[i] = types.StringValue{V: p}
			}
			return types.ListValue{Elements: elems, ElemType: types.String}, nil
		},
		"trim": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "trim")
			if err != nil {
				return nil, err
			}
			return types.StringValue{V: strings.TrimSpace(s)}, nil
		},
		"replace": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "replace")
			if err != nil {
				return nil, err
			}
			old, err := asString(args[1], "replace")
			if err != nil {
				return nil, err
			}
			newS, err := asString(args[2], "replace")
			if err != nil {
				return nil, err
			}
			return types.StringValue{V: strings.ReplaceAll(s, old, newS)}, nil
		},
		"replaceFirst": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "replaceFirst")
			if err != nil {
				return nil, err
			}
			old, err := asString(args[1], "replaceFirst")
			if err != nil {
				return nil, err
			}
			newS, err := asString(args[2], "replaceFirst")
			if err != nil {
				return nil, err
			}
			return types.StringValue{V: strings.Replace(s, old, newS, 1)}, nil
		},
		"indexOf": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "indexOf")
			if err != nil {
				return nil, err
			}
			sub, err := asString(args[1], "indexOf")
			if err != nil {
				return nil, err
			}
			return types.NumberValue{V: decimal.NewFromInt(int64(strings.Index(s, sub)))}, nil
		},
		"lastIndexOf": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "lastIndexOf")
			if err != nil {
				return nil, err
			}
			sub, err := asString(args[1], "lastIndexOf")
			if err != nil {
				return nil, err
			}
			return types.NumberValue{V: decimal.NewFromInt(int64(strings.LastIndex(s, sub)))}, nil
		},
		"padStart": func(args []types.Value) (types.Value, error) {
			return padString(args, true)
		},
		"padEnd": func(args []types.Value) (types.Value, error) {
			return padString(args, false)
		},
		"repeat": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "repeat")
			if err != nil {
				return nil, err
			}
			n, err := asNumber(args[1], "repeat")
			if err != nil {
				return nil, err
			}
			count := int(n.IntPart())
			if count < 0 {
				count = 0
			}
			return types.StringValue{V: strings.Repeat(s, count)}, nil
		},
		"toString": func(args []types.Value) (types.Value, error) {
			if s, ok := args[0].(types.StringValue); ok {
				return s, nil
			}
			return types.StringValue{V: args[0].String()}, nil
		},
		"toNumber": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "toNumber")
			if err != nil {
				return nil, err
			}
			d, derr := decimal.NewFromString(strings.TrimSpace(s))
			if derr != nil {
				return nil, fmt.Errorf("toNumber: %q is not a number", s)
			}
			return types.NumberValue{V: d}, nil
		},
	}
}

func padString(args []types.Value, start bool) (types.Value, error) {
	s, err := asString(args[0], "pad")
	if err != nil {
		return nil, err
	}
	n, err := asNumber(args[1], "pad")
	if err != nil {
		return nil, err
	}
	pad := " "
	if len(args) > 2 {
		pad, err = asString(args[2], "pad")
		if err != nil {
			return nil, err
		}
	}
	if pad == "" {
		return types.StringValue{V: s}, nil
	}
	target := int(n.IntPart())
	runes := []rune(s)
	if len(runes) >= target {
		return types.StringValue{V: s}, nil
	}
	var b strings.Builder
	need := target - len(runes)
	fill := strings.Repeat(pad, (need/len([]rune(pad)))+1)
	fillRunes := []rune(fill)[:need]
	if start {
		b.WriteString(string(fillRunes))
		b.WriteString(s)
	} else {
		b.WriteString(s)
		b.WriteString(string(fillRunes))
	}
	return types.StringValue{V: b.String()}, nil
}
