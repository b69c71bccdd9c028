package interp

import (
	"fmt"

	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

func temporalBuiltins() map[string]func(args []types.Value) (types.Value, error) {
	return map[string]func(args []types.Value) (types.Value, error){
		"date": func(args []types.Value) (types.Value, error) {
			if len(args) == 1 {
				switch v := args[0].(type) {
				case types.StringValue:
					d, err := types.ParseDate(v.V)
					if err != nil {
						return nil, fmt.Errorf("date(%q): %w", v.V, err)
					}
					return d, nil
				case types.DateTimeValue:
					return v.Date, nil
				case types.DateValue:
					return v, nil
				}
				return nil, fmt.Errorf("date() does not accept a %s", args[0].Kind())
			}
			if len(args) == 3 {
				y, err := asNumber(args[0], "date")
				if err != nil {
					return nil, err
				}
				m, err := asNumber(args[1], "date")
				if err != nil {
					return nil, err
				}
				d, err := asNumber(args[2], "date")
				if err != nil {
					return nil, err
				}
				return types.DateValue{Year: int(y.IntPart()), Month: int(m.IntPart()), Day: int(d.IntPart())}, nil
			}
			return nil, fmt.Errorf("date() takes 1 or 3 arguments")
		},
		"time": func(args []types.Value) (types.Value, error) {
			if len(args) == 1 {
				switch v := args[0].(type) {
				case types.StringValue:
					t, err := types.ParseTime(v.V)
					if err != nil {
						return nil, fmt.Errorf("time(%q): %w", v.V, err)
					}
					return t, nil
				case types.DateTimeValue:
					return v.Time, nil
				case types.TimeValue:
					return v, nil
				}
				return nil, fmt.Errorf("time() does not accept a %s", args[0].Kind())
			}
			if len(args) >= 2 && len(args) <= 4 {
				parts := make([]int, 4)
				for i, a := range args {
					n, err := asNumber(a, "time")
					if err != nil {
						return nil, err
					}
					parts[i] = int(n.IntPart())
				}
				return types.TimeValue{Hour: parts[0], Minute: parts[1], Second: parts[2]}, nil
			}
			return nil, fmt.Errorf("time() takes 1, 2, 3 or 4 arguments")
		},
		"datetime": func(args []types.Value) (types.Value, error) {
			if len(args) == 1 {
				s, err := asString(args[0], "datetime")
				if err != nil {
					return nil, err
				}
				dt, perr := types.ParseDateTime(s)
				if perr != nil {
					return nil, fmt.Errorf("datetime(%q): %w", s, perr)
				}
				return dt, nil
			}
			if len(args) == 2 {
				d, ok := args[0].(types.DateValue)
				if !ok {
					return nil, fmt.Errorf("datetime() first argument must be a date, got %s", args[0].Kind())
				}
				t, ok := args[1].(types.TimeValue)
				if !ok {
					return nil, fmt.Errorf("datetime() second argument must be a time, got %s", args[1].Kind())
				}
				return types.DateTimeValue{Date: d, Time: t}, nil
			}
			return nil, fmt.Errorf("datetime() takes 1 or 2 arguments")
		},
		"duration": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "duration")
			if err != nil {
				return nil, err
			}
			d, perr := types.ParseDuration(s)
			if perr != nil {
				return nil, fmt.Errorf("duration(%q): %w", s, perr)
			}
			return d, nil
		},
		"period": func(args []types.Value) (types.Value, error) {
			s, err := asString(args[0], "period")
			if err != nil {
				return nil, err
			}
			p, perr := types.ParsePeriod(s)
			if perr != nil {
				return nil, fmt.Errorf("period(%q): %w", s, perr)
			}
			return p, nil
		},
	}
}
