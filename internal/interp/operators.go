package interp

import (
	"fmt"
	"time"

	"github.com/rimvydasb/edgerules-sub002/internal/types"
)

// evalBinary implements spec.md §4.4's runtime operator semantics,
// including Missing propagation: if either operand is Missing, the
// result is Missing, carrying the first-seen origin (SPEC_FULL.md
// Open Question 2).
func evalBinary(op string, l, r types.Value) (types.Value, error) {
	if lm, ok := types.IsMissing(l); ok {
		return lm, nil
	}
	if rm, ok := types.IsMissing(r); ok {
		return rm, nil
	}
	switch op {
	case "+":
		return evalPlus(l, r)
	case "-":
		return evalMinus(l, r)
	case "*":
		return arithMultiply(l, r)
	case "/":
		return arithDivide(l, r)
	case "=":
		return types.BooleanValue{V: valuesEqual(l, r)}, nil
	case "!=":
		return types.BooleanValue{V: !valuesEqual(l, r)}, nil
	case ">", ">=", "<", "<=":
		return compareOp(op, l, r)
	case "and":
		return types.BooleanValue{V: mustBool(l) && mustBool(r)}, nil
	case "or":
		return types.BooleanValue{V: mustBool(l) || mustBool(r)}, nil
	case "xor":
		return types.BooleanValue{V: mustBool(l) != mustBool(r)}, nil
	default:
		return nil, fmt.Errorf("unsupported operator '%s'", op)
	}
}

func mustBool(v types.Value) bool {
	if b, ok := v.(types.BooleanValue); ok {
		return b.V
	}
	return false
}

func evalPlus(l, r types.Value) (types.Value, error) {
	switch lv := l.(type) {
	case types.NumberValue:
		if rv, ok := r.(types.NumberValue); ok {
			return types.NumberValue{V: lv.V.Add(rv.V)}, nil
		}
	case types.StringValue:
		if rv, ok := r.(types.StringValue); ok {
			return types.StringValue{V: lv.V + rv.V}, nil
		}
	case types.DateValue:
		switch rv := r.(type) {
		case types.PeriodValue:
			d, err := types.AddDatePeriod(lv, rv)
			return d, err
		case types.DurationValue:
			dt := types.DateTimeValue{Date: lv, Time: types.TimeValue{}}
			return types.AddDateTimeDuration(dt, rv, "Date")
		}
	case types.DateTimeValue:
		switch rv := r.(type) {
		case types.PeriodValue:
			return types.AddDateTimePeriod(lv, rv)
		case types.DurationValue:
			return types.AddDateTimeDuration(lv, rv, "Datetime")
		}
	case types.TimeValue:
		if rv, ok := r.(types.DurationValue); ok {
			base := types.DateTimeValue{Date: types.DateValue{Year: 1970, Month: 1, Day: 1}, Time: lv}
			result, err := types.AddDateTimeDuration(base, rv, "Time")
			if err != nil {
				return nil, err
			}
			return result.Time, nil
		}
	case types.DurationValue:
		if rv, ok := r.(types.DurationValue); ok {
			return types.DurationValue{Seconds: lv.Seconds + rv.Seconds}, nil
		}
	case types.PeriodValue:
		if rv, ok := r.(types.PeriodValue); ok {
			return types.AddPeriod(lv, rv)
		}
	}
	return nil, fmt.Errorf("operator '+' not supported between %s and %s", l.Kind(), r.Kind())
}

func evalMinus(l, r types.Value) (types.Value, error) {
	switch lv := l.(type) {
	case types.NumberValue:
		if rv, ok := r.(types.NumberValue); ok {
			return types.NumberValue{V: lv.V.Sub(rv.V)}, nil
		}
	case types.DateValue:
		switch rv := r.(type) {
		case types.PeriodValue:
			return types.AddDatePeriod(lv, types.PeriodValue{Months: -rv.Months, Days: -rv.Days})
		case types.DateValue:
			return datesDiffAsPeriod(lv, rv), nil
		}
	case types.DateTimeValue:
		switch rv := r.(type) {
		case types.PeriodValue:
			return types.AddDateTimePeriod(lv, types.PeriodValue{Months: -rv.Months, Days: -rv.Days})
		case types.DurationValue:
			return types.AddDateTimeDuration(lv, types.DurationValue{Seconds: -rv.Seconds}, "Datetime")
		case types.DateTimeValue:
			return types.DurationValue{Seconds: dateTimeSeconds(lv) - dateTimeSeconds(rv)}, nil
		}
	case types.TimeValue:
		switch rv := r.(type) {
		case types.DurationValue:
			base := types.DateTimeValue{Date: types.DateValue{Year: 1970, Month: 1, Day: 1}, Time: lv}
			result, err := types.AddDateTimeDuration(base, types.DurationValue{Seconds: -rv.Seconds}, "Time")
			if err != nil {
				return nil, err
			}
			return result.Time, nil
		case types.TimeValue:
			return types.DurationValue{Seconds: int64(timeSeconds(lv) - timeSeconds(rv))}, nil
		}
	case types.DurationValue:
		if rv, ok := r.(types.DurationValue); ok {
			return types.DurationValue{Seconds: lv.Seconds - rv.Seconds}, nil
		}
	case types.PeriodValue:
		if rv, ok := r.(types.PeriodValue); ok {
			return types.SubPeriod(lv, rv)
		}
	}
	return nil, fmt.Errorf("operator '-' not supported between %s and %s", l.Kind(), r.Kind())
}

func timeSeconds(t types.TimeValue) int { return t.Hour*3600 + t.Minute*60 + t.Second }

func dateTimeSeconds(dt types.DateTimeValue) int64 {
	t := time.Date(dt.Date.Year, time.Month(dt.Date.Month), dt.Date.Day,
		dt.Time.Hour, dt.Time.Minute, dt.Time.Second, 0, time.UTC)
	return t.Unix()
}

// datesDiffAsPeriod is a best-effort calendar difference expressed in
// whole months + residual days, used for `Date - Date`.
func datesDiffAsPeriod(a, b types.DateValue) types.PeriodValue {
	months := (a.Year-b.Year)*12 + (a.Month - b.Month)
	days := a.Day - b.Day
	return types.PeriodValue{Months: months, Days: days}
}

func arithDivide(l, r types.Value) (types.Value, error) {
	lv, lok := l.(types.NumberValue)
	rv, rok := r.(types.NumberValue)
	if !lok || !rok {
		return nil, fmt.Errorf("operator '/' requires two numbers, got %s and %s", l.Kind(), r.Kind())
	}
	if rv.V.IsZero() {
		return nil, fmt.Errorf("division by zero")
	}
	return types.NumberValue{V: lv.V.DivRound(rv.V, 20)}, nil
}

func arithMultiply(l, r types.Value) (types.Value, error) {
	lv, lok := l.(types.NumberValue)
	rv, rok := r.(types.NumberValue)
	if !lok || !rok {
		return nil, fmt.Errorf("operator '*' requires two numbers, got %s and %s", l.Kind(), r.Kind())
	}
	return types.NumberValue{V: lv.V.Mul(rv.V)}, nil
}

func valuesEqual(l, r types.Value) bool {
	if l.Kind() != r.Kind() {
		return false
	}
	switch lv := l.(type) {
	case types.NumberValue:
		return lv.V.Equal(r.(types.NumberValue).V)
	case types.StringValue:
		return lv.V == r.(types.StringValue).V
	case types.BooleanValue:
		return lv.V == r.(types.BooleanValue).V
	case types.DateValue:
		return types.CompareDates(lv, r.(types.DateValue)) == 0
	case types.TimeValue:
		return types.CompareTimes(lv, r.(types.TimeValue)) == 0
	case types.DateTimeValue:
		return types.CompareDateTimes(lv, r.(types.DateTimeValue)) == 0
	case types.DurationValue:
		return lv.Seconds == r.(types.DurationValue).Seconds
	case types.PeriodValue:
		rp := r.(types.PeriodValue)
		return lv.Months == rp.Months && lv.Days == rp.Days
	default:
		return l.String() == r.String()
	}
}

func compareOp(op string, l, r types.Value) (types.Value, error) {
	if m, ok := types.IsMissing(l); ok {
		return m, nil
	}
	if m, ok := types.IsMissing(r); ok {
		return m, nil
	}
	var c int
	switch lv := l.(type) {
	case types.NumberValue:
		rv, ok := r.(types.NumberValue)
		if !ok {
			return nil, fmt.Errorf("cannot compare %s and %s", l.Kind(), r.Kind())
		}
		c = lv.V.Cmp(rv.V)
	case types.StringValue:
		rv, ok := r.(types.StringValue)
		if !ok {
			return nil, fmt.Errorf("cannot compare %s and %s", l.Kind(), r.Kind())
		}
		switch {
		case lv.V < rv.V:
			c = -1
		case lv.V > rv.V:
			c = 1
		default:
			c = 0
		}
	case types.DateValue:
		rv, ok := r.(types.DateValue)
		if !ok {
			return nil, fmt.Errorf("cannot compare %s and %s", l.Kind(), r.Kind())
		}
		c = types.CompareDates(lv, rv)
	case types.TimeValue:
		rv, ok := r.(types.TimeValue)
		if !ok {
			return nil, fmt.Errorf("cannot compare %s and %s", l.Kind(), r.Kind())
		}
		c = types.CompareTimes(lv, rv)
	case types.DateTimeValue:
		rv, ok := r.(types.DateTimeValue)
		if !ok {
			return nil, fmt.Errorf("cannot compare %s and %s", l.Kind(), r.Kind())
		}
		c = types.CompareDateTimes(lv, rv)
	default:
		return nil, fmt.Errorf("operator '%s' not supported for %s", op, l.Kind())
	}
	switch op {
	case ">":
		return types.BooleanValue{V: c > 0}, nil
	case ">=":
		return types.BooleanValue{V: c >= 0}, nil
	case "<":
		return types.BooleanValue{V: c < 0}, nil
	case "<=":
		return types.BooleanValue{V: c <= 0}, nil
	}
	return nil, fmt.Errorf("unreachable comparison operator '%s'", op)
}

// evalUnary implements `not x` / `-x`.
func evalUnary(op string, v types.Value) (types.Value, error) {
	if m, ok := types.IsMissing(v); ok {
		return m, nil
	}
	switch op {
	case "not":
		b, ok := v.(types.BooleanValue)
		if !ok {
			return nil, fmt.Errorf("'not' requires a boolean, got %s", v.Kind())
		}
		return types.BooleanValue{V: !b.V}, nil
	case "-":
		n, ok := v.(types.NumberValue)
		if !ok {
			return nil, fmt.Errorf("unary '-' requires a number, got %s", v.Kind())
		}
		return types.NumberValue{V: n.V.Neg()}, nil
	default:
		return nil, fmt.Errorf("unsupported unary operator '%s'", op)
	}
}
