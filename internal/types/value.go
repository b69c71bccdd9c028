package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Value is a runtime EdgeRules value. Every variant is a small struct
// implementing this interface, mirroring the teacher's
// one-struct-per-variant Value pattern.
type Value interface {
	Kind() Kind
	String() string // surface-syntax rendering (toString semantics), e.g. 'hi', [1, 2]
}

// NumberValue is an arbitrary-precision decimal number.
type NumberValue struct{ V decimal.Decimal }

func (NumberValue) Kind() Kind { return KindNumber }
func (n NumberValue) String() string {
	return n.V.String()
}

// StringValue is a text value.
type StringValue struct{ V string }

func (StringValue) Kind() Kind       { return KindString }
func (s StringValue) String() string { return "'" + strings.ReplaceAll(s.V, "'", "\\'") + "'" }

// BooleanValue is a boolean value.
type BooleanValue struct{ V bool }

func (BooleanValue) Kind() Kind { return KindBoolean }
func (b BooleanValue) String() string {
	if b.V {
		return "true"
	}
	return "false"
}

// DateValue is a calendar date (no time-of-day).
type DateValue struct{ Year, Month, Day int }

func (DateValue) Kind() Kind { return KindDate }
func (d DateValue) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// TimeValue is a time-of-day with optional fractional seconds.
type TimeValue struct {
	Hour, Minute, Second int
	HasFraction          bool
	Fraction             decimal.Decimal // in [0,1)
}

func (TimeValue) Kind() Kind { return KindTime }
func (t TimeValue) String() string {
	base := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	return base + fractionSuffix(t.HasFraction, t.Fraction)
}

func fractionSuffix(has bool, frac decimal.Decimal) string {
	if !has || frac.IsZero() {
		return ".0"
	}
	s := frac.StringFixed(9)
	s = strings.TrimPrefix(s, "0")
	s = strings.TrimRight(s, "0")
	if s == "." {
		return ".0"
	}
	return s
}

// DateTimeValue combines a DateValue and a TimeValue.
type DateTimeValue struct {
	Date DateValue
	Time TimeValue
}

func (DateTimeValue) Kind() Kind { return KindDateTime }
func (dt DateTimeValue) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %d:%02d:%02d", dt.Date.Year, dt.Date.Month, dt.Date.Day,
		dt.Time.Hour, dt.Time.Minute, dt.Time.Second) + fractionSuffix(dt.Time.HasFraction, dt.Time.Fraction)
}

// DurationValue is a seconds-precision signed duration.
type DurationValue struct{ Seconds int64 }

func (DurationValue) Kind() Kind { return KindDuration }
func (d DurationValue) String() string {
	sign := ""
	s := d.Seconds
	if s < 0 {
		sign = "-"
		s = -s
	}
	days := s / 86400
	s %= 86400
	hours := s / 3600
	s %= 3600
	mins := s / 60
	secs := s % 60

	var sb strings.Builder
	sb.WriteString(sign)
	sb.WriteString("P")
	if days > 0 {
		sb.WriteString(strconv.FormatInt(days, 10) + "D")
	}
	if hours > 0 || mins > 0 || secs > 0 {
		sb.WriteString("T")
		if hours > 0 {
			sb.WriteString(strconv.FormatInt(hours, 10) + "H")
		}
		if mins > 0 {
			sb.WriteString(strconv.FormatInt(mins, 10) + "M")
		}
		if secs > 0 {
			sb.WriteString(strconv.FormatInt(secs, 10) + "S")
		}
	}
	if days == 0 && hours == 0 && mins == 0 && secs == 0 {
		sb.WriteString("T0S")
	}
	return sb.String()
}

// PeriodValue is a months/days-precision signed calendar period.
type PeriodValue struct{ Months, Days int }

func (PeriodValue) Kind() Kind { return KindPeriod }
func (p PeriodValue) String() string {
	sign := ""
	months, days := p.Months, p.Days
	if months < 0 || days < 0 {
		sign = "-"
		months, days = -months, -days
	}
	years := months / 12
	rem := months % 12
	var sb strings.Builder
	sb.WriteString(sign)
	sb.WriteString("P")
	if years > 0 {
		sb.WriteString(strconv.Itoa(years) + "Y")
	}
	if rem > 0 {
		sb.WriteString(strconv.Itoa(rem) + "M")
	}
	if days > 0 {
		sb.WriteString(strconv.Itoa(days) + "D")
	}
	if years == 0 && rem == 0 && days == 0 {
		sb.WriteString("0D")
	}
	return sb.String()
}

// RangeValue is a numeric inclusive-exclusive interval [Lo, Hi).
type RangeValue struct{ Lo, Hi decimal.Decimal }

func (RangeValue) Kind() Kind { return KindRange }
func (r RangeValue) String() string {
	return r.Lo.String() + ".." + r.Hi.String()
}

// ListValue is a homogeneous (where inferable) ordered list.
type ListValue struct {
	Elements []Value
	ElemType Type
}

func (ListValue) Kind() Kind { return KindList }
func (l ListValue) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// FieldValue is one named entry of an ObjectValue, in declaration order.
type FieldValue struct {
	Name  string
	Value Value
}

// ObjectValue is an ordered field -> value mapping.
type ObjectValue struct {
	Fields []FieldValue
}

func (ObjectValue) Kind() Kind { return KindObject }
func (o ObjectValue) String() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		parts[i] = f.Name + ": " + f.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Get looks up a field by name.
func (o ObjectValue) Get(name string) (Value, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// MissingValue is the sentinel for an absent/out-of-range value. It is
// not an error: it carries the origin path that explains where it came
// from (spec.md §3.4).
type MissingValue struct{ Origin []string }

func (MissingValue) Kind() Kind { return KindMissing }
func (m MissingValue) String() string {
	return "Missing('" + strings.Join(m.Origin, ".") + "')"
}

// NewMissing builds a MissingValue with a single origin segment.
func NewMissing(origin string) MissingValue {
	return MissingValue{Origin: []string{origin}}
}

// FunctionValue is a first-class reference to a user-defined function,
// identified by name (the interpreter resolves the body via the linker's
// linked node, not a closure capture, since EdgeRules has no recursion
// or dynamic scoping to capture).
type FunctionValue struct {
	Name string
}

func (FunctionValue) Kind() Kind       { return KindFunction }
func (f FunctionValue) String() string { return "<function " + f.Name + ">" }

// IsMissing is a convenience check used throughout the evaluator.
func IsMissing(v Value) (MissingValue, bool) {
	m, ok := v.(MissingValue)
	return m, ok
}
