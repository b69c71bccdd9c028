package types

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrOverflow carries a stable numeric overflow code, matching spec.md
// §4.3's "Period - Period (may report overflow code 106)".
type ErrOverflow struct {
	Code    int
	Message string
}

func (e *ErrOverflow) Error() string { return e.Message }

const PeriodOverflowCode = 106

var dateRe = regexp.MustCompile(`^(-?\d{1,6})-(\d{2})-(\d{2})$`)
var timeRe = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})(\.(\d+))?$`)
var durationRe = regexp.MustCompile(`^(-)?P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)
var periodRe = regexp.MustCompile(`^(-)?P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)D)?$`)

// ParseDate parses an ISO-8601 date "YYYY-MM-DD".
func ParseDate(s string) (DateValue, error) {
	m := dateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return DateValue{}, fmt.Errorf("invalid date '%s'", s)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return DateValue{}, fmt.Errorf("invalid date '%s'", s)
	}
	return DateValue{Year: year, Month: month, Day: day}, nil
}

// ParseTime parses a time-of-day "HH:MM:SS[.fraction]". Both a dotted
// fraction and its absence are accepted on input (the flexible parsing
// story kept from original_source's datetime_flexible_tests).
func ParseTime(s string) (TimeValue, error) {
	m := timeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return TimeValue{}, fmt.Errorf("invalid time '%s'", s)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second, _ := strconv.Atoi(m[3])
	if hour > 23 || minute > 59 || second > 59 {
		return TimeValue{}, fmt.Errorf("invalid time '%s'", s)
	}
	tv := TimeValue{Hour: hour, Minute: minute, Second: second}
	if m[5] != "" {
		frac, err := decimal.NewFromString("0." + m[5])
		if err == nil {
			tv.HasFraction = true
			tv.Fraction = frac
		}
	}
	return tv, nil
}

// ParseDateTime parses "YYYY-MM-DDTHH:MM:SS" or "YYYY-MM-DD HH:MM:SS"
// (both separators are accepted on input; rendering always uses a space,
// per SPEC_FULL.md Open Question (c)).
func ParseDateTime(s string) (DateTimeValue, error) {
	s = strings.TrimSpace(s)
	sep := "T"
	idx := strings.IndexAny(s, "T ")
	if idx < 0 {
		return DateTimeValue{}, fmt.Errorf("invalid datetime '%s'", s)
	}
	sep = string(s[idx])
	_ = sep
	datePart, timePart := s[:idx], s[idx+1:]
	d, err := ParseDate(datePart)
	if err != nil {
		return DateTimeValue{}, fmt.Errorf("invalid datetime '%s'", s)
	}
	t, err := ParseTime(timePart)
	if err != nil {
		return DateTimeValue{}, fmt.Errorf("invalid datetime '%s'", s)
	}
	return DateTimeValue{Date: d, Time: t}, nil
}

// ParseDuration parses an ISO-8601 duration subset: P[nD][T[nH][nM][nS]].
func ParseDuration(s string) (DurationValue, error) {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || (m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "") {
		return DurationValue{}, fmt.Errorf("invalid duration '%s'", s)
	}
	days, _ := strconv.ParseInt(orZero(m[2]), 10, 64)
	hours, _ := strconv.ParseInt(orZero(m[3]), 10, 64)
	mins, _ := strconv.ParseInt(orZero(m[4]), 10, 64)
	secs, _ := strconv.ParseInt(orZero(m[5]), 10, 64)
	total := days*86400 + hours*3600 + mins*60 + secs
	if m[1] == "-" {
		total = -total
	}
	return DurationValue{Seconds: total}, nil
}

// ParsePeriod parses an ISO-8601 period subset: P[nY][nM][nD].
func ParsePeriod(s string) (PeriodValue, error) {
	m := periodRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil || (m[2] == "" && m[3] == "" && m[4] == "") {
		return PeriodValue{}, fmt.Errorf("invalid period '%s'", s)
	}
	years, _ := strconv.Atoi(orZero(m[2]))
	months, _ := strconv.Atoi(orZero(m[3]))
	days, _ := strconv.Atoi(orZero(m[4]))
	totalMonths := years*12 + months
	if m[1] == "-" {
		totalMonths, days = -totalMonths, -days
	}
	return PeriodValue{Months: totalMonths, Days: days}, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func (d DateValue) toTime() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func dateFromTime(t time.Time) DateValue {
	y, m, d := t.Date()
	return DateValue{Year: y, Month: int(m), Day: d}
}

// AddDatePeriod adds a Period to a Date, reporting overflow per spec.md
// §4.3's "Date adjustment with period overflowed" message.
func AddDatePeriod(d DateValue, p PeriodValue) (DateValue, error) {
	t := d.toTime()
	t = t.AddDate(0, p.Months, p.Days)
	if t.Year() < -271820 || t.Year() > 275759 {
		return DateValue{}, errors.New("Date adjustment with period overflowed")
	}
	return dateFromTime(t), nil
}

// maxDurationSeconds is the largest seconds count that converts to a
// time.Duration (int64 nanoseconds) without overflowing.
const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// AddDateTimeDuration adds a Duration to a DateTime, reporting overflow
// per spec.md §4.3 ("Date adjustment with duration overflowed" /
// "Datetime adjustment with duration overflowed"). label names the
// operand kind the caller is adjusting ("Date", "Datetime", or "Time")
// so the message matches the value the caller actually adjusted.
func AddDateTimeDuration(dt DateTimeValue, dur DurationValue, label string) (DateTimeValue, error) {
	if dur.Seconds > maxDurationSeconds || dur.Seconds < -maxDurationSeconds {
		return DateTimeValue{}, fmt.Errorf("%s adjustment with duration overflowed", label)
	}
	base := time.Date(dt.Date.Year, time.Month(dt.Date.Month), dt.Date.Day, dt.Time.Hour, dt.Time.Minute, dt.Time.Second, 0, time.UTC)
	base = base.Add(time.Duration(dur.Seconds) * time.Second)
	return DateTimeValue{
		Date: dateFromTime(base),
		Time: TimeValue{Hour: base.Hour(), Minute: base.Minute(), Second: base.Second(), HasFraction: dt.Time.HasFraction, Fraction: dt.Time.Fraction},
	}, nil
}

// AddDateTimePeriod adds a Period to a DateTime's date component.
func AddDateTimePeriod(dt DateTimeValue, p PeriodValue) (DateTimeValue, error) {
	d, err := AddDatePeriod(dt.Date, p)
	if err != nil {
		return DateTimeValue{}, err
	}
	return DateTimeValue{Date: d, Time: dt.Time}, nil
}

// periodLimit bounds a Period's Months/Days magnitude at 2^20; a result
// beyond it is reported as overflow code 106 (spec.md §4.3).
const periodLimit = 1 << 20

func periodOverflows(months, days int) bool {
	return months > periodLimit || months < -periodLimit || days > periodLimit || days < -periodLimit
}

// AddPeriod adds two Periods, reporting overflow code 106 when the
// component magnitudes cannot be represented (spec.md §4.3).
func AddPeriod(a, b PeriodValue) (PeriodValue, error) {
	months := a.Months + b.Months
	days := a.Days + b.Days
	if periodOverflows(months, days) {
		return PeriodValue{}, &ErrOverflow{Code: PeriodOverflowCode, Message: "period arithmetic overflowed"}
	}
	return PeriodValue{Months: months, Days: days}, nil
}

// SubPeriod subtracts one Period from another, reporting overflow code
// 106 when the component magnitudes cannot be represented (spec.md §4.3).
func SubPeriod(a, b PeriodValue) (PeriodValue, error) {
	months := a.Months - b.Months
	days := a.Days - b.Days
	if periodOverflows(months, days) {
		return PeriodValue{}, &ErrOverflow{Code: PeriodOverflowCode, Message: "period arithmetic overflowed"}
	}
	return PeriodValue{Months: months, Days: days}, nil
}

// CompareDates reports -1/0/1 comparing two dates.
func CompareDates(a, b DateValue) int {
	at, bt := a.toTime(), b.toTime()
	switch {
	case at.Before(bt):
		return -1
	case at.After(bt):
		return 1
	default:
		return 0
	}
}

// CompareTimes reports -1/0/1 comparing two times-of-day.
func CompareTimes(a, b TimeValue) int {
	as := a.Hour*3600 + a.Minute*60 + a.Second
	bs := b.Hour*3600 + b.Minute*60 + b.Second
	if as != bs {
		if as < bs {
			return -1
		}
		return 1
	}
	return a.Fraction.Cmp(b.Fraction)
}

// CompareDateTimes reports -1/0/1 comparing two datetimes.
func CompareDateTimes(a, b DateTimeValue) int {
	if c := CompareDates(a.Date, b.Date); c != 0 {
		return c
	}
	return CompareTimes(a.Time, b.Time)
}

// Weekday returns the English name of d's day of the week. Dates have no
// field accessors: path access such as `d.year` applies to objects only.
func (d DateValue) Weekday() string {
	return d.toTime().Weekday().String()
}
