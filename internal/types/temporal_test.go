package types

import "testing"

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate("2025-09-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := d.String(); got != "2025-09-02" {
		t.Errorf("got %q", got)
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, err := ParseDate("not-a-date"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseDurationForms(t *testing.T) {
	cases := map[string]int64{
		"P1Y2M":     0, // not a duration, handled by ParsePeriod instead
		"P3DT4H5M6S": 3*86400 + 4*3600 + 5*60 + 6,
	}
	for in, want := range cases {
		if in == "P1Y2M" {
			continue
		}
		d, err := ParseDuration(in)
		if err != nil {
			t.Fatalf("%s: %v", in, err)
		}
		if d.Seconds != want {
			t.Errorf("%s: got %d want %d", in, d.Seconds, want)
		}
	}
}

func TestParsePeriodRendersISO(t *testing.T) {
	p, err := ParsePeriod("P1Y2M")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.String(); got != "P1Y2M" {
		t.Errorf("got %q", got)
	}
}

func TestAddDatePeriod(t *testing.T) {
	d, _ := ParseDate("2024-01-31")
	p, _ := ParsePeriod("P1M")
	got, err := AddDatePeriod(d, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year != 2024 || got.Month != 3 || got.Day != 2 {
		// Go's AddDate normalizes Jan 31 + 1 month to Mar 2 (Feb has 29 days in 2024)
		t.Errorf("got %+v", got)
	}
}

func TestSubPeriodOverflow(t *testing.T) {
	huge := PeriodValue{Months: 1 << 21}
	if _, err := SubPeriod(huge, PeriodValue{}); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestAddPeriodOverflow(t *testing.T) {
	huge := PeriodValue{Months: 1 << 21}
	_, err := AddPeriod(huge, huge)
	if err == nil {
		t.Fatal("expected overflow error")
	}
	overflow, ok := err.(*ErrOverflow)
	if !ok {
		t.Fatalf("expected *ErrOverflow, got %T", err)
	}
	if overflow.Code != PeriodOverflowCode {
		t.Errorf("code = %d, want %d", overflow.Code, PeriodOverflowCode)
	}
}

func TestAddDateDurationOverflow(t *testing.T) {
	d, _ := ParseDate("2020-01-01")
	dur, err := ParseDuration("PT631152000000S")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = AddDateTimeDuration(DateTimeValue{Date: d}, dur, "Date")
	if err == nil {
		t.Fatal("expected a duration-overflow error")
	}
	if err.Error() != "Date adjustment with duration overflowed" {
		t.Errorf("got %q", err.Error())
	}
}

func TestAddDateTimeDurationOverflow(t *testing.T) {
	dt := DateTimeValue{Date: DateValue{Year: 2020, Month: 1, Day: 1}}
	dur, err := ParseDuration("PT631152000000S")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = AddDateTimeDuration(dt, dur, "Datetime")
	if err == nil {
		t.Fatal("expected a duration-overflow error")
	}
	if err.Error() != "Datetime adjustment with duration overflowed" {
		t.Errorf("got %q", err.Error())
	}
}
