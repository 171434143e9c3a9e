package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestActivityValidate(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	good := Activity{
		Category:   "Transport",
		Subtype:    "Car-Petrol",
		Quantity:   50,
		OccurredAt: now.Add(-time.Hour),
	}
	if err := good.Validate(now); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	atNow := good
	atNow.OccurredAt = now
	if err := atNow.Validate(now); err != nil {
		t.Fatalf("occurrence at now should be accepted, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(a *Activity)
		want error
	}{
		{"empty category", func(a *Activity) { a.Category = "  " }, ErrEmptyCategory},
		{"empty subtype", func(a *Activity) { a.Subtype = "" }, ErrEmptySubtype},
		{"zero quantity", func(a *Activity) { a.Quantity = 0 }, ErrInvalidQuantity},
		{"negative quantity", func(a *Activity) { a.Quantity = -1 }, ErrInvalidQuantity},
		{"nan quantity", func(a *Activity) { a.Quantity = math.NaN() }, ErrInvalidQuantity},
		{"zero time", func(a *Activity) { a.OccurredAt = time.Time{} }, ErrZeroTime},
		{"future time", func(a *Activity) { a.OccurredAt = now.Add(time.Minute) }, ErrFutureTime},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := good
			tc.mut(&a)
			err := a.Validate(now)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestDayOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	// 23:30 UTC on Jan 9 is already Jan 10 two hours east
	ts := time.Date(2024, 1, 9, 23, 30, 0, 0, time.UTC)
	if got := DayOf(ts, time.UTC); got != NewDay(2024, time.January, 9) {
		t.Fatalf("utc day: got %v", got)
	}
	if got := DayOf(ts, loc); got != NewDay(2024, time.January, 10) {
		t.Fatalf("local day: got %v", got)
	}
}

func TestDayArithmetic(t *testing.T) {
	d := NewDay(2024, time.March, 1)
	if got := d.AddDays(-1); got != NewDay(2024, time.February, 29) {
		t.Fatalf("leap day: got %v", got)
	}
	if got := d.AddDays(31); got != NewDay(2024, time.April, 1) {
		t.Fatalf("add month: got %v", got)
	}
	if !d.AddDays(-1).Before(d) || d.Before(d) {
		t.Fatalf("Before ordering wrong")
	}
	if d.String() != "2024-03-01" {
		t.Fatalf("string: got %q", d.String())
	}
	loc := time.FixedZone("X", -5*60*60)
	if got := d.Start(loc); got.Hour() != 0 || got.Location() != loc {
		t.Fatalf("start: got %v", got)
	}
}

func TestErrorMessages(t *testing.T) {
	le := &LoadError{Source: "factors.json", Index: 3, Err: errors.New("missing factor")}
	if le.Error() != "load emission factors from factors.json: record 3: missing factor" {
		t.Fatalf("unexpected: %q", le.Error())
	}
	le = &LoadError{Source: "factors.json", Index: -1, Err: errors.New("not a list")}
	if le.Error() != "load emission factors from factors.json: not a list" {
		t.Fatalf("unexpected: %q", le.Error())
	}
	cause := errors.New("disk full")
	se := &StoreError{Op: "create", Err: cause}
	if !errors.Is(se, cause) || se.Error() != "store create: disk full" {
		t.Fatalf("unexpected store error: %v", se)
	}
}
