package normalize

import (
	"encoding/json"
	"fmt"
	"time"
)

// Precision records how much of a publication date the source actually supplied.
type Precision string

const (
	PrecisionYear  Precision = "year"
	PrecisionMonth Precision = "month"
	PrecisionDay   Precision = "day"
)

var layouts = map[int]struct {
	layout    string
	precision Precision
}{
	4:  {"2006", PrecisionYear},
	7:  {"2006-01", PrecisionMonth},
	10: {"2006-01-02", PrecisionDay},
}

// Date is a calendar date with the precision it was published at.
// Year-only and year-month values point at the first day of their period.
type Date struct {
	Time      time.Time
	Precision Precision
}

// ParseDate parses "YYYY", "YYYY-MM" or "YYYY-MM-DD". Any other length or
// malformed content reports false.
func ParseDate(s string) (Date, bool) {
	l, ok := layouts[len(s)]
	if !ok {
		return Date{}, false
	}
	t, err := time.Parse(l.layout, s)
	if err != nil {
		return Date{}, false
	}
	return Date{Time: t, Precision: l.precision}, true
}

// DateFromTime wraps an already parsed time at day precision.
func DateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Precision: PrecisionDay}
}

// DateFromParts rebuilds a Date from its stored representation.
func DateFromParts(t time.Time, precision string) Date {
	p := Precision(precision)
	switch p {
	case PrecisionYear, PrecisionMonth, PrecisionDay:
	default:
		p = PrecisionDay
	}
	return Date{Time: t.UTC(), Precision: p}
}

func (d Date) IsZero() bool {
	return d.Time.IsZero()
}

// Before reports whether the start of the date's period is before t.
func (d Date) Before(t time.Time) bool {
	return d.Time.Before(t)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	switch d.Precision {
	case PrecisionYear:
		return d.Time.Format("2006")
	case PrecisionMonth:
		return d.Time.Format("2006-01")
	default:
		return d.Time.Format("2006-01-02")
	}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("published date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	if parsed, ok := ParseDate(s); ok {
		*d = parsed
		return nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = DateFromTime(t)
		return nil
	}
	return fmt.Errorf("published date: unsupported format %q", s)
}
