package domain

import (
	"fmt"
	"time"
)

// DayLayout is the wire format for calendar days, e.g. "31.12.2026".
const DayLayout = "02.01.2006"

// Day is a single calendar day. It carries a real date internally so that
// ordering and comparison are chronological; the DD.MM.YYYY string exists
// only at the API boundary.
type Day struct {
	time.Time
}

// ParseDay parses a DD.MM.YYYY string into a Day.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q (expected DD.MM.YYYY): %w", s, err)
	}
	return Day{t}, nil
}

// DayOf truncates t to its calendar day in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Today returns the server's current local calendar day.
func Today() Day {
	return DayOf(time.Now().In(time.Local))
}

// String renders the day in the wire format.
func (d Day) String() string {
	return d.Format(DayLayout)
}

// MarshalJSON encodes the day as a DD.MM.YYYY string.
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a DD.MM.YYYY string.
func (d *Day) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid day %s", b)
	}
	parsed, err := ParseDay(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
