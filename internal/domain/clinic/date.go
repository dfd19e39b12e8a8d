package clinic

import (
	"fmt"
	"time"

	"github.com/physiomanager/backend/internal/domain/shared"
)

// DateLayout is the canonical calendar date format used everywhere in
// the clinic domain. Dates are compared as strings; no time-of-day or
// time-zone arithmetic is ever applied to them.
const DateLayout = "2006-01-02"

// Date is a calendar date in canonical YYYY-MM-DD form.
// The canonical form is lexicographically ordered, so string comparison
// is date comparison.
type Date string

// NewDate validates and canonicalizes a YYYY-MM-DD string
func NewDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", shared.NewDomainError("INVALID_DATE", fmt.Sprintf("Invalid date %q, expected YYYY-MM-DD", s))
	}
	if t.Format(DateLayout) != s {
		return "", shared.NewDomainError("INVALID_DATE", fmt.Sprintf("Date %q is not in canonical YYYY-MM-DD form", s))
	}
	return Date(s), nil
}

// DateOf returns the calendar date of the given instant in its location
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Today returns the current calendar date
func Today() Date {
	return DateOf(time.Now())
}

// MakeDate builds a Date from numeric components
func MakeDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func (d Date) String() string {
	return string(d)
}

// IsZero reports whether the date is empty
func (d Date) IsZero() bool {
	return d == ""
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d < other
}

// After reports whether d is strictly later than other
func (d Date) After(other Date) bool {
	return d > other
}

// Weekday returns the day of week, 0=Sunday through 6=Saturday
func (d Date) Weekday() Weekday {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		// Dates are validated on construction; an unparseable Date can
		// only come from corrupted storage.
		panic(fmt.Sprintf("clinic: malformed date %q", string(d)))
	}
	return Weekday(t.Weekday())
}

// Next returns the following calendar day
func (d Date) Next() Date {
	t, _ := time.Parse(DateLayout, string(d))
	return DateOf(t.AddDate(0, 0, 1))
}

// Year returns the calendar year of the date
func (d Date) Year() int {
	t, _ := time.Parse(DateLayout, string(d))
	return t.Year()
}

// Month returns the calendar month of the date
func (d Date) Month() time.Month {
	t, _ := time.Parse(DateLayout, string(d))
	return t.Month()
}

// MonthBounds returns the first and last calendar dates of a month
func MonthBounds(year int, month time.Month) (Date, Date) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return DateOf(first), DateOf(last)
}

// DaysInMonth returns the number of days in a calendar month
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
