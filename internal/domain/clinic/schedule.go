package clinic

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/physiomanager/backend/internal/domain/shared"
)

// Weekday is a day of week indexed 0=Sunday through 6=Saturday.
// The indexing is fixed; display ordering is a separate concern.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func (w Weekday) String() string {
	if w < Sunday || w > Saturday {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// Valid reports whether the weekday index is in range
func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

// DisplayWeekOrder is the fixed presentation rotation of the week,
// starting Saturday and ending Friday. It is used only for ordering
// output rows and never alters the 0=Sunday indexing above.
var DisplayWeekOrder = [7]Weekday{Saturday, Sunday, Monday, Tuesday, Wednesday, Thursday, Friday}

// WeekdaySet is a set of weekdays forming a weekly recurrence pattern.
// It is kept sorted by index and free of duplicates.
type WeekdaySet []Weekday

// NewWeekdaySet builds a normalized set from weekday indices.
// Duplicates collapse; order of input is irrelevant.
func NewWeekdaySet(days []int) (WeekdaySet, error) {
	seen := [7]bool{}
	for _, d := range days {
		w := Weekday(d)
		if !w.Valid() {
			return nil, shared.NewDomainError("INVALID_WEEKDAY", fmt.Sprintf("Weekday index %d out of range 0..6", d))
		}
		seen[w] = true
	}
	set := make(WeekdaySet, 0, 7)
	for w := Sunday; w <= Saturday; w++ {
		if seen[w] {
			set = append(set, w)
		}
	}
	return set, nil
}

// Contains reports whether the set includes the given weekday
func (s WeekdaySet) Contains(w Weekday) bool {
	for _, d := range s {
		if d == w {
			return true
		}
	}
	return false
}

// Len returns the number of scheduled weekdays per week
func (s WeekdaySet) Len() int {
	return len(s)
}

// Indices returns the set as plain int indices
func (s WeekdaySet) Indices() []int {
	out := make([]int, len(s))
	for i, d := range s {
		out[i] = int(d)
	}
	return out
}

// Value serializes the set as a JSON array for storage
func (s WeekdaySet) Value() (driver.Value, error) {
	b, err := json.Marshal(s.Indices())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan restores the set from its stored JSON form, re-normalizing on
// the way in.
func (s *WeekdaySet) Scan(value interface{}) error {
	if value == nil {
		*s = WeekdaySet{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into WeekdaySet", value)
	}
	var days []int
	if err := json.Unmarshal(raw, &days); err != nil {
		return fmt.Errorf("malformed weekday set: %w", err)
	}
	set, err := NewWeekdaySet(days)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// SortedForDisplay returns the set ordered by DisplayWeekOrder
func (s WeekdaySet) SortedForDisplay() []Weekday {
	rank := [7]int{}
	for i, w := range DisplayWeekOrder {
		rank[w] = i
	}
	out := make([]Weekday, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return rank[out[i]] < rank[out[j]] })
	return out
}

// IsScheduled decides whether the patient has a session on the given
// calendar date: the weekday must be in the recurrence pattern and the
// date must fall inside the patient's treatment window. Pure function;
// all date comparisons are lexicographic on canonical YYYY-MM-DD.
func IsScheduled(p *Patient, d Date) bool {
	if !p.ScheduledDays.Contains(d.Weekday()) {
		return false
	}
	if d.Before(p.StartDate) {
		return false
	}
	if p.EndDate != nil && d.After(*p.EndDate) {
		return false
	}
	return true
}
