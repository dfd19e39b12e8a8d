package clinic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDate(t *testing.T) {
	t.Run("accepts canonical form", func(t *testing.T) {
		d, err := NewDate("2024-01-07")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-07", d.String())
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, s := range []string{"", "2024-1-7", "07-01-2024", "2024/01/07", "2024-13-01", "2024-02-30", "not a date"} {
			_, err := NewDate(s)
			assert.Error(t, err, "input %q", s)
		}
	})

	t.Run("rejects non-canonical but parseable forms", func(t *testing.T) {
		_, err := NewDate("2024-01-7")
		assert.Error(t, err)
	})
}

func TestDateComparisons(t *testing.T) {
	a := Date("2024-01-07")
	b := Date("2024-01-08")

	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Before(a))
	assert.False(t, a.After(a))

	// Lexicographic comparison crosses month and year boundaries correctly
	assert.True(t, Date("2023-12-31").Before(Date("2024-01-01")))
	assert.True(t, Date("2024-09-30").Before(Date("2024-10-01")))
}

func TestDateWeekday(t *testing.T) {
	// 2024-01-07 was a Sunday
	assert.Equal(t, Sunday, Date("2024-01-07").Weekday())
	assert.Equal(t, Monday, Date("2024-01-08").Weekday())
	assert.Equal(t, Saturday, Date("2024-01-06").Weekday())
}

func TestDateNext(t *testing.T) {
	assert.Equal(t, Date("2024-01-08"), Date("2024-01-07").Next())
	assert.Equal(t, Date("2024-03-01"), Date("2024-02-29").Next()) // leap year
	assert.Equal(t, Date("2025-01-01"), Date("2024-12-31").Next())
}

func TestMonthBounds(t *testing.T) {
	first, last := MonthBounds(2024, time.February)
	assert.Equal(t, Date("2024-02-01"), first)
	assert.Equal(t, Date("2024-02-29"), last)

	first, last = MonthBounds(2023, time.February)
	assert.Equal(t, Date("2023-02-01"), first)
	assert.Equal(t, Date("2023-02-28"), last)

	assert.Equal(t, 31, DaysInMonth(2024, time.January))
	assert.Equal(t, 30, DaysInMonth(2024, time.April))
}

func TestDateOf(t *testing.T) {
	instant := time.Date(2024, time.June, 15, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, Date("2024-06-15"), DateOf(instant))
}
