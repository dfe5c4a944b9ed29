package birthday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	t.Parallel()

	b, ok := Parse("2000-03-10")
	require.True(t, ok)
	require.Equal(t, Date{Year: 2000, Month: time.March, Day: 10}, b)

	// legacy rows hold full timestamps
	b, ok = Parse("1990-12-31T00:00:00.000Z")
	require.True(t, ok)
	require.Equal(t, Date{Year: 1990, Month: time.December, Day: 31}, b)

	for _, bad := range []string{"", "not a date", "2000-13-01", "31/12/1990"} {
		_, ok := Parse(bad)
		require.False(t, ok, "input %q", bad)
	}
}

func TestAge_DecrementsOnAnniversary(t *testing.T) {
	t.Parallel()

	b := Date{Year: 2000, Month: time.March, Day: 10}

	// the anniversary itself still counts as "not yet had birthday this year"
	require.Equal(t, 23, Age(b, utcDate(2024, time.March, 10)))
	require.Equal(t, 23, Age(b, utcDate(2024, time.March, 9)))
	require.Equal(t, 24, Age(b, utcDate(2024, time.March, 11)))
	require.Equal(t, 23, Age(b, utcDate(2024, time.February, 20)))
}

func TestNextOccurrence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		birth Date
		today time.Time
		want  time.Time
	}{
		{"later this year", Date{1990, time.December, 31}, utcDate(2024, time.January, 1), utcDate(2024, time.December, 31)},
		{"already past", Date{1990, time.February, 1}, utcDate(2024, time.June, 15), utcDate(2025, time.February, 1)},
		{"same day not advanced", Date{2000, time.March, 10}, utcDate(2024, time.March, 10), utcDate(2024, time.March, 10)},
		{"feb 29 in non-leap year", Date{1996, time.February, 29}, utcDate(2025, time.January, 10), utcDate(2025, time.March, 1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := NextOccurrence(tc.birth, tc.today)
			require.True(t, got.Equal(tc.want), "got %v want %v", got, tc.want)
			require.False(t, got.Before(utcDate(tc.today.Year(), tc.today.Month(), tc.today.Day())), "never in the past")
		})
	}
}

func TestDaysUntil(t *testing.T) {
	t.Parallel()

	// Jan 1 -> Dec 31 of a leap year spans 365 days
	require.Equal(t, 365, DaysUntil(Date{1990, time.December, 31}, utcDate(2024, time.January, 1)))
	require.Equal(t, 0, DaysUntil(Date{2000, time.March, 10}, utcDate(2024, time.March, 10)))
	require.Equal(t, 1, DaysUntil(Date{2000, time.March, 11}, utcDate(2024, time.March, 10)))

	// time-of-day in "today" must not shift the result
	noon := time.Date(2024, time.January, 1, 12, 30, 0, 0, time.UTC)
	require.Equal(t, 365, DaysUntil(Date{1990, time.December, 31}, noon))
}

func TestDaysUntil_ZeroOnlyOnAnniversary(t *testing.T) {
	t.Parallel()

	b := Date{1985, time.July, 4}
	today := utcDate(2024, time.January, 1)
	for i := 0; i < 366; i++ {
		d := today.AddDate(0, 0, i)
		got := DaysUntil(b, d)
		anniversary := d.Month() == b.Month && d.Day() == b.Day
		require.Equal(t, anniversary, got == 0, "on %v got %d", d, got)
	}
}
