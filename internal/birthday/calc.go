// Package birthday implements the recurrence math and ranking for tracked
// birthdays. All functions are pure; "today" is always passed in so results
// are reproducible.
package birthday

import "time"

// Date is a parsed calendar birth date. The year matters only for age.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Parse reads a birth date stored as "2006-01-02". Timestamps with a date
// prefix (legacy rows imported from the old API) are accepted too. The
// second result is false for anything unparseable; such records carry age 0,
// have no next occurrence, and are excluded from ranking by the caller.
func Parse(s string) (Date, bool) {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, false
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, true
}

// Age returns the number of full years lived before this year's birthday.
// On the anniversary itself the age is still decremented; the "turning" age
// shown for today's celebrants is Age+1. This mirrors the long-standing
// behavior of the product and must not be "fixed" here.
func Age(b Date, today time.Time) int {
	age := today.Year() - b.Year
	if today.Month() < b.Month || (today.Month() == b.Month && today.Day() <= b.Day) {
		age--
	}
	return age
}

// NextOccurrence returns the nearest calendar date (UTC midnight) matching
// the birth (month, day): this year's occurrence, or next year's if this
// year's is already strictly past. A same-day occurrence is never advanced.
// Feb 29 normalizes to Mar 1 in non-leap years.
func NextOccurrence(b Date, today time.Time) time.Time {
	d := dateOnly(today)
	next := time.Date(d.Year(), b.Month, b.Day, 0, 0, 0, 0, time.UTC)
	if next.Before(d) {
		next = time.Date(d.Year()+1, b.Month, b.Day, 0, 0, 0, 0, time.UTC)
	}
	return next
}

// DaysUntil returns whole days from today until the next occurrence;
// zero on the anniversary itself.
func DaysUntil(b Date, today time.Time) int {
	d := dateOnly(today)
	return int(NextOccurrence(b, today).Sub(d) / (24 * time.Hour))
}

// dateOnly truncates a timestamp to its calendar date at UTC midnight.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
