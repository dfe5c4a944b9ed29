package birthday

import "time"

// zodiacCutoffs maps each month to the day the sign changes and the signs
// on either side of the cutoff (before the cutoff day / from it onward).
var zodiacCutoffs = [13]struct {
	day           int
	before, after string
}{
	time.January:   {20, "Capricorn", "Aquarius"},
	time.February:  {19, "Aquarius", "Pisces"},
	time.March:     {21, "Pisces", "Aries"},
	time.April:     {20, "Aries", "Taurus"},
	time.May:       {21, "Taurus", "Gemini"},
	time.June:      {21, "Gemini", "Cancer"},
	time.July:      {23, "Cancer", "Leo"},
	time.August:    {23, "Leo", "Virgo"},
	time.September: {23, "Virgo", "Libra"},
	time.October:   {23, "Libra", "Scorpio"},
	time.November:  {22, "Scorpio", "Sagittarius"},
	time.December:  {22, "Sagittarius", "Capricorn"},
}

// Zodiac returns the western zodiac sign for a birth date. Used as a default
// when the client did not pick a sign explicitly.
func Zodiac(b Date) string {
	c := zodiacCutoffs[b.Month]
	if b.Day < c.day {
		return c.before
	}
	return c.after
}
