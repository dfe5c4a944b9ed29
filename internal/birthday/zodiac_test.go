package birthday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestZodiac(t *testing.T) {
	t.Parallel()

	tests := []struct {
		month time.Month
		day   int
		want  string
	}{
		{time.January, 1, "Capricorn"},
		{time.January, 20, "Aquarius"},
		{time.February, 18, "Aquarius"},
		{time.March, 10, "Pisces"},
		{time.March, 21, "Aries"},
		{time.July, 22, "Cancer"},
		{time.July, 23, "Leo"},
		{time.November, 30, "Sagittarius"},
		{time.December, 22, "Capricorn"},
		{time.December, 31, "Capricorn"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, Zodiac(Date{Year: 1990, Month: tc.month, Day: tc.day}),
			"%v %d", tc.month, tc.day)
	}
}
