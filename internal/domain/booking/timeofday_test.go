package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay{Hour: 9, Minute: 30}, tod)
	assert.Equal(t, "09:30", tod.String())

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
	_, err = ParseTimeOfDay("9:30am")
	assert.Error(t, err)
}

func TestTimeOfDay_Before(t *testing.T) {
	a := TimeOfDay{Hour: 9, Minute: 0}
	b := TimeOfDay{Hour: 9, Minute: 30}
	c := TimeOfDay{Hour: 10, Minute: 0}

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.False(t, b.Before(a))
	assert.False(t, a.Before(a))
}

func TestTimeOfDay_On(t *testing.T) {
	date := time.Date(2026, 9, 15, 17, 45, 12, 0, time.UTC)
	at := TimeOfDay{Hour: 14, Minute: 30}.On(date)
	assert.Equal(t, time.Date(2026, 9, 15, 14, 30, 0, 0, time.UTC), at)
}

func TestOverlaps(t *testing.T) {
	tod := func(s string) TimeOfDay {
		v, err := ParseTimeOfDay(s)
		require.NoError(t, err)
		return v
	}

	cases := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"identical windows", "09:00", "10:00", "09:00", "10:00", true},
		{"partial overlap", "09:00", "10:00", "09:30", "10:30", true},
		{"containment", "09:00", "12:00", "10:00", "11:00", true},
		{"back to back", "09:00", "10:00", "10:00", "11:00", false},
		{"back to back reversed", "10:00", "11:00", "09:00", "10:00", false},
		{"disjoint", "09:00", "10:00", "13:00", "14:00", false},
		{"one minute overlap", "09:00", "10:01", "10:00", "11:00", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Overlaps(tod(tc.s1), tod(tc.e1), tod(tc.s2), tod(tc.e2))
			assert.Equal(t, tc.want, got)
			// Overlap is symmetric.
			assert.Equal(t, got, Overlaps(tod(tc.s2), tod(tc.e2), tod(tc.s1), tod(tc.e1)))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	d := time.Date(2026, 3, 7, 18, 22, 59, 123, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), NormalizeDate(d))
}
