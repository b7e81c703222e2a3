package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	tests := []struct {
		in   interface{}
		want time.Time
	}{
		{"2024-05-01T09:30:00Z", time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
		{"2024-05-01T09:30:00.250+02:00", time.Date(2024, 5, 1, 7, 30, 0, 250e6, time.UTC)},
		{"2024-05-01T09:30:00+0100", time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)},
		{"2024-05-01T09:30:00.5-0200", time.Date(2024, 5, 1, 11, 30, 0, 5e8, time.UTC)},
		{"20240501", time.Date(2024, 5, 1, 0, 0, 0, 0, loc)},
		{"2024-05-01T09:30", time.Date(2024, 5, 1, 9, 30, 0, 0, loc)},
		{"2024-05-01 09:30:15", time.Date(2024, 5, 1, 9, 30, 15, 0, loc)},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, loc)},
		{"05/01/2024", time.Date(2024, 5, 1, 0, 0, 0, 0, loc)},
		{float64(1714555800000), time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		got, err := ParseDate(tc.in, loc)
		require.NoError(t, err, "%v", tc.in)
		assert.True(t, tc.want.Equal(got), "%v: got %v want %v", tc.in, got, tc.want)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, in := range []interface{}{"not a date", "2024-13-45", true, nil, []interface{}{}} {
		_, err := ParseDate(in, time.UTC)
		assert.ErrorIs(t, err, ErrInvalidDate, "%v", in)
	}
}

func TestDayBounds(t *testing.T) {
	start, end := DayBounds(time.Date(2024, 5, 1, 15, 4, 5, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC), end)
}
