package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	testCases := []struct {
		name       string
		raw        string
		wantHour   int
		wantMinute int
		expectErr  bool
	}{
		{name: "Zero padded", raw: "08:45", wantHour: 8, wantMinute: 45},
		{name: "Single digit hour", raw: "8:05", wantHour: 8, wantMinute: 5},
		{name: "Postgres time with seconds", raw: "13:30:00", wantHour: 13, wantMinute: 30},
		{name: "Dot separator", raw: "9.15", wantHour: 9, wantMinute: 15},
		{name: "Compact", raw: "0930", wantHour: 9, wantMinute: 30},
		{name: "Surrounding spaces", raw: "  23:59 ", wantHour: 23, wantMinute: 59},
		{name: "Midnight", raw: "00:00", wantHour: 0, wantMinute: 0},
		{name: "Hour out of range", raw: "24:00", expectErr: true},
		{name: "Minute out of range", raw: "10:60", expectErr: true},
		{name: "Seconds out of range", raw: "10:00:61", expectErr: true},
		{name: "Garbage", raw: "noon", expectErr: true},
		{name: "Empty", raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			hour, minute, err := Clock(tc.raw)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrBadClock)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.wantHour, hour)
				assert.Equal(t, tc.wantMinute, minute)
			}
		})
	}
}

func TestDayNumber(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  int
		expectErr bool
	}{
		{name: "Full name", raw: "Monday", expected: 1},
		{name: "Lower case", raw: "friday", expected: 5},
		{name: "Abbreviation", raw: "Wed", expected: 3},
		{name: "Number", raw: "4", expected: 4},
		{name: "Sunday number", raw: "7", expected: 7},
		{name: "Weekend name", raw: "Saturday", expected: 6},
		{name: "Zero", raw: "0", expectErr: true},
		{name: "Unknown name", raw: "Funday", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := DayNumber(tc.raw)
			if tc.expectErr {
				assert.ErrorIs(t, err, ErrBadDay)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, n)
			}
		})
	}
}
