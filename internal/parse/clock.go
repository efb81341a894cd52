package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrBadClock is returned when a wall-clock string cannot be understood.
var ErrBadClock = errors.New("invalid time of day")

// ErrBadDay is returned when a weekday name or number cannot be understood.
var ErrBadDay = errors.New("invalid weekday")

var (
	// 08:00, 8:00, 08:00:00 (postgres "time" columns come back with seconds), 8.00, 0800
	clockRe   = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})(?::(\d{2}))?$`)
	compactRe = regexp.MustCompile(`^(\d{2})(\d{2})$`)
)

// Clock extracts hour and minute from a raw wall-clock string.
// Seconds, when present, must be in range but are otherwise dropped.
func Clock(raw string) (hour, minute int, err error) {
	s := strings.TrimSpace(raw)

	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		m = compactRe.FindStringSubmatch(s)
	}
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrBadClock, raw)
	}

	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q out of range", ErrBadClock, raw)
	}
	if len(m) > 3 && m[3] != "" {
		if sec, _ := strconv.Atoi(m[3]); sec > 59 {
			return 0, 0, fmt.Errorf("%w: %q out of range", ErrBadClock, raw)
		}
	}
	return hour, minute, nil
}

var dayNames = map[string]int{
	"monday": 1, "mon": 1,
	"tuesday": 2, "tue": 2, "tues": 2,
	"wednesday": 3, "wed": 3,
	"thursday": 4, "thu": 4, "thur": 4, "thurs": 4,
	"friday": 5, "fri": 5,
	"saturday": 6, "sat": 6,
	"sunday": 7, "sun": 7,
}

// DayNumber maps a weekday name, abbreviation or ISO number (1 = Monday,
// 7 = Sunday) to its ISO number.
func DayNumber(raw string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if n, ok := dayNames[s]; ok {
		return n, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 7 {
		return n, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadDay, raw)
}
