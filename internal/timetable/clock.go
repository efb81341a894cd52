package timetable

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"timetable-backend/internal/parse"
)

// ErrInvalidInterval is returned for intervals whose start is not before their end.
var ErrInvalidInterval = errors.New("interval start must be before end")

// MinutesPerDay bounds TimeOfDay.
const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time expressed as minutes since midnight (0-1439).
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses "HH:MM" (and the looser forms parse.Clock accepts).
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	h, m, err := parse.Clock(raw)
	if err != nil {
		return 0, err
	}
	return NewTimeOfDay(h, m), nil
}

// TimeOfDayOf returns the minute of the day t falls in, in t's own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute())
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String renders the zero padded "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Valid reports whether t is within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < MinutesPerDay
}

// On returns the instant at t on the calendar date of day, in day's location.
func (t TimeOfDay) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Interval is a half-open same-day range [Start, End).
type Interval struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// ParseInterval parses a pair of wall-clock strings and validates the result.
func ParseInterval(start, end string) (Interval, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Interval{}, err
	}
	iv := Interval{Start: s, End: e}
	return iv, iv.Validate()
}

// Validate rejects intervals that are empty or inverted, and intervals whose
// ends are not both clock times of one day. The latest possible end is 23:59.
func (iv Interval) Validate() error {
	if !iv.Start.Valid() || !iv.End.Valid() || iv.Start >= iv.End {
		return fmt.Errorf("%w: %s-%s", ErrInvalidInterval, iv.Start, iv.End)
	}
	return nil
}

// Contains reports whether t lies within [Start, End).
func (iv Interval) Contains(t TimeOfDay) bool {
	return iv.Start <= t && t < iv.End
}

// Minutes is the length of the interval.
func (iv Interval) Minutes() int {
	return int(iv.End - iv.Start)
}

func (iv Interval) String() string {
	return iv.Start.String() + "-" + iv.End.String()
}
