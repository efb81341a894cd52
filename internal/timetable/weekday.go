package timetable

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"timetable-backend/internal/parse"
)

// ErrNotSchoolDay is returned when a slot is keyed to Saturday or Sunday.
var ErrNotSchoolDay = errors.New("not a school day")

// Weekday numbers days ISO style, Monday = 1 through Sunday = 7.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// SchoolDays lists the days that can carry class slots, in order.
var SchoolDays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayNames = [...]string{"", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// WeekdayOf returns the weekday of t in t's own location.
func WeekdayOf(t time.Time) Weekday {
	if wd := t.Weekday(); wd != time.Sunday {
		return Weekday(wd)
	}
	return Sunday
}

// ParseWeekday accepts English day names, common abbreviations and ISO numbers.
func ParseWeekday(raw string) (Weekday, error) {
	n, err := parse.DayNumber(raw)
	if err != nil {
		return 0, err
	}
	return Weekday(n), nil
}

// Valid reports whether d is one of the seven days.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// IsSchoolDay reports whether d is Monday through Friday.
func (d Weekday) IsSchoolDay() bool {
	return d >= Monday && d <= Friday
}

// Next returns the following school day. Friday, Saturday and Sunday all
// wrap to Monday.
func (d Weekday) Next() Weekday {
	if d >= Monday && d < Friday {
		return d + 1
	}
	return Monday
}

// DaysUntil counts calendar days from d forward to other, in 0..6.
func (d Weekday) DaysUntil(other Weekday) int {
	return (int(other) - int(d) + 7) % 7
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	name := weekdayNames[d]
	return strings.ToUpper(name[:1]) + name[1:]
}

// MarshalText renders the lower case name; it also keys JSON maps.
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", parse.ErrBadDay, int(d))
	}
	return []byte(weekdayNames[d]), nil
}

func (d *Weekday) UnmarshalText(text []byte) error {
	v, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}
