// Package timetable resolves which class is running and which comes next
// against a weekly schedule of class slots and shared breaks.
package timetable

import (
	"cmp"
	"fmt"
	"slices"
)

// ClassSlot is one scheduled lesson occurrence.
type ClassSlot struct {
	ID       int64    `json:"id"`
	Day      Weekday  `json:"day"`
	Interval Interval `json:"interval"`
	Subject  string   `json:"subject"`
	Teacher  string   `json:"teacher,omitempty"`
	Room     string   `json:"room,omitempty"`
}

// Break is a non-lesson interval. Breaks are not tied to a day: the same set
// applies to every school day.
type Break struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Interval Interval `json:"interval"`
}

// WeekSchedule is an immutable snapshot of the timetable. It is rebuilt from
// storage whenever the underlying records change, never patched.
type WeekSchedule struct {
	Days   map[Weekday][]ClassSlot `json:"days"`
	Breaks []Break                 `json:"breaks"`
}

// NewWeekSchedule validates slots and breaks and groups slots per day in
// ascending start order.
func NewWeekSchedule(slots []ClassSlot, breaks []Break) (WeekSchedule, error) {
	ws := WeekSchedule{
		Days:   make(map[Weekday][]ClassSlot, len(SchoolDays)),
		Breaks: make([]Break, 0, len(breaks)),
	}

	for _, s := range slots {
		if err := ValidateSlot(s); err != nil {
			return WeekSchedule{}, err
		}
		ws.Days[s.Day] = append(ws.Days[s.Day], s)
	}
	for day, daySlots := range ws.Days {
		ws.Days[day] = sortSlots(daySlots)
	}

	for _, b := range breaks {
		if err := b.Interval.Validate(); err != nil {
			return WeekSchedule{}, fmt.Errorf("break %d (%s): %w", b.ID, b.Name, err)
		}
		ws.Breaks = append(ws.Breaks, b)
	}
	slices.SortStableFunc(ws.Breaks, func(a, b Break) int {
		return cmp.Compare(a.Interval.Start, b.Interval.Start)
	})

	return ws, nil
}

// ValidateSlot checks the slot's interval and that it sits on a school day.
func ValidateSlot(s ClassSlot) error {
	if !s.Day.IsSchoolDay() {
		return fmt.Errorf("slot %d: %w: %v", s.ID, ErrNotSchoolDay, s.Day)
	}
	if err := s.Interval.Validate(); err != nil {
		return fmt.Errorf("slot %d: %w", s.ID, err)
	}
	return nil
}

// Slots returns the slots of day in ascending start order. Weekend days and
// days without classes return nil.
func (ws WeekSchedule) Slots(day Weekday) []ClassSlot {
	return ws.Days[day]
}

// Empty reports whether no day carries any slot.
func (ws WeekSchedule) Empty() bool {
	for _, day := range SchoolDays {
		if len(ws.Days[day]) > 0 {
			return false
		}
	}
	return true
}

// Len counts all slots across the week.
func (ws WeekSchedule) Len() int {
	n := 0
	for _, daySlots := range ws.Days {
		n += len(daySlots)
	}
	return n
}

// sortSlots returns a sorted copy: start, then end, then ID, so that any
// input order of the same slots yields the same sequence.
func sortSlots(in []ClassSlot) []ClassSlot {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b ClassSlot) int {
		if c := cmp.Compare(a.Interval.Start, b.Interval.Start); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Interval.End, b.Interval.End); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
