package timetable

import (
	"cmp"
	"slices"
)

// EntryKind distinguishes lessons from breaks in a day agenda.
type EntryKind string

const (
	EntryClass EntryKind = "class"
	EntryBreak EntryKind = "break"
)

// AgendaEntry is one row of a full-day view.
type AgendaEntry struct {
	Kind     EntryKind  `json:"kind"`
	Interval Interval   `json:"interval"`
	Slot     *ClassSlot `json:"slot,omitempty"`
	Break    *Break     `json:"break,omitempty"`
}

// DayAgenda merges day's slots with the shared breaks in start order. Slots
// sort ahead of breaks that start at the same minute. Weekend days have no
// agenda.
func DayAgenda(schedule WeekSchedule, day Weekday) []AgendaEntry {
	if !day.IsSchoolDay() {
		return nil
	}

	daySlots := sortSlots(schedule.Slots(day))
	entries := make([]AgendaEntry, 0, len(daySlots)+len(schedule.Breaks))
	for i := range daySlots {
		entries = append(entries, AgendaEntry{Kind: EntryClass, Interval: daySlots[i].Interval, Slot: &daySlots[i]})
	}
	for i := range schedule.Breaks {
		b := schedule.Breaks[i]
		entries = append(entries, AgendaEntry{Kind: EntryBreak, Interval: b.Interval, Break: &b})
	}

	slices.SortStableFunc(entries, func(a, b AgendaEntry) int {
		return cmp.Compare(a.Interval.Start, b.Interval.Start)
	})
	return entries
}
