package timetable

import "time"

// Result is the outcome of resolving a schedule at one instant. Progress is
// set only when Current is.
type Result struct {
	Current  *ClassSlot `json:"current"`
	Next     *ClassSlot `json:"next"`
	Progress *float64   `json:"progress"`
}

// Resolve finds the slot running at now, the slot after it (which may fall on
// a later school day) and how far through the current slot now is.
//
// now is read exactly once; its location decides weekday and time of day, so
// callers should convert it to the school's timezone first. Resolve never
// reads the clock itself.
func Resolve(schedule WeekSchedule, now time.Time) Result {
	var res Result

	today := WeekdayOf(now)
	if today.IsSchoolDay() {
		minute := TimeOfDayOf(now)
		// The builder already sorts, but the scan below depends on it.
		daySlots := sortSlots(schedule.Slots(today))
		for i := range daySlots {
			slot := daySlots[i]
			if slot.Interval.Contains(minute) {
				res.Current = &slot
				if i+1 < len(daySlots) {
					next := daySlots[i+1]
					res.Next = &next
				}
				break
			}
			if minute < slot.Interval.Start {
				res.Next = &slot
				break
			}
		}
	}

	if res.Next == nil {
		res.Next = firstSlotAfter(schedule, today)
	}

	if res.Current != nil {
		p := progress(res.Current.Interval, now)
		res.Progress = &p
	}
	return res
}

// firstSlotAfter walks forward through school days, wrapping past the
// weekend, and returns the earliest slot of the first day that has one. A
// full cycle comes back to today, i.e. the same weekday next week.
func firstSlotAfter(schedule WeekSchedule, today Weekday) *ClassSlot {
	day := today
	for range SchoolDays {
		day = day.Next()
		if daySlots := sortSlots(schedule.Slots(day)); len(daySlots) > 0 {
			first := daySlots[0]
			return &first
		}
	}
	return nil
}

// progress is the elapsed fraction of iv at now, clamped to [0, 1].
func progress(iv Interval, now time.Time) float64 {
	length := float64(iv.Minutes()) * 60
	if length <= 0 {
		return 0
	}
	elapsed := float64(TimeOfDayOf(now)-iv.Start)*60 + float64(now.Second()) + float64(now.Nanosecond())/1e9
	p := elapsed / length
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// NextStart returns the instant next begins, searching forward from now in
// now's location. If next falls on today's weekday but has already started,
// the same weekday of the following week is used.
func NextStart(next ClassSlot, now time.Time) time.Time {
	days := WeekdayOf(now).DaysUntil(next.Day)
	if days == 0 && next.Interval.Start <= TimeOfDayOf(now) {
		days = 7
	}
	return next.Interval.Start.On(now.AddDate(0, 0, days))
}
