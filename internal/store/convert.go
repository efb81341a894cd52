package store

import (
	"fmt"

	"timetable-backend/internal/model"
	"timetable-backend/internal/timetable"
)

// ToClassSlot converts a persisted row into the resolver's slot type.
func ToClassSlot(row model.ClassSlot) (timetable.ClassSlot, error) {
	iv, err := timetable.ParseInterval(row.StartTime, row.EndTime)
	if err != nil {
		return timetable.ClassSlot{}, err
	}
	slot := timetable.ClassSlot{
		ID:       row.ID,
		Day:      timetable.Weekday(row.Day),
		Interval: iv,
		Subject:  row.Subject,
		Teacher:  row.Teacher,
		Room:     row.Room,
	}
	if err := timetable.ValidateSlot(slot); err != nil {
		return timetable.ClassSlot{}, err
	}
	return slot, nil
}

// ToBreak converts a persisted row into the resolver's break type.
func ToBreak(row model.Break) (timetable.Break, error) {
	iv, err := timetable.ParseInterval(row.StartTime, row.EndTime)
	if err != nil {
		return timetable.Break{}, err
	}
	return timetable.Break{ID: row.ID, Name: row.Name, Interval: iv}, nil
}

func normalizeSlot(row *model.ClassSlot) error {
	if row.Subject == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidRecord)
	}
	slot, err := ToClassSlot(*row)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	row.StartTime = slot.Interval.Start.String()
	row.EndTime = slot.Interval.End.String()
	return nil
}

func normalizeBreak(row *model.Break) error {
	if row.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRecord)
	}
	b, err := ToBreak(*row)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	row.StartTime = b.Interval.Start.String()
	row.EndTime = b.Interval.End.String()
	return nil
}
