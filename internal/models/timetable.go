package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockMinutes parses "HH:MM" (or "HH:MM:SS", as returned for TIME
// columns) into minutes since midnight.
func ClockMinutes(clock string) (int, error) {
	parts := strings.Split(strings.TrimSpace(clock), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock value %q", clock)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", clock)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", clock)
	}
	return hour*60 + minute, nil
}

// OverlapsWith reports whether two slots of the same teacher and weekday
// collide. Intervals are half-open, so touching endpoints do not
// conflict. Slots of different teachers or weekdays never overlap.
func (e ScheduleEntry) OverlapsWith(o ScheduleEntry) bool {
	if e.TeacherID != o.TeacherID || e.Weekday != o.Weekday {
		return false
	}
	aStart, err := ClockMinutes(e.StartTime)
	if err != nil {
		return false
	}
	aEnd, err := ClockMinutes(e.EndTime)
	if err != nil {
		return false
	}
	bStart, err := ClockMinutes(o.StartTime)
	if err != nil {
		return false
	}
	bEnd, err := ClockMinutes(o.EndTime)
	if err != nil {
		return false
	}
	return aStart < bEnd && aEnd > bStart
}

// FirstConflict returns the first persisted slot the candidate collides
// with, or nil. The candidate's own row is excluded so updates do not
// conflict with themselves.
func FirstConflict(candidate ScheduleEntry, existing []ScheduleEntry) *ScheduleConflict {
	for _, slot := range existing {
		if slot.ID != 0 && slot.ID == candidate.ID {
			continue
		}
		if candidate.OverlapsWith(slot) {
			return &ScheduleConflict{
				ScheduleID: slot.ID,
				ClassID:    slot.ClassID,
				SubjectID:  slot.SubjectID,
				TeacherID:  slot.TeacherID,
				Weekday:    slot.Weekday,
				StartTime:  slot.StartTime,
				EndTime:    slot.EndTime,
			}
		}
	}
	return nil
}
