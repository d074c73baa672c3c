package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(id, teacherID int64, weekday int, start, end string) ScheduleEntry {
	return ScheduleEntry{ID: id, ClassID: 1, SubjectID: 1, TeacherID: teacherID, Weekday: weekday, StartTime: start, EndTime: end}
}

func TestClockMinutes(t *testing.T) {
	m, err := ClockMinutes("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	m, err = ClockMinutes("09:30:00")
	require.NoError(t, err)
	assert.Equal(t, 570, m)

	_, err = ClockMinutes("half past nine")
	assert.Error(t, err)
}

func TestOverlapsWith(t *testing.T) {
	a := slot(1, 7, 1, "09:00", "10:00")

	cases := []struct {
		name    string
		other   ScheduleEntry
		overlap bool
	}{
		{"identical window", slot(2, 7, 1, "09:00", "10:00"), true},
		{"partial overlap", slot(2, 7, 1, "09:30", "10:30"), true},
		{"contained", slot(2, 7, 1, "09:15", "09:45"), true},
		{"touching end to start", slot(2, 7, 1, "10:00", "11:00"), false},
		{"touching start to end", slot(2, 7, 1, "08:00", "09:00"), false},
		{"different weekday", slot(2, 7, 2, "09:00", "10:00"), false},
		{"different teacher", slot(2, 8, 1, "09:00", "10:00"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlap, a.OverlapsWith(tc.other))
			assert.Equal(t, tc.overlap, tc.other.OverlapsWith(a), "predicate must be symmetric")
		})
	}
}

func TestFirstConflictSkipsSelf(t *testing.T) {
	existing := []ScheduleEntry{
		slot(10, 7, 1, "09:00", "10:00"),
		slot(11, 7, 1, "11:00", "12:00"),
	}

	// updating slot 10 in place must not conflict with itself
	candidate := slot(10, 7, 1, "09:15", "09:45")
	assert.Nil(t, FirstConflict(candidate, existing))

	candidate = slot(0, 7, 1, "11:30", "12:30")
	conflict := FirstConflict(candidate, existing)
	require.NotNil(t, conflict)
	assert.Equal(t, int64(11), conflict.ScheduleID)
}
