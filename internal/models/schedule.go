package models

// Weekday bounds for timetable slots (1 = Monday .. 6 = Saturday).
const (
	WeekdayMin = 1
	WeekdayMax = 6
)

// ScheduleEntry is a single timetable slot: a class meets a teacher for
// a subject in a half-open [start,end) window on a weekday.
type ScheduleEntry struct {
	ID        int64  `db:"id" json:"id"`
	ClassID   int64  `db:"class_id" json:"class_id"`
	SubjectID int64  `db:"subject_id" json:"subject_id"`
	TeacherID int64  `db:"teacher_id" json:"teacher_id"`
	Weekday   int    `db:"weekday" json:"weekday"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	Room      string `db:"room" json:"room"`
}

// ScheduleFilter describes query params for listing timetable slots.
type ScheduleFilter struct {
	ClassID   int64
	TeacherID int64
	Weekday   int
}

// ScheduleConflictError is returned when a candidate slot collides with
// an existing one for the same teacher.
type ScheduleConflictError struct {
	Message  string           `json:"message"`
	Conflict ScheduleConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// ScheduleConflict describes the persisted slot that collides with a
// candidate write.
type ScheduleConflict struct {
	ScheduleID int64  `json:"schedule_id"`
	ClassID    int64  `json:"class_id"`
	SubjectID  int64  `json:"subject_id"`
	TeacherID  int64  `json:"teacher_id"`
	Weekday    int    `json:"weekday"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}
