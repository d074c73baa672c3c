package models

import "time"

// AttendanceStatus enumerates the supported per-lesson statuses.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Attendance is one student's mark for one day. A row is anchored either
// to an exact timetable slot (ScheduleID set) or, for legacy writers, to
// a bare subject. The two anchor styles form independent uniqueness
// domains:
//
//   - (student, date, schedule) when the schedule anchor is set
//   - (student, date, subject)  when it is not
//
// so a slot-anchored mark and a legacy subject mark for the same
// student/date/subject coexist.
type Attendance struct {
	ID         int64            `db:"id" json:"id"`
	StudentID  int64            `db:"student_id" json:"student_id"`
	Date       time.Time        `db:"date" json:"date"`
	Status     AttendanceStatus `db:"status" json:"status"`
	ClassID    int64            `db:"class_id" json:"class_id"`
	SubjectID  *int64           `db:"subject_id" json:"subject_id,omitempty"`
	ScheduleID *int64           `db:"schedule_id" json:"schedule_id,omitempty"`
	TeacherID  *int64           `db:"teacher_id" json:"teacher_id,omitempty"`
	Note       string           `db:"note" json:"note"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// ScheduleAnchored reports which uniqueness domain the row belongs to.
func (a Attendance) ScheduleAnchored() bool {
	return a.ScheduleID != nil
}

// AttendanceFilter scopes grid read-backs. Schedule takes precedence
// over Subject when both are supplied.
type AttendanceFilter struct {
	ClassID    int64
	Date       time.Time
	ScheduleID *int64
	SubjectID  *int64
}

// AttendanceSkip reports a bulk entry that was not persisted.
type AttendanceSkip struct {
	StudentID int64  `json:"student_id"`
	Reason    string `json:"reason"`
}

// AttendanceBulkResult preserves the legacy partial-success contract
// while surfacing what was skipped and why.
type AttendanceBulkResult struct {
	IDs     []int64          `json:"ids"`
	Skipped []AttendanceSkip `json:"skipped,omitempty"`
}
