package models

// SchoolClass groups students and owns a timetable, e.g. "7-A".
type SchoolClass struct {
	ID             int64  `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	Level          *int   `db:"level" json:"level,omitempty"`
	ClassTeacherID *int64 `db:"class_teacher_id" json:"class_teacher_id,omitempty"`
	Capacity       int    `db:"capacity" json:"capacity"`
}

// ClassSummary augments a class with its roster size for listings.
type ClassSummary struct {
	SchoolClass
	StudentsCount int `db:"students_count" json:"students_count"`
}
