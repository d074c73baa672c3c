package models

import "time"

// GradeType enumerates grade categories. The "daily" category only
// exists for the legacy gradebook and the point-weighted GPA strategy;
// new writes use exam and final.
type GradeType string

const (
	GradeTypeDaily GradeType = "daily"
	GradeTypeExam  GradeType = "exam"
	GradeTypeFinal GradeType = "final"
)

// Valid returns true when the type is a supported value.
func (t GradeType) Valid() bool {
	switch t {
	case GradeTypeDaily, GradeTypeExam, GradeTypeFinal:
		return true
	default:
		return false
	}
}

// Grade is a single scored entry on the 2..5 scale. Multiple grades per
// (student, subject, term, type) are expected and aggregated, not unique.
type Grade struct {
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	TeacherID *int64    `db:"teacher_id" json:"teacher_id,omitempty"`
	Date      time.Time `db:"date" json:"date"`
	Term      string    `db:"term" json:"term"`
	Type      GradeType `db:"type" json:"type"`
	Score     int       `db:"score" json:"score"`
	Comment   string    `db:"comment" json:"comment"`
}

// GradeFilter scopes grade listings.
type GradeFilter struct {
	StudentID int64
	SubjectID int64
	ClassID   int64
	Type      GradeType
	Term      string
	Date      *time.Time
}

// SubjectBreakdown carries per-category averages for detail display.
// Nil means no grades in that category.
type SubjectBreakdown struct {
	ExamAvg     *float64 `json:"exam_avg"`
	FinalAvg    *float64 `json:"final_avg"`
	CombinedAvg *float64 `json:"combined_avg"`
}
