package models

// RankingRow is one student's position in a class ranking.
type RankingRow struct {
	StudentID       int64   `json:"student_id"`
	Name            string  `json:"name"`
	Avg             float64 `json:"avg"`
	SubjectsCounted int     `json:"subjects_counted"`
	Rank            int     `json:"rank"`
}

// ClassRanking is the ordered ranking for a whole class.
type ClassRanking struct {
	ClassID int64        `json:"class_id"`
	Term    string       `json:"term,omitempty"`
	Ranking []RankingRow `json:"ranking"`
}

// SubjectSummary is the per-subject block of a student overview.
type SubjectSummary struct {
	SubjectID   int64            `json:"subject_id"`
	SubjectName string           `json:"subject_name"`
	Score       *float64         `json:"score"`
	Breakdown   SubjectBreakdown `json:"breakdown"`
}

// StudentOverview composes grades, timetable and the current week's
// attendance for a single student.
type StudentOverview struct {
	Student        Student          `json:"student"`
	ClassName      string           `json:"class_name"`
	Timetable      []ScheduleEntry  `json:"timetable"`
	WeekAttendance []Attendance     `json:"latest_week_attendance"`
	Subjects       []SubjectSummary `json:"grades_summary"`
	AvgOverall     float64          `json:"avg_overall"`
	ClassRank      *int             `json:"class_rank"`
	ClassSize      int              `json:"class_size"`
}
