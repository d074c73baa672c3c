package models

import "time"

// WeekRange is a Monday-to-Saturday marking window.
type WeekRange struct {
	Monday   time.Time `json:"monday"`
	Saturday time.Time `json:"saturday"`
}

// Days returns the six school days of the window in order.
func (w WeekRange) Days() []time.Time {
	days := make([]time.Time, 6)
	for i := 0; i < 6; i++ {
		days[i] = w.Monday.AddDate(0, 0, i)
	}
	return days
}

// WeekOf returns the Mon-Sat window containing the given date. Sunday
// belongs to the week it closes.
func WeekOf(date time.Time) WeekRange {
	offset := (int(date.Weekday()) + 6) % 7
	monday := date.AddDate(0, 0, -offset)
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
	return WeekRange{Monday: monday, Saturday: monday.AddDate(0, 0, 5)}
}

// AttendanceGridRow is one student's row in the weekly attendance grid,
// keyed by ISO date.
type AttendanceGridRow struct {
	StudentID int64                       `json:"student_id"`
	Name      string                      `json:"name"`
	Days      map[string]AttendanceStatus `json:"days"`
}

// AttendanceWeekGrid is a class's Mon-Sat attendance matrix.
type AttendanceWeekGrid struct {
	ClassID int64               `json:"class_id"`
	Week    WeekRange           `json:"week"`
	Rows    []AttendanceGridRow `json:"rows"`
}

// GradebookCell is a single mark in a gradebook grid.
type GradebookCell struct {
	GradeID int64  `json:"grade_id"`
	Score   int    `json:"score"`
	Comment string `json:"comment,omitempty"`
}

// GradebookRow is one student's row, keyed by ISO date for the daily
// book and by subject id (decimal string) for term books.
type GradebookRow struct {
	StudentID int64                    `json:"student_id"`
	Name      string                   `json:"name"`
	Cells     map[string]GradebookCell `json:"cells"`
}

// Gradebook is a class grid for one grade category.
type Gradebook struct {
	ClassID int64          `json:"class_id"`
	Type    GradeType      `json:"type"`
	Term    string         `json:"term,omitempty"`
	Week    *WeekRange     `json:"week,omitempty"`
	Rows    []GradebookRow `json:"rows"`
}
