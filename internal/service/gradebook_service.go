package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type attendanceRangeReader interface {
	ListClassRange(ctx context.Context, classID int64, from, to time.Time) ([]models.Attendance, error)
}

type gradeRangeReader interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
	ListClassDateRange(ctx context.Context, classID int64, gradeType models.GradeType, from, to time.Time) ([]models.Grade, error)
}

// GradebookService assembles class grids: the weekly attendance matrix,
// the daily gradebook and the per-term exam/final books.
type GradebookService struct {
	classes    classReader
	students   classStudentSource
	attendance attendanceRangeReader
	grades     gradeRangeReader
	logger     *zap.Logger
}

// NewGradebookService constructs GradebookService.
func NewGradebookService(classes classReader, students classStudentSource, attendance attendanceRangeReader, grades gradeRangeReader, logger *zap.Logger) *GradebookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradebookService{classes: classes, students: students, attendance: attendance, grades: grades, logger: logger}
}

func (s *GradebookService) classStudents(ctx context.Context, classID int64) ([]models.Student, error) {
	if _, err := s.classes.FindByID(ctx, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// AttendanceWeek returns the Mon-Sat attendance matrix for the week
// containing the given date. Each student row maps ISO dates to the
// recorded status; unmarked days are absent from the map.
func (s *GradebookService) AttendanceWeek(ctx context.Context, classID int64, anchor time.Time) (*models.AttendanceWeekGrid, error) {
	students, err := s.classStudents(ctx, classID)
	if err != nil {
		return nil, err
	}
	week := models.WeekOf(anchor)
	marks, err := s.attendance.ListClassRange(ctx, classID, week.Monday, week.Saturday)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}

	byStudent := make(map[int64]map[string]models.AttendanceStatus)
	for _, m := range marks {
		day := m.Date.Format("2006-01-02")
		if byStudent[m.StudentID] == nil {
			byStudent[m.StudentID] = map[string]models.AttendanceStatus{}
		}
		byStudent[m.StudentID][day] = m.Status
	}

	grid := &models.AttendanceWeekGrid{ClassID: classID, Week: week, Rows: make([]models.AttendanceGridRow, 0, len(students))}
	for _, st := range students {
		days := byStudent[st.ID]
		if days == nil {
			days = map[string]models.AttendanceStatus{}
		}
		grid.Rows = append(grid.Rows, models.AttendanceGridRow{StudentID: st.ID, Name: st.FullName(), Days: days})
	}
	return grid, nil
}

// DailyGradebook returns the daily-grade grid for the week containing
// the given date, cells keyed by ISO date.
func (s *GradebookService) DailyGradebook(ctx context.Context, classID int64, anchor time.Time) (*models.Gradebook, error) {
	students, err := s.classStudents(ctx, classID)
	if err != nil {
		return nil, err
	}
	week := models.WeekOf(anchor)
	grades, err := s.grades.ListClassDateRange(ctx, classID, models.GradeTypeDaily, week.Monday, week.Saturday)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	book := s.buildBook(classID, models.GradeTypeDaily, "", students, grades, func(g models.Grade) string {
		return g.Date.Format("2006-01-02")
	})
	book.Week = &week
	return book, nil
}

// TermGradebook returns the exam or final book for a term, cells keyed
// by subject id. When more than one grade exists per cell the latest
// one wins, matching the representative-score selection.
func (s *GradebookService) TermGradebook(ctx context.Context, classID int64, gradeType models.GradeType, term string) (*models.Gradebook, error) {
	if gradeType != models.GradeTypeExam && gradeType != models.GradeTypeFinal {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gradebook type must be exam or final")
	}
	students, err := s.classStudents(ctx, classID)
	if err != nil {
		return nil, err
	}
	grades, err := s.grades.List(ctx, models.GradeFilter{ClassID: classID, Type: gradeType, Term: term})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return s.buildBook(classID, gradeType, term, students, grades, func(g models.Grade) string {
		return strconv.FormatInt(g.SubjectID, 10)
	}), nil
}

func (s *GradebookService) buildBook(classID int64, gradeType models.GradeType, term string, students []models.Student, grades []models.Grade, key func(models.Grade) string) *models.Gradebook {
	byStudent := make(map[int64]map[string]models.GradebookCell)
	for _, g := range grades {
		if byStudent[g.StudentID] == nil {
			byStudent[g.StudentID] = map[string]models.GradebookCell{}
		}
		// grades arrive in (date, id) order, so the last write wins
		byStudent[g.StudentID][key(g)] = models.GradebookCell{GradeID: g.ID, Score: g.Score, Comment: g.Comment}
	}
	book := &models.Gradebook{ClassID: classID, Type: gradeType, Term: term, Rows: make([]models.GradebookRow, 0, len(students))}
	for _, st := range students {
		cells := byStudent[st.ID]
		if cells == nil {
			cells = map[string]models.GradebookCell{}
		}
		book.Rows = append(book.Rows, models.GradebookRow{StudentID: st.ID, Name: st.FullName(), Cells: cells})
	}
	return book
}
