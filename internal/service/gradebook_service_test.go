package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type stubAttendanceRange struct {
	marks []models.Attendance
}

func (s stubAttendanceRange) ListClassRange(_ context.Context, _ int64, from, to time.Time) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, m := range s.marks {
		if !m.Date.Before(from) && !m.Date.After(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

type stubGradeRange struct {
	grades []models.Grade
}

func (s stubGradeRange) List(_ context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	var out []models.Grade
	for _, g := range s.grades {
		if filter.Type != "" && g.Type != filter.Type {
			continue
		}
		if filter.Term != "" && g.Term != filter.Term {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (s stubGradeRange) ListClassDateRange(_ context.Context, _ int64, gradeType models.GradeType, from, to time.Time) ([]models.Grade, error) {
	var out []models.Grade
	for _, g := range s.grades {
		if g.Type == gradeType && !g.Date.Before(from) && !g.Date.After(to) {
			out = append(out, g)
		}
	}
	return out, nil
}

func gradebookFixture(marks []models.Attendance, grades []models.Grade) *GradebookService {
	classes := stubClasses{classes: map[int64]*models.SchoolClass{1: {ID: 1, Name: "7-A"}}}
	roster := stubStudents{byClass: map[int64][]models.Student{1: {
		{ID: 1, FirstName: "Aziz", LastName: "Karimov"},
		{ID: 2, FirstName: "Bobur", LastName: "Saidov"},
	}}}
	return NewGradebookService(classes, roster, stubAttendanceRange{marks: marks}, stubGradeRange{grades: grades}, nil)
}

func TestAttendanceWeekGrid(t *testing.T) {
	wed := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	svc := gradebookFixture([]models.Attendance{
		{StudentID: 1, Date: wed, Status: models.AttendanceStatusPresent},
		{StudentID: 1, Date: wed.AddDate(0, 0, 1), Status: models.AttendanceStatusLate},
		// the previous week must stay outside the grid
		{StudentID: 2, Date: wed.AddDate(0, 0, -7), Status: models.AttendanceStatusAbsent},
	}, nil)

	grid, err := svc.AttendanceWeek(context.Background(), 1, wed)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC), grid.Week.Monday)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, models.AttendanceStatusPresent, grid.Rows[0].Days["2026-01-14"])
	assert.Equal(t, models.AttendanceStatusLate, grid.Rows[0].Days["2026-01-15"])
	assert.Empty(t, grid.Rows[1].Days)
}

func TestTermGradebookLastWriteWins(t *testing.T) {
	// two finals in the same subject cell; the repository returns them
	// in (date, id) order so the later one must land in the cell
	svc := gradebookFixture(nil, []models.Grade{
		{ID: 10, StudentID: 1, SubjectID: 3, Type: models.GradeTypeFinal, Term: "2026-T2", Score: 3, Date: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)},
		{ID: 11, StudentID: 1, SubjectID: 3, Type: models.GradeTypeFinal, Term: "2026-T2", Score: 5, Date: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)},
	})

	book, err := svc.TermGradebook(context.Background(), 1, models.GradeTypeFinal, "2026-T2")
	require.NoError(t, err)
	require.Len(t, book.Rows, 2)
	cell, ok := book.Rows[0].Cells["3"]
	require.True(t, ok)
	assert.Equal(t, int64(11), cell.GradeID)
	assert.Equal(t, 5, cell.Score)
}

func TestTermGradebookRejectsDailyType(t *testing.T) {
	svc := gradebookFixture(nil, nil)
	_, err := svc.TermGradebook(context.Background(), 1, models.GradeTypeDaily, "2026-T2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGradebookUnknownClass(t *testing.T) {
	svc := gradebookFixture(nil, nil)
	_, err := svc.AttendanceWeek(context.Background(), 42, time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
