package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-uz/maktab-api/internal/models"
	"github.com/maktab-uz/maktab-api/pkg/config"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type stubClasses struct {
	classes map[int64]*models.SchoolClass
}

func (s stubClasses) FindByID(_ context.Context, id int64) (*models.SchoolClass, error) {
	class, ok := s.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

type stubStudents struct {
	byClass map[int64][]models.Student
}

func (s stubStudents) ListByClass(_ context.Context, classID int64) ([]models.Student, error) {
	return s.byClass[classID], nil
}

func newRankingFixture(grades map[int64][]models.Grade, subjectIDs []int64, students []models.Student) *RankingService {
	aggregation := NewAggregationService(
		stubGrades{byStudent: grades},
		stubSubjectSet{ids: subjectIDs},
		stubCatalog{},
		stubPolicies{},
		config.GradingConfig{Strategy: config.GradingStrategyAverage},
		nil,
	)
	classes := stubClasses{classes: map[int64]*models.SchoolClass{1: {ID: 1, Name: "7-A"}}}
	roster := stubStudents{byClass: map[int64][]models.Student{1: students}}
	return NewRankingService(classes, roster, stubGrades{byStudent: grades}, aggregation, nil)
}

func TestClassRanking(t *testing.T) {
	// class subjects {Math=1, Uzbek=2}; S1 has only a Math final of 5,
	// S2 has Math exams [4,4] and an Uzbek final of 3
	grades := map[int64][]models.Grade{
		1: {
			{ID: 1, StudentID: 1, SubjectID: 1, Type: models.GradeTypeFinal, Score: 5, Date: day(0)},
		},
		2: {
			{ID: 2, StudentID: 2, SubjectID: 1, Type: models.GradeTypeExam, Score: 4, Date: day(0)},
			{ID: 3, StudentID: 2, SubjectID: 1, Type: models.GradeTypeExam, Score: 4, Date: day(1)},
			{ID: 4, StudentID: 2, SubjectID: 2, Type: models.GradeTypeFinal, Score: 3, Date: day(1)},
		},
	}
	students := []models.Student{
		{ID: 1, FirstName: "Aziz", LastName: "Aliyev"},
		{ID: 2, FirstName: "Bobur", LastName: "Karimov"},
	}
	svc := newRankingFixture(grades, []int64{1, 2}, students)

	ranking, err := svc.ClassRanking(context.Background(), 1, "")
	require.NoError(t, err)
	require.Len(t, ranking.Ranking, 2)

	first, second := ranking.Ranking[0], ranking.Ranking[1]
	assert.Equal(t, int64(1), first.StudentID)
	assert.Equal(t, 5.0, first.Avg)
	assert.Equal(t, 1, first.SubjectsCounted)
	assert.Equal(t, 1, first.Rank)

	assert.Equal(t, int64(2), second.StudentID)
	assert.Equal(t, 3.5, second.Avg)
	assert.Equal(t, 2, second.SubjectsCounted)
	assert.Equal(t, 2, second.Rank)
}

func TestClassRankingReproducible(t *testing.T) {
	grades := map[int64][]models.Grade{
		1: {{ID: 1, StudentID: 1, SubjectID: 1, Type: models.GradeTypeFinal, Score: 4, Date: day(0)}},
		2: {{ID: 2, StudentID: 2, SubjectID: 1, Type: models.GradeTypeFinal, Score: 4, Date: day(0)}},
		3: {{ID: 3, StudentID: 3, SubjectID: 1, Type: models.GradeTypeFinal, Score: 5, Date: day(0)}},
	}
	students := []models.Student{
		{ID: 1, FirstName: "Aziz", LastName: "Aliyev"},
		{ID: 2, FirstName: "Bobur", LastName: "Karimov"},
		{ID: 3, FirstName: "Dilshod", LastName: "Rahimov"},
	}
	svc := newRankingFixture(grades, []int64{1}, students)

	a, err := svc.ClassRanking(context.Background(), 1, "")
	require.NoError(t, err)
	b, err := svc.ClassRanking(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// ties keep roster order, ranks stay strictly sequential
	assert.Equal(t, int64(3), a.Ranking[0].StudentID)
	assert.Equal(t, int64(1), a.Ranking[1].StudentID)
	assert.Equal(t, int64(2), a.Ranking[2].StudentID)
	assert.Equal(t, []int{1, 2, 3}, []int{a.Ranking[0].Rank, a.Ranking[1].Rank, a.Ranking[2].Rank})
}

func TestClassRankingZeroScoredStudents(t *testing.T) {
	students := []models.Student{{ID: 1, FirstName: "Aziz", LastName: "Aliyev"}}
	svc := newRankingFixture(map[int64][]models.Grade{}, []int64{1, 2}, students)

	ranking, err := svc.ClassRanking(context.Background(), 1, "")
	require.NoError(t, err)
	require.Len(t, ranking.Ranking, 1)
	assert.Equal(t, 0.0, ranking.Ranking[0].Avg)
	assert.Equal(t, 0, ranking.Ranking[0].SubjectsCounted)
	assert.Equal(t, 1, ranking.Ranking[0].Rank)
}

func TestClassRankingUnknownClass(t *testing.T) {
	svc := newRankingFixture(map[int64][]models.Grade{}, nil, nil)
	_, err := svc.ClassRanking(context.Background(), 42, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentRankMatchesBatchRanking(t *testing.T) {
	grades := map[int64][]models.Grade{
		1: {{ID: 1, StudentID: 1, SubjectID: 1, Type: models.GradeTypeFinal, Score: 3, Date: day(0)}},
		2: {{ID: 2, StudentID: 2, SubjectID: 1, Type: models.GradeTypeFinal, Score: 5, Date: day(0)}},
	}
	students := []models.Student{
		{ID: 1, FirstName: "Aziz", LastName: "Aliyev"},
		{ID: 2, FirstName: "Bobur", LastName: "Karimov"},
	}
	svc := newRankingFixture(grades, []int64{1}, students)

	row, size, err := svc.StudentRank(context.Background(), 1, 1, "")
	require.NoError(t, err)
	assert.Equal(t, 2, size)
	assert.Equal(t, 2, row.Rank)
	assert.Equal(t, 3.0, row.Avg)

	_, _, err = svc.StudentRank(context.Background(), 1, 99, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
