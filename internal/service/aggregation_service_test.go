package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-uz/maktab-api/internal/models"
	"github.com/maktab-uz/maktab-api/pkg/config"
)

func day(offset int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func grade(id int64, gradeType models.GradeType, score int, offset int) models.Grade {
	return models.Grade{ID: id, StudentID: 1, SubjectID: 1, Type: gradeType, Score: score, Date: day(offset)}
}

func TestRepresentativeScore(t *testing.T) {
	t.Run("latest final wins over exams", func(t *testing.T) {
		grades := []models.Grade{
			grade(1, models.GradeTypeExam, 3, 0),
			grade(2, models.GradeTypeExam, 4, 1),
			grade(3, models.GradeTypeFinal, 5, 2),
		}
		score := RepresentativeScore(grades)
		require.NotNil(t, score)
		assert.Equal(t, 5.0, *score)
	})

	t.Run("same-date finals resolved by id", func(t *testing.T) {
		// repository order is (date, id), so the higher id comes last
		grades := []models.Grade{
			grade(4, models.GradeTypeFinal, 3, 2),
			grade(9, models.GradeTypeFinal, 4, 2),
		}
		score := RepresentativeScore(grades)
		require.NotNil(t, score)
		assert.Equal(t, 4.0, *score)
	})

	t.Run("mean of exams without a final", func(t *testing.T) {
		grades := []models.Grade{
			grade(1, models.GradeTypeExam, 3, 0),
			grade(2, models.GradeTypeExam, 4, 1),
		}
		score := RepresentativeScore(grades)
		require.NotNil(t, score)
		assert.Equal(t, 3.5, *score)
	})

	t.Run("daily grades alone yield nothing", func(t *testing.T) {
		grades := []models.Grade{grade(1, models.GradeTypeDaily, 5, 0)}
		assert.Nil(t, RepresentativeScore(grades))
	})

	t.Run("no grades", func(t *testing.T) {
		assert.Nil(t, RepresentativeScore(nil))
	})
}

func TestBreakdown(t *testing.T) {
	grades := []models.Grade{
		grade(1, models.GradeTypeExam, 3, 0),
		grade(2, models.GradeTypeExam, 4, 1),
		grade(3, models.GradeTypeFinal, 5, 2),
	}
	b := Breakdown(grades)
	require.NotNil(t, b.ExamAvg)
	require.NotNil(t, b.FinalAvg)
	require.NotNil(t, b.CombinedAvg)
	assert.Equal(t, 3.5, *b.ExamAvg)
	assert.Equal(t, 5.0, *b.FinalAvg)
	assert.Equal(t, 4.0, *b.CombinedAvg)

	empty := Breakdown(nil)
	assert.Nil(t, empty.ExamAvg)
	assert.Nil(t, empty.FinalAvg)
	assert.Nil(t, empty.CombinedAvg)
}

func TestGPASubjectScoreRenormalisesWeights(t *testing.T) {
	policy := models.GradingPolicy{Scale: models.DefaultGradeScale(), Weights: models.DefaultGPAConfig()}

	// only exam and final have data, daily's 0.50 weight drops out
	grades := []models.Grade{
		grade(1, models.GradeTypeExam, 4, 0),
		grade(2, models.GradeTypeFinal, 5, 1),
	}
	score := GPASubjectScore(grades, policy)
	require.NotNil(t, score)
	// (3.50*0.30 + 5.00*0.20) / (0.30 + 0.20)
	assert.InDelta(t, 4.1, *score, 1e-9)

	assert.Nil(t, GPASubjectScore(nil, policy))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 3.33, Round2(10.0/3.0))
	assert.Equal(t, 3.5, Round2(3.5))
	assert.Equal(t, 0.0, Round2(0))
}

type stubGrades struct {
	byStudent map[int64][]models.Grade
}

func (s stubGrades) ListByStudentSubject(_ context.Context, studentID, subjectID int64, _ string) ([]models.Grade, error) {
	var out []models.Grade
	for _, g := range s.byStudent[studentID] {
		if g.SubjectID == subjectID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s stubGrades) FetchForStudents(_ context.Context, studentIDs []int64, _ string) (map[int64][]models.Grade, error) {
	out := make(map[int64][]models.Grade)
	for _, id := range studentIDs {
		out[id] = s.byStudent[id]
	}
	return out, nil
}

type stubSubjectSet struct {
	ids []int64
}

func (s stubSubjectSet) DistinctSubjectIDs(context.Context, int64) ([]int64, error) {
	return s.ids, nil
}

type stubCatalog struct {
	subjects []models.Subject
}

func (s stubCatalog) List(context.Context) ([]models.Subject, error) {
	return s.subjects, nil
}

type stubPolicies struct{}

func (stubPolicies) ActiveScale(context.Context) (*models.GradeScale, error) {
	scale := models.DefaultGradeScale()
	return &scale, nil
}

func (stubPolicies) ActiveWeights(context.Context) (*models.GPAConfig, error) {
	weights := models.DefaultGPAConfig()
	return &weights, nil
}

func TestClassSubjectSetFallsBackToCatalog(t *testing.T) {
	catalog := stubCatalog{subjects: []models.Subject{{ID: 1, Name: "Math"}, {ID: 2, Name: "Uzbek"}}}

	svc := NewAggregationService(stubGrades{}, stubSubjectSet{ids: []int64{2}}, catalog, stubPolicies{}, config.GradingConfig{Strategy: config.GradingStrategyAverage}, nil)
	ids, err := svc.ClassSubjectSet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids)

	svc = NewAggregationService(stubGrades{}, stubSubjectSet{}, catalog, stubPolicies{}, config.GradingConfig{Strategy: config.GradingStrategyAverage}, nil)
	ids, err = svc.ClassSubjectSet(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestAverageForGradesExcludesUnscoredSubjects(t *testing.T) {
	grades := []models.Grade{
		{ID: 1, StudentID: 1, SubjectID: 1, Type: models.GradeTypeFinal, Score: 5, Date: day(0)},
	}
	svc := NewAggregationService(stubGrades{}, stubSubjectSet{}, stubCatalog{}, stubPolicies{}, config.GradingConfig{Strategy: config.GradingStrategyAverage}, nil)

	avg, err := svc.AverageForGrades(context.Background(), grades, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg.Avg)
	assert.Equal(t, 1, avg.SubjectsCounted)

	avg, err = svc.AverageForGrades(context.Background(), nil, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0.0, avg.Avg)
	assert.Equal(t, 0, avg.SubjectsCounted)
}
