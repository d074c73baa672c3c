package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/maktab-uz/maktab-api/internal/models"
	"github.com/maktab-uz/maktab-api/pkg/config"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type gradeAggregateRepository interface {
	ListByStudentSubject(ctx context.Context, studentID, subjectID int64, term string) ([]models.Grade, error)
	FetchForStudents(ctx context.Context, studentIDs []int64, term string) (map[int64][]models.Grade, error)
}

type subjectSetSource interface {
	DistinctSubjectIDs(ctx context.Context, classID int64) ([]int64, error)
}

type subjectCatalog interface {
	List(ctx context.Context) ([]models.Subject, error)
}

type gradingPolicySource interface {
	ActiveScale(ctx context.Context) (*models.GradeScale, error)
	ActiveWeights(ctx context.Context) (*models.GPAConfig, error)
}

// Round2 rounds to two decimal places. Aggregation keeps full float
// precision internally and rounds only at the display edge.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RepresentativeScore selects a single number for a subject from its raw
// grades: the latest final entry's score (date order, highest id breaks
// date ties), otherwise the mean of all exam scores, otherwise nil.
// Grades must be sorted by (date, id) ascending, which is the repository
// ordering contract.
func RepresentativeScore(grades []models.Grade) *float64 {
	var latestFinal *models.Grade
	examSum, examCount := 0.0, 0
	for i := range grades {
		switch grades[i].Type {
		case models.GradeTypeFinal:
			latestFinal = &grades[i]
		case models.GradeTypeExam:
			examSum += float64(grades[i].Score)
			examCount++
		}
	}
	if latestFinal != nil {
		score := float64(latestFinal.Score)
		return &score
	}
	if examCount > 0 {
		mean := examSum / float64(examCount)
		return &mean
	}
	return nil
}

// Breakdown computes per-category averages for detail display, rounded
// to two decimals. A category with no grades stays nil.
func Breakdown(grades []models.Grade) models.SubjectBreakdown {
	var examSum, finalSum float64
	var examCount, finalCount int
	for _, g := range grades {
		switch g.Type {
		case models.GradeTypeExam:
			examSum += float64(g.Score)
			examCount++
		case models.GradeTypeFinal:
			finalSum += float64(g.Score)
			finalCount++
		}
	}
	var out models.SubjectBreakdown
	if examCount > 0 {
		avg := Round2(examSum / float64(examCount))
		out.ExamAvg = &avg
	}
	if finalCount > 0 {
		avg := Round2(finalSum / float64(finalCount))
		out.FinalAvg = &avg
	}
	if examCount+finalCount > 0 {
		avg := Round2((examSum + finalSum) / float64(examCount+finalCount))
		out.CombinedAvg = &avg
	}
	return out
}

// GPASubjectScore is the legacy point-weighted computation: each
// category's raw average is rounded to the nearest integer, mapped
// through the scale, and the category points are combined with weights
// renormalised over the categories that actually have data.
func GPASubjectScore(grades []models.Grade, policy models.GradingPolicy) *float64 {
	sums := map[models.GradeType]float64{}
	counts := map[models.GradeType]int{}
	for _, g := range grades {
		sums[g.Type] += float64(g.Score)
		counts[g.Type]++
	}
	weightFor := map[models.GradeType]float64{
		models.GradeTypeDaily: policy.Weights.WeightDaily,
		models.GradeTypeExam:  policy.Weights.WeightExam,
		models.GradeTypeFinal: policy.Weights.WeightFinal,
	}
	var weighted, weightSum float64
	for _, t := range []models.GradeType{models.GradeTypeDaily, models.GradeTypeExam, models.GradeTypeFinal} {
		if counts[t] == 0 {
			continue
		}
		avg := sums[t] / float64(counts[t])
		points := policy.Scale.PointFor(int(math.Round(avg)))
		weighted += points * weightFor[t]
		weightSum += weightFor[t]
	}
	if weightSum == 0 {
		return nil
	}
	score := weighted / weightSum
	return &score
}

// AggregationService computes subject scores and per-student averages.
// The grading strategy comes from configuration: plain averaging is the
// system of record, the point-weighted mode exists for legacy reports.
type AggregationService struct {
	grades    gradeAggregateRepository
	schedules subjectSetSource
	subjects  subjectCatalog
	policies  gradingPolicySource
	strategy  string
	logger    *zap.Logger
}

// NewAggregationService constructs AggregationService.
func NewAggregationService(grades gradeAggregateRepository, schedules subjectSetSource, subjects subjectCatalog, policies gradingPolicySource, cfg config.GradingConfig, logger *zap.Logger) *AggregationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregationService{
		grades:    grades,
		schedules: schedules,
		subjects:  subjects,
		policies:  policies,
		strategy:  cfg.Strategy,
		logger:    logger,
	}
}

// SubjectScore returns the representative score of one subject for one
// student, or nil when the subject has no countable grades.
func (s *AggregationService) SubjectScore(ctx context.Context, studentID, subjectID int64, term string) (*float64, error) {
	grades, err := s.grades.ListByStudentSubject(ctx, studentID, subjectID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	return s.scoreFromGrades(ctx, grades)
}

// SubjectBreakdown returns the per-category averages for detail views.
func (s *AggregationService) SubjectBreakdown(ctx context.Context, studentID, subjectID int64, term string) (models.SubjectBreakdown, error) {
	grades, err := s.grades.ListByStudentSubject(ctx, studentID, subjectID, term)
	if err != nil {
		return models.SubjectBreakdown{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	return Breakdown(grades), nil
}

// ClassSubjectSet returns the distinct subjects taught to a class per
// its timetable, falling back to the whole catalog when the class has no
// timetable rows yet.
func (s *AggregationService) ClassSubjectSet(ctx context.Context, classID int64) ([]int64, error) {
	ids, err := s.schedules.DistinctSubjectIDs(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class subjects")
	}
	if len(ids) > 0 {
		return ids, nil
	}
	all, err := s.subjects.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject catalog")
	}
	ids = make([]int64, 0, len(all))
	for _, sub := range all {
		ids = append(ids, sub.ID)
	}
	return ids, nil
}

// StudentAverage is one student's overall average with the number of
// subjects that contributed to it.
type StudentAverage struct {
	Avg             float64
	SubjectsCounted int
}

// AverageForGrades computes a student's overall average from a pre-fetched
// grade list over the given subject set. Subjects with no score are
// excluded; a student with nothing countable averages 0.0 with zero
// subjects counted. The result is unrounded.
func (s *AggregationService) AverageForGrades(ctx context.Context, grades []models.Grade, subjectIDs []int64) (StudentAverage, error) {
	bySubject := make(map[int64][]models.Grade)
	for _, g := range grades {
		bySubject[g.SubjectID] = append(bySubject[g.SubjectID], g)
	}
	var sum float64
	var counted int
	for _, subjectID := range subjectIDs {
		score, err := s.scoreFromGrades(ctx, bySubject[subjectID])
		if err != nil {
			return StudentAverage{}, err
		}
		if score == nil {
			continue
		}
		sum += *score
		counted++
	}
	if counted == 0 {
		return StudentAverage{Avg: 0.0, SubjectsCounted: 0}, nil
	}
	return StudentAverage{Avg: sum / float64(counted), SubjectsCounted: counted}, nil
}

func (s *AggregationService) scoreFromGrades(ctx context.Context, grades []models.Grade) (*float64, error) {
	if s.strategy != config.GradingStrategyGPA {
		return RepresentativeScore(grades), nil
	}
	policy, err := s.loadPolicy(ctx)
	if err != nil {
		return nil, err
	}
	return GPASubjectScore(grades, *policy), nil
}

func (s *AggregationService) loadPolicy(ctx context.Context) (*models.GradingPolicy, error) {
	scale, err := s.policies.ActiveScale(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}
	weights, err := s.policies.ActiveWeights(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gpa weights")
	}
	return &models.GradingPolicy{Scale: *scale, Weights: *weights}, nil
}
