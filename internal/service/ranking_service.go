package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type classReader interface {
	FindByID(ctx context.Context, id int64) (*models.SchoolClass, error)
}

type classStudentSource interface {
	ListByClass(ctx context.Context, classID int64) ([]models.Student, error)
}

// RankingService orders a class's students by overall average. The
// single-student rank extraction runs the exact same class-wide
// computation so individual overviews and batch views never diverge.
type RankingService struct {
	classes     classReader
	students    classStudentSource
	grades      gradeAggregateRepository
	aggregation *AggregationService
	logger      *zap.Logger
}

// NewRankingService constructs RankingService.
func NewRankingService(classes classReader, students classStudentSource, grades gradeAggregateRepository, aggregation *AggregationService, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{classes: classes, students: students, grades: grades, aggregation: aggregation, logger: logger}
}

// ClassRanking ranks every student in the class for an optional term.
// Students arrive in last-name/first-name order and the sort is stable,
// so equal averages keep that order; ranks are strictly sequential.
func (s *RankingService) ClassRanking(ctx context.Context, classID int64, term string) (*models.ClassRanking, error) {
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
	subjectIDs, err := s.aggregation.ClassSubjectSet(ctx, classID)
	if err != nil {
		return nil, err
	}

	studentIDs := make([]int64, len(students))
	for i, st := range students {
		studentIDs[i] = st.ID
	}
	gradesByStudent, err := s.grades.FetchForStudents(ctx, studentIDs, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grades")
	}

	rows := make([]models.RankingRow, 0, len(students))
	for _, st := range students {
		avg, err := s.aggregation.AverageForGrades(ctx, gradesByStudent[st.ID], subjectIDs)
		if err != nil {
			return nil, err
		}
		rows = append(rows, models.RankingRow{
			StudentID:       st.ID,
			Name:            st.FullName(),
			Avg:             avg.Avg,
			SubjectsCounted: avg.SubjectsCounted,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Avg > rows[j].Avg })
	for i := range rows {
		rows[i].Rank = i + 1
		rows[i].Avg = Round2(rows[i].Avg)
	}
	return &models.ClassRanking{ClassID: classID, Term: term, Ranking: rows}, nil
}

// StudentRank returns one student's rank row plus the class size, taken
// from a full class ranking rather than a per-student shortcut.
func (s *RankingService) StudentRank(ctx context.Context, classID, studentID int64, term string) (*models.RankingRow, int, error) {
	ranking, err := s.ClassRanking(ctx, classID, term)
	if err != nil {
		return nil, 0, err
	}
	for i := range ranking.Ranking {
		if ranking.Ranking[i].StudentID == studentID {
			return &ranking.Ranking[i], len(ranking.Ranking), nil
		}
	}
	return nil, len(ranking.Ranking), appErrors.Clone(appErrors.ErrNotFound, "student not in class")
}
