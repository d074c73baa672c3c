package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/maktab-uz/maktab-api/internal/models"
	"github.com/maktab-uz/maktab-api/pkg/config"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
	"github.com/maktab-uz/maktab-api/pkg/jobs"
)

type scheduleListReader interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, error)
}

type attendanceStudentReader interface {
	ListStudentRange(ctx context.Context, studentID int64, from, to time.Time) ([]models.Attendance, error)
}

type overviewCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type taskEnqueuer interface {
	Enqueue(task jobs.Task) error
}

// OverviewService composes the parent-facing student overview:
// timetable, current-week attendance, per-subject scores and the
// student's class rank. Results are cached briefly since the view is
// recomputed from source rows on every call.
type OverviewService struct {
	students    studentReader
	classes     classReader
	subjects    subjectCatalog
	schedules   scheduleListReader
	attendance  attendanceStudentReader
	grades      gradeAggregateRepository
	aggregation *AggregationService
	ranking     *RankingService
	cache       overviewCache
	warm        taskEnqueuer
	cfg         config.OverviewConfig
	now         func() time.Time
	logger      *zap.Logger
}

// NewOverviewService constructs OverviewService. cache may be nil when
// caching is disabled.
func NewOverviewService(
	students studentReader,
	classes classReader,
	subjects subjectCatalog,
	schedules scheduleListReader,
	attendance attendanceStudentReader,
	grades gradeAggregateRepository,
	aggregation *AggregationService,
	ranking *RankingService,
	cache overviewCache,
	cfg config.OverviewConfig,
	logger *zap.Logger,
) *OverviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverviewService{
		students:    students,
		classes:     classes,
		subjects:    subjects,
		schedules:   schedules,
		attendance:  attendance,
		grades:      grades,
		aggregation: aggregation,
		ranking:     ranking,
		cache:       cache,
		cfg:         cfg,
		now:         time.Now,
		logger:      logger,
	}
}

// AttachWarmQueue enables asynchronous rebuilds after invalidation.
func (s *OverviewService) AttachWarmQueue(queue taskEnqueuer) {
	s.warm = queue
}

func overviewCacheKey(studentID int64, term string) string {
	return fmt.Sprintf("overview:student:%d:term:%s", studentID, term)
}

// StudentOverview builds the overview for one student and an optional
// term.
func (s *OverviewService) StudentOverview(ctx context.Context, studentID int64, term string) (*models.StudentOverview, error) {
	key := overviewCacheKey(studentID, term)
	if s.cacheEnabled() {
		var cached models.StudentOverview
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	overview, err := s.build(ctx, studentID, term)
	if err != nil {
		return nil, err
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, key, overview, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("overview cache write failed", zap.Int64("student_id", studentID), zap.Error(err))
		}
	}
	return overview, nil
}

// Invalidate drops cached overviews for one student or, with studentID
// zero, for everyone. Write paths call this after grade and attendance
// mutations.
func (s *OverviewService) Invalidate(ctx context.Context, studentID int64) {
	if !s.cacheEnabled() {
		return
	}
	pattern := "overview:student:*"
	if studentID != 0 {
		pattern = fmt.Sprintf("overview:student:%d:*", studentID)
	}
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("overview cache invalidation failed", zap.Error(err))
	}
	if studentID != 0 && s.warm != nil {
		task := jobs.Task{
			Name: fmt.Sprintf("overview-warm:%d", studentID),
			Run: func(taskCtx context.Context) error {
				_, err := s.StudentOverview(taskCtx, studentID, "")
				return err
			},
		}
		if err := s.warm.Enqueue(task); err != nil {
			s.logger.Debug("overview warm skipped", zap.Error(err))
		}
	}
}

func (s *OverviewService) cacheEnabled() bool {
	return s.cache != nil && s.cfg.CacheEnabled
}

func (s *OverviewService) build(ctx context.Context, studentID int64, term string) (*models.StudentOverview, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	overview := &models.StudentOverview{Student: *student}

	var classID int64
	if student.ClassID != nil {
		classID = *student.ClassID
		class, err := s.classes.FindByID(ctx, classID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
		if class != nil {
			overview.ClassName = class.Name
		}
	}

	if classID != 0 {
		timetable, err := s.schedules.List(ctx, models.ScheduleFilter{ClassID: classID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
		}
		overview.Timetable = timetable
	}

	week := models.WeekOf(s.now())
	attendance, err := s.attendance.ListStudentRange(ctx, studentID, week.Monday, week.Saturday)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	overview.WeekAttendance = attendance

	subjects, err := s.subjectsForOverview(ctx, classID)
	if err != nil {
		return nil, err
	}

	gradesByStudent, err := s.grades.FetchForStudents(ctx, []int64{studentID}, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch grades")
	}
	bySubject := make(map[int64][]models.Grade)
	for _, g := range gradesByStudent[studentID] {
		bySubject[g.SubjectID] = append(bySubject[g.SubjectID], g)
	}

	var sum float64
	var counted int
	for _, subject := range subjects {
		grades := bySubject[subject.ID]
		score := RepresentativeScore(grades)
		summary := models.SubjectSummary{
			SubjectID:   subject.ID,
			SubjectName: subject.Name,
			Breakdown:   Breakdown(grades),
		}
		if score != nil {
			rounded := Round2(*score)
			summary.Score = &rounded
			sum += *score
			counted++
		}
		overview.Subjects = append(overview.Subjects, summary)
	}
	if counted > 0 {
		overview.AvgOverall = Round2(sum / float64(counted))
	}

	if classID != 0 {
		row, size, err := s.ranking.StudentRank(ctx, classID, studentID, term)
		if err != nil {
			var appErr *appErrors.Error
			if !errors.As(err, &appErr) || appErr.Code != appErrors.ErrNotFound.Code {
				return nil, err
			}
		}
		overview.ClassSize = size
		if row != nil {
			rank := row.Rank
			overview.ClassRank = &rank
		}
	}

	return overview, nil
}

// subjectsForOverview resolves the subject set shown on the overview:
// the class's timetable subjects in catalog order, or the whole catalog
// when the student has no class or the class has no timetable.
func (s *OverviewService) subjectsForOverview(ctx context.Context, classID int64) ([]models.Subject, error) {
	all, err := s.subjects.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject catalog")
	}
	if classID == 0 {
		return all, nil
	}
	ids, err := s.aggregation.ClassSubjectSet(ctx, classID)
	if err != nil {
		return nil, err
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	subjects := make([]models.Subject, 0, len(ids))
	for _, sub := range all {
		if wanted[sub.ID] {
			subjects = append(subjects, sub)
		}
	}
	return subjects, nil
}
