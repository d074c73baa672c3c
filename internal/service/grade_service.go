package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
	Upsert(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id int64) error
}

// GradeWriteRequest is a single grade entry write.
type GradeWriteRequest struct {
	StudentID int64            `json:"student" validate:"required"`
	SubjectID int64            `json:"subject" validate:"required"`
	TeacherID *int64           `json:"teacher,omitempty"`
	Date      string           `json:"date" validate:"required"`
	Term      string           `json:"term"`
	Type      models.GradeType `json:"type" validate:"required"`
	Score     int              `json:"score" validate:"required,min=2,max=5"`
	Comment   string           `json:"comment"`
}

// BulkSetEntry is one row of a bulk grade payload.
type BulkSetEntry struct {
	StudentID int64  `json:"student" validate:"required"`
	Score     int    `json:"score" validate:"required"`
	Comment   string `json:"comment"`
}

// BulkSetRequest writes a column of the gradebook: one subject, date and
// category for many students at once.
type BulkSetRequest struct {
	SubjectID int64            `json:"subject" validate:"required"`
	TeacherID *int64           `json:"teacher,omitempty"`
	Date      string           `json:"date" validate:"required"`
	Term      string           `json:"term"`
	Type      models.GradeType `json:"type" validate:"required"`
	Entries   []BulkSetEntry   `json:"entries" validate:"required,dive"`
}

// GradeBulkResult mirrors the attendance bulk contract: persisted ids
// plus the entries that were skipped and why.
type GradeBulkResult struct {
	IDs     []int64                 `json:"ids"`
	Skipped []models.AttendanceSkip `json:"skipped,omitempty"`
}

// GradeService validates and persists grade entries.
type GradeService struct {
	repo      gradeRepository
	students  studentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(repo gradeRepository, students studentReader, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns grade entries matching the filter.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	grades, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Set validates and upserts a single grade keyed on
// (student, subject, date, type).
func (s *GradeService) Set(ctx context.Context, req GradeWriteRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid grade type %q", req.Type))
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	grade := &models.Grade{
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
		Date:      date,
		Term:      req.Term,
		Type:      req.Type,
		Score:     req.Score,
		Comment:   req.Comment,
	}
	if err := s.repo.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert grade")
	}
	return grade, nil
}

// BulkSet upserts a gradebook column entry by entry. A bad entry is
// skipped with a reason instead of failing the batch.
func (s *GradeService) BulkSet(ctx context.Context, req BulkSetRequest) (*GradeBulkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid grade type %q", req.Type))
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}

	result := &GradeBulkResult{IDs: make([]int64, 0, len(req.Entries))}
	for _, entry := range req.Entries {
		if entry.Score < 2 || entry.Score > 5 {
			result.Skipped = append(result.Skipped, models.AttendanceSkip{StudentID: entry.StudentID, Reason: fmt.Sprintf("score %d out of range", entry.Score)})
			continue
		}
		if _, err := s.students.FindByID(ctx, entry.StudentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result.Skipped = append(result.Skipped, models.AttendanceSkip{StudentID: entry.StudentID, Reason: "unknown student"})
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		grade := &models.Grade{
			StudentID: entry.StudentID,
			SubjectID: req.SubjectID,
			TeacherID: req.TeacherID,
			Date:      date,
			Term:      req.Term,
			Type:      req.Type,
			Score:     entry.Score,
			Comment:   entry.Comment,
		}
		if err := s.repo.Upsert(ctx, grade); err != nil {
			result.Skipped = append(result.Skipped, models.AttendanceSkip{StudentID: entry.StudentID, Reason: "write failed"})
			s.logger.Warn("bulk set entry failed", zap.Int64("student_id", entry.StudentID), zap.Error(err))
			continue
		}
		result.IDs = append(result.IDs, grade.ID)
	}
	return result, nil
}

// Delete removes a grade entry.
func (s *GradeService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	return nil
}
