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

type attendanceRepository interface {
	Upsert(ctx context.Context, att *models.Attendance) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
	ListClassRange(ctx context.Context, classID int64, from, to time.Time) ([]models.Attendance, error)
	ListStudentRange(ctx context.Context, studentID int64, from, to time.Time) ([]models.Attendance, error)
}

type scheduleReader interface {
	FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

// AttendanceWriteRequest is a single attendance mark. Exactly which
// anchor (schedule or subject) is set decides the row's natural key.
type AttendanceWriteRequest struct {
	StudentID  int64                   `json:"student" validate:"required"`
	Date       string                  `json:"date" validate:"required"`
	Status     models.AttendanceStatus `json:"status" validate:"required"`
	ClassID    int64                   `json:"class"`
	SubjectID  *int64                  `json:"subject,omitempty"`
	ScheduleID *int64                  `json:"schedule,omitempty"`
	TeacherID  *int64                  `json:"teacher,omitempty"`
	Note       string                  `json:"note"`
}

// BulkMarkEntry is one row of a bulk-mark payload.
type BulkMarkEntry struct {
	StudentID int64                   `json:"student" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
	Note      string                  `json:"note"`
}

// BulkMarkRequest marks a whole class grid for one date against a
// common schedule-or-subject anchor.
type BulkMarkRequest struct {
	ClassID    int64           `json:"class" validate:"required"`
	Date       string          `json:"date" validate:"required"`
	SubjectID  *int64          `json:"subject,omitempty"`
	ScheduleID *int64          `json:"schedule,omitempty"`
	TeacherID  *int64          `json:"teacher,omitempty"`
	Entries    []BulkMarkEntry `json:"entries" validate:"required,dive"`
}

// AttendanceLookupRequest repopulates a marking grid.
type AttendanceLookupRequest struct {
	ClassID    int64  `json:"class" validate:"required"`
	Date       string `json:"date" validate:"required"`
	ScheduleID *int64 `json:"schedule,omitempty"`
	SubjectID  *int64 `json:"subject,omitempty"`
}

// AttendanceService resolves anchor identity and performs natural-key
// upserts for attendance rows.
type AttendanceService struct {
	repo      attendanceRepository
	schedules scheduleReader
	students  studentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(repo attendanceRepository, schedules scheduleReader, students studentReader, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, schedules: schedules, students: students, validator: validate, logger: logger}
}

// Resolve turns a write request into a fully-populated attendance row
// without persisting it. Denormalization from the schedule slot happens
// before the natural key is decided, so a schedule-anchored write is
// never mistaken for a legacy subject-anchored one.
func (s *AttendanceService) Resolve(ctx context.Context, req AttendanceWriteRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid status %q", req.Status))
	}
	if req.ScheduleID == nil && req.SubjectID == nil {
		return nil, appErrors.Clone(appErrors.ErrMissingAnchor, "")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}

	att := &models.Attendance{
		StudentID:  req.StudentID,
		Date:       date,
		Status:     req.Status,
		ClassID:    req.ClassID,
		SubjectID:  req.SubjectID,
		ScheduleID: req.ScheduleID,
		TeacherID:  req.TeacherID,
		Note:       req.Note,
	}

	if req.ScheduleID != nil {
		slot, err := s.schedules.FindByID(ctx, *req.ScheduleID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrScheduleNotFound, "")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve schedule slot")
		}
		if att.SubjectID == nil {
			att.SubjectID = &slot.SubjectID
		}
		if att.ClassID == 0 {
			att.ClassID = slot.ClassID
		}
		if att.TeacherID == nil {
			att.TeacherID = &slot.TeacherID
		}
	}

	return att, nil
}

// Upsert resolves and persists a single attendance row. An existing row
// with the same natural key is updated in place.
func (s *AttendanceService) Upsert(ctx context.Context, req AttendanceWriteRequest) (*models.Attendance, error) {
	att, err := s.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, att); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to upsert attendance")
	}
	return att, nil
}

// BulkMark resolves and upserts every entry independently. A bad entry
// never fails the batch: it is reported in Skipped and the rest proceed.
func (s *AttendanceService) BulkMark(ctx context.Context, req BulkMarkRequest) (*models.AttendanceBulkResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	if req.ScheduleID == nil && req.SubjectID == nil {
		return nil, appErrors.Clone(appErrors.ErrMissingAnchor, "")
	}

	result := &models.AttendanceBulkResult{IDs: make([]int64, 0, len(req.Entries))}
	for _, entry := range req.Entries {
		if !entry.Status.Valid() {
			result.Skipped = append(result.Skipped, models.AttendanceSkip{StudentID: entry.StudentID, Reason: fmt.Sprintf("invalid status %q", entry.Status)})
			continue
		}
		if _, err := s.students.FindByID(ctx, entry.StudentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				result.Skipped = append(result.Skipped, models.AttendanceSkip{StudentID: entry.StudentID, Reason: "unknown student"})
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}

		att, err := s.Resolve(ctx, AttendanceWriteRequest{
			StudentID:  entry.StudentID,
			Date:       req.Date,
			Status:     entry.Status,
			ClassID:    req.ClassID,
			SubjectID:  req.SubjectID,
			ScheduleID: req.ScheduleID,
			TeacherID:  req.TeacherID,
			Note:       entry.Note,
		})
		if err != nil {
			// Context-level failures (bad date, dangling schedule) doom
			// every entry equally; surface them instead of skipping all.
			return nil, err
		}
		if err := s.repo.Upsert(ctx, att); err != nil {
			result.Skipped = append(result.Skipped, models.AttendanceSkip{StudentID: entry.StudentID, Reason: "write failed"})
			s.logger.Warn("bulk mark entry failed", zap.Int64("student_id", entry.StudentID), zap.Error(err))
			continue
		}
		result.IDs = append(result.IDs, att.ID)
	}
	return result, nil
}

// Lookup returns the rows matching a grid context. When both filters are
// supplied the schedule anchor wins.
func (s *AttendanceService) Lookup(ctx context.Context, req AttendanceLookupRequest) ([]models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lookup payload")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	rows, err := s.repo.List(ctx, models.AttendanceFilter{
		ClassID:    req.ClassID,
		Date:       date,
		ScheduleID: req.ScheduleID,
		SubjectID:  req.SubjectID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return rows, nil
}
