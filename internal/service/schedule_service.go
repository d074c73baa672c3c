package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, error)
	FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error)
	ListForTeacherWeekday(ctx context.Context, teacherID int64, weekday int) ([]models.ScheduleEntry, error)
	Save(ctx context.Context, entry *models.ScheduleEntry) (*models.ScheduleConflict, error)
	Delete(ctx context.Context, id int64) error
}

// SaveScheduleRequest describes payload for creating or updating a slot.
type SaveScheduleRequest struct {
	ClassID   int64  `json:"class_id" validate:"required"`
	SubjectID int64  `json:"subject_id" validate:"required"`
	TeacherID int64  `json:"teacher_id" validate:"required"`
	Weekday   int    `json:"weekday" validate:"required,min=1,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Room      string `json:"room"`
}

// ScheduleService coordinates timetable reads and conflict-gated writes.
type ScheduleService struct {
	repo      scheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, validator: validate, logger: logger}
}

// List returns timetable slots for a class and/or teacher.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule")
	}
	return entries, nil
}

// Get returns a single slot.
func (s *ScheduleService) Get(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}
	return entry, nil
}

// Validate is the pure conflict predicate: it checks a candidate against
// the given already-persisted slots without touching storage. Writes go
// through Save, which repeats this check inside the write transaction.
func (s *ScheduleService) Validate(candidate models.ScheduleEntry, existingForTeacher []models.ScheduleEntry) error {
	if conflict := models.FirstConflict(candidate, existingForTeacher); conflict != nil {
		return conflictError(conflict)
	}
	return nil
}

// Create validates and persists a new slot.
func (s *ScheduleService) Create(ctx context.Context, req SaveScheduleRequest) (*models.ScheduleEntry, error) {
	entry, err := s.buildEntry(0, req)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, entry)
}

// Update validates and persists changes to an existing slot. The slot's
// own row is excluded from the conflict check.
func (s *ScheduleService) Update(ctx context.Context, id int64, req SaveScheduleRequest) (*models.ScheduleEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	entry, err := s.buildEntry(id, req)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, entry)
}

// Delete removes a slot.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule entry")
	}
	return nil
}

func (s *ScheduleService) buildEntry(id int64, req SaveScheduleRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	start, err := models.ClockMinutes(req.StartTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start_time")
	}
	end, err := models.ClockMinutes(req.EndTime)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end_time")
	}
	// The half-open overlap test can never flag a zero-length slot, so
	// empty and inverted windows are rejected before they reach it.
	if start >= end {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	return &models.ScheduleEntry{
		ID:        id,
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
		Weekday:   req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Room:      req.Room,
	}, nil
}

func (s *ScheduleService) save(ctx context.Context, entry *models.ScheduleEntry) (*models.ScheduleEntry, error) {
	conflict, err := s.repo.Save(ctx, entry)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule entry")
	}
	if conflict != nil {
		s.logger.Info("schedule conflict rejected",
			zap.Int64("teacher_id", entry.TeacherID),
			zap.Int("weekday", entry.Weekday),
			zap.Int64("conflicting_id", conflict.ScheduleID),
		)
		return nil, conflictError(conflict)
	}
	return entry, nil
}

func conflictError(conflict *models.ScheduleConflict) error {
	detail := &models.ScheduleConflictError{
		Message:  appErrors.ErrScheduleConflict.Message,
		Conflict: *conflict,
	}
	return appErrors.Wrap(detail, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, detail.Message)
}
