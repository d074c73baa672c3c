package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context) ([]models.TeacherDetail, error)
	FindByID(ctx context.Context, id int64) (*models.TeacherDetail, error)
	FindByUserID(ctx context.Context, userID int64) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id int64) error
}

// TeacherRequest is a teacher profile create/update payload.
type TeacherRequest struct {
	UserID         int64  `json:"user" validate:"required"`
	SpecialtyID    *int64 `json:"specialty,omitempty"`
	IsClassTeacher bool   `json:"is_class_teacher"`
	Notes          string `json:"notes"`
}

// TeacherService manages teaching profiles and teacher-scoped views.
type TeacherService struct {
	repo      teacherRepository
	schedules scheduleListReader
	validator *validator.Validate
}

// NewTeacherService constructs TeacherService.
func NewTeacherService(repo teacherRepository, schedules scheduleListReader, validate *validator.Validate) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	return &TeacherService{repo: repo, schedules: schedules, validator: validate}
}

// List returns all teachers with account naming.
func (s *TeacherService) List(ctx context.Context) ([]models.TeacherDetail, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// Get returns one teacher.
func (s *TeacherService) Get(ctx context.Context, id int64) (*models.TeacherDetail, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// ProfileForUser resolves the teaching profile behind an account,
// used by teacher-scoped endpoints.
func (s *TeacherService) ProfileForUser(ctx context.Context, userID int64) (*models.Teacher, error) {
	teacher, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no teaching profile for this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Timetable returns a teacher's weekly slots.
func (s *TeacherService) Timetable(ctx context.Context, teacherID int64) ([]models.ScheduleEntry, error) {
	slots, err := s.schedules.List(ctx, models.ScheduleFilter{TeacherID: teacherID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return slots, nil
}

// Create adds a teaching profile.
func (s *TeacherService) Create(ctx context.Context, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	teacher := &models.Teacher{UserID: req.UserID, SpecialtyID: req.SpecialtyID, IsClassTeacher: req.IsClassTeacher, Notes: req.Notes}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	return teacher, nil
}

// Update replaces a teaching profile's fields.
func (s *TeacherService) Update(ctx context.Context, id int64, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	teacher := detail.Teacher
	teacher.UserID = req.UserID
	teacher.SpecialtyID = req.SpecialtyID
	teacher.IsClassTeacher = req.IsClassTeacher
	teacher.Notes = req.Notes
	if err := s.repo.Update(ctx, &teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return &teacher, nil
}

// Delete removes a teaching profile.
func (s *TeacherService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	return nil
}
