package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context) ([]models.ClassSummary, error)
	FindByID(ctx context.Context, id int64) (*models.SchoolClass, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]models.SchoolClass, error)
	Create(ctx context.Context, class *models.SchoolClass) error
	Update(ctx context.Context, class *models.SchoolClass) error
	Delete(ctx context.Context, id int64) error
}

// ClassRequest is a class create/update payload.
type ClassRequest struct {
	Name           string `json:"name" validate:"required"`
	Level          *int   `json:"level,omitempty"`
	ClassTeacherID *int64 `json:"class_teacher,omitempty"`
	Capacity       int    `json:"capacity"`
}

// ClassService manages classes and their rosters.
type ClassService struct {
	repo      classRepository
	students  classStudentSource
	validator *validator.Validate
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, students classStudentSource, validate *validator.Validate) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, students: students, validator: validate}
}

// List returns all classes with roster sizes.
func (s *ClassService) List(ctx context.Context) ([]models.ClassSummary, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, id int64) (*models.SchoolClass, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Students returns the class roster in last-name/first-name order.
func (s *ClassService) Students(ctx context.Context, id int64) ([]models.Student, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	students, err := s.students.ListByClass(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// ListByTeacher returns the classes a teacher works with, either as the
// class teacher or through timetable slots.
func (s *ClassService) ListByTeacher(ctx context.Context, teacherID int64) ([]models.SchoolClass, error) {
	classes, err := s.repo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher classes")
	}
	return classes, nil
}

// Create adds a class.
func (s *ClassService) Create(ctx context.Context, req ClassRequest) (*models.SchoolClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class := &models.SchoolClass{Name: req.Name, Level: req.Level, ClassTeacherID: req.ClassTeacherID, Capacity: req.Capacity}
	if err := s.repo.Create(ctx, class); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	return class, nil
}

// Update replaces a class's fields.
func (s *ClassService) Update(ctx context.Context, id int64, req ClassRequest) (*models.SchoolClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	class.Name = req.Name
	class.Level = req.Level
	class.ClassTeacherID = req.ClassTeacherID
	class.Capacity = req.Capacity
	if err := s.repo.Update(ctx, class); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return class, nil
}

// Delete removes a class; its students are detached, not deleted.
func (s *ClassService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	return nil
}
