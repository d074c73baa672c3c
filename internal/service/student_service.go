package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	ListByClass(ctx context.Context, classID int64) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id int64) error
}

// StudentRequest is a student create/update payload.
type StudentRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	DOB         string `json:"dob"`
	Gender      string `json:"gender"`
	ClassID     *int64 `json:"class,omitempty"`
	ParentName  string `json:"parent_name"`
	ParentPhone string `json:"parent_phone"`
	Address     string `json:"address"`
	Status      string `json:"status"`
}

// StudentService manages student records.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, validate *validator.Validate) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, validator: validate}
}

// Get returns one student.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

func (s *StudentService) apply(student *models.Student, req StudentRequest) error {
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Gender = req.Gender
	student.ClassID = req.ClassID
	student.Address = req.Address
	student.ParentName = req.ParentName
	if req.ParentPhone != "" {
		phone, err := NormalizePhone(req.ParentPhone)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		student.ParentPhone = phone
	}
	if req.DOB != "" {
		dob, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid dob, expected YYYY-MM-DD")
		}
		student.DOB = &dob
	}
	if req.Status != "" {
		student.Status = req.Status
	}
	return nil
}

// Create adds a student.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student := &models.Student{Status: models.StudentStatusActive}
	if err := s.apply(student, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return student, nil
}

// Update replaces a student's fields.
func (s *StudentService) Update(ctx context.Context, id int64, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(student, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student record.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
