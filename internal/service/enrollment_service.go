package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type studentWriter interface {
	Create(ctx context.Context, student *models.Student) error
}

type userAccountRepository interface {
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type guardianLinker interface {
	Link(ctx context.Context, studentID, guardianID int64) error
}

// EnrollRequest is an operator's one-step enrollment: create the
// student, get or create the parent account, and link them.
type EnrollRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	DOB         string `json:"dob"`
	Gender      string `json:"gender"`
	ClassID     *int64 `json:"class,omitempty"`
	Address     string `json:"address"`
	ParentName  string `json:"parent_name" validate:"required"`
	ParentPhone string `json:"parent_phone" validate:"required"`
}

// EnrollResult reports what was created. TempPassword is set only when a
// new parent account was created and is shown exactly once.
type EnrollResult struct {
	Student       models.Student `json:"student"`
	GuardianID    int64          `json:"guardian_id"`
	ParentCreated bool           `json:"parent_created"`
	TempPassword  string         `json:"temp_password,omitempty"`
}

// EnrollmentService implements the operator enrollment flow.
type EnrollmentService struct {
	students  studentWriter
	users     userAccountRepository
	guardians guardianLinker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(students studentWriter, users userAccountRepository, guardians guardianLinker, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{students: students, users: users, guardians: guardians, validator: validate, logger: logger}
}

// NormalizePhone strips formatting and prefixes the Uzbek country code
// when the caller supplied a bare local number.
func NormalizePhone(raw string) (string, error) {
	var digits strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	switch {
	case len(n) == 9:
		return "+998" + n, nil
	case len(n) == 12 && strings.HasPrefix(n, "998"):
		return "+" + n, nil
	default:
		return "", fmt.Errorf("unrecognised phone number %q", raw)
	}
}

func tempPassword() (string, error) {
	const digits = "0123456789"
	out := make([]byte, 6)
	for i := range out {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		out[i] = digits[idx.Int64()]
	}
	return string(out), nil
}

// Enroll creates the student record, the parent account when the phone
// is unknown, and the guardian link.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*EnrollResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	phone, err := NormalizePhone(req.ParentPhone)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	student := models.Student{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Gender:      req.Gender,
		ClassID:     req.ClassID,
		ParentName:  req.ParentName,
		ParentPhone: phone,
		Address:     req.Address,
		Status:      models.StudentStatusActive,
	}
	if req.DOB != "" {
		dob, err := time.Parse("2006-01-02", req.DOB)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid dob, expected YYYY-MM-DD")
		}
		student.DOB = &dob
	}
	if err := s.students.Create(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	result := &EnrollResult{Student: student}

	parent, err := s.users.FindByPhone(ctx, phone)
	switch {
	case err == nil:
		result.GuardianID = parent.ID
	case errors.Is(err, sql.ErrNoRows):
		password, err := tempPassword()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		account := models.User{
			Phone:        phone,
			PasswordHash: string(hash),
			FirstName:    req.ParentName,
			Role:         models.RoleParent,
			Active:       true,
		}
		if err := s.users.Create(ctx, &account); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create parent account")
		}
		result.GuardianID = account.ID
		result.ParentCreated = true
		result.TempPassword = password
		s.logger.Info("parent account created", zap.Int64("guardian_id", account.ID))
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up parent account")
	}

	if err := s.guardians.Link(ctx, student.ID, result.GuardianID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link guardian")
	}
	return result, nil
}
