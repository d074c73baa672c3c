package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type gradingConfigRepository interface {
	ActiveScale(ctx context.Context) (*models.GradeScale, error)
	ActiveWeights(ctx context.Context) (*models.GPAConfig, error)
	ListScales(ctx context.Context) ([]models.GradeScale, error)
	SaveScale(ctx context.Context, scale *models.GradeScale) error
	ListWeights(ctx context.Context) ([]models.GPAConfig, error)
	SaveWeights(ctx context.Context, weights *models.GPAConfig) error
}

// GradeScaleRequest is a grade scale create/update payload.
type GradeScaleRequest struct {
	Name   string  `json:"name" validate:"required"`
	P2     float64 `json:"p2" validate:"min=0,max=5"`
	P3     float64 `json:"p3" validate:"min=0,max=5"`
	P4     float64 `json:"p4" validate:"min=0,max=5"`
	P5     float64 `json:"p5" validate:"min=0,max=5"`
	Active bool    `json:"active"`
}

// GPAConfigRequest is a GPA weight create/update payload.
type GPAConfigRequest struct {
	Name        string  `json:"name" validate:"required"`
	WeightDaily float64 `json:"weight_daily" validate:"min=0,max=1"`
	WeightExam  float64 `json:"weight_exam" validate:"min=0,max=1"`
	WeightFinal float64 `json:"weight_final" validate:"min=0,max=1"`
	Active      bool    `json:"active"`
}

// GradingConfigService manages grade scales and GPA weight rows.
type GradingConfigService struct {
	repo      gradingConfigRepository
	validator *validator.Validate
}

// NewGradingConfigService constructs GradingConfigService.
func NewGradingConfigService(repo gradingConfigRepository, validate *validator.Validate) *GradingConfigService {
	if validate == nil {
		validate = validator.New()
	}
	return &GradingConfigService{repo: repo, validator: validate}
}

// ActivePolicy returns the active scale and weights, materialising
// defaults when either is missing.
func (s *GradingConfigService) ActivePolicy(ctx context.Context) (*models.GradingPolicy, error) {
	scale, err := s.repo.ActiveScale(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade scale")
	}
	weights, err := s.repo.ActiveWeights(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load gpa weights")
	}
	return &models.GradingPolicy{Scale: *scale, Weights: *weights}, nil
}

// ListScales returns all grade scales.
func (s *GradingConfigService) ListScales(ctx context.Context) ([]models.GradeScale, error) {
	scales, err := s.repo.ListScales(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list scales")
	}
	return scales, nil
}

// SaveScale creates or updates a grade scale.
func (s *GradingConfigService) SaveScale(ctx context.Context, id int64, req GradeScaleRequest) (*models.GradeScale, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scale payload")
	}
	scale := &models.GradeScale{ID: id, Name: req.Name, P2: req.P2, P3: req.P3, P4: req.P4, P5: req.P5, Active: req.Active}
	if err := s.repo.SaveScale(ctx, scale); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save scale")
	}
	return scale, nil
}

// ListWeights returns all GPA weight rows.
func (s *GradingConfigService) ListWeights(ctx context.Context) ([]models.GPAConfig, error) {
	weights, err := s.repo.ListWeights(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list weights")
	}
	return weights, nil
}

// SaveWeights creates or updates a GPA weight row.
func (s *GradingConfigService) SaveWeights(ctx context.Context, id int64, req GPAConfigRequest) (*models.GPAConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid weights payload")
	}
	weights := &models.GPAConfig{ID: id, Name: req.Name, WeightDaily: req.WeightDaily, WeightExam: req.WeightExam, WeightFinal: req.WeightFinal, Active: req.Active}
	if err := s.repo.SaveWeights(ctx, weights); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save weights")
	}
	return weights, nil
}
