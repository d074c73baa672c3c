package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/maktab-uz/maktab-api/internal/models"
)

// GradingConfigRepository handles GradeScale and GPAConfig rows. When no
// active row exists a default one is materialised rather than failing,
// matching the legacy behaviour.
type GradingConfigRepository struct {
	db *sqlx.DB
}

// NewGradingConfigRepository creates a new grading config repository.
func NewGradingConfigRepository(db *sqlx.DB) *GradingConfigRepository {
	return &GradingConfigRepository{db: db}
}

// ActiveScale returns the active grade scale, creating the default when
// none is active.
func (r *GradingConfigRepository) ActiveScale(ctx context.Context) (*models.GradeScale, error) {
	var scale models.GradeScale
	const query = `SELECT id, name, p2, p3, p4, p5, active FROM grade_scales WHERE active = TRUE ORDER BY id LIMIT 1`
	err := r.db.GetContext(ctx, &scale, query)
	if err == nil {
		return &scale, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load active scale: %w", err)
	}
	scale = models.DefaultGradeScale()
	const insert = `INSERT INTO grade_scales (name, p2, p3, p4, p5, active) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, insert, scale.Name, scale.P2, scale.P3, scale.P4, scale.P5, scale.Active).Scan(&scale.ID); err != nil {
		return nil, fmt.Errorf("materialise default scale: %w", err)
	}
	return &scale, nil
}

// ActiveWeights returns the active GPA weights, creating the default
// when none is active.
func (r *GradingConfigRepository) ActiveWeights(ctx context.Context) (*models.GPAConfig, error) {
	var weights models.GPAConfig
	const query = `SELECT id, name, weight_daily, weight_exam, weight_final, active FROM gpa_configs WHERE active = TRUE ORDER BY id LIMIT 1`
	err := r.db.GetContext(ctx, &weights, query)
	if err == nil {
		return &weights, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load active weights: %w", err)
	}
	weights = models.DefaultGPAConfig()
	const insert = `INSERT INTO gpa_configs (name, weight_daily, weight_exam, weight_final, active) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, insert, weights.Name, weights.WeightDaily, weights.WeightExam, weights.WeightFinal, weights.Active).Scan(&weights.ID); err != nil {
		return nil, fmt.Errorf("materialise default weights: %w", err)
	}
	return &weights, nil
}

// ListScales returns all grade scales, active first.
func (r *GradingConfigRepository) ListScales(ctx context.Context) ([]models.GradeScale, error) {
	var scales []models.GradeScale
	const query = `SELECT id, name, p2, p3, p4, p5, active FROM grade_scales ORDER BY active DESC, name`
	if err := r.db.SelectContext(ctx, &scales, query); err != nil {
		return nil, fmt.Errorf("list scales: %w", err)
	}
	return scales, nil
}

// SaveScale inserts or updates a grade scale.
func (r *GradingConfigRepository) SaveScale(ctx context.Context, scale *models.GradeScale) error {
	if scale.ID == 0 {
		const insert = `INSERT INTO grade_scales (name, p2, p3, p4, p5, active) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		if err := r.db.QueryRowxContext(ctx, insert, scale.Name, scale.P2, scale.P3, scale.P4, scale.P5, scale.Active).Scan(&scale.ID); err != nil {
			return fmt.Errorf("insert scale: %w", err)
		}
		return nil
	}
	const update = `UPDATE grade_scales SET name = $1, p2 = $2, p3 = $3, p4 = $4, p5 = $5, active = $6 WHERE id = $7`
	if _, err := r.db.ExecContext(ctx, update, scale.Name, scale.P2, scale.P3, scale.P4, scale.P5, scale.Active, scale.ID); err != nil {
		return fmt.Errorf("update scale: %w", err)
	}
	return nil
}

// ListWeights returns all GPA weight rows, active first.
func (r *GradingConfigRepository) ListWeights(ctx context.Context) ([]models.GPAConfig, error) {
	var configs []models.GPAConfig
	const query = `SELECT id, name, weight_daily, weight_exam, weight_final, active FROM gpa_configs ORDER BY active DESC, name`
	if err := r.db.SelectContext(ctx, &configs, query); err != nil {
		return nil, fmt.Errorf("list weights: %w", err)
	}
	return configs, nil
}

// SaveWeights inserts or updates a GPA weight row.
func (r *GradingConfigRepository) SaveWeights(ctx context.Context, weights *models.GPAConfig) error {
	if weights.ID == 0 {
		const insert = `INSERT INTO gpa_configs (name, weight_daily, weight_exam, weight_final, active) VALUES ($1, $2, $3, $4, $5) RETURNING id`
		if err := r.db.QueryRowxContext(ctx, insert, weights.Name, weights.WeightDaily, weights.WeightExam, weights.WeightFinal, weights.Active).Scan(&weights.ID); err != nil {
			return fmt.Errorf("insert weights: %w", err)
		}
		return nil
	}
	const update = `UPDATE gpa_configs SET name = $1, weight_daily = $2, weight_exam = $3, weight_final = $4, active = $5 WHERE id = $6`
	if _, err := r.db.ExecContext(ctx, update, weights.Name, weights.WeightDaily, weights.WeightExam, weights.WeightFinal, weights.Active, weights.ID); err != nil {
		return fmt.Errorf("update weights: %w", err)
	}
	return nil
}
