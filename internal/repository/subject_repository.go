package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

// SubjectRepository handles subject reference data.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns all subjects ordered by name.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	const query = `SELECT id, name, code FROM subjects ORDER BY name`
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a single subject.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	var subject models.Subject
	const query = `SELECT id, name, code FROM subjects WHERE id = $1`
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create inserts a subject. Name and non-empty code are unique.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	const query = `INSERT INTO subjects (name, code) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, subject.Name, subject.Code).Scan(&subject.ID); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrDuplicate, "subject name or code already in use")
		}
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update replaces a subject's fields.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	const query = `UPDATE subjects SET name = $1, code = $2 WHERE id = $3`
	if _, err := r.db.ExecContext(ctx, query, subject.Name, subject.Code, subject.ID); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrDuplicate, "subject name or code already in use")
		}
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Delete removes a subject.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM subjects WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	return nil
}
