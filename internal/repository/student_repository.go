package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/maktab-uz/maktab-api/internal/models"
)

// StudentRepository handles student persistence.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository creates a new student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, first_name, last_name, dob, gender, class_id, parent_name, parent_phone, address, status`

// ListByClass returns a class roster in last-name/first-name order. This
// ordering is load-bearing: ranking relies on it for deterministic
// iteration and stable-sort tie behaviour.
func (r *StudentRepository) ListByClass(ctx context.Context, classID int64) ([]models.Student, error) {
	var students []models.Student
	query := fmt.Sprintf(`SELECT %s FROM students WHERE class_id = $1 ORDER BY last_name, first_name`, studentColumns)
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list students by class: %w", err)
	}
	return students, nil
}

// FindByID returns a single student.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	var student models.Student
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// CountByClass returns the roster size of a class.
func (r *StudentRepository) CountByClass(ctx context.Context, classID int64) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM students WHERE class_id = $1`
	if err := r.db.GetContext(ctx, &count, query, classID); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// Create inserts a student.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	const query = `INSERT INTO students (first_name, last_name, dob, gender, class_id, parent_name, parent_phone, address, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		student.FirstName, student.LastName, student.DOB, student.Gender,
		student.ClassID, student.ParentName, student.ParentPhone, student.Address, student.Status,
	).Scan(&student.ID); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update replaces a student's fields.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET first_name = $1, last_name = $2, dob = $3, gender = $4,
            class_id = $5, parent_name = $6, parent_phone = $7, address = $8, status = $9
        WHERE id = $10`
	if _, err := r.db.ExecContext(ctx, query,
		student.FirstName, student.LastName, student.DOB, student.Gender,
		student.ClassID, student.ParentName, student.ParentPhone, student.Address, student.Status,
		student.ID,
	); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
