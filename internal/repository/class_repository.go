package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

// ClassRepository handles school class persistence.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns all classes with roster counts, ordered by name.
func (r *ClassRepository) List(ctx context.Context) ([]models.ClassSummary, error) {
	var classes []models.ClassSummary
	const query = `SELECT c.id, c.name, c.level, c.class_teacher_id, c.capacity,
            COUNT(s.id) AS students_count
        FROM classes c
        LEFT JOIN students s ON s.class_id = c.id
        GROUP BY c.id
        ORDER BY c.name`
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a single class.
func (r *ClassRepository) FindByID(ctx context.Context, id int64) (*models.SchoolClass, error) {
	var class models.SchoolClass
	const query = `SELECT id, name, level, class_teacher_id, capacity FROM classes WHERE id = $1`
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListByTeacher returns classes where the teacher is either the class
// teacher or appears in the timetable.
func (r *ClassRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]models.SchoolClass, error) {
	var classes []models.SchoolClass
	const query = `SELECT DISTINCT c.id, c.name, c.level, c.class_teacher_id, c.capacity
        FROM classes c
        LEFT JOIN schedule_entries se ON se.class_id = c.id
        WHERE c.class_teacher_id = $1 OR se.teacher_id = $1
        ORDER BY c.name`
	if err := r.db.SelectContext(ctx, &classes, query, teacherID); err != nil {
		return nil, fmt.Errorf("list classes by teacher: %w", err)
	}
	return classes, nil
}

// Create inserts a class. Names are unique school-wide.
func (r *ClassRepository) Create(ctx context.Context, class *models.SchoolClass) error {
	const query = `INSERT INTO classes (name, level, class_teacher_id, capacity)
        VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, class.Name, class.Level, class.ClassTeacherID, class.Capacity).Scan(&class.ID); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrDuplicate, "class name already in use")
		}
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update replaces a class's fields.
func (r *ClassRepository) Update(ctx context.Context, class *models.SchoolClass) error {
	const query = `UPDATE classes SET name = $1, level = $2, class_teacher_id = $3, capacity = $4 WHERE id = $5`
	if _, err := r.db.ExecContext(ctx, query, class.Name, class.Level, class.ClassTeacherID, class.Capacity, class.ID); err != nil {
		if isUniqueViolation(err) {
			return appErrors.Clone(appErrors.ErrDuplicate, "class name already in use")
		}
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class. Students are detached via ON DELETE SET NULL.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM classes WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}
