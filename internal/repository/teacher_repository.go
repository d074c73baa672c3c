package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/maktab-uz/maktab-api/internal/models"
)

// TeacherRepository handles teacher profile persistence.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherDetailColumns = `t.id, t.user_id, t.specialty_id, t.is_class_teacher, t.notes,
        u.first_name, u.last_name, u.phone`

// List returns all teachers with account naming.
func (r *TeacherRepository) List(ctx context.Context) ([]models.TeacherDetail, error) {
	var teachers []models.TeacherDetail
	query := fmt.Sprintf(`SELECT %s FROM teachers t JOIN users u ON u.id = t.user_id ORDER BY u.last_name, u.first_name`, teacherDetailColumns)
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID returns a single teacher with account naming.
func (r *TeacherRepository) FindByID(ctx context.Context, id int64) (*models.TeacherDetail, error) {
	var teacher models.TeacherDetail
	query := fmt.Sprintf(`SELECT %s FROM teachers t JOIN users u ON u.id = t.user_id WHERE t.id = $1`, teacherDetailColumns)
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByUserID resolves the teacher profile owned by an account.
func (r *TeacherRepository) FindByUserID(ctx context.Context, userID int64) (*models.Teacher, error) {
	var teacher models.Teacher
	const query = `SELECT id, user_id, specialty_id, is_class_teacher, notes FROM teachers WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &teacher, query, userID); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create inserts a teacher profile. One account owns at most one profile.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	const query = `INSERT INTO teachers (user_id, specialty_id, is_class_teacher, notes)
        VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, teacher.UserID, teacher.SpecialtyID, teacher.IsClassTeacher, teacher.Notes).Scan(&teacher.ID); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update replaces a teacher's mutable fields.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	const query = `UPDATE teachers SET specialty_id = $1, is_class_teacher = $2, notes = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, teacher.SpecialtyID, teacher.IsClassTeacher, teacher.Notes, teacher.ID); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher profile.
func (r *TeacherRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM teachers WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return nil
}
