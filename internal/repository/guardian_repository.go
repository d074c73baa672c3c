package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/maktab-uz/maktab-api/internal/models"
)

// GuardianRepository handles student-guardian membership links.
type GuardianRepository struct {
	db *sqlx.DB
}

// NewGuardianRepository creates a new guardian repository.
func NewGuardianRepository(db *sqlx.DB) *GuardianRepository {
	return &GuardianRepository{db: db}
}

// Link records a guardian for a student; repeated calls are no-ops.
func (r *GuardianRepository) Link(ctx context.Context, studentID, guardianID int64) error {
	const query = `INSERT INTO student_guardians (student_id, guardian_id) VALUES ($1, $2)
        ON CONFLICT (student_id, guardian_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, studentID, guardianID); err != nil {
		return fmt.Errorf("link guardian: %w", err)
	}
	return nil
}

// Exists reports whether the guardian is linked to the student.
func (r *GuardianRepository) Exists(ctx context.Context, guardianID, studentID int64) (bool, error) {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM student_guardians WHERE guardian_id = $1 AND student_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, guardianID, studentID); err != nil {
		return false, fmt.Errorf("check guardian link: %w", err)
	}
	return exists, nil
}

// ListChildren returns the students linked to a guardian account.
func (r *GuardianRepository) ListChildren(ctx context.Context, guardianID int64) ([]models.Student, error) {
	var students []models.Student
	const query = `SELECT s.id, s.first_name, s.last_name, s.dob, s.gender, s.class_id,
            s.parent_name, s.parent_phone, s.address, s.status
        FROM students s
        JOIN student_guardians sg ON sg.student_id = s.id
        WHERE sg.guardian_id = $1
        ORDER BY s.last_name, s.first_name`
	if err := r.db.SelectContext(ctx, &students, query, guardianID); err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	return students, nil
}
