package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maktab-uz/maktab-api/internal/models"
)

// GradeRepository handles grade entry persistence.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeColumns = `id, student_id, subject_id, teacher_id, date, term, type, score, comment`

// List returns grade entries matching the filter.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	query := fmt.Sprintf(`SELECT g.%s FROM grades g WHERE 1=1`,
		strings.ReplaceAll(gradeColumns, ", ", ", g."))
	var args []interface{}
	if filter.StudentID != 0 {
		query += fmt.Sprintf(" AND g.student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != 0 {
		query += fmt.Sprintf(" AND g.subject_id = $%d", len(args)+1)
		args = append(args, filter.SubjectID)
	}
	if filter.ClassID != 0 {
		query += fmt.Sprintf(" AND g.student_id IN (SELECT id FROM students WHERE class_id = $%d)", len(args)+1)
		args = append(args, filter.ClassID)
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND g.type = $%d", len(args)+1)
		args = append(args, filter.Type)
	}
	if filter.Term != "" {
		query += fmt.Sprintf(" AND g.term = $%d", len(args)+1)
		args = append(args, filter.Term)
	}
	if filter.Date != nil {
		query += fmt.Sprintf(" AND g.date = $%d", len(args)+1)
		args = append(args, *filter.Date)
	}
	query += " ORDER BY g.date, g.id"
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// ListByStudentSubject returns one student's grades for a subject,
// optionally scoped by term, in date/id order. The ordering is what the
// aggregator's "latest final" selection relies on.
func (r *GradeRepository) ListByStudentSubject(ctx context.Context, studentID, subjectID int64, term string) ([]models.Grade, error) {
	query := fmt.Sprintf(`SELECT %s FROM grades WHERE student_id = $1 AND subject_id = $2`, gradeColumns)
	args := []interface{}{studentID, subjectID}
	if term != "" {
		query += " AND term = $3"
		args = append(args, term)
	}
	query += " ORDER BY date, id"
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list student subject grades: %w", err)
	}
	return grades, nil
}

// FetchForStudents returns all grades for the given students keyed by
// student id, optionally scoped by term. Ranking uses this to avoid a
// query per student/subject pair.
func (r *GradeRepository) FetchForStudents(ctx context.Context, studentIDs []int64, term string) (map[int64][]models.Grade, error) {
	if len(studentIDs) == 0 {
		return map[int64][]models.Grade{}, nil
	}
	placeholders := make([]string, len(studentIDs))
	args := make([]interface{}, 0, len(studentIDs)+1)
	for i, id := range studentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, id)
	}
	query := fmt.Sprintf(`SELECT %s FROM grades WHERE student_id IN (%s)`, gradeColumns, strings.Join(placeholders, ","))
	if term != "" {
		query += fmt.Sprintf(" AND term = $%d", len(args)+1)
		args = append(args, term)
	}
	query += " ORDER BY date, id"
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch grades: %w", err)
	}
	defer rows.Close()
	result := make(map[int64][]models.Grade, len(studentIDs))
	for rows.Next() {
		var grade models.Grade
		if err := rows.StructScan(&grade); err != nil {
			return nil, fmt.Errorf("scan grade: %w", err)
		}
		result[grade.StudentID] = append(result[grade.StudentID], grade)
	}
	return result, rows.Err()
}

// Upsert writes a grade keyed on (student, subject, date, type), the
// bulk-set contract inherited from the legacy gradebook.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) error {
	const query = `INSERT INTO grades (student_id, subject_id, teacher_id, date, term, type, score, comment)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (student_id, subject_id, date, type)
        DO UPDATE SET score = EXCLUDED.score, comment = EXCLUDED.comment,
            teacher_id = EXCLUDED.teacher_id, term = EXCLUDED.term
        RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		grade.StudentID, grade.SubjectID, grade.TeacherID, grade.Date,
		grade.Term, grade.Type, grade.Score, grade.Comment,
	).Scan(&grade.ID); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// Delete removes a grade entry.
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM grades WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}

// ListClassDateRange returns grades of a type for a class within a date
// window, used by the daily gradebook grid.
func (r *GradeRepository) ListClassDateRange(ctx context.Context, classID int64, gradeType models.GradeType, from, to time.Time) ([]models.Grade, error) {
	query := fmt.Sprintf(`SELECT %s FROM grades
        WHERE type = $1 AND date BETWEEN $2 AND $3
            AND student_id IN (SELECT id FROM students WHERE class_id = $4)
        ORDER BY date, id`, gradeColumns)
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, gradeType, from, to, classID); err != nil {
		return nil, fmt.Errorf("list class grades range: %w", err)
	}
	return grades, nil
}
