package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/maktab-uz/maktab-api/internal/models"
)

// AttendanceRepository handles attendance row persistence. The natural
// key uniqueness is enforced by two partial unique indexes and every
// write goes through a single atomic upsert against the right one.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, student_id, date, status, class_id, subject_id, schedule_id, teacher_id, note, created_at, updated_at`

// Upsert writes an attendance row keyed on its natural key. The anchor
// must already be resolved: schedule-anchored rows conflict on
// (student, date, schedule), legacy rows on (student, date, subject)
// among rows without a schedule. Racing writers for the same key land
// on the update arm instead of producing duplicates.
func (r *AttendanceRepository) Upsert(ctx context.Context, att *models.Attendance) error {
	now := time.Now().UTC()
	att.UpdatedAt = now
	if att.CreatedAt.IsZero() {
		att.CreatedAt = now
	}

	var query string
	if att.ScheduleAnchored() {
		query = `INSERT INTO attendance (student_id, date, status, class_id, subject_id, schedule_id, teacher_id, note, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
            ON CONFLICT (student_id, date, schedule_id) WHERE schedule_id IS NOT NULL
            DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note,
                class_id = EXCLUDED.class_id, teacher_id = EXCLUDED.teacher_id,
                updated_at = EXCLUDED.updated_at
            RETURNING id`
	} else {
		query = `INSERT INTO attendance (student_id, date, status, class_id, subject_id, schedule_id, teacher_id, note, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
            ON CONFLICT (student_id, date, subject_id) WHERE schedule_id IS NULL
            DO UPDATE SET status = EXCLUDED.status, note = EXCLUDED.note,
                class_id = EXCLUDED.class_id, teacher_id = EXCLUDED.teacher_id,
                updated_at = EXCLUDED.updated_at
            RETURNING id`
	}

	if err := r.db.QueryRowxContext(ctx, query,
		att.StudentID, att.Date, att.Status, att.ClassID,
		att.SubjectID, att.ScheduleID, att.TeacherID, att.Note,
		att.CreatedAt, att.UpdatedAt,
	).Scan(&att.ID); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// List returns rows for a class/date grid. Schedule filter wins over
// subject filter when both are given.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance WHERE class_id = $1 AND date = $2`, attendanceColumns)
	args := []interface{}{filter.ClassID, filter.Date}
	if filter.ScheduleID != nil {
		query += fmt.Sprintf(" AND schedule_id = $%d", len(args)+1)
		args = append(args, *filter.ScheduleID)
	} else if filter.SubjectID != nil {
		query += fmt.Sprintf(" AND subject_id = $%d", len(args)+1)
		args = append(args, *filter.SubjectID)
	}
	query += " ORDER BY student_id"
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// ListClassRange returns all rows for a class within [from, to], used by
// the weekly grid.
func (r *AttendanceRepository) ListClassRange(ctx context.Context, classID int64, from, to time.Time) ([]models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance WHERE class_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date, student_id`, attendanceColumns)
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, classID, from, to); err != nil {
		return nil, fmt.Errorf("list class attendance range: %w", err)
	}
	return rows, nil
}

// ListStudentRange returns one student's rows within [from, to], used by
// the overview's current-week window.
func (r *AttendanceRepository) ListStudentRange(ctx context.Context, studentID int64, from, to time.Time) ([]models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendance WHERE student_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date`, attendanceColumns)
	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("list student attendance range: %w", err)
	}
	return rows, nil
}
