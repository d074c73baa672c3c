package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/maktab-uz/maktab-api/internal/models"
)

// ScheduleRepository handles timetable slot persistence.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, class_id, subject_id, teacher_id, weekday, start_time, end_time, room`

// List returns timetable slots matching the filter, in weekday/start order.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_entries WHERE 1=1`, scheduleColumns)
	var args []interface{}
	if filter.ClassID != 0 {
		query += fmt.Sprintf(" AND class_id = $%d", len(args)+1)
		args = append(args, filter.ClassID)
	}
	if filter.TeacherID != 0 {
		query += fmt.Sprintf(" AND teacher_id = $%d", len(args)+1)
		args = append(args, filter.TeacherID)
	}
	if filter.Weekday != 0 {
		query += fmt.Sprintf(" AND weekday = $%d", len(args)+1)
		args = append(args, filter.Weekday)
	}
	query += " ORDER BY weekday, start_time"
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule entries: %w", err)
	}
	return entries, nil
}

// FindByID returns a single timetable slot.
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	var entry models.ScheduleEntry
	query := fmt.Sprintf(`SELECT %s FROM schedule_entries WHERE id = $1`, scheduleColumns)
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListForTeacherWeekday returns the persisted slots the conflict
// validator must check a candidate against.
func (r *ScheduleRepository) ListForTeacherWeekday(ctx context.Context, teacherID int64, weekday int) ([]models.ScheduleEntry, error) {
	var entries []models.ScheduleEntry
	query := fmt.Sprintf(`SELECT %s FROM schedule_entries WHERE teacher_id = $1 AND weekday = $2 ORDER BY start_time`, scheduleColumns)
	if err := r.db.SelectContext(ctx, &entries, query, teacherID, weekday); err != nil {
		return nil, fmt.Errorf("list teacher day slots: %w", err)
	}
	return entries, nil
}

// DistinctSubjectIDs returns the subjects taught to a class per its
// timetable. An empty result means the class has no timetable yet.
func (r *ScheduleRepository) DistinctSubjectIDs(ctx context.Context, classID int64) ([]int64, error) {
	var ids []int64
	const query = `SELECT DISTINCT subject_id FROM schedule_entries WHERE class_id = $1 ORDER BY subject_id`
	if err := r.db.SelectContext(ctx, &ids, query, classID); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	return ids, nil
}

// Save inserts or updates a slot. An advisory lock on the
// (teacher, weekday) key serialises concurrent writers before the
// re-check: row locks alone cannot stop two inserts into an empty day
// from both passing validation.
func (r *ScheduleRepository) Save(ctx context.Context, entry *models.ScheduleEntry) (*models.ScheduleConflict, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin schedule save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// weekday is 1..6, so it fits the low bits; released on commit
	// or rollback
	lockKey := entry.TeacherID<<3 | int64(entry.Weekday)
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, lockKey); err != nil {
		return nil, fmt.Errorf("lock teacher day: %w", err)
	}

	var existing []models.ScheduleEntry
	checkQuery := fmt.Sprintf(`SELECT %s FROM schedule_entries WHERE teacher_id = $1 AND weekday = $2`, scheduleColumns)
	if err := tx.SelectContext(ctx, &existing, checkQuery, entry.TeacherID, entry.Weekday); err != nil {
		return nil, fmt.Errorf("list teacher day slots: %w", err)
	}
	if conflict := models.FirstConflict(*entry, existing); conflict != nil {
		return conflict, nil
	}

	if entry.ID == 0 {
		const insert = `INSERT INTO schedule_entries (class_id, subject_id, teacher_id, weekday, start_time, end_time, room)
            VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
		if err := tx.QueryRowxContext(ctx, insert,
			entry.ClassID, entry.SubjectID, entry.TeacherID, entry.Weekday,
			entry.StartTime, entry.EndTime, entry.Room,
		).Scan(&entry.ID); err != nil {
			return nil, fmt.Errorf("insert schedule entry: %w", err)
		}
	} else {
		const update = `UPDATE schedule_entries SET class_id = $1, subject_id = $2, teacher_id = $3,
                weekday = $4, start_time = $5, end_time = $6, room = $7
            WHERE id = $8`
		if _, err := tx.ExecContext(ctx, update,
			entry.ClassID, entry.SubjectID, entry.TeacherID, entry.Weekday,
			entry.StartTime, entry.EndTime, entry.Room, entry.ID,
		); err != nil {
			return nil, fmt.Errorf("update schedule entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit schedule save: %w", err)
	}
	return nil, nil
}

// Delete removes a timetable slot.
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM schedule_entries WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	return nil
}
