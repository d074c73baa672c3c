package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/maktab-uz/maktab-api/internal/models"
)

func newAttendanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func int64Ptr(v int64) *int64 { return &v }

func TestAttendanceRepositoryUpsertScheduleAnchor(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (student_id, date, schedule_id) WHERE schedule_id IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(41))

	att := &models.Attendance{
		StudentID:  1,
		Date:       time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		Status:     models.AttendanceStatusPresent,
		ClassID:    3,
		SubjectID:  int64Ptr(7),
		ScheduleID: int64Ptr(10),
		TeacherID:  int64Ptr(5),
	}
	require.NoError(t, repo.Upsert(context.Background(), att))
	require.Equal(t, int64(41), att.ID)
	require.False(t, att.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpsertSubjectAnchor(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (student_id, date, subject_id) WHERE schedule_id IS NULL")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	att := &models.Attendance{
		StudentID: 1,
		Date:      time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
		Status:    models.AttendanceStatusAbsent,
		ClassID:   3,
		SubjectID: int64Ptr(7),
	}
	require.NoError(t, repo.Upsert(context.Background(), att))
	require.Equal(t, int64(42), att.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListSchedulePrecedence(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	date := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "student_id", "date", "status", "class_id", "subject_id", "schedule_id", "teacher_id", "note", "created_at", "updated_at"}).
		AddRow(1, 1, date, "present", 3, 7, 10, 5, "", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("AND schedule_id = $3")).
		WithArgs(int64(3), date, int64(10)).
		WillReturnRows(rows)

	// Both anchors supplied; the query must filter on the schedule.
	got, err := repo.List(context.Background(), models.AttendanceFilter{
		ClassID:    3,
		Date:       date,
		ScheduleID: int64Ptr(10),
		SubjectID:  int64Ptr(7),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int64(10), *got[0].ScheduleID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListClassRange(t *testing.T) {
	db, mock, cleanup := newAttendanceRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	from := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 17, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "student_id", "date", "status", "class_id", "subject_id", "schedule_id", "teacher_id", "note", "created_at", "updated_at"}).
		AddRow(1, 1, from, "present", 3, nil, nil, nil, "", time.Now(), time.Now()).
		AddRow(2, 2, to, "late", 3, nil, nil, nil, "", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("date BETWEEN $2 AND $3")).
		WithArgs(int64(3), from, to).
		WillReturnRows(rows)

	got, err := repo.ListClassRange(context.Background(), 3, from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
