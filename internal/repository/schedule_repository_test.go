package repository

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/maktab-uz/maktab-api/internal/models"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func scheduleRows(rows ...[]driverValue) *sqlmock.Rows {
	out := sqlmock.NewRows([]string{"id", "class_id", "subject_id", "teacher_id", "weekday", "start_time", "end_time", "room"})
	for _, r := range rows {
		out.AddRow(r...)
	}
	return out
}

type driverValue = driver.Value

func TestScheduleRepositorySaveLocksTeacherDayBeforeCheck(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectBegin()
	// expectations are ordered: the advisory lock must be taken
	// before the slots are read, otherwise two writers into an empty
	// day both see no conflict
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(int64(7)<<3 | int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = $1 AND weekday = $2")).
		WithArgs(int64(7), int64(2)).
		WillReturnRows(scheduleRows())
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO schedule_entries")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectCommit()

	entry := &models.ScheduleEntry{
		ClassID:   1,
		SubjectID: 2,
		TeacherID: 7,
		Weekday:   2,
		StartTime: "09:00",
		EndTime:   "09:45",
	}
	conflict, err := repo.Save(context.Background(), entry)
	require.NoError(t, err)
	require.Nil(t, conflict)
	require.Equal(t, int64(5), entry.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositorySaveRejectsOverlapUnderLock(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")).
		WithArgs(int64(7)<<3 | int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE teacher_id = $1 AND weekday = $2")).
		WithArgs(int64(7), int64(2)).
		WillReturnRows(scheduleRows([]driverValue{9, 1, 2, 7, 2, "09:00:00", "10:00:00", ""}))
	mock.ExpectRollback()

	entry := &models.ScheduleEntry{
		ClassID:   1,
		SubjectID: 2,
		TeacherID: 7,
		Weekday:   2,
		StartTime: "09:30",
		EndTime:   "10:30",
	}
	conflict, err := repo.Save(context.Background(), entry)
	require.NoError(t, err)
	require.NotNil(t, conflict)
	require.Equal(t, int64(9), conflict.ScheduleID)
	require.NoError(t, mock.ExpectationsWereMet())
}
