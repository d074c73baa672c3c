package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

func newSubjectRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubjectRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()

	repo := NewSubjectRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subjects")).
		WithArgs("Mathematics", "MATH").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	subject := &models.Subject{Name: "Mathematics", Code: "MATH"}
	require.NoError(t, repo.Create(context.Background(), subject))
	require.Equal(t, int64(3), subject.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateDuplicateName(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()

	repo := NewSubjectRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subjects")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "subjects_name_key"})

	err := repo.Create(context.Background(), &models.Subject{Name: "Mathematics"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Equal(t, appErrors.ErrDuplicate.Code, appErr.Code)
	require.Equal(t, 409, appErr.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryUpdateDuplicateCode(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()

	repo := NewSubjectRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE subjects")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "uniq_subjects_code"})

	err := repo.Update(context.Background(), &models.Subject{ID: 3, Name: "Maths", Code: "MATH"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrDuplicate.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreateDuplicateName(t *testing.T) {
	db, mock, cleanup := newSubjectRepoMock(t)
	defer cleanup()

	repo := NewClassRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO classes")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "classes_name_key"})

	err := repo.Create(context.Background(), &models.SchoolClass{Name: "7-A"})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrDuplicate.Code, appErrors.FromError(err).Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
