package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type fakeSubjectRepo struct {
	subjects  map[int64]*models.Subject
	createErr error
}

func (f *fakeSubjectRepo) List(context.Context) ([]models.Subject, error) {
	var out []models.Subject
	for _, s := range f.subjects {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSubjectRepo) FindByID(_ context.Context, id int64) (*models.Subject, error) {
	if s, ok := f.subjects[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSubjectRepo) Create(_ context.Context, subject *models.Subject) error {
	if f.createErr != nil {
		return f.createErr
	}
	subject.ID = int64(len(f.subjects) + 1)
	return nil
}

func (f *fakeSubjectRepo) Update(context.Context, *models.Subject) error { return nil }
func (f *fakeSubjectRepo) Delete(context.Context, int64) error           { return nil }

func TestSubjectCreateKeepsDuplicateStatus(t *testing.T) {
	repo := &fakeSubjectRepo{createErr: appErrors.Clone(appErrors.ErrDuplicate, "subject name or code already in use")}
	svc := NewSubjectService(repo, nil)

	_, err := svc.Create(context.Background(), SubjectRequest{Name: "Mathematics"})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)
}

func TestSubjectCreate(t *testing.T) {
	svc := NewSubjectService(&fakeSubjectRepo{subjects: map[int64]*models.Subject{}}, nil)

	subject, err := svc.Create(context.Background(), SubjectRequest{Name: "Mathematics", Code: "MATH"})
	require.NoError(t, err)
	assert.NotZero(t, subject.ID)
	assert.Equal(t, "MATH", subject.Code)
}
