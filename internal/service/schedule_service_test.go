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

type fakeScheduleRepo struct {
	entries []models.ScheduleEntry
	nextID  int64
}

func (f *fakeScheduleRepo) List(_ context.Context, filter models.ScheduleFilter) ([]models.ScheduleEntry, error) {
	out := make([]models.ScheduleEntry, 0, len(f.entries))
	for _, e := range f.entries {
		if filter.ClassID != 0 && e.ClassID != filter.ClassID {
			continue
		}
		if filter.TeacherID != 0 && e.TeacherID != filter.TeacherID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeScheduleRepo) FindByID(_ context.Context, id int64) (*models.ScheduleEntry, error) {
	for i := range f.entries {
		if f.entries[i].ID == id {
			entry := f.entries[i]
			return &entry, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScheduleRepo) ListForTeacherWeekday(_ context.Context, teacherID int64, weekday int) ([]models.ScheduleEntry, error) {
	var out []models.ScheduleEntry
	for _, e := range f.entries {
		if e.TeacherID == teacherID && e.Weekday == weekday {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) Save(_ context.Context, entry *models.ScheduleEntry) (*models.ScheduleConflict, error) {
	if conflict := models.FirstConflict(*entry, f.entries); conflict != nil {
		return conflict, nil
	}
	if entry.ID == 0 {
		f.nextID++
		entry.ID = f.nextID
	} else {
		for i := range f.entries {
			if f.entries[i].ID == entry.ID {
				f.entries[i] = *entry
				return nil, nil
			}
		}
	}
	f.entries = append(f.entries, *entry)
	return nil, nil
}

func (f *fakeScheduleRepo) Delete(_ context.Context, id int64) error {
	for i := range f.entries {
		if f.entries[i].ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func saveReq(start, end string) SaveScheduleRequest {
	return SaveScheduleRequest{
		ClassID:   1,
		SubjectID: 2,
		TeacherID: 5,
		Weekday:   1,
		StartTime: start,
		EndTime:   end,
		Room:      "204",
	}
}

func TestValidateRejectsOverlap(t *testing.T) {
	svc := NewScheduleService(&fakeScheduleRepo{}, nil, nil)

	existing := []models.ScheduleEntry{
		{ID: 1, TeacherID: 5, Weekday: 1, StartTime: "09:00", EndTime: "09:45"},
	}
	candidate := models.ScheduleEntry{TeacherID: 5, Weekday: 1, StartTime: "09:30", EndTime: "10:15"}

	err := svc.Validate(candidate, existing)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErrors.FromError(err).Code)
}

func TestValidateAllowsTouchingEndpoints(t *testing.T) {
	svc := NewScheduleService(&fakeScheduleRepo{}, nil, nil)

	existing := []models.ScheduleEntry{
		{ID: 1, TeacherID: 5, Weekday: 1, StartTime: "09:00", EndTime: "09:45"},
	}
	candidate := models.ScheduleEntry{TeacherID: 5, Weekday: 1, StartTime: "09:45", EndTime: "10:30"}

	assert.NoError(t, svc.Validate(candidate, existing))
}

func TestCreateRejectsEmptyWindow(t *testing.T) {
	svc := NewScheduleService(&fakeScheduleRepo{}, nil, nil)

	_, err := svc.Create(context.Background(), saveReq("09:00", "09:00"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), saveReq("10:00", "09:00"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateReportsConflictDetail(t *testing.T) {
	repo := &fakeScheduleRepo{}
	svc := NewScheduleService(repo, nil, nil)

	first, err := svc.Create(context.Background(), saveReq("09:00", "09:45"))
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	_, err = svc.Create(context.Background(), saveReq("09:30", "10:15"))
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErr.Code)
	assert.Equal(t, 409, appErr.Status)

	detail, ok := appErr.Err.(*models.ScheduleConflictError)
	require.True(t, ok)
	assert.Equal(t, first.ID, detail.Conflict.ScheduleID)
	assert.Len(t, repo.entries, 1)
}

func TestUpdateExcludesOwnRow(t *testing.T) {
	repo := &fakeScheduleRepo{}
	svc := NewScheduleService(repo, nil, nil)

	entry, err := svc.Create(context.Background(), saveReq("09:00", "09:45"))
	require.NoError(t, err)

	// Shifting the same slot inside its own window must not conflict
	// with the row being replaced.
	updated, err := svc.Update(context.Background(), entry.ID, saveReq("09:15", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, "09:15", updated.StartTime)
}

func TestUpdateUnknownSlot(t *testing.T) {
	svc := NewScheduleService(&fakeScheduleRepo{}, nil, nil)

	_, err := svc.Update(context.Background(), 42, saveReq("09:00", "09:45"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
