package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maktab-uz/maktab-api/internal/models"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type fakeAttendanceRepo struct {
	rows   map[string]*models.Attendance
	nextID int64
	failOn map[int64]bool
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{rows: map[string]*models.Attendance{}, failOn: map[int64]bool{}}
}

func attendanceKey(att *models.Attendance) string {
	day := att.Date.Format("2006-01-02")
	if att.ScheduleID != nil {
		return fmt.Sprintf("sched:%s:%d:%d", day, att.StudentID, *att.ScheduleID)
	}
	return fmt.Sprintf("subj:%s:%d:%d", day, att.StudentID, *att.SubjectID)
}

func (r *fakeAttendanceRepo) Upsert(_ context.Context, att *models.Attendance) error {
	if r.failOn[att.StudentID] {
		return sql.ErrConnDone
	}
	key := attendanceKey(att)
	if existing, ok := r.rows[key]; ok {
		existing.Status = att.Status
		existing.Note = att.Note
		att.ID = existing.ID
		return nil
	}
	r.nextID++
	att.ID = r.nextID
	stored := *att
	r.rows[key] = &stored
	return nil
}

func (r *fakeAttendanceRepo) List(_ context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	var out []models.Attendance
	for _, att := range r.rows {
		if att.ClassID != filter.ClassID || !att.Date.Equal(filter.Date) {
			continue
		}
		if filter.ScheduleID != nil {
			if att.ScheduleID == nil || *att.ScheduleID != *filter.ScheduleID {
				continue
			}
		} else if filter.SubjectID != nil {
			if att.ScheduleID != nil || att.SubjectID == nil || *att.SubjectID != *filter.SubjectID {
				continue
			}
		}
		out = append(out, *att)
	}
	return out, nil
}

func (r *fakeAttendanceRepo) ListClassRange(context.Context, int64, time.Time, time.Time) ([]models.Attendance, error) {
	return nil, nil
}

func (r *fakeAttendanceRepo) ListStudentRange(context.Context, int64, time.Time, time.Time) ([]models.Attendance, error) {
	return nil, nil
}

type fakeScheduleReader struct {
	slots map[int64]*models.ScheduleEntry
}

func (r fakeScheduleReader) FindByID(_ context.Context, id int64) (*models.ScheduleEntry, error) {
	slot, ok := r.slots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return slot, nil
}

type fakeStudentReader struct {
	known map[int64]bool
}

func (r fakeStudentReader) FindByID(_ context.Context, id int64) (*models.Student, error) {
	if !r.known[id] {
		return nil, sql.ErrNoRows
	}
	return &models.Student{ID: id}, nil
}

func newAttendanceFixture(repo *fakeAttendanceRepo) *AttendanceService {
	schedules := fakeScheduleReader{slots: map[int64]*models.ScheduleEntry{
		10: {ID: 10, ClassID: 3, SubjectID: 7, TeacherID: 5, Weekday: 1, StartTime: "09:00", EndTime: "10:00"},
	}}
	students := fakeStudentReader{known: map[int64]bool{1: true, 2: true}}
	return NewAttendanceService(repo, schedules, students, nil, nil)
}

func TestResolveRequiresAnchor(t *testing.T) {
	svc := newAttendanceFixture(newFakeAttendanceRepo())
	_, err := svc.Resolve(context.Background(), AttendanceWriteRequest{
		StudentID: 1, Date: "2026-03-02", Status: models.AttendanceStatusPresent, ClassID: 3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingAnchor.Code, appErrors.FromError(err).Code)
}

func TestResolveDenormalisesFromSchedule(t *testing.T) {
	svc := newAttendanceFixture(newFakeAttendanceRepo())
	scheduleID := int64(10)
	att, err := svc.Resolve(context.Background(), AttendanceWriteRequest{
		StudentID: 1, Date: "2026-03-02", Status: models.AttendanceStatusAbsent, ScheduleID: &scheduleID,
	})
	require.NoError(t, err)
	require.NotNil(t, att.SubjectID)
	require.NotNil(t, att.TeacherID)
	assert.Equal(t, int64(7), *att.SubjectID)
	assert.Equal(t, int64(5), *att.TeacherID)
	assert.Equal(t, int64(3), att.ClassID)
	assert.True(t, att.ScheduleAnchored(), "schedule anchor must survive denormalisation")
}

func TestResolveDanglingSchedule(t *testing.T) {
	svc := newAttendanceFixture(newFakeAttendanceRepo())
	scheduleID := int64(999)
	_, err := svc.Resolve(context.Background(), AttendanceWriteRequest{
		StudentID: 1, Date: "2026-03-02", Status: models.AttendanceStatusPresent, ScheduleID: &scheduleID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpsertIsIdempotentPerNaturalKey(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newAttendanceFixture(repo)
	scheduleID := int64(10)

	first, err := svc.Upsert(context.Background(), AttendanceWriteRequest{
		StudentID: 1, Date: "2026-03-02", Status: models.AttendanceStatusAbsent, ScheduleID: &scheduleID,
	})
	require.NoError(t, err)

	second, err := svc.Upsert(context.Background(), AttendanceWriteRequest{
		StudentID: 1, Date: "2026-03-02", Status: models.AttendanceStatusLate, ScheduleID: &scheduleID,
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same natural key must update in place")
	assert.Len(t, repo.rows, 1)
}

func TestScheduleAndSubjectAnchorsCoexist(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newAttendanceFixture(repo)
	scheduleID, subjectID := int64(10), int64(7)

	slotMark, err := svc.Upsert(context.Background(), AttendanceWriteRequest{
		StudentID: 1, Date: "2026-03-02", Status: models.AttendanceStatusPresent, ScheduleID: &scheduleID,
	})
	require.NoError(t, err)

	legacyMark, err := svc.Upsert(context.Background(), AttendanceWriteRequest{
		StudentID: 1, Date: "2026-03-02", Status: models.AttendanceStatusAbsent, ClassID: 3, SubjectID: &subjectID,
	})
	require.NoError(t, err)

	assert.NotEqual(t, slotMark.ID, legacyMark.ID, "anchor styles form independent uniqueness domains")
	assert.Len(t, repo.rows, 2)
}

func TestBulkMarkPartialSuccess(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newAttendanceFixture(repo)
	scheduleID := int64(10)

	result, err := svc.BulkMark(context.Background(), BulkMarkRequest{
		ClassID:    3,
		Date:       "2026-03-02",
		ScheduleID: &scheduleID,
		Entries: []BulkMarkEntry{
			{StudentID: 1, Status: models.AttendanceStatusPresent},
			{StudentID: 99, Status: models.AttendanceStatusPresent},
			{StudentID: 2, Status: "sleeping"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, result.IDs, 1)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, int64(99), result.Skipped[0].StudentID)
	assert.Equal(t, "unknown student", result.Skipped[0].Reason)
	assert.Equal(t, int64(2), result.Skipped[1].StudentID)
}

func TestBulkMarkRequiresAnchor(t *testing.T) {
	svc := newAttendanceFixture(newFakeAttendanceRepo())
	_, err := svc.BulkMark(context.Background(), BulkMarkRequest{
		ClassID: 3,
		Date:    "2026-03-02",
		Entries: []BulkMarkEntry{{StudentID: 1, Status: models.AttendanceStatusPresent}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingAnchor.Code, appErrors.FromError(err).Code)
}

func TestLookupPrefersScheduleFilter(t *testing.T) {
	repo := newFakeAttendanceRepo()
	svc := newAttendanceFixture(repo)
	scheduleID, subjectID := int64(10), int64(7)

	_, err := svc.Upsert(context.Background(), AttendanceWriteRequest{
		StudentID: 1, Date: "2026-03-02", Status: models.AttendanceStatusPresent, ScheduleID: &scheduleID,
	})
	require.NoError(t, err)
	_, err = svc.Upsert(context.Background(), AttendanceWriteRequest{
		StudentID: 2, Date: "2026-03-02", Status: models.AttendanceStatusAbsent, ClassID: 3, SubjectID: &subjectID,
	})
	require.NoError(t, err)

	rows, err := svc.Lookup(context.Background(), AttendanceLookupRequest{
		ClassID: 3, Date: "2026-03-02", ScheduleID: &scheduleID, SubjectID: &subjectID,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].StudentID)
}
