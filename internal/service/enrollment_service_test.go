package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/maktab-uz/maktab-api/internal/models"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "bare local number", in: "901234567", want: "+998901234567", ok: true},
		{name: "country code without plus", in: "998901234567", want: "+998901234567", ok: true},
		{name: "formatted", in: "+998 (90) 123-45-67", want: "+998901234567", ok: true},
		{name: "local with separators", in: "90 123 45 67", want: "+998901234567", ok: true},
		{name: "too short", in: "12345", ok: false},
		{name: "wrong country code", in: "+7 901 234 56 78", ok: false},
		{name: "empty", in: "", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizePhone(tc.in)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

type fakeStudentWriter struct {
	created []*models.Student
}

func (f *fakeStudentWriter) Create(_ context.Context, student *models.Student) error {
	student.ID = int64(len(f.created) + 1)
	f.created = append(f.created, student)
	return nil
}

type fakeUserAccounts struct {
	byPhone map[string]*models.User
	created []*models.User
}

func (f *fakeUserAccounts) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	if u, ok := f.byPhone[phone]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserAccounts) Create(_ context.Context, user *models.User) error {
	user.ID = int64(100 + len(f.created))
	f.created = append(f.created, user)
	if f.byPhone == nil {
		f.byPhone = map[string]*models.User{}
	}
	f.byPhone[user.Phone] = user
	return nil
}

type fakeGuardianLinker struct {
	links [][2]int64
}

func (f *fakeGuardianLinker) Link(_ context.Context, studentID, guardianID int64) error {
	f.links = append(f.links, [2]int64{studentID, guardianID})
	return nil
}

func enrollReq() EnrollRequest {
	return EnrollRequest{
		FirstName:   "Aziz",
		LastName:    "Karimov",
		DOB:         "2015-09-01",
		ParentName:  "Dilnoza Karimova",
		ParentPhone: "90 123 45 67",
	}
}

func TestEnrollCreatesParentAccount(t *testing.T) {
	students := &fakeStudentWriter{}
	users := &fakeUserAccounts{}
	guardians := &fakeGuardianLinker{}
	svc := NewEnrollmentService(students, users, guardians, nil, nil)

	res, err := svc.Enroll(context.Background(), enrollReq())
	require.NoError(t, err)

	assert.True(t, res.ParentCreated)
	require.Len(t, res.TempPassword, 6)
	require.Len(t, users.created, 1)
	account := users.created[0]
	assert.Equal(t, "+998901234567", account.Phone)
	assert.Equal(t, models.RoleParent, account.Role)
	assert.True(t, account.Active)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(res.TempPassword)))

	require.Len(t, guardians.links, 1)
	assert.Equal(t, res.Student.ID, guardians.links[0][0])
	assert.Equal(t, account.ID, guardians.links[0][1])
}

func TestEnrollReusesExistingParent(t *testing.T) {
	students := &fakeStudentWriter{}
	users := &fakeUserAccounts{byPhone: map[string]*models.User{
		"+998901234567": {ID: 7, Phone: "+998901234567", Role: models.RoleParent},
	}}
	guardians := &fakeGuardianLinker{}
	svc := NewEnrollmentService(students, users, guardians, nil, nil)

	res, err := svc.Enroll(context.Background(), enrollReq())
	require.NoError(t, err)

	assert.False(t, res.ParentCreated)
	assert.Empty(t, res.TempPassword)
	assert.Equal(t, int64(7), res.GuardianID)
	assert.Empty(t, users.created)
	require.Len(t, guardians.links, 1)
	assert.Equal(t, int64(7), guardians.links[0][1])
}

func TestEnrollRejectsBadPhone(t *testing.T) {
	svc := NewEnrollmentService(&fakeStudentWriter{}, &fakeUserAccounts{}, &fakeGuardianLinker{}, nil, nil)

	req := enrollReq()
	req.ParentPhone = "12345"
	_, err := svc.Enroll(context.Background(), req)
	assert.Error(t, err)
}
