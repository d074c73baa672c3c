package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/maktab-uz/maktab-api/internal/models"
	"github.com/maktab-uz/maktab-api/pkg/config"
	appErrors "github.com/maktab-uz/maktab-api/pkg/errors"
)

type stubUserAuth struct {
	users map[string]*models.User
}

func (s stubUserAuth) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	if u, ok := s.users[phone]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s stubUserAuth) FindByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func authFixture(t *testing.T, active bool) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	users := stubUserAuth{users: map[string]*models.User{
		"+998901234567": {
			ID:           1,
			Phone:        "+998901234567",
			PasswordHash: string(hash),
			Role:         models.RoleRegistrar,
			Active:       active,
		},
	}}
	cfg := config.JWTConfig{Secret: "test_secret", Expiration: time.Hour}
	return NewAuthService(users, cfg, nil, nil)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc := authFixture(t, true)

	// local-format phone must normalise to the stored account
	pair, err := svc.Login(context.Background(), LoginRequest{Phone: "90 123 45 67", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, models.RoleRegistrar, claims.Role)
	assert.Equal(t, "+998901234567", claims.Phone)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := authFixture(t, true)

	_, err := svc.Login(context.Background(), LoginRequest{Phone: "+998901234567", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestLoginDisabledAccount(t *testing.T) {
	svc := authFixture(t, false)

	_, err := svc.Login(context.Background(), LoginRequest{Phone: "+998901234567", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, "account disabled", appErrors.FromError(err).Message)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	svc := authFixture(t, true)
	other := NewAuthService(stubUserAuth{}, config.JWTConfig{Secret: "another_secret", Expiration: time.Hour}, nil, nil)

	pair, err := svc.Login(context.Background(), LoginRequest{Phone: "+998901234567", Password: "secret123"})
	require.NoError(t, err)

	_, err = other.ValidateToken(pair.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
