package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/fredora-academy/school-api/internal/models"
	"github.com/fredora-academy/school-api/pkg/config"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

type fakeAuthUsers struct {
	byUsername map[string]*models.User
	activeByID map[int64]*models.User
	lastLogin  map[int64]time.Time
}

func (f *fakeAuthUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := f.byUsername[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeAuthUsers) FindActiveByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := f.activeByID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (f *fakeAuthUsers) UpdateLastLogin(_ context.Context, id int64, ts time.Time) error {
	f.lastLogin[id] = ts
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "school-api-test",
	}
}

func newAuthFixture(t *testing.T) (*AuthService, *fakeAuthUsers) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           5,
		Username:     "kwame",
		Email:        "kwame@school.test",
		PasswordHash: string(hash),
		Name:         "Kwame Asante",
		Role:         models.RoleTeacher,
		IsActive:     true,
	}
	users := &fakeAuthUsers{
		byUsername: map[string]*models.User{"kwame": user},
		activeByID: map[int64]*models.User{5: user},
		lastLogin:  map[int64]time.Time{},
	}
	return NewAuthService(users, testJWTConfig(), nil, nil), users
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, users := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "kwame", Password: "correct horse"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(5), resp.User.ID)
	assert.Contains(t, users.lastLogin, int64(5))

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), claims.UserID)
	assert.Equal(t, "kwame", claims.Username)
	assert.Equal(t, models.RoleTeacher, claims.Role)
	assert.Equal(t, "school-api-test", claims.Issuer)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "kwame", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownUsername(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "correct horse"})
	require.Error(t, err)
	// Indistinguishable from a wrong password.
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, users := newAuthFixture(t)
	users.byUsername["kwame"].IsActive = false

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "kwame", Password: "correct horse"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestLoginMissingFields(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "kwame"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "Password")
}

func TestValidateTokenRejectsTamperedToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "kwame", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.Token + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	svc, users := newAuthFixture(t)

	other := NewAuthService(users, config.JWTConfig{Secret: "other-secret", Expiration: time.Hour, Issuer: "x"}, nil, nil)
	resp, err := other.Login(context.Background(), models.LoginRequest{Username: "kwame", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.Token)
	require.Error(t, err)
}

func TestAuthenticateResolvesCurrentUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "kwame", Password: "correct horse"})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(5), user.ID)
}

func TestAuthenticateRejectsDeactivatedSinceIssue(t *testing.T) {
	svc, users := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "kwame", Password: "correct horse"})
	require.NoError(t, err)

	delete(users.activeByID, 5)
	_, err = svc.Authenticate(context.Background(), resp.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}
