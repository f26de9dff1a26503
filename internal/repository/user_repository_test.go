package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredora-academy/school-api/internal/models"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "username", "email", "password_hash", "name", "role", "phone", "address",
		"profile_photo", "is_active", "last_login", "created_at", "updated_at",
	})
}

func TestUserRepositoryFindActiveByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id = \\$1 AND is_active = TRUE").
		WithArgs(int64(5)).
		WillReturnRows(userRows().AddRow(int64(5), "kwame", "kwame@school.test", "hash", "Kwame Asante",
			"teacher", nil, nil, nil, true, nil, time.Now(), time.Now()))

	user, err := repo.FindActiveByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.Role)
	assert.True(t, user.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindActiveByIDDeactivated(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id = \\$1 AND is_active = TRUE").
		WithArgs(int64(5)).
		WillReturnRows(userRows())

	_, err := repo.FindActiveByID(context.Background(), 5)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("ama", "ama@school.test", "hash", "Ama Owusu", models.RoleTeacher,
			nil, nil, true, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))

	user := &models.User{
		Username:     "ama",
		Email:        "ama@school.test",
		PasswordHash: "hash",
		Name:         "Ama Owusu",
		Role:         models.RoleTeacher,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(11), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeactivateMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET is_active = FALSE").
		WithArgs(sqlmock.AnyArg(), int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
