package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredora-academy/school-api/internal/models"
)

func TestStudentCreateContinuesAdmissionSequence(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT student_id FROM students WHERE student_id LIKE").
		WithArgs("FA2026%").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("FA2026014"))
	mock.ExpectQuery("INSERT INTO students").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(20), now, now))
	mock.ExpectCommit()

	student := &models.Student{
		FirstName:      "Ama",
		LastName:       "Mensah",
		DateOfBirth:    time.Date(2015, 4, 2, 0, 0, 0, 0, time.UTC),
		Gender:         "female",
		ClassID:        3,
		EnrollmentDate: time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
		ParentName:     "Kofi Mensah",
		ParentPhone:    "+233241234567",
		Status:         models.StudentActive,
	}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, "FA2026015", student.StudentID)
	assert.Equal(t, int64(20), student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCreateFirstOfTheYear(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT student_id FROM students WHERE student_id LIKE").
		WithArgs("FA2026%").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}))
	mock.ExpectQuery("INSERT INTO students").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))
	mock.ExpectCommit()

	student := &models.Student{
		FirstName:      "Yaw",
		LastName:       "Boateng",
		DateOfBirth:    time.Date(2018, 1, 15, 0, 0, 0, 0, time.UTC),
		Gender:         "male",
		ClassID:        1,
		EnrollmentDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		ParentName:     "Akosua Boateng",
		ParentPhone:    "+233209876543",
		Status:         models.StudentActive,
	}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.Equal(t, "FA2026001", student.StudentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentClassIDOf(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT class_id FROM students").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"class_id"}).AddRow(int64(3)))

	classID, err := repo.ClassIDOf(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), classID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
