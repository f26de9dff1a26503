package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassAssignmentReplaceWritesOnlyTheDiff(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT class_id FROM teacher_class_assignments").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"class_id"}).AddRow(int64(1)).AddRow(int64(2)))
	mock.ExpectExec("DELETE FROM teacher_class_assignments").
		WithArgs(int64(9), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO teacher_class_assignments").
		WithArgs(int64(9), int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Replace(context.Background(), 9, []int64{2, 3})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassAssignmentReplaceEmptyClearsAll(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT class_id FROM teacher_class_assignments").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"class_id"}).AddRow(int64(1)))
	mock.ExpectExec("DELETE FROM teacher_class_assignments").
		WithArgs(int64(9), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Replace(context.Background(), 9, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassAssignmentListClassesByTeacher(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassAssignmentRepository(db)

	mock.ExpectQuery("SELECT c\\.id, c\\.name, c\\.level").
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "level", "capacity", "assigned_at"}).
			AddRow(int64(3), "JHS 1", 10, 30, time.Now()))

	classes, err := repo.ListClassesByTeacher(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "JHS 1", classes[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassAssignmentAssignedElsewhere(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassAssignmentRepository(db)

	mock.ExpectQuery("SELECT DISTINCT class_id FROM teacher_class_assignments").
		WithArgs(int64(1), int64(2), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"class_id"}).AddRow(int64(2)))

	held, err := repo.AssignedElsewhere(context.Background(), []int64{1, 2}, []int64{9})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, held)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassAssignmentHasAssignment(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClassAssignmentRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM teacher_class_assignments").
		WithArgs(int64(9), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	ok, err := repo.HasAssignment(context.Background(), 9, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
