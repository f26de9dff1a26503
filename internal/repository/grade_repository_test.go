package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredora-academy/school-api/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestGradeRepositoryUpsertCreated(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGradeRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO grades").
		WithArgs(int64(1), int64(2), int64(3), "Term 1", 2026, models.AssessmentExam,
			45.0, 50.0, 54.0, nil, int64(9), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "inserted"}).
			AddRow(int64(7), now, now, true))

	grade := &models.Grade{
		StudentID:      1,
		SubjectID:      2,
		ClassID:        3,
		Term:           "Term 1",
		AcademicYear:   2026,
		AssessmentType: models.AssessmentExam,
		Score:          45,
		MaxScore:       50,
		WeightedScore:  54,
		RecordedBy:     9,
	}
	action, err := repo.Upsert(context.Background(), grade)
	require.NoError(t, err)
	assert.Equal(t, "created", action)
	assert.Equal(t, int64(7), grade.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryUpsertUpdated(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGradeRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("INSERT INTO grades").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "inserted"}).
			AddRow(int64(7), now.Add(-time.Hour), now, false))

	grade := &models.Grade{
		StudentID:      1,
		SubjectID:      2,
		ClassID:        3,
		Term:           "Term 1",
		AcademicYear:   2026,
		AssessmentType: models.AssessmentContinuous,
		Score:          30,
		MaxScore:       40,
		WeightedScore:  30,
		RecordedBy:     9,
	}
	action, err := repo.Upsert(context.Background(), grade)
	require.NoError(t, err)
	assert.Equal(t, "updated", action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListScopesToTeacher(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "student_id", "subject_id", "class_id", "term", "academic_year", "assessment_type",
		"score", "max_score", "weighted_score", "remarks", "recorded_by", "created_at", "updated_at",
		"student_name", "admission_number", "subject_name", "class_name",
	}).AddRow(int64(1), int64(10), int64(2), int64(3), "Term 1", 2026, "exam",
		45.0, 50.0, 54.0, nil, int64(9), time.Now(), time.Now(),
		"Ama Mensah", "FA2026001", "Mathematics", "JHS 1")

	mock.ExpectQuery("SELECT g\\.id, g\\.student_id").
		WithArgs("Term 1", int64(9)).
		WillReturnRows(rows)

	grades, err := repo.List(context.Background(), models.GradeFilter{Term: "Term 1", TeacherID: 9})
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, "Ama Mensah", grades[0].StudentName)
	assert.Equal(t, "FA2026001", grades[0].AdmissionNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListByStudentSkipsEmptyFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "student_id", "subject_id", "class_id", "term", "academic_year", "assessment_type",
		"score", "max_score", "weighted_score", "remarks", "recorded_by", "created_at", "updated_at",
		"student_name", "admission_number", "subject_name", "class_name",
	}).AddRow(int64(1), int64(10), int64(2), int64(3), "Term 1", 2025, "exam",
		45.0, 50.0, 54.0, nil, int64(9), time.Now(), time.Now(),
		"Ama Mensah", "FA2025001", "Mathematics", "JHS 1").
		AddRow(int64(2), int64(10), int64(2), int64(3), "Term 2", 2026, "exam",
			40.0, 50.0, 48.0, nil, int64(9), time.Now(), time.Now(),
			"Ama Mensah", "FA2025001", "Mathematics", "JHS 1")

	// Only the student id binds when term and year are left blank.
	mock.ExpectQuery("SELECT g\\.id, g\\.student_id").
		WithArgs(int64(10)).
		WillReturnRows(rows)

	grades, err := repo.ListByStudentTerm(context.Background(), 10, "", 0)
	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.Equal(t, "Term 1", grades[0].Term)
	assert.Equal(t, "Term 2", grades[1].Term)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListByStudentTermFiltered(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGradeRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "student_id", "subject_id", "class_id", "term", "academic_year", "assessment_type",
		"score", "max_score", "weighted_score", "remarks", "recorded_by", "created_at", "updated_at",
		"student_name", "admission_number", "subject_name", "class_name",
	}).AddRow(int64(1), int64(10), int64(2), int64(3), "Term 1", 2026, "exam",
		45.0, 50.0, 54.0, nil, int64(9), time.Now(), time.Now(),
		"Ama Mensah", "FA2026001", "Mathematics", "JHS 1")

	mock.ExpectQuery("SELECT g\\.id, g\\.student_id").
		WithArgs(int64(10), "Term 1", 2026).
		WillReturnRows(rows)

	grades, err := repo.ListByStudentTerm(context.Background(), 10, "Term 1", 2026)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGradeRepository(db)

	mock.ExpectExec("DELETE FROM grades").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 42)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
