package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

type fakeSubjectStore struct {
	subjects    map[int64]*models.Subject
	taken       bool
	deactivated []int64
}

func (f *fakeSubjectStore) List(_ context.Context, activeOnly bool) ([]models.Subject, error) {
	var out []models.Subject
	for _, s := range f.subjects {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeSubjectStore) FindByID(_ context.Context, id int64) (*models.Subject, error) {
	subject, ok := f.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func (f *fakeSubjectStore) ExistsByNameOrCode(_ context.Context, _, _ string, _ int64) (bool, error) {
	return f.taken, nil
}

func (f *fakeSubjectStore) Create(_ context.Context, subject *models.Subject) error {
	subject.ID = int64(len(f.subjects) + 1)
	f.subjects[subject.ID] = subject
	return nil
}

func (f *fakeSubjectStore) Update(_ context.Context, subject *models.Subject) error {
	f.subjects[subject.ID] = subject
	return nil
}

func (f *fakeSubjectStore) Deactivate(_ context.Context, id int64) error {
	f.deactivated = append(f.deactivated, id)
	f.subjects[id].IsActive = false
	return nil
}

type fakeSubjectGrades struct {
	graded map[int64]bool
}

func (f *fakeSubjectGrades) HasForSubject(_ context.Context, subjectID int64) (bool, error) {
	return f.graded[subjectID], nil
}

func newSubjectFixture() (*SubjectService, *fakeSubjectStore, *fakeSubjectGrades) {
	store := &fakeSubjectStore{subjects: map[int64]*models.Subject{
		2: {ID: 2, Name: "Mathematics", Code: "MATH", IsCore: true, IsActive: true},
	}}
	grades := &fakeSubjectGrades{graded: map[int64]bool{}}
	svc := NewSubjectService(store, grades, nil, nil)
	return svc, store, grades
}

func TestCreateSubjectRejectsDuplicateCode(t *testing.T) {
	svc, store, _ := newSubjectFixture()
	store.taken = true

	_, err := svc.Create(context.Background(), models.SubjectRequest{Name: "Maths", Code: "MATH"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestDeleteSubjectReportsRetainedGrades(t *testing.T) {
	svc, store, grades := newSubjectFixture()
	grades.graded[2] = true

	retained, err := svc.Delete(context.Background(), 2)
	require.NoError(t, err)
	assert.True(t, retained)
	// Delete is always a deactivation so grade history keeps resolving.
	assert.Equal(t, []int64{2}, store.deactivated)
	assert.False(t, store.subjects[2].IsActive)
}

func TestDeleteSubjectWithoutGrades(t *testing.T) {
	svc, store, _ := newSubjectFixture()

	retained, err := svc.Delete(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, retained)
	assert.Equal(t, []int64{2}, store.deactivated)
}

func TestDeleteUnknownSubject(t *testing.T) {
	svc, store, _ := newSubjectFixture()

	_, err := svc.Delete(context.Background(), 404)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.deactivated)
}
