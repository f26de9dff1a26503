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

type fakeClassLinks struct {
	byTeacher    map[int64][]models.AssignedClass
	owners       map[int64]int64
	replaced     map[int64][]int64
	bulkReplaced []models.BulkAssignment
	deleteErr    error
}

func (f *fakeClassLinks) Replace(_ context.Context, teacherID int64, classIDs []int64) error {
	f.replaced[teacherID] = classIDs
	return nil
}

func (f *fakeClassLinks) BulkReplace(_ context.Context, assignments []models.BulkAssignment) error {
	f.bulkReplaced = assignments
	return nil
}

func (f *fakeClassLinks) ListClassesByTeacher(_ context.Context, teacherID int64) ([]models.AssignedClass, error) {
	return f.byTeacher[teacherID], nil
}

func (f *fakeClassLinks) HasAssignment(_ context.Context, teacherID, classID int64) (bool, error) {
	for _, c := range f.byTeacher[teacherID] {
		if c.ID == classID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeClassLinks) AssignedElsewhere(_ context.Context, classIDs, teacherIDs []int64) ([]int64, error) {
	batch := make(map[int64]bool, len(teacherIDs))
	for _, id := range teacherIDs {
		batch[id] = true
	}
	var held []int64
	for _, classID := range classIDs {
		if owner, ok := f.owners[classID]; ok && !batch[owner] {
			held = append(held, classID)
		}
	}
	return held, nil
}

func (f *fakeClassLinks) Delete(_ context.Context, teacherID, classID int64) error {
	return f.deleteErr
}

type fakeSubjectLinks struct {
	existing map[[3]int64]bool
	created  []models.SubjectAssignment
	listed   []models.SubjectAssignmentDetail
}

func (f *fakeSubjectLinks) Exists(_ context.Context, teacherID, subjectID, classID int64) (bool, error) {
	return f.existing[[3]int64{teacherID, subjectID, classID}], nil
}

func (f *fakeSubjectLinks) Create(_ context.Context, assignment *models.SubjectAssignment) error {
	assignment.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *assignment)
	return nil
}

func (f *fakeSubjectLinks) Delete(_ context.Context, id int64) error {
	return nil
}

func (f *fakeSubjectLinks) List(_ context.Context, teacherID int64) ([]models.SubjectAssignmentDetail, error) {
	return f.listed, nil
}

func (f *fakeSubjectLinks) SubjectsForTeacherClass(_ context.Context, teacherID, classID int64) ([]models.Subject, error) {
	var subjects []models.Subject
	for _, a := range f.created {
		if a.TeacherID == teacherID && a.ClassID == classID {
			subjects = append(subjects, models.Subject{ID: a.SubjectID, IsActive: true})
		}
	}
	return subjects, nil
}

type fakeTeacherLookup struct {
	teachers map[int64]*models.User
}

func (f *fakeTeacherLookup) FindTeacherByID(_ context.Context, id int64) (*models.User, error) {
	teacher, ok := f.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return teacher, nil
}

type fakeAssignClasses struct {
	classes map[int64]*models.Class
}

func (f *fakeAssignClasses) FindByID(_ context.Context, id int64) (*models.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

func (f *fakeAssignClasses) CountExisting(_ context.Context, ids []int64) (int, error) {
	count := 0
	for _, id := range ids {
		if _, ok := f.classes[id]; ok {
			count++
		}
	}
	return count, nil
}

func newAssignmentFixture() (*AssignmentService, *fakeClassLinks, *fakeSubjectLinks) {
	classLinks := &fakeClassLinks{
		byTeacher: map[int64][]models.AssignedClass{},
		owners:    map[int64]int64{},
		replaced:  map[int64][]int64{},
	}
	subjectLinks := &fakeSubjectLinks{existing: map[[3]int64]bool{}}
	teachers := &fakeTeacherLookup{teachers: map[int64]*models.User{
		9: {ID: 9, Name: "Kwame Asante", Role: models.RoleTeacher},
	}}
	classes := &fakeAssignClasses{classes: map[int64]*models.Class{
		1: {ID: 1, Name: "Primary 1", Level: 1, IsActive: true},
		2: {ID: 2, Name: "Primary 2", Level: 2, IsActive: true},
	}}
	subjects := &fakeSubjectLookup{subjects: map[int64]*models.Subject{2: activeSubject(2)}}
	svc := NewAssignmentService(classLinks, subjectLinks, teachers, classes, subjects, nil, nil)
	return svc, classLinks, subjectLinks
}

func TestSetClassAssignmentsReplacesTheSet(t *testing.T) {
	svc, classLinks, _ := newAssignmentFixture()

	_, err := svc.SetClassAssignments(context.Background(), 9, models.SetClassAssignmentsRequest{
		ClassIDs: []int64{1, 2, 1},
	})
	require.NoError(t, err)
	// Duplicates collapse before the write.
	assert.Equal(t, []int64{1, 2}, classLinks.replaced[9])
}

func TestSetClassAssignmentsEmptyClears(t *testing.T) {
	svc, classLinks, _ := newAssignmentFixture()

	_, err := svc.SetClassAssignments(context.Background(), 9, models.SetClassAssignmentsRequest{ClassIDs: []int64{}})
	require.NoError(t, err)
	assert.Empty(t, classLinks.replaced[9])
}

func TestSetClassAssignmentsUnknownClass(t *testing.T) {
	svc, classLinks, _ := newAssignmentFixture()

	_, err := svc.SetClassAssignments(context.Background(), 9, models.SetClassAssignmentsRequest{
		ClassIDs: []int64{1, 99},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, classLinks.replaced)
}

func TestSetClassAssignmentsUnknownTeacher(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	_, err := svc.SetClassAssignments(context.Background(), 77, models.SetClassAssignmentsRequest{ClassIDs: []int64{1}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSetClassAssignmentsRejectsClassHeldByAnotherTeacher(t *testing.T) {
	svc, classLinks, _ := newAssignmentFixture()
	classLinks.owners[2] = 4 // class 2 belongs to teacher 4

	_, err := svc.SetClassAssignments(context.Background(), 9, models.SetClassAssignmentsRequest{
		ClassIDs: []int64{1, 2},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, classLinks.replaced)
}

func TestSetClassAssignmentsKeepingOwnClassSucceeds(t *testing.T) {
	svc, classLinks, _ := newAssignmentFixture()
	classLinks.owners[1] = 9 // already the caller's class

	_, err := svc.SetClassAssignments(context.Background(), 9, models.SetClassAssignmentsRequest{
		ClassIDs: []int64{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, classLinks.replaced[9])
}

func TestBulkAssignValidatesEveryTeacher(t *testing.T) {
	svc, classLinks, _ := newAssignmentFixture()

	err := svc.BulkAssign(context.Background(), models.BulkAssignRequest{
		Assignments: []models.BulkAssignment{
			{TeacherID: 9, ClassIDs: []int64{1}},
			{TeacherID: 77, ClassIDs: []int64{2}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	// Nothing is written when any teacher fails validation.
	assert.Empty(t, classLinks.bulkReplaced)
}

func TestBulkAssignAppliesAll(t *testing.T) {
	svc, classLinks, _ := newAssignmentFixture()

	err := svc.BulkAssign(context.Background(), models.BulkAssignRequest{
		Assignments: []models.BulkAssignment{
			{TeacherID: 9, ClassIDs: []int64{1, 2, 2}},
		},
	})
	require.NoError(t, err)
	require.Len(t, classLinks.bulkReplaced, 1)
	assert.Equal(t, []int64{1, 2}, classLinks.bulkReplaced[0].ClassIDs)
}

func TestAssignSubjectRejectsDuplicateTriple(t *testing.T) {
	svc, _, subjectLinks := newAssignmentFixture()
	subjectLinks.existing[[3]int64{9, 2, 1}] = true

	_, err := svc.AssignSubject(context.Background(), models.AssignSubjectRequest{
		TeacherID: 9, SubjectID: 2, ClassID: 1,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "already assigned")
	assert.Empty(t, subjectLinks.created)
}

func TestAssignSubjectCreatesActiveLink(t *testing.T) {
	svc, _, subjectLinks := newAssignmentFixture()

	assignment, err := svc.AssignSubject(context.Background(), models.AssignSubjectRequest{
		TeacherID: 9, SubjectID: 2, ClassID: 1,
	})
	require.NoError(t, err)
	assert.True(t, assignment.IsActive)
	assert.NotZero(t, assignment.ID)
	require.Len(t, subjectLinks.created, 1)
}

func TestAssignSubjectUnknownSubject(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	_, err := svc.AssignSubject(context.Background(), models.AssignSubjectRequest{
		TeacherID: 9, SubjectID: 404, ClassID: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTeacherClassSubjects(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	_, err := svc.AssignSubject(context.Background(), models.AssignSubjectRequest{
		TeacherID: 9, SubjectID: 2, ClassID: 1,
	})
	require.NoError(t, err)

	subjects, err := svc.TeacherClassSubjects(context.Background(), 9, 1)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, int64(2), subjects[0].ID)

	// Another class yields an empty, non-nil list.
	subjects, err = svc.TeacherClassSubjects(context.Background(), 9, 2)
	require.NoError(t, err)
	assert.NotNil(t, subjects)
	assert.Empty(t, subjects)
}

func TestMyClassesNeverNil(t *testing.T) {
	svc, _, _ := newAssignmentFixture()

	classes, err := svc.MyClasses(context.Background(), 9)
	require.NoError(t, err)
	assert.NotNil(t, classes)
	assert.Empty(t, classes)
}
