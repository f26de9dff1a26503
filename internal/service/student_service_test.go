package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

type fakeStudentRepo struct {
	created  []models.Student
	byID     map[int64]*models.StudentDetail
	statuses map[int64]models.StudentStatus
	promoted map[int64]int64
	enrolled map[int64]int
}

func (f *fakeStudentRepo) List(_ context.Context, _ models.StudentFilter) ([]models.StudentDetail, int, error) {
	out := make([]models.StudentDetail, 0, len(f.byID))
	for _, d := range f.byID {
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (f *fakeStudentRepo) FindByID(_ context.Context, id int64) (*models.StudentDetail, error) {
	detail, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *detail
	return &copied, nil
}

func (f *fakeStudentRepo) CountActiveInClass(_ context.Context, classID int64) (int, error) {
	return f.enrolled[classID], nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) error {
	student.ID = int64(len(f.created) + 1)
	student.StudentID = fmt.Sprintf("FA%d%03d", student.EnrollmentDate.Year(), student.ID)
	f.created = append(f.created, *student)
	return nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student *models.Student) error {
	detail, ok := f.byID[student.ID]
	if !ok {
		return sql.ErrNoRows
	}
	detail.Student = *student
	return nil
}

func (f *fakeStudentRepo) UpdateStatus(_ context.Context, id int64, status models.StudentStatus) error {
	detail, ok := f.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	detail.Status = status
	f.statuses[id] = status
	return nil
}

func (f *fakeStudentRepo) Promote(_ context.Context, id, classID int64) error {
	detail, ok := f.byID[id]
	if !ok {
		return sql.ErrNoRows
	}
	detail.ClassID = classID
	f.promoted[id] = classID
	return nil
}

type fakeStudentClasses struct {
	classes map[int64]*models.Class
	byLevel map[int]*models.Class
}

func (f *fakeStudentClasses) FindByID(_ context.Context, id int64) (*models.Class, error) {
	class, ok := f.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

func (f *fakeStudentClasses) NextLevelClass(_ context.Context, level int) (*models.Class, error) {
	class, ok := f.byLevel[level+1]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

func newStudentFixture() (*StudentService, *fakeStudentRepo, *fakeStudentClasses) {
	repo := &fakeStudentRepo{
		byID:     map[int64]*models.StudentDetail{},
		statuses: map[int64]models.StudentStatus{},
		promoted: map[int64]int64{},
		enrolled: map[int64]int{},
	}
	classes := &fakeStudentClasses{
		classes: map[int64]*models.Class{
			3: {ID: 3, Name: "JHS 1", Level: 10, MaxStudents: 30, IsActive: true},
			4: {ID: 4, Name: "JHS 2", Level: 11, MaxStudents: 30, IsActive: true},
		},
		byLevel: map[int]*models.Class{
			10: {ID: 3, Name: "JHS 1", Level: 10, MaxStudents: 30, IsActive: true},
			11: {ID: 4, Name: "JHS 2", Level: 11, MaxStudents: 30, IsActive: true},
		},
	}
	return NewStudentService(repo, classes, nil, nil), repo, classes
}

func enrollRequest() models.EnrollStudentRequest {
	return models.EnrollStudentRequest{
		FirstName:   "Ama",
		LastName:    "Mensah",
		DateOfBirth: time.Now().UTC().AddDate(-10, 0, 0).Format("2006-01-02"),
		Gender:      "female",
		ClassID:     3,
		ParentName:  "Kofi Mensah",
		ParentPhone: "024 123 4567",
	}
}

func TestNormalizeGhanaPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0241234567", "+233241234567", true},
		{"024 123 4567", "+233241234567", true},
		{"024-123-4567", "+233241234567", true},
		{"+233241234567", "+233241234567", true},
		{"233241234567", "+233241234567", true},
		{"12345", "", false},
		{"+23324123456", "", false},
		{"+2332412345678", "", false},
	}
	for _, tc := range cases {
		got, ok := normalizeGhanaPhone(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestEnrollGeneratesAdmissionNumber(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	student, err := svc.Enroll(context.Background(), enrollRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, student.StudentID)
	assert.Equal(t, models.StudentActive, student.Status)
	assert.Equal(t, "+233241234567", student.ParentPhone)
	require.Len(t, repo.created, 1)
	// The admission number comes from storage, never from the request.
	assert.Equal(t, student.StudentID, repo.created[0].StudentID)
}

func TestEnrollRejectsAgeOutOfRange(t *testing.T) {
	svc, repo, _ := newStudentFixture()

	tooYoung := enrollRequest()
	tooYoung.DateOfBirth = time.Now().UTC().AddDate(-1, 0, 0).Format("2006-01-02")
	_, err := svc.Enroll(context.Background(), tooYoung)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	tooOld := enrollRequest()
	tooOld.DateOfBirth = time.Now().UTC().AddDate(-19, 0, 0).Format("2006-01-02")
	_, err = svc.Enroll(context.Background(), tooOld)
	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestEnrollRejectsBadPhone(t *testing.T) {
	svc, _, _ := newStudentFixture()

	req := enrollRequest()
	req.ParentPhone = "12345"
	_, err := svc.Enroll(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollRejectsFullClass(t *testing.T) {
	svc, repo, _ := newStudentFixture()
	repo.enrolled[3] = 30

	_, err := svc.Enroll(context.Background(), enrollRequest())
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "capacity")
	assert.Empty(t, repo.created)
}

func TestEnrollRejectsInactiveClass(t *testing.T) {
	svc, _, classes := newStudentFixture()
	classes.classes[3].IsActive = false

	_, err := svc.Enroll(context.Background(), enrollRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollUnknownClass(t *testing.T) {
	svc, _, _ := newStudentFixture()

	req := enrollRequest()
	req.ClassID = 99
	_, err := svc.Enroll(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func seedStudent(repo *fakeStudentRepo, id, classID int64, status models.StudentStatus) {
	repo.byID[id] = &models.StudentDetail{
		Student: models.Student{
			ID:             id,
			StudentID:      "FA2026001",
			FirstName:      "Ama",
			LastName:       "Mensah",
			DateOfBirth:    time.Date(2016, 4, 2, 0, 0, 0, 0, time.UTC),
			Gender:         "female",
			ClassID:        classID,
			EnrollmentDate: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			ParentName:     "Kofi Mensah",
			ParentPhone:    "+233241234567",
			Status:         status,
		},
		ClassName: "JHS 1",
	}
}

func TestUpdateKeepsAdmissionNumber(t *testing.T) {
	svc, repo, _ := newStudentFixture()
	seedStudent(repo, 1, 3, models.StudentActive)

	name := "Adwoa"
	updated, err := svc.Update(context.Background(), 1, models.UpdateStudentRequest{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Adwoa", updated.FirstName)
	assert.Equal(t, "FA2026001", updated.StudentID)
}

func TestUpdateNormalizesParentPhone(t *testing.T) {
	svc, repo, _ := newStudentFixture()
	seedStudent(repo, 1, 3, models.StudentActive)

	phone := "0209876543"
	updated, err := svc.Update(context.Background(), 1, models.UpdateStudentRequest{ParentPhone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "+233209876543", updated.ParentPhone)
}

func TestPromoteMovesToNextLevel(t *testing.T) {
	svc, repo, _ := newStudentFixture()
	seedStudent(repo, 1, 3, models.StudentActive)

	promoted, err := svc.Promote(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), promoted.ClassID)
	assert.Equal(t, int64(4), repo.promoted[1])
}

func TestPromoteGraduatesAtTopLevel(t *testing.T) {
	svc, repo, _ := newStudentFixture()
	seedStudent(repo, 1, 4, models.StudentActive)

	promoted, err := svc.Promote(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.StudentGraduated, promoted.Status)
	assert.Empty(t, repo.promoted)
}

func TestPromoteRejectsInactiveStudent(t *testing.T) {
	svc, repo, _ := newStudentFixture()
	seedStudent(repo, 1, 3, models.StudentInactive)

	_, err := svc.Promote(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDeactivateMissingStudent(t *testing.T) {
	svc, _, _ := newStudentFixture()

	err := svc.Deactivate(context.Background(), 42)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
