package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

// ClassAssignmentRepository is the storage surface for class ownership links.
type ClassAssignmentRepository interface {
	Replace(ctx context.Context, teacherID int64, classIDs []int64) error
	BulkReplace(ctx context.Context, assignments []models.BulkAssignment) error
	ListClassesByTeacher(ctx context.Context, teacherID int64) ([]models.AssignedClass, error)
	HasAssignment(ctx context.Context, teacherID, classID int64) (bool, error)
	AssignedElsewhere(ctx context.Context, classIDs, teacherIDs []int64) ([]int64, error)
	Delete(ctx context.Context, teacherID, classID int64) error
}

// SubjectAssignmentRepository is the storage surface for teaching links.
type SubjectAssignmentRepository interface {
	Exists(ctx context.Context, teacherID, subjectID, classID int64) (bool, error)
	Create(ctx context.Context, assignment *models.SubjectAssignment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, teacherID int64) ([]models.SubjectAssignmentDetail, error)
	SubjectsForTeacherClass(ctx context.Context, teacherID, classID int64) ([]models.Subject, error)
}

// AssignmentTeacherLookup verifies teacher ids before linking.
type AssignmentTeacherLookup interface {
	FindTeacherByID(ctx context.Context, id int64) (*models.User, error)
}

// AssignmentClassLookup verifies class ids before linking.
type AssignmentClassLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
	CountExisting(ctx context.Context, ids []int64) (int, error)
}

// AssignmentSubjectLookup verifies subject ids before linking.
type AssignmentSubjectLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
}

// AssignmentService manages which teachers own which classes and teach which
// subjects.
type AssignmentService struct {
	classLinks   ClassAssignmentRepository
	subjectLinks SubjectAssignmentRepository
	teachers     AssignmentTeacherLookup
	classes      AssignmentClassLookup
	subjects     AssignmentSubjectLookup
	validate     *validator.Validate
	logger       *zap.Logger
}

// NewAssignmentService constructs the service.
func NewAssignmentService(
	classLinks ClassAssignmentRepository,
	subjectLinks SubjectAssignmentRepository,
	teachers AssignmentTeacherLookup,
	classes AssignmentClassLookup,
	subjects AssignmentSubjectLookup,
	validate *validator.Validate,
	logger *zap.Logger,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		classLinks:   classLinks,
		subjectLinks: subjectLinks,
		teachers:     teachers,
		classes:      classes,
		subjects:     subjects,
		validate:     validate,
		logger:       logger,
	}
}

// SetClassAssignments replaces a teacher's class set with exactly the given
// ids. An empty list clears all assignments. The submitted set, not a merge
// with the previous one, becomes the teacher's classes.
func (s *AssignmentService) SetClassAssignments(ctx context.Context, teacherID int64, req models.SetClassAssignmentsRequest) ([]models.AssignedClass, error) {
	if _, err := s.teachers.FindTeacherByID(ctx, teacherID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	if err := s.verifyClassIDs(ctx, req.ClassIDs); err != nil {
		return nil, err
	}
	if err := s.requireUnheld(ctx, dedupe(req.ClassIDs), []int64{teacherID}); err != nil {
		return nil, err
	}
	if err := s.classLinks.Replace(ctx, teacherID, dedupe(req.ClassIDs)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not update assignments")
	}
	s.logger.Info("class assignments replaced",
		zap.Int64("teacher_id", teacherID), zap.Int("class_count", len(req.ClassIDs)))
	return s.MyClasses(ctx, teacherID)
}

// BulkAssign replaces several teachers' class sets atomically.
func (s *AssignmentService) BulkAssign(ctx context.Context, req models.BulkAssignRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.WithFields("invalid bulk assignment payload", validationFields(err)...)
	}
	for _, a := range req.Assignments {
		if _, err := s.teachers.FindTeacherByID(ctx, a.TeacherID); err != nil {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		if err := s.verifyClassIDs(ctx, a.ClassIDs); err != nil {
			return err
		}
	}
	deduped := make([]models.BulkAssignment, 0, len(req.Assignments))
	teacherIDs := make([]int64, 0, len(req.Assignments))
	var allClassIDs []int64
	for _, a := range req.Assignments {
		deduped = append(deduped, models.BulkAssignment{TeacherID: a.TeacherID, ClassIDs: dedupe(a.ClassIDs)})
		teacherIDs = append(teacherIDs, a.TeacherID)
		allClassIDs = append(allClassIDs, a.ClassIDs...)
	}
	if err := s.requireUnheld(ctx, dedupe(allClassIDs), teacherIDs); err != nil {
		return err
	}
	if err := s.classLinks.BulkReplace(ctx, deduped); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not apply bulk assignment")
	}
	s.logger.Info("bulk class assignment applied", zap.Int("teacher_count", len(req.Assignments)))
	return nil
}

// RemoveClassAssignment deletes one teacher-class link.
func (s *AssignmentService) RemoveClassAssignment(ctx context.Context, teacherID, classID int64) error {
	if err := s.classLinks.Delete(ctx, teacherID, classID); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return nil
}

// MyClasses returns the classes assigned to a teacher.
func (s *AssignmentService) MyClasses(ctx context.Context, teacherID int64) ([]models.AssignedClass, error) {
	classes, err := s.classLinks.ListClassesByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list classes")
	}
	if classes == nil {
		classes = []models.AssignedClass{}
	}
	return classes, nil
}

// AssignSubject links a teacher to a subject within a class. The exact triple
// may only exist once.
func (s *AssignmentService) AssignSubject(ctx context.Context, req models.AssignSubjectRequest) (*models.SubjectAssignment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("teacher_id, subject_id and class_id are required", validationFields(err)...)
	}
	if _, err := s.teachers.FindTeacherByID(ctx, req.TeacherID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	exists, err := s.subjectLinks.Exists(ctx, req.TeacherID, req.SubjectID, req.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not verify assignment")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher is already assigned to this subject for this class")
	}

	assignment := &models.SubjectAssignment{
		TeacherID: req.TeacherID,
		SubjectID: req.SubjectID,
		ClassID:   req.ClassID,
		IsActive:  true,
	}
	if err := s.subjectLinks.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not create assignment")
	}
	s.logger.Info("subject assigned",
		zap.Int64("teacher_id", req.TeacherID), zap.Int64("subject_id", req.SubjectID), zap.Int64("class_id", req.ClassID))
	return assignment, nil
}

// RemoveSubjectAssignment deletes a teaching link by id.
func (s *AssignmentService) RemoveSubjectAssignment(ctx context.Context, id int64) error {
	if err := s.subjectLinks.Delete(ctx, id); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
	}
	return nil
}

// ListSubjectAssignments returns teaching links with display names, optionally
// scoped to one teacher.
func (s *AssignmentService) ListSubjectAssignments(ctx context.Context, teacherID int64) ([]models.SubjectAssignmentDetail, error) {
	assignments, err := s.subjectLinks.List(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list assignments")
	}
	if assignments == nil {
		assignments = []models.SubjectAssignmentDetail{}
	}
	return assignments, nil
}

// TeacherClassSubjects returns the subjects a teacher teaches in one class,
// for the grade entry screen.
func (s *AssignmentService) TeacherClassSubjects(ctx context.Context, teacherID, classID int64) ([]models.Subject, error) {
	subjects, err := s.subjectLinks.SubjectsForTeacherClass(ctx, teacherID, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return subjects, nil
}

// requireUnheld rejects class sets containing a class another teacher already
// holds. Classes have a single class teacher.
func (s *AssignmentService) requireUnheld(ctx context.Context, classIDs, teacherIDs []int64) error {
	if len(classIDs) == 0 {
		return nil
	}
	held, err := s.classLinks.AssignedElsewhere(ctx, classIDs, teacherIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not verify class ownership")
	}
	if len(held) > 0 {
		return appErrors.Clone(appErrors.ErrConflict, "one or more classes are already assigned to another teacher")
	}
	return nil
}

func (s *AssignmentService) verifyClassIDs(ctx context.Context, classIDs []int64) error {
	ids := dedupe(classIDs)
	if len(ids) == 0 {
		return nil
	}
	count, err := s.classes.CountExisting(ctx, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not verify classes")
	}
	if count != len(ids) {
		return appErrors.Clone(appErrors.ErrValidation, "one or more classes do not exist")
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
