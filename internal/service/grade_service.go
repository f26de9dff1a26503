package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

const (
	examWeight       = 60.0
	assessmentWeight = 40.0
)

// GradeRepository is the storage surface for graded assessments.
type GradeRepository interface {
	Upsert(ctx context.Context, grade *models.Grade) (string, error)
	FindByID(ctx context.Context, id int64) (*models.Grade, error)
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error)
	UpdateScore(ctx context.Context, id int64, score, maxScore, weighted float64, remarks *string) error
	Delete(ctx context.Context, id int64) error
}

// GradeStudentLookup resolves students for scope checks and rosters.
type GradeStudentLookup interface {
	ClassIDOf(ctx context.Context, id int64) (int64, error)
	ListActiveByClass(ctx context.Context, classID int64) ([]models.Student, error)
}

// GradeScopeChecker answers whether a teacher owns a class.
type GradeScopeChecker interface {
	HasAssignment(ctx context.Context, teacherID, classID int64) (bool, error)
	ListClassesByTeacher(ctx context.Context, teacherID int64) ([]models.AssignedClass, error)
}

// GradeSubjectLookup verifies subjects and lists what a teacher teaches.
type GradeSubjectLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
}

// GradeService records and maintains assessment scores with teacher scoping.
type GradeService struct {
	grades   GradeRepository
	students GradeStudentLookup
	scope    GradeScopeChecker
	subjects GradeSubjectLookup
	validate *validator.Validate
	logger   *zap.Logger
}

// NewGradeService constructs the service.
func NewGradeService(
	grades GradeRepository,
	students GradeStudentLookup,
	scope GradeScopeChecker,
	subjects GradeSubjectLookup,
	validate *validator.Validate,
	logger *zap.Logger,
) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		grades:   grades,
		students: students,
		scope:    scope,
		subjects: subjects,
		validate: validate,
		logger:   logger,
	}
}

// weightedScore projects a raw score onto the 60/40 grading split. Exams are
// worth 60 points, every other assessment category 40.
func weightedScore(assessmentType models.AssessmentType, score, maxScore float64) float64 {
	weight := assessmentWeight
	if assessmentType.IsExam() {
		weight = examWeight
	}
	return score / maxScore * weight
}

// SubmitGrade records one assessment. Resubmitting the same five-part key
// overwrites the earlier score and reports "updated" instead of "created".
// Teachers may only grade students in their assigned classes.
func (s *GradeService) SubmitGrade(ctx context.Context, actor *models.User, req models.GradeRequest) (*models.GradeResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid grade payload", validationFields(err)...)
	}
	assessmentType := models.AssessmentType(strings.ToLower(req.AssessmentType))
	if !assessmentType.Valid() {
		return nil, appErrors.WithFields("unknown assessment type", "assessment_type")
	}
	if req.MaxScore == 0 {
		req.MaxScore = 100
	}
	if req.Score > req.MaxScore {
		return nil, appErrors.WithFields("score cannot exceed max score", "score")
	}

	classID, err := s.students.ClassIDOf(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not resolve student")
	}
	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}
	if !subject.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject is no longer active")
	}
	if err := s.requireClassScope(ctx, actor, classID); err != nil {
		return nil, err
	}

	grade := &models.Grade{
		StudentID:      req.StudentID,
		SubjectID:      req.SubjectID,
		ClassID:        classID,
		Term:           req.Term,
		AcademicYear:   req.AcademicYear,
		AssessmentType: assessmentType,
		Score:          req.Score,
		MaxScore:       req.MaxScore,
		WeightedScore:  weightedScore(assessmentType, req.Score, req.MaxScore),
		Remarks:        req.Remarks,
		RecordedBy:     actor.ID,
	}
	action, err := s.grades.Upsert(ctx, grade)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not save grade")
	}

	s.logger.Info("grade recorded",
		zap.Int64("student_id", grade.StudentID),
		zap.Int64("subject_id", grade.SubjectID),
		zap.String("assessment_type", string(assessmentType)),
		zap.String("action", action))
	return &models.GradeResult{Grade: *grade, Action: action}, nil
}

// BatchSubmit applies grade items in order. The first failure stops
// processing; items already applied are not rolled back, and the response
// names the failing index so the client can resubmit the remainder.
func (s *GradeService) BatchSubmit(ctx context.Context, actor *models.User, req models.BatchGradeRequest) (*models.BatchGradeResult, error) {
	if len(req.Grades) == 0 {
		return nil, appErrors.WithFields("grades must not be empty", "grades")
	}

	result := &models.BatchGradeResult{Results: make([]models.GradeResult, 0, len(req.Grades))}
	for i, item := range req.Grades {
		saved, err := s.SubmitGrade(ctx, actor, item)
		if err != nil {
			idx := i
			result.FailedAt = &idx
			result.Error = fmt.Sprintf("item %d: %s", i, appErrors.FromError(err).Message)
			return result, nil
		}
		result.Results = append(result.Results, *saved)
		result.Processed++
	}
	return result, nil
}

// List returns grades matching the filter. Teachers only ever see grades from
// their assigned classes, whatever the filter says.
func (s *GradeService) List(ctx context.Context, actor *models.User, filter models.GradeFilter) ([]models.GradeDetail, error) {
	if actor.Role == models.RoleTeacher {
		filter.TeacherID = actor.ID
	}
	grades, err := s.grades.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list grades")
	}
	if grades == nil {
		grades = []models.GradeDetail{}
	}
	return grades, nil
}

// UpdateGrade rewrites the score of an existing grade, recomputing the
// weighted value from the grade's stored assessment type.
func (s *GradeService) UpdateGrade(ctx context.Context, actor *models.User, id int64, req models.UpdateGradeRequest) (*models.Grade, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid grade payload", validationFields(err)...)
	}
	if req.Score > req.MaxScore {
		return nil, appErrors.WithFields("score cannot exceed max score", "score")
	}

	grade, err := s.grades.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load grade")
	}
	if err := s.requireClassScope(ctx, actor, grade.ClassID); err != nil {
		return nil, err
	}

	weighted := weightedScore(grade.AssessmentType, req.Score, req.MaxScore)
	if err := s.grades.UpdateScore(ctx, id, req.Score, req.MaxScore, weighted, req.Remarks); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not update grade")
	}

	grade.Score = req.Score
	grade.MaxScore = req.MaxScore
	grade.WeightedScore = weighted
	grade.Remarks = req.Remarks
	return grade, nil
}

// DeleteGrade removes a grade, subject to the same class scoping as writes.
func (s *GradeService) DeleteGrade(ctx context.Context, actor *models.User, id int64) error {
	grade, err := s.grades.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load grade")
	}
	if err := s.requireClassScope(ctx, actor, grade.ClassID); err != nil {
		return err
	}
	if err := s.grades.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not delete grade")
	}
	s.logger.Info("grade deleted", zap.Int64("grade_id", id), zap.Int64("deleted_by", actor.ID))
	return nil
}

// MyStudents returns the roster of every class the teacher owns.
func (s *GradeService) MyStudents(ctx context.Context, teacherID int64) (map[string][]models.Student, error) {
	classes, err := s.scope.ListClassesByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list classes")
	}
	roster := make(map[string][]models.Student, len(classes))
	for _, class := range classes {
		students, err := s.students.ListActiveByClass(ctx, class.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list students")
		}
		if students == nil {
			students = []models.Student{}
		}
		roster[class.Name] = students
	}
	return roster, nil
}

// ClassStudents returns the active students of one class, enforcing teacher
// scope.
func (s *GradeService) ClassStudents(ctx context.Context, actor *models.User, classID int64) ([]models.Student, error) {
	if err := s.requireClassScope(ctx, actor, classID); err != nil {
		return nil, err
	}
	students, err := s.students.ListActiveByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list students")
	}
	if students == nil {
		students = []models.Student{}
	}
	return students, nil
}

// requireClassScope lets admins through and teachers only into classes they
// are assigned to.
func (s *GradeService) requireClassScope(ctx context.Context, actor *models.User, classID int64) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	ok, err := s.scope.HasAssignment(ctx, actor.ID, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not verify class assignment")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this student's class")
	}
	return nil
}
