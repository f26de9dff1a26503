package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

// SubjectRepository is the storage surface for subject management.
type SubjectRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.Subject, error)
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
	ExistsByNameOrCode(ctx context.Context, name, code string, excludeID int64) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
	Deactivate(ctx context.Context, id int64) error
}

// SubjectGradeIndex reports whether recorded grades reference a subject.
type SubjectGradeIndex interface {
	HasForSubject(ctx context.Context, subjectID int64) (bool, error)
}

// SubjectService manages the subject catalogue. Deleting a subject always
// deactivates it so historical grades keep resolving.
type SubjectService struct {
	subjects SubjectRepository
	grades   SubjectGradeIndex
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSubjectService constructs the service.
func NewSubjectService(subjects SubjectRepository, grades SubjectGradeIndex, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{subjects: subjects, grades: grades, validate: validate, logger: logger}
}

// List returns subjects, optionally restricted to active ones.
func (s *SubjectService) List(ctx context.Context, activeOnly bool) ([]models.Subject, error) {
	subjects, err := s.subjects.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	return subjects, nil
}

// Get returns one subject.
func (s *SubjectService) Get(ctx context.Context, id int64) (*models.Subject, error) {
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load subject")
	}
	return subject, nil
}

// Create adds a subject. Both name and code are unique.
func (s *SubjectService) Create(ctx context.Context, req models.SubjectRequest) (*models.Subject, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid subject payload", validationFields(err)...)
	}
	taken, err := s.subjects.ExistsByNameOrCode(ctx, req.Name, req.Code, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not verify subject uniqueness")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a subject with this name or code already exists")
	}

	subject := &models.Subject{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		IsCore:      req.IsCore,
		IsActive:    true,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not create subject")
	}
	s.logger.Info("subject created", zap.Int64("id", subject.ID), zap.String("code", subject.Code))
	return subject, nil
}

// Update edits a subject.
func (s *SubjectService) Update(ctx context.Context, id int64, req models.SubjectRequest) (*models.Subject, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid subject payload", validationFields(err)...)
	}
	subject, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.subjects.ExistsByNameOrCode(ctx, req.Name, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not verify subject uniqueness")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a subject with this name or code already exists")
	}

	subject.Name = req.Name
	subject.Code = req.Code
	subject.Description = req.Description
	subject.IsCore = req.IsCore
	if err := s.subjects.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not update subject")
	}
	return subject, nil
}

// Delete soft-deletes a subject. The returned flag tells the caller whether
// recorded grades still reference it, so the response can say the history
// is kept.
func (s *SubjectService) Delete(ctx context.Context, id int64) (bool, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}
	graded, err := s.grades.HasForSubject(ctx, id)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not check subject grades")
	}
	if err := s.subjects.Deactivate(ctx, id); err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not delete subject")
	}
	s.logger.Info("subject deactivated", zap.Int64("id", id), zap.Bool("has_grades", graded))
	return graded, nil
}
