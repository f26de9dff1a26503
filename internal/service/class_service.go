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

// ClassRepository is the storage surface for class management.
type ClassRepository interface {
	List(ctx context.Context) ([]models.ClassWithCount, error)
	FindByID(ctx context.Context, id int64) (*models.Class, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id int64) error
}

// ClassEnrollmentCounter checks a class is empty before deletion.
type ClassEnrollmentCounter interface {
	CountActiveInClass(ctx context.Context, classID int64) (int, error)
}

// ClassService manages academic classes.
type ClassService struct {
	classes    ClassRepository
	enrollment ClassEnrollmentCounter
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewClassService constructs the service.
func NewClassService(classes ClassRepository, enrollment ClassEnrollmentCounter, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, enrollment: enrollment, validate: validate, logger: logger}
}

// List returns every class with its enrollment count.
func (s *ClassService) List(ctx context.Context) ([]models.ClassWithCount, error) {
	classes, err := s.classes.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list classes")
	}
	if classes == nil {
		classes = []models.ClassWithCount{}
	}
	return classes, nil
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, id int64) (*models.Class, error) {
	class, err := s.classes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load class")
	}
	return class, nil
}

// Create adds a class. Names are unique across the school.
func (s *ClassService) Create(ctx context.Context, req models.ClassRequest) (*models.Class, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid class payload", validationFields(err)...)
	}
	taken, err := s.classes.ExistsByName(ctx, req.Name, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not verify class name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a class with this name already exists")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	class := &models.Class{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Level:       req.Level,
		Description: req.Description,
		MaxStudents: req.MaxStudents,
		IsActive:    active,
	}
	if err := s.classes.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not create class")
	}
	s.logger.Info("class created", zap.Int64("id", class.ID), zap.String("name", class.Name))
	return class, nil
}

// Update edits a class.
func (s *ClassService) Update(ctx context.Context, id int64, req models.ClassRequest) (*models.Class, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid class payload", validationFields(err)...)
	}
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	taken, err := s.classes.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not verify class name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a class with this name already exists")
	}

	class.Name = req.Name
	class.DisplayName = req.DisplayName
	class.Level = req.Level
	class.Description = req.Description
	class.MaxStudents = req.MaxStudents
	if req.IsActive != nil {
		class.IsActive = *req.IsActive
	}
	if err := s.classes.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not update class")
	}
	return class, nil
}

// Delete removes an empty class. Classes with active students are rejected.
func (s *ClassService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	enrolled, err := s.enrollment.CountActiveInClass(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not check enrollment")
	}
	if enrolled > 0 {
		return appErrors.Clone(appErrors.ErrValidation, "class still has active students")
	}
	if err := s.classes.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not delete class")
	}
	s.logger.Info("class deleted", zap.Int64("id", id))
	return nil
}
