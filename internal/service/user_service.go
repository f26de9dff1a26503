package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

// UserRepository is the storage surface for teacher account management.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindTeacherByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	ListTeachers(ctx context.Context) ([]models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Deactivate(ctx context.Context, id int64) error
}

// UserClassAssignmentRepository lists a teacher's classes for the combined
// teacher listing.
type UserClassAssignmentRepository interface {
	ListClassesByTeacher(ctx context.Context, teacherID int64) ([]models.AssignedClass, error)
}

// UserService manages teacher accounts. Admin accounts are provisioned by
// migration, never through the API.
type UserService struct {
	users       UserRepository
	assignments UserClassAssignmentRepository
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(users UserRepository, assignments UserClassAssignmentRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, assignments: assignments, validate: validate, logger: logger}
}

// CreateTeacher provisions a teacher account with a bcrypt-hashed password.
func (s *UserService) CreateTeacher(ctx context.Context, req models.CreateTeacherRequest) (*models.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid teacher payload", validationFields(err)...)
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not verify uniqueness")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username or email already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not hash password")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         models.RoleTeacher,
		Phone:        req.Phone,
		Address:      req.Address,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not create teacher")
	}

	s.logger.Info("teacher created", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// ListTeachers returns every teacher together with their assigned classes.
func (s *UserService) ListTeachers(ctx context.Context) ([]models.TeacherWithClasses, error) {
	teachers, err := s.users.ListTeachers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list teachers")
	}

	result := make([]models.TeacherWithClasses, 0, len(teachers))
	for _, t := range teachers {
		classes, err := s.assignments.ListClassesByTeacher(ctx, t.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load assigned classes")
		}
		if classes == nil {
			classes = []models.AssignedClass{}
		}
		result = append(result, models.TeacherWithClasses{
			ID:              t.ID,
			Username:        t.Username,
			Email:           t.Email,
			Name:            t.Name,
			IsActive:        t.IsActive,
			AssignedClasses: classes,
		})
	}
	return result, nil
}

// GetTeacher returns one teacher by id.
func (s *UserService) GetTeacher(ctx context.Context, id int64) (*models.User, error) {
	teacher, err := s.users.FindTeacherByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load teacher")
	}
	return teacher, nil
}

// ResetPassword replaces a teacher's password.
func (s *UserService) ResetPassword(ctx context.Context, id int64, req models.ResetPasswordRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return appErrors.WithFields("password must be at least 8 characters", validationFields(err)...)
	}
	if _, err := s.GetTeacher(ctx, id); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not hash password")
	}
	if err := s.users.UpdatePassword(ctx, id, string(hash)); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not reset password")
	}
	s.logger.Info("password reset", zap.Int64("user_id", id))
	return nil
}

// DeactivateTeacher soft-deletes a teacher account. The next request the
// teacher makes fails authentication.
func (s *UserService) DeactivateTeacher(ctx context.Context, id int64) error {
	if _, err := s.GetTeacher(ctx, id); err != nil {
		return err
	}
	if err := s.users.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not deactivate teacher")
	}
	s.logger.Info("teacher deactivated", zap.Int64("user_id", id))
	return nil
}
