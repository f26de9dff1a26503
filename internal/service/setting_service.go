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

// SettingRepository is the storage surface for school configuration.
type SettingRepository interface {
	List(ctx context.Context, publicOnly bool) ([]models.Setting, error)
	Get(ctx context.Context, key string) (*models.Setting, error)
	Set(ctx context.Context, setting *models.Setting) error
}

// SettingService manages typed school configuration values.
type SettingService struct {
	settings SettingRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSettingService constructs the service.
func NewSettingService(settings SettingRepository, validate *validator.Validate, logger *zap.Logger) *SettingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingService{settings: settings, validate: validate, logger: logger}
}

// List returns settings. Non-admin callers only see public keys.
func (s *SettingService) List(ctx context.Context, actor *models.User) ([]models.Setting, error) {
	publicOnly := actor == nil || actor.Role != models.RoleAdmin
	settings, err := s.settings.List(ctx, publicOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list settings")
	}
	if settings == nil {
		settings = []models.Setting{}
	}
	return settings, nil
}

// Get returns one setting by key. Non-admin callers only see public keys.
func (s *SettingService) Get(ctx context.Context, actor *models.User, key string) (*models.Setting, error) {
	setting, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load setting")
	}
	if !setting.IsPublic && (actor == nil || actor.Role != models.RoleAdmin) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "setting not found")
	}
	return setting, nil
}

// Set upserts a setting value.
func (s *SettingService) Set(ctx context.Context, req models.SettingRequest) (*models.Setting, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid setting payload", validationFields(err)...)
	}
	setting := &models.Setting{
		Key:         req.Key,
		Value:       req.Value,
		Type:        req.Type,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if err := s.settings.Set(ctx, setting); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not save setting")
	}
	s.logger.Info("setting updated", zap.String("key", setting.Key))
	return setting, nil
}
