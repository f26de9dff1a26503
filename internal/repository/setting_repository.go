package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fredora-academy/school-api/internal/models"
)

// SettingRepository persists school configuration rows.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository constructs the repository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// List returns settings ordered by key. publicOnly hides internal keys for
// unauthenticated consumers.
func (r *SettingRepository) List(ctx context.Context, publicOnly bool) ([]models.Setting, error) {
	query := `SELECT id, key, value, type, description, is_public, created_at, updated_at FROM settings`
	if publicOnly {
		query += ` WHERE is_public = TRUE`
	}
	query += ` ORDER BY key ASC`
	var settings []models.Setting
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return settings, nil
}

// Get returns one setting by key.
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	const query = `SELECT id, key, value, type, description, is_public, created_at, updated_at
FROM settings WHERE key = $1`
	var setting models.Setting
	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

// Set upserts a setting value by key.
func (r *SettingRepository) Set(ctx context.Context, setting *models.Setting) error {
	const query = `INSERT INTO settings (key, value, type, description, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			type = EXCLUDED.type,
			description = COALESCE(EXCLUDED.description, settings.description),
			is_public = EXCLUDED.is_public,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		setting.Key, setting.Value, setting.Type, setting.Description, setting.IsPublic, time.Now().UTC())
	if err := row.Scan(&setting.ID, &setting.CreatedAt, &setting.UpdatedAt); err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}
