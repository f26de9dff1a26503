package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fredora-academy/school-api/internal/models"
)

// SubjectRepository persists academic subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = `id, name, code, description, is_core, is_active, created_at, updated_at`

// List returns subjects ordered by name. When activeOnly is set, soft-deleted
// subjects are skipped.
func (r *SubjectRepository) List(ctx context.Context, activeOnly bool) ([]models.Subject, error) {
	query := fmt.Sprintf(`SELECT %s FROM subjects ORDER BY name ASC`, subjectColumns)
	if activeOnly {
		query = fmt.Sprintf(`SELECT %s FROM subjects WHERE is_active = TRUE ORDER BY name ASC`, subjectColumns)
	}
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by primary key.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	query := fmt.Sprintf(`SELECT %s FROM subjects WHERE id = $1`, subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsByNameOrCode checks uniqueness, optionally excluding a subject id.
func (r *SubjectRepository) ExistsByNameOrCode(ctx context.Context, name, code string, excludeID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM subjects WHERE (name = $1 OR code = $2) AND id <> $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, name, code, excludeID); err != nil {
		return false, fmt.Errorf("check subject uniqueness: %w", err)
	}
	return count > 0, nil
}

// Create inserts a subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	const query = `INSERT INTO subjects (name, code, description, is_core, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at`
	now := time.Now().UTC()
	row := r.db.QueryRowxContext(ctx, query,
		subject.Name, subject.Code, subject.Description, subject.IsCore, subject.IsActive, now)
	if err := row.Scan(&subject.ID, &subject.CreatedAt, &subject.UpdatedAt); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update persists editable fields of a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	const query = `UPDATE subjects
		SET name = $1, code = $2, description = $3, is_core = $4, is_active = $5, updated_at = $6
		WHERE id = $7`
	subject.UpdatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query,
		subject.Name, subject.Code, subject.Description, subject.IsCore, subject.IsActive, subject.UpdatedAt, subject.ID); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}

// Deactivate soft-deletes the subject so historical grades keep their join.
func (r *SubjectRepository) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE subjects SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate subject: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deactivated subject rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
