package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fredora-academy/school-api/internal/models"
)

// ClassRepository persists academic classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns every class with its active student count, ordered by level.
func (r *ClassRepository) List(ctx context.Context) ([]models.ClassWithCount, error) {
	const query = `
SELECT c.id, c.name, c.display_name, c.level, c.description, c.max_students, c.is_active, c.created_at, c.updated_at,
       COUNT(s.id) FILTER (WHERE s.status = 'active') AS student_count
FROM classes c
LEFT JOIN students s ON s.class_id = c.id
GROUP BY c.id
ORDER BY c.level ASC, c.name ASC`
	var classes []models.ClassWithCount
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class by primary key.
func (r *ClassRepository) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	const query = `SELECT id, name, display_name, level, description, max_students, is_active, created_at, updated_at
FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// CountExisting returns how many of the given ids are present.
func (r *ClassRepository) CountExisting(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`SELECT COUNT(*) FROM classes WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("build class count query: %w", err)
	}
	query = r.db.Rebind(query)
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return count, nil
}

// ExistsByName checks name uniqueness, optionally excluding a class id.
func (r *ClassRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM classes WHERE name = $1 AND id <> $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, name, excludeID); err != nil {
		return false, fmt.Errorf("check class name: %w", err)
	}
	return count > 0, nil
}

// Create inserts a class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	const query = `INSERT INTO classes (name, display_name, level, description, max_students, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at`
	now := time.Now().UTC()
	row := r.db.QueryRowxContext(ctx, query,
		class.Name, class.DisplayName, class.Level, class.Description, class.MaxStudents, class.IsActive, now)
	if err := row.Scan(&class.ID, &class.CreatedAt, &class.UpdatedAt); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update persists editable fields of a class.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	const query = `UPDATE classes
		SET name = $1, display_name = $2, level = $3, description = $4, max_students = $5, is_active = $6, updated_at = $7
		WHERE id = $8`
	class.UpdatedAt = time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query,
		class.Name, class.DisplayName, class.Level, class.Description, class.MaxStudents, class.IsActive, class.UpdatedAt, class.ID); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class. Callers must verify no active students remain.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM classes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted class rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// NextLevelClass returns the class one level above the given one, used for
// student promotion. sql.ErrNoRows means the student is at the top level.
func (r *ClassRepository) NextLevelClass(ctx context.Context, level int) (*models.Class, error) {
	const query = `SELECT id, name, display_name, level, description, max_students, is_active, created_at, updated_at
FROM classes WHERE level > $1 AND is_active = TRUE ORDER BY level ASC LIMIT 1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, level); err != nil {
		return nil, err
	}
	return &class, nil
}
