package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fredora-academy/school-api/internal/models"
)

// ClassAssignmentRepository persists teacher-to-class ownership links.
type ClassAssignmentRepository struct {
	db *sqlx.DB
}

// NewClassAssignmentRepository constructs the repository.
func NewClassAssignmentRepository(db *sqlx.DB) *ClassAssignmentRepository {
	return &ClassAssignmentRepository{db: db}
}

// Replace makes classIDs the teacher's complete class set. Existing rows that
// survive the replacement keep their original created_at; only the diff is
// written, all within one transaction.
func (r *ClassAssignmentRepository) Replace(ctx context.Context, teacherID int64, classIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment tx: %w", err)
	}
	defer tx.Rollback()

	if err := replaceClassAssignments(ctx, tx, teacherID, classIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment replace: %w", err)
	}
	return nil
}

// BulkReplace applies Replace for several teachers atomically. Either every
// teacher's set is applied or none is.
func (r *ClassAssignmentRepository) BulkReplace(ctx context.Context, assignments []models.BulkAssignment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk assignment tx: %w", err)
	}
	defer tx.Rollback()

	for _, a := range assignments {
		if err := replaceClassAssignments(ctx, tx, a.TeacherID, a.ClassIDs); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk assignment: %w", err)
	}
	return nil
}

func replaceClassAssignments(ctx context.Context, tx *sqlx.Tx, teacherID int64, classIDs []int64) error {
	var current []int64
	if err := tx.SelectContext(ctx, &current,
		`SELECT class_id FROM teacher_class_assignments WHERE teacher_id = $1 FOR UPDATE`, teacherID); err != nil {
		return fmt.Errorf("load current assignments: %w", err)
	}

	desired := make(map[int64]bool, len(classIDs))
	for _, id := range classIDs {
		desired[id] = true
	}
	existing := make(map[int64]bool, len(current))
	for _, id := range current {
		existing[id] = true
	}

	var toRemove []int64
	for _, id := range current {
		if !desired[id] {
			toRemove = append(toRemove, id)
		}
	}
	if len(toRemove) > 0 {
		query, args, err := sqlx.In(
			`DELETE FROM teacher_class_assignments WHERE teacher_id = ? AND class_id IN (?)`, teacherID, toRemove)
		if err != nil {
			return fmt.Errorf("build assignment delete: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("remove stale assignments: %w", err)
		}
	}

	now := time.Now().UTC()
	for _, id := range classIDs {
		if existing[id] {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO teacher_class_assignments (teacher_id, class_id, created_at) VALUES ($1, $2, $3)`,
			teacherID, id, now); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}
	return nil
}

// AssignedElsewhere returns the subset of classIDs held by teachers outside
// the given set. A class teacher model allows one owner per class, so any hit
// blocks the assignment.
func (r *ClassAssignmentRepository) AssignedElsewhere(ctx context.Context, classIDs, teacherIDs []int64) ([]int64, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT DISTINCT class_id FROM teacher_class_assignments WHERE class_id IN (?) AND teacher_id NOT IN (?)`,
		classIDs, teacherIDs)
	if err != nil {
		return nil, fmt.Errorf("build assignment ownership query: %w", err)
	}
	var held []int64
	if err := r.db.SelectContext(ctx, &held, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("check assignment ownership: %w", err)
	}
	return held, nil
}

// ListClassesByTeacher returns the classes a teacher owns, ordered by level.
func (r *ClassAssignmentRepository) ListClassesByTeacher(ctx context.Context, teacherID int64) ([]models.AssignedClass, error) {
	const query = `
SELECT c.id, c.name, c.level, c.max_students AS capacity, tca.created_at AS assigned_at
FROM teacher_class_assignments tca
JOIN classes c ON c.id = tca.class_id
WHERE tca.teacher_id = $1
ORDER BY c.level ASC, c.name ASC`
	var classes []models.AssignedClass
	if err := r.db.SelectContext(ctx, &classes, query, teacherID); err != nil {
		return nil, fmt.Errorf("list assigned classes: %w", err)
	}
	return classes, nil
}

// HasAssignment reports whether a teacher owns a class. Every teacher-scoped
// grade and attendance write funnels through this check.
func (r *ClassAssignmentRepository) HasAssignment(ctx context.Context, teacherID, classID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM teacher_class_assignments WHERE teacher_id = $1 AND class_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, teacherID, classID); err != nil {
		return false, fmt.Errorf("check class assignment: %w", err)
	}
	return count > 0, nil
}

// Delete removes a single teacher-class link.
func (r *ClassAssignmentRepository) Delete(ctx context.Context, teacherID, classID int64) error {
	const query = `DELETE FROM teacher_class_assignments WHERE teacher_id = $1 AND class_id = $2`
	result, err := r.db.ExecContext(ctx, query, teacherID, classID)
	if err != nil {
		return fmt.Errorf("delete class assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
