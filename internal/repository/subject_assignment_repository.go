package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fredora-academy/school-api/internal/models"
)

// SubjectAssignmentRepository persists teacher-subject-class teaching links.
type SubjectAssignmentRepository struct {
	db *sqlx.DB
}

// NewSubjectAssignmentRepository constructs the repository.
func NewSubjectAssignmentRepository(db *sqlx.DB) *SubjectAssignmentRepository {
	return &SubjectAssignmentRepository{db: db}
}

// Exists reports whether the exact (teacher, subject, class) triple is already
// assigned.
func (r *SubjectAssignmentRepository) Exists(ctx context.Context, teacherID, subjectID, classID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM teacher_subject_assignments
WHERE teacher_id = $1 AND subject_id = $2 AND class_id = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, teacherID, subjectID, classID); err != nil {
		return false, fmt.Errorf("check subject assignment: %w", err)
	}
	return count > 0, nil
}

// Create inserts a subject assignment.
func (r *SubjectAssignmentRepository) Create(ctx context.Context, assignment *models.SubjectAssignment) error {
	const query = `INSERT INTO teacher_subject_assignments (teacher_id, subject_id, class_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		assignment.TeacherID, assignment.SubjectID, assignment.ClassID, assignment.IsActive, time.Now().UTC())
	if err := row.Scan(&assignment.ID, &assignment.CreatedAt); err != nil {
		return fmt.Errorf("create subject assignment: %w", err)
	}
	return nil
}

// Delete removes a subject assignment by id.
func (r *SubjectAssignmentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM teacher_subject_assignments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete subject assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted subject assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns active subject assignments with display names joined in,
// optionally filtered by teacher.
func (r *SubjectAssignmentRepository) List(ctx context.Context, teacherID int64) ([]models.SubjectAssignmentDetail, error) {
	query := `
SELECT tsa.id, tsa.teacher_id, tsa.subject_id, tsa.class_id, tsa.is_active, tsa.created_at,
       s.name AS subject_name, s.code AS subject_code,
       c.name AS class_name, c.level AS class_level,
       u.name AS teacher_name, u.username AS teacher_username
FROM teacher_subject_assignments tsa
JOIN subjects s ON s.id = tsa.subject_id
JOIN classes c ON c.id = tsa.class_id
JOIN users u ON u.id = tsa.teacher_id
WHERE tsa.is_active = TRUE`
	var args []interface{}
	if teacherID > 0 {
		args = append(args, teacherID)
		query += fmt.Sprintf(" AND tsa.teacher_id = $%d", len(args))
	}
	query += " ORDER BY c.level ASC, s.name ASC"

	var assignments []models.SubjectAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list subject assignments: %w", err)
	}
	return assignments, nil
}

// SubjectsForTeacherClass returns the subjects a teacher teaches in a class.
func (r *SubjectAssignmentRepository) SubjectsForTeacherClass(ctx context.Context, teacherID, classID int64) ([]models.Subject, error) {
	const query = `
SELECT s.id, s.name, s.code, s.description, s.is_core, s.is_active, s.created_at, s.updated_at
FROM teacher_subject_assignments tsa
JOIN subjects s ON s.id = tsa.subject_id
WHERE tsa.teacher_id = $1 AND tsa.class_id = $2 AND tsa.is_active = TRUE AND s.is_active = TRUE
ORDER BY s.name ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, teacherID, classID); err != nil {
		return nil, fmt.Errorf("list teacher class subjects: %w", err)
	}
	return subjects, nil
}
