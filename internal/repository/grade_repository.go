package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fredora-academy/school-api/internal/models"
)

// GradeRepository persists graded assessments.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Upsert inserts the grade or, when the five-part assessment key already
// exists, updates score, max score, weighted score and remarks in place. The
// whole operation is a single statement so concurrent submissions cannot
// race. xmax = 0 distinguishes a fresh insert from an overwrite.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.Grade) (string, error) {
	const query = `INSERT INTO grades
		(student_id, subject_id, class_id, term, academic_year, assessment_type,
		 score, max_score, weighted_score, remarks, recorded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		ON CONFLICT (student_id, subject_id, term, academic_year, assessment_type) DO UPDATE SET
			score = EXCLUDED.score,
			max_score = EXCLUDED.max_score,
			weighted_score = EXCLUDED.weighted_score,
			remarks = EXCLUDED.remarks,
			recorded_by = EXCLUDED.recorded_by,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`
	var inserted bool
	row := r.db.QueryRowxContext(ctx, query,
		grade.StudentID, grade.SubjectID, grade.ClassID, grade.Term, grade.AcademicYear, grade.AssessmentType,
		grade.Score, grade.MaxScore, grade.WeightedScore, grade.Remarks, grade.RecordedBy, time.Now().UTC())
	if err := row.Scan(&grade.ID, &grade.CreatedAt, &grade.UpdatedAt, &inserted); err != nil {
		return "", fmt.Errorf("upsert grade: %w", err)
	}
	if inserted {
		return "created", nil
	}
	return "updated", nil
}

// FindByID returns a grade by primary key.
func (r *GradeRepository) FindByID(ctx context.Context, id int64) (*models.Grade, error) {
	const query = `SELECT id, student_id, subject_id, class_id, term, academic_year, assessment_type,
		score, max_score, weighted_score, remarks, recorded_by, created_at, updated_at
		FROM grades WHERE id = $1`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// List returns grades matching the filter with display fields joined in.
// A non-zero TeacherID restricts rows to classes that teacher owns.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, error) {
	where := []string{"1=1"}
	var args []interface{}
	if filter.StudentID > 0 {
		args = append(args, filter.StudentID)
		where = append(where, fmt.Sprintf("g.student_id = $%d", len(args)))
	}
	if filter.SubjectID > 0 {
		args = append(args, filter.SubjectID)
		where = append(where, fmt.Sprintf("g.subject_id = $%d", len(args)))
	}
	if filter.ClassID > 0 {
		args = append(args, filter.ClassID)
		where = append(where, fmt.Sprintf("g.class_id = $%d", len(args)))
	}
	if filter.Term != "" {
		args = append(args, filter.Term)
		where = append(where, fmt.Sprintf("g.term = $%d", len(args)))
	}
	if filter.AcademicYear > 0 {
		args = append(args, filter.AcademicYear)
		where = append(where, fmt.Sprintf("g.academic_year = $%d", len(args)))
	}
	if filter.TeacherID > 0 {
		args = append(args, filter.TeacherID)
		where = append(where, fmt.Sprintf(
			"g.class_id IN (SELECT class_id FROM teacher_class_assignments WHERE teacher_id = $%d)", len(args)))
	}

	query := fmt.Sprintf(`
SELECT g.id, g.student_id, g.subject_id, g.class_id, g.term, g.academic_year, g.assessment_type,
       g.score, g.max_score, g.weighted_score, g.remarks, g.recorded_by, g.created_at, g.updated_at,
       st.first_name || ' ' || st.last_name AS student_name, st.student_id AS admission_number,
       sub.name AS subject_name, c.name AS class_name
FROM grades g
JOIN students st ON st.id = g.student_id
JOIN subjects sub ON sub.id = g.subject_id
JOIN classes c ON c.id = g.class_id
WHERE %s
ORDER BY st.last_name ASC, sub.name ASC, g.assessment_type ASC`, strings.Join(where, " AND "))

	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// ListByStudentTerm returns a student's grades joined with subject names.
// An empty term or zero year drops that filter, so report generation can
// cover the student's whole history.
func (r *GradeRepository) ListByStudentTerm(ctx context.Context, studentID int64, term string, year int) ([]models.GradeDetail, error) {
	where := []string{"g.student_id = $1"}
	args := []interface{}{studentID}
	if term != "" {
		args = append(args, term)
		where = append(where, fmt.Sprintf("g.term = $%d", len(args)))
	}
	if year > 0 {
		args = append(args, year)
		where = append(where, fmt.Sprintf("g.academic_year = $%d", len(args)))
	}

	query := fmt.Sprintf(`
SELECT g.id, g.student_id, g.subject_id, g.class_id, g.term, g.academic_year, g.assessment_type,
       g.score, g.max_score, g.weighted_score, g.remarks, g.recorded_by, g.created_at, g.updated_at,
       st.first_name || ' ' || st.last_name AS student_name, st.student_id AS admission_number,
       sub.name AS subject_name, c.name AS class_name
FROM grades g
JOIN students st ON st.id = g.student_id
JOIN subjects sub ON sub.id = g.subject_id
JOIN classes c ON c.id = g.class_id
WHERE %s
ORDER BY sub.name ASC, g.academic_year ASC, g.term ASC, g.assessment_type ASC`, strings.Join(where, " AND "))

	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return grades, nil
}

// UpdateScore rewrites the score fields of an existing grade.
func (r *GradeRepository) UpdateScore(ctx context.Context, id int64, score, maxScore, weighted float64, remarks *string) error {
	const query = `UPDATE grades SET score = $1, max_score = $2, weighted_score = $3, remarks = $4, updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query, score, maxScore, weighted, remarks, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated grade rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a grade.
func (r *GradeRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM grades WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted grade rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// HasForSubject reports whether any grade references the subject. Subjects
// with history are soft deleted rather than removed.
func (r *GradeRepository) HasForSubject(ctx context.Context, subjectID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM grades WHERE subject_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, subjectID); err != nil {
		return false, fmt.Errorf("check subject grades: %w", err)
	}
	return count > 0, nil
}
