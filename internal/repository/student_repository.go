package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fredora-academy/school-api/internal/models"
)

// StudentRepository persists students and owns admission number generation.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, student_id, first_name, last_name, middle_name, date_of_birth, gender, class_id,
	enrollment_date, photo, address, phone, email, parent_name, parent_phone, parent_email, parent_occupation,
	emergency_contact_name, emergency_contact_phone, medical_conditions, allergies, blood_group, special_needs,
	previous_school, admission_score, status, notes, created_at, updated_at`

// List returns students matching the filter plus a total count. Rows carry
// the class name for display.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	where := []string{"1=1"}
	var args []interface{}
	if filter.ClassID > 0 {
		args = append(args, filter.ClassID)
		where = append(where, fmt.Sprintf("s.class_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("s.status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(s.first_name ILIKE $%d OR s.last_name ILIKE $%d OR s.student_id ILIKE $%d)",
			len(args), len(args), len(args)))
	}
	clause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM students s WHERE %s`, clause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	args = append(args, size, (page-1)*size)
	query := fmt.Sprintf(`SELECT %s, c.name AS class_name
FROM students s
JOIN classes c ON c.id = s.class_id
WHERE %s
ORDER BY s.last_name ASC, s.first_name ASC
LIMIT $%d OFFSET $%d`, prefixColumns(studentColumns, "s"), clause, len(args)-1, len(args))

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	return students, total, nil
}

// FindByID returns a student with the class name joined in.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, c.name AS class_name
FROM students s
JOIN classes c ON c.id = s.class_id
WHERE s.id = $1`, prefixColumns(studentColumns, "s"))
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ClassIDOf returns the class a student belongs to. Teacher scope checks key
// off this value.
func (r *StudentRepository) ClassIDOf(ctx context.Context, id int64) (int64, error) {
	const query = `SELECT class_id FROM students WHERE id = $1`
	var classID int64
	if err := r.db.GetContext(ctx, &classID, query, id); err != nil {
		return 0, err
	}
	return classID, nil
}

// CountActiveInClass returns the current enrollment of a class.
func (r *StudentRepository) CountActiveInClass(ctx context.Context, classID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE class_id = $1 AND status = 'active'`
	var count int
	if err := r.db.GetContext(ctx, &count, query, classID); err != nil {
		return 0, fmt.Errorf("count class enrollment: %w", err)
	}
	return count, nil
}

// Create inserts a student, generating the FA<year><seq> admission number
// inside the same transaction so concurrent enrollments never collide.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment tx: %w", err)
	}
	defer tx.Rollback()

	studentID, err := nextStudentID(ctx, tx, student.EnrollmentDate.Year())
	if err != nil {
		return err
	}
	student.StudentID = studentID

	const query = `INSERT INTO students (student_id, first_name, last_name, middle_name, date_of_birth, gender, class_id,
		enrollment_date, photo, address, phone, email, parent_name, parent_phone, parent_email, parent_occupation,
		emergency_contact_name, emergency_contact_phone, medical_conditions, allergies, blood_group, special_needs,
		previous_school, admission_score, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $27)
		RETURNING id, created_at, updated_at`
	now := time.Now().UTC()
	row := tx.QueryRowxContext(ctx, query,
		student.StudentID, student.FirstName, student.LastName, student.MiddleName,
		student.DateOfBirth, student.Gender, student.ClassID, student.EnrollmentDate,
		student.Photo, student.Address, student.Phone, student.Email,
		student.ParentName, student.ParentPhone, student.ParentEmail, student.ParentOccupation,
		student.EmergencyContactName, student.EmergencyContactPhone,
		student.MedicalConditions, student.Allergies, student.BloodGroup, student.SpecialNeeds,
		student.PreviousSchool, student.AdmissionScore, student.Status, student.Notes, now)
	if err := row.Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment: %w", err)
	}
	return nil
}

// nextStudentID continues the FA<year> sequence from the year's current max.
// The row lock serialises concurrent enrollments within a year.
func nextStudentID(ctx context.Context, tx *sqlx.Tx, year int) (string, error) {
	prefix := fmt.Sprintf("FA%d", year)
	const query = `SELECT student_id FROM students WHERE student_id LIKE $1 ORDER BY student_id DESC LIMIT 1 FOR UPDATE`
	var last string
	err := tx.GetContext(ctx, &last, query, prefix+"%")
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("find last admission number: %w", err)
	}
	seq := 1
	if last != "" {
		n, convErr := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if convErr != nil {
			return "", fmt.Errorf("parse admission number %q: %w", last, convErr)
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// Update persists editable fields of a student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET
		first_name = $1, last_name = $2, middle_name = $3, date_of_birth = $4, gender = $5, class_id = $6,
		photo = $7, address = $8, phone = $9, email = $10,
		parent_name = $11, parent_phone = $12, parent_email = $13, parent_occupation = $14,
		emergency_contact_name = $15, emergency_contact_phone = $16,
		medical_conditions = $17, allergies = $18, blood_group = $19, special_needs = $20,
		previous_school = $21, admission_score = $22, status = $23, notes = $24, updated_at = $25
		WHERE id = $26`
	student.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		student.FirstName, student.LastName, student.MiddleName, student.DateOfBirth, student.Gender, student.ClassID,
		student.Photo, student.Address, student.Phone, student.Email,
		student.ParentName, student.ParentPhone, student.ParentEmail, student.ParentOccupation,
		student.EmergencyContactName, student.EmergencyContactPhone,
		student.MedicalConditions, student.Allergies, student.BloodGroup, student.SpecialNeeds,
		student.PreviousSchool, student.AdmissionScore, student.Status, student.Notes, student.UpdatedAt, student.ID)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated student rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateStatus transitions a student's lifecycle state.
func (r *StudentRepository) UpdateStatus(ctx context.Context, id int64, status models.StudentStatus) error {
	const query = `UPDATE students SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update student status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check student status rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Promote moves a student into a new class.
func (r *StudentRepository) Promote(ctx context.Context, id, classID int64) error {
	const query = `UPDATE students SET class_id = $1, updated_at = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, classID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("promote student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check promoted student rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListActiveByClass returns active students of a class ordered by name.
func (r *StudentRepository) ListActiveByClass(ctx context.Context, classID int64) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students s WHERE s.class_id = $1 AND s.status = 'active'
ORDER BY s.last_name ASC, s.first_name ASC`, prefixColumns(studentColumns, "s"))
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return students, nil
}

// prefixColumns rewrites a bare column list with a table alias.
func prefixColumns(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
