package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fredora-academy/school-api/internal/models"
)

// AttendanceRepository persists daily attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert writes one student's attendance for a day. Marking the same day
// twice overwrites the earlier record.
func (r *AttendanceRepository) Upsert(ctx context.Context, att *models.Attendance) error {
	const query = `INSERT INTO attendance
		(student_id, class_id, date, status, time_in, time_out, remarks, marked_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (student_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			time_in = EXCLUDED.time_in,
			time_out = EXCLUDED.time_out,
			remarks = EXCLUDED.remarks,
			marked_by = EXCLUDED.marked_by,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		att.StudentID, att.ClassID, att.Date, att.Status, att.TimeIn, att.TimeOut,
		att.Remarks, att.MarkedBy, time.Now().UTC())
	if err := row.Scan(&att.ID, &att.CreatedAt, &att.UpdatedAt); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// BulkUpsert marks a whole class in one transaction. All rows land or none.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.Attendance) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance tx: %w", err)
	}
	defer tx.Rollback()

	const query = `INSERT INTO attendance
		(student_id, class_id, date, status, time_in, time_out, remarks, marked_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (student_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			time_in = EXCLUDED.time_in,
			time_out = EXCLUDED.time_out,
			remarks = EXCLUDED.remarks,
			marked_by = EXCLUDED.marked_by,
			updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for _, att := range records {
		if _, err := tx.ExecContext(ctx, query,
			att.StudentID, att.ClassID, att.Date, att.Status, att.TimeIn, att.TimeOut,
			att.Remarks, att.MarkedBy, now); err != nil {
			return fmt.Errorf("upsert attendance for student %d: %w", att.StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance: %w", err)
	}
	return nil
}

// ListByClassDate returns a class register for one day.
func (r *AttendanceRepository) ListByClassDate(ctx context.Context, classID int64, date time.Time) ([]models.AttendanceDetail, error) {
	const query = `
SELECT a.id, a.student_id, a.class_id, a.date, a.status, a.time_in, a.time_out, a.remarks, a.marked_by,
       a.created_at, a.updated_at,
       st.first_name || ' ' || st.last_name AS student_name, st.student_id AS admission_number
FROM attendance a
JOIN students st ON st.id = a.student_id
WHERE a.class_id = $1 AND a.date = $2
ORDER BY st.last_name ASC, st.first_name ASC`
	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, query, classID, date); err != nil {
		return nil, fmt.Errorf("list class attendance: %w", err)
	}
	return records, nil
}

// ListByStudent returns a student's records within a date range.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID int64, from, to time.Time) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, class_id, date, status, time_in, time_out, remarks, marked_by, created_at, updated_at
FROM attendance WHERE student_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date DESC`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("list student attendance: %w", err)
	}
	return records, nil
}

// Stats aggregates a student's attendance over a date range.
func (r *AttendanceRepository) Stats(ctx context.Context, studentID int64, from, to time.Time) (*models.AttendanceStats, error) {
	const query = `
SELECT COUNT(*) AS total_days,
       COUNT(*) FILTER (WHERE status = 'present') AS present_days,
       COUNT(*) FILTER (WHERE status = 'absent') AS absent_days,
       COUNT(*) FILTER (WHERE status = 'late') AS late_days,
       COUNT(*) FILTER (WHERE status = 'excused') AS excused_days
FROM attendance
WHERE student_id = $1 AND date BETWEEN $2 AND $3`
	var stats models.AttendanceStats
	if err := r.db.GetContext(ctx, &stats, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("attendance stats: %w", err)
	}
	if stats.TotalDays > 0 {
		attended := stats.PresentDays + stats.LateDays
		stats.AttendanceRate = float64(attended) / float64(stats.TotalDays) * 100
	}
	return &stats, nil
}

// RateForDate returns the school-wide attendance rate for a single day as a
// percentage. Zero records yields zero.
func (r *AttendanceRepository) RateForDate(ctx context.Context, date time.Time) (float64, error) {
	const query = `
SELECT COALESCE(
	COUNT(*) FILTER (WHERE status IN ('present', 'late'))::float / NULLIF(COUNT(*), 0) * 100,
	0)
FROM attendance WHERE date = $1`
	var rate float64
	if err := r.db.GetContext(ctx, &rate, query, date); err != nil {
		return 0, fmt.Errorf("attendance rate: %w", err)
	}
	return rate, nil
}
