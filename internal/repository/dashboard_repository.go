package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fredora-academy/school-api/internal/models"
)

// DashboardRepository answers the aggregate count queries behind the admin
// landing page.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs the repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Counts loads the entity counters in one round trip. Attendance rate and
// fee totals are filled in by the service from their own repositories.
func (r *DashboardRepository) Counts(ctx context.Context) (*models.DashboardStats, error) {
	const query = `
SELECT
	(SELECT COUNT(*) FROM students WHERE status = 'active') AS active_students,
	(SELECT COUNT(*) FROM users WHERE role = 'teacher' AND is_active = TRUE) AS active_teachers,
	(SELECT COUNT(*) FROM classes WHERE is_active = TRUE) AS total_classes,
	(SELECT COUNT(*) FROM subjects WHERE is_active = TRUE) AS active_subjects`
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("dashboard counts: %w", err)
	}
	return &stats, nil
}
