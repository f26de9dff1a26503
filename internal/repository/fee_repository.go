package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fredora-academy/school-api/internal/models"
)

// FeeRepository persists fee structures and payments.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs the repository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// ListFees returns active fee items, optionally filtered by class.
func (r *FeeRepository) ListFees(ctx context.Context, classID int64) ([]models.Fee, error) {
	query := `SELECT id, class_id, fee_type, amount, frequency, description, is_active, created_at, updated_at
FROM fees WHERE is_active = TRUE`
	var args []interface{}
	if classID > 0 {
		args = append(args, classID)
		query += fmt.Sprintf(" AND class_id = $%d", len(args))
	}
	query += " ORDER BY fee_type ASC"

	var fees []models.Fee
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, fmt.Errorf("list fees: %w", err)
	}
	return fees, nil
}

// FindFeeByID returns a fee item by primary key.
func (r *FeeRepository) FindFeeByID(ctx context.Context, id int64) (*models.Fee, error) {
	const query = `SELECT id, class_id, fee_type, amount, frequency, description, is_active, created_at, updated_at
FROM fees WHERE id = $1`
	var fee models.Fee
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		return nil, err
	}
	return &fee, nil
}

// CreateFee inserts a fee item.
func (r *FeeRepository) CreateFee(ctx context.Context, fee *models.Fee) error {
	const query = `INSERT INTO fees (class_id, fee_type, amount, frequency, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		fee.ClassID, fee.FeeType, fee.Amount, fee.Frequency, fee.Description, fee.IsActive, time.Now().UTC())
	if err := row.Scan(&fee.ID, &fee.CreatedAt, &fee.UpdatedAt); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// UpdateFee persists editable fields of a fee item.
func (r *FeeRepository) UpdateFee(ctx context.Context, fee *models.Fee) error {
	const query = `UPDATE fees SET class_id = $1, fee_type = $2, amount = $3, frequency = $4, description = $5,
		is_active = $6, updated_at = $7 WHERE id = $8`
	fee.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, query,
		fee.ClassID, fee.FeeType, fee.Amount, fee.Frequency, fee.Description, fee.IsActive, fee.UpdatedAt, fee.ID)
	if err != nil {
		return fmt.Errorf("update fee: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated fee rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreatePayment records money received against a fee.
func (r *FeeRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	const query = `INSERT INTO fee_payments
		(student_id, fee_id, amount_paid, amount_due, payment_method, reference_number, receipt_number,
		 status, payment_date, term, academic_year, notes, recorded_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
		RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		payment.StudentID, payment.FeeID, payment.AmountPaid, payment.AmountDue,
		payment.PaymentMethod, payment.ReferenceNumber, payment.ReceiptNumber,
		payment.Status, payment.PaymentDate, payment.Term, payment.AcademicYear,
		payment.Notes, payment.RecordedBy, time.Now().UTC())
	if err := row.Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// ListPaymentsByStudent returns a student's payment history, newest first.
func (r *FeeRepository) ListPaymentsByStudent(ctx context.Context, studentID int64) ([]models.Payment, error) {
	const query = `SELECT id, student_id, fee_id, amount_paid, amount_due, payment_method, reference_number,
		receipt_number, status, payment_date, term, academic_year, notes, recorded_by, created_at, updated_at
FROM fee_payments WHERE student_id = $1 ORDER BY payment_date DESC, id DESC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// Balance computes a student's fee position for a term: the sum of active
// fee items for their class minus completed payments.
func (r *FeeRepository) Balance(ctx context.Context, studentID int64, term string, year int) (*models.FeeBalance, error) {
	const query = `
SELECT
	COALESCE((SELECT SUM(f.amount) FROM fees f
		JOIN students s ON s.class_id = f.class_id
		WHERE s.id = $1 AND f.is_active = TRUE), 0) AS total_due,
	COALESCE((SELECT SUM(p.amount_paid) FROM fee_payments p
		WHERE p.student_id = $1 AND p.term = $2 AND p.academic_year = $3 AND p.status = 'completed'), 0) AS total_paid`
	var balance models.FeeBalance
	if err := r.db.GetContext(ctx, &balance, query, studentID, term, year); err != nil {
		return nil, fmt.Errorf("fee balance: %w", err)
	}
	balance.StudentID = studentID
	balance.Balance = balance.TotalDue - balance.TotalPaid
	return &balance, nil
}

// CollectedForTerm sums completed payments in a term across the school.
func (r *FeeRepository) CollectedForTerm(ctx context.Context, term string, year int) (float64, error) {
	const query = `SELECT COALESCE(SUM(amount_paid), 0) FROM fee_payments
WHERE term = $1 AND academic_year = $2 AND status = 'completed'`
	var total float64
	if err := r.db.GetContext(ctx, &total, query, term, year); err != nil {
		return 0, fmt.Errorf("sum term payments: %w", err)
	}
	return total, nil
}
