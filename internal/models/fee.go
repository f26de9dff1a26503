package models

import "time"

// Fee is a billable item attached to a class.
type Fee struct {
	ID          int64     `db:"id" json:"id"`
	ClassID     int64     `db:"class_id" json:"class_id"`
	FeeType     string    `db:"fee_type" json:"fee_type"`
	Amount      float64   `db:"amount" json:"amount"`
	Frequency   string    `db:"frequency" json:"frequency"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Payment records money received against a fee for a student.
type Payment struct {
	ID              int64     `db:"id" json:"id"`
	StudentID       int64     `db:"student_id" json:"student_id"`
	FeeID           int64     `db:"fee_id" json:"fee_id"`
	AmountPaid      float64   `db:"amount_paid" json:"amount_paid"`
	AmountDue       float64   `db:"amount_due" json:"amount_due"`
	PaymentMethod   string    `db:"payment_method" json:"payment_method"`
	ReferenceNumber *string   `db:"reference_number" json:"reference_number,omitempty"`
	ReceiptNumber   string    `db:"receipt_number" json:"receipt_number"`
	Status          string    `db:"status" json:"status"`
	PaymentDate     time.Time `db:"payment_date" json:"payment_date"`
	Term            string    `db:"term" json:"term"`
	AcademicYear    int       `db:"academic_year" json:"academic_year"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	RecordedBy      int64     `db:"recorded_by" json:"recorded_by"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// FeeBalance summarises a student's outstanding position.
type FeeBalance struct {
	StudentID int64   `json:"student_id"`
	TotalDue  float64 `db:"total_due" json:"total_due"`
	TotalPaid float64 `db:"total_paid" json:"total_paid"`
	Balance   float64 `json:"balance"`
}
