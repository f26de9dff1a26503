package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

// FeeRepository is the storage surface for fee structures and payments.
type FeeRepository interface {
	ListFees(ctx context.Context, classID int64) ([]models.Fee, error)
	FindFeeByID(ctx context.Context, id int64) (*models.Fee, error)
	CreateFee(ctx context.Context, fee *models.Fee) error
	UpdateFee(ctx context.Context, fee *models.Fee) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	ListPaymentsByStudent(ctx context.Context, studentID int64) ([]models.Payment, error)
	Balance(ctx context.Context, studentID int64, term string, year int) (*models.FeeBalance, error)
}

// FeeStudentLookup verifies students before taking payments.
type FeeStudentLookup interface {
	FindByID(ctx context.Context, id int64) (*models.StudentDetail, error)
}

// FeeClassLookup verifies classes before attaching fee items.
type FeeClassLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
}

// FeeService manages fee structures and records payments with generated
// receipt numbers.
type FeeService struct {
	fees     FeeRepository
	students FeeStudentLookup
	classes  FeeClassLookup
	validate *validator.Validate
	logger   *zap.Logger
}

// NewFeeService constructs the service.
func NewFeeService(fees FeeRepository, students FeeStudentLookup, classes FeeClassLookup, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{fees: fees, students: students, classes: classes, validate: validate, logger: logger}
}

// ListFees returns active fee items, optionally for one class.
func (s *FeeService) ListFees(ctx context.Context, classID int64) ([]models.Fee, error) {
	fees, err := s.fees.ListFees(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list fees")
	}
	if fees == nil {
		fees = []models.Fee{}
	}
	return fees, nil
}

// CreateFee adds a billable item to a class.
func (s *FeeService) CreateFee(ctx context.Context, req models.FeeRequest) (*models.Fee, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid fee payload", validationFields(err)...)
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	fee := &models.Fee{
		ClassID:     req.ClassID,
		FeeType:     req.FeeType,
		Amount:      req.Amount,
		Frequency:   req.Frequency,
		Description: req.Description,
		IsActive:    true,
	}
	if err := s.fees.CreateFee(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not create fee")
	}
	s.logger.Info("fee created", zap.Int64("id", fee.ID), zap.Int64("class_id", fee.ClassID))
	return fee, nil
}

// UpdateFee edits a fee item.
func (s *FeeService) UpdateFee(ctx context.Context, id int64, req models.FeeRequest) (*models.Fee, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid fee payload", validationFields(err)...)
	}
	fee, err := s.fees.FindFeeByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load fee")
	}

	fee.ClassID = req.ClassID
	fee.FeeType = req.FeeType
	fee.Amount = req.Amount
	fee.Frequency = req.Frequency
	fee.Description = req.Description
	if err := s.fees.UpdateFee(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not update fee")
	}
	return fee, nil
}

// RecordPayment stores a payment with a generated receipt number and returns
// the saved record.
func (s *FeeService) RecordPayment(ctx context.Context, actor *models.User, req models.PaymentRequest) (*models.Payment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid payment payload", validationFields(err)...)
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	fee, err := s.fees.FindFeeByID(ctx, req.FeeID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "fee not found")
	}

	payment := &models.Payment{
		StudentID:       req.StudentID,
		FeeID:           req.FeeID,
		AmountPaid:      req.AmountPaid,
		AmountDue:       fee.Amount,
		PaymentMethod:   req.PaymentMethod,
		ReferenceNumber: req.ReferenceNumber,
		ReceiptNumber:   generateReceiptNumber(),
		Status:          "completed",
		PaymentDate:     time.Now().UTC(),
		Term:            req.Term,
		AcademicYear:    req.AcademicYear,
		Notes:           req.Notes,
		RecordedBy:      actor.ID,
	}
	if err := s.fees.CreatePayment(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not record payment")
	}
	s.logger.Info("payment recorded",
		zap.Int64("student_id", payment.StudentID),
		zap.String("receipt", payment.ReceiptNumber),
		zap.Float64("amount", payment.AmountPaid))
	return payment, nil
}

// PaymentHistory returns a student's payments newest first.
func (s *FeeService) PaymentHistory(ctx context.Context, studentID int64) ([]models.Payment, error) {
	payments, err := s.fees.ListPaymentsByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list payments")
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}

// Balance returns a student's fee position for one term.
func (s *FeeService) Balance(ctx context.Context, studentID int64, term string, year int) (*models.FeeBalance, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	balance, err := s.fees.Balance(ctx, studentID, term, year)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not compute balance")
	}
	return balance, nil
}

// generateReceiptNumber produces a short unique receipt reference.
func generateReceiptNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("RCP-%s-%s", time.Now().UTC().Format("20060102"), id[:8])
}
