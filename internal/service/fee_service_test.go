package service

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

type fakeFeeRepo struct {
	fees     map[int64]*models.Fee
	payments []models.Payment
	balance  *models.FeeBalance
}

func (f *fakeFeeRepo) ListFees(_ context.Context, classID int64) ([]models.Fee, error) {
	out := make([]models.Fee, 0, len(f.fees))
	for _, fee := range f.fees {
		out = append(out, *fee)
	}
	return out, nil
}

func (f *fakeFeeRepo) FindFeeByID(_ context.Context, id int64) (*models.Fee, error) {
	fee, ok := f.fees[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *fee
	return &copied, nil
}

func (f *fakeFeeRepo) CreateFee(_ context.Context, fee *models.Fee) error {
	fee.ID = int64(len(f.fees) + 1)
	f.fees[fee.ID] = fee
	return nil
}

func (f *fakeFeeRepo) UpdateFee(_ context.Context, fee *models.Fee) error {
	f.fees[fee.ID] = fee
	return nil
}

func (f *fakeFeeRepo) CreatePayment(_ context.Context, payment *models.Payment) error {
	payment.ID = int64(len(f.payments) + 1)
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakeFeeRepo) ListPaymentsByStudent(_ context.Context, studentID int64) ([]models.Payment, error) {
	return f.payments, nil
}

func (f *fakeFeeRepo) Balance(_ context.Context, studentID int64, term string, year int) (*models.FeeBalance, error) {
	return f.balance, nil
}

type fakeFeeStudents struct {
	known map[int64]bool
}

func (f *fakeFeeStudents) FindByID(_ context.Context, id int64) (*models.StudentDetail, error) {
	if !f.known[id] {
		return nil, sql.ErrNoRows
	}
	return &models.StudentDetail{Student: models.Student{ID: id}}, nil
}

func newFeeFixture() (*FeeService, *fakeFeeRepo) {
	repo := &fakeFeeRepo{
		fees: map[int64]*models.Fee{
			1: {ID: 1, ClassID: 3, FeeType: "Tuition", Amount: 1500, Frequency: "termly", IsActive: true},
		},
		balance: &models.FeeBalance{},
	}
	students := &fakeFeeStudents{known: map[int64]bool{1: true}}
	classes := &fakeAssignClasses{classes: map[int64]*models.Class{
		3: {ID: 3, Name: "JHS 1", Level: 10, IsActive: true},
	}}
	return NewFeeService(repo, students, classes, nil, nil), repo
}

func paymentRequest() models.PaymentRequest {
	return models.PaymentRequest{
		StudentID:     1,
		FeeID:         1,
		AmountPaid:    500,
		PaymentMethod: "mobile_money",
		Term:          "Term 1",
		AcademicYear:  2026,
	}
}

func TestRecordPaymentGeneratesReceipt(t *testing.T) {
	svc, repo := newFeeFixture()

	payment, err := svc.RecordPayment(context.Background(), admin(), paymentRequest())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^RCP-\d{8}-[0-9A-F]{8}$`), payment.ReceiptNumber)
	assert.Equal(t, "completed", payment.Status)
	assert.InDelta(t, 1500.0, payment.AmountDue, 0.001)
	assert.Equal(t, int64(1), payment.RecordedBy)
	require.Len(t, repo.payments, 1)
}

func TestRecordPaymentReceiptsAreUnique(t *testing.T) {
	svc, _ := newFeeFixture()

	first, err := svc.RecordPayment(context.Background(), admin(), paymentRequest())
	require.NoError(t, err)
	second, err := svc.RecordPayment(context.Background(), admin(), paymentRequest())
	require.NoError(t, err)
	assert.NotEqual(t, first.ReceiptNumber, second.ReceiptNumber)
}

func TestRecordPaymentUnknownStudent(t *testing.T) {
	svc, repo := newFeeFixture()

	req := paymentRequest()
	req.StudentID = 42
	_, err := svc.RecordPayment(context.Background(), admin(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.payments)
}

func TestRecordPaymentRejectsUnknownMethod(t *testing.T) {
	svc, _ := newFeeFixture()

	req := paymentRequest()
	req.PaymentMethod = "barter"
	_, err := svc.RecordPayment(context.Background(), admin(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateFeeRequiresExistingClass(t *testing.T) {
	svc, _ := newFeeFixture()

	_, err := svc.CreateFee(context.Background(), models.FeeRequest{
		ClassID:   99,
		FeeType:   "PTA Dues",
		Amount:    50,
		Frequency: "yearly",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateFeeDefaultsActive(t *testing.T) {
	svc, _ := newFeeFixture()

	fee, err := svc.CreateFee(context.Background(), models.FeeRequest{
		ClassID:   3,
		FeeType:   "PTA Dues",
		Amount:    50,
		Frequency: "yearly",
	})
	require.NoError(t, err)
	assert.True(t, fee.IsActive)
	assert.NotZero(t, fee.ID)
}
