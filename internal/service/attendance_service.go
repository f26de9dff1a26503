package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

// AttendanceRepository is the storage surface for attendance records.
type AttendanceRepository interface {
	BulkUpsert(ctx context.Context, records []models.Attendance) error
	ListByClassDate(ctx context.Context, classID int64, date time.Time) ([]models.AttendanceDetail, error)
	ListByStudent(ctx context.Context, studentID int64, from, to time.Time) ([]models.Attendance, error)
	Stats(ctx context.Context, studentID int64, from, to time.Time) (*models.AttendanceStats, error)
}

// AttendanceScopeChecker restricts teachers to their own classes.
type AttendanceScopeChecker interface {
	HasAssignment(ctx context.Context, teacherID, classID int64) (bool, error)
}

// AttendanceStudentLookup resolves students for register validation.
type AttendanceStudentLookup interface {
	ClassIDOf(ctx context.Context, id int64) (int64, error)
}

// AttendanceService records and reads daily class registers.
type AttendanceService struct {
	attendance AttendanceRepository
	scope      AttendanceScopeChecker
	students   AttendanceStudentLookup
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewAttendanceService constructs the service.
func NewAttendanceService(
	attendance AttendanceRepository,
	scope AttendanceScopeChecker,
	students AttendanceStudentLookup,
	validate *validator.Validate,
	logger *zap.Logger,
) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{attendance: attendance, scope: scope, students: students, validate: validate, logger: logger}
}

// Mark records a class register for one day. Marking the same day again
// overwrites the earlier entries. Every student in the register must belong
// to the submitted class.
func (s *AttendanceService) Mark(ctx context.Context, actor *models.User, req models.MarkAttendanceRequest) ([]models.AttendanceDetail, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid attendance payload", validationFields(err)...)
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.WithFields("date must be YYYY-MM-DD", "date")
	}
	if err := s.requireClassScope(ctx, actor, req.ClassID); err != nil {
		return nil, err
	}

	records := make([]models.Attendance, 0, len(req.Entries))
	for _, entry := range req.Entries {
		status := models.AttendanceStatus(entry.Status)
		if !status.Valid() {
			return nil, appErrors.WithFields("unknown attendance status", "status")
		}
		classID, err := s.students.ClassIDOf(ctx, entry.StudentID)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		if classID != req.ClassID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student does not belong to this class")
		}
		records = append(records, models.Attendance{
			StudentID: entry.StudentID,
			ClassID:   req.ClassID,
			Date:      date,
			Status:    status,
			TimeIn:    entry.TimeIn,
			TimeOut:   entry.TimeOut,
			Remarks:   entry.Remarks,
			MarkedBy:  actor.ID,
		})
	}

	if err := s.attendance.BulkUpsert(ctx, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not save attendance")
	}
	s.logger.Info("attendance marked",
		zap.Int64("class_id", req.ClassID), zap.String("date", req.Date), zap.Int("count", len(records)))
	return s.ClassRegister(ctx, actor, req.ClassID, req.Date)
}

// ClassRegister returns a class's attendance for one day.
func (s *AttendanceService) ClassRegister(ctx context.Context, actor *models.User, classID int64, rawDate string) ([]models.AttendanceDetail, error) {
	date, err := time.Parse("2006-01-02", rawDate)
	if err != nil {
		return nil, appErrors.WithFields("date must be YYYY-MM-DD", "date")
	}
	if err := s.requireClassScope(ctx, actor, classID); err != nil {
		return nil, err
	}
	records, err := s.attendance.ListByClassDate(ctx, classID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load attendance")
	}
	if records == nil {
		records = []models.AttendanceDetail{}
	}
	return records, nil
}

// StudentHistory returns a student's records plus aggregate stats over a
// date range.
func (s *AttendanceService) StudentHistory(ctx context.Context, studentID int64, rawFrom, rawTo string) ([]models.Attendance, *models.AttendanceStats, error) {
	from, to, err := parseDateRange(rawFrom, rawTo)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.attendance.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load attendance")
	}
	stats, err := s.attendance.Stats(ctx, studentID, from, to)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not compute stats")
	}
	if records == nil {
		records = []models.Attendance{}
	}
	return records, stats, nil
}

func (s *AttendanceService) requireClassScope(ctx context.Context, actor *models.User, classID int64) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	ok, err := s.scope.HasAssignment(ctx, actor.ID, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not verify class assignment")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "you are not assigned to this class")
	}
	return nil
}

// parseDateRange parses from/to with sensible defaults: the last 30 days
// ending today.
func parseDateRange(rawFrom, rawTo string) (time.Time, time.Time, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	from := now.AddDate(0, 0, -30)
	to := now
	var err error
	if rawFrom != "" {
		from, err = time.Parse("2006-01-02", rawFrom)
		if err != nil {
			return time.Time{}, time.Time{}, appErrors.WithFields("from must be YYYY-MM-DD", "from")
		}
	}
	if rawTo != "" {
		to, err = time.Parse("2006-01-02", rawTo)
		if err != nil {
			return time.Time{}, time.Time{}, appErrors.WithFields("to must be YYYY-MM-DD", "to")
		}
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, appErrors.WithFields("to must not be before from", "to")
	}
	return from, to, nil
}
