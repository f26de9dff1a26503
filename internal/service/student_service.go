package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

const (
	minEnrollmentAge = 2
	maxEnrollmentAge = 18
)

var ghanaPhonePattern = regexp.MustCompile(`^\+233[0-9]{9}$`)

// StudentRepository is the storage surface for student management.
type StudentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.StudentDetail, error)
	CountActiveInClass(ctx context.Context, classID int64) (int, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	UpdateStatus(ctx context.Context, id int64, status models.StudentStatus) error
	Promote(ctx context.Context, id, classID int64) error
}

// StudentClassLookup resolves classes for enrollment and promotion.
type StudentClassLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
	NextLevelClass(ctx context.Context, level int) (*models.Class, error)
}

// StudentService manages the student lifecycle from enrollment to graduation.
type StudentService struct {
	students StudentRepository
	classes  StudentClassLookup
	validate *validator.Validate
	logger   *zap.Logger
}

// NewStudentService constructs the service.
func NewStudentService(students StudentRepository, classes StudentClassLookup, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, classes: classes, validate: validate, logger: logger}
}

// normalizeGhanaPhone converts local numbers (0XXXXXXXXX) to the +233
// international form and validates the result.
func normalizeGhanaPhone(raw string) (string, bool) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(raw)
	switch {
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == 10:
		cleaned = "+233" + cleaned[1:]
	case strings.HasPrefix(cleaned, "233"):
		cleaned = "+" + cleaned
	}
	return cleaned, ghanaPhonePattern.MatchString(cleaned)
}

// Enroll registers a new student. The admission number is generated by the
// storage layer; the caller never supplies one.
func (s *StudentService) Enroll(ctx context.Context, req models.EnrollStudentRequest) (*models.Student, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid enrollment payload", validationFields(err)...)
	}

	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, appErrors.WithFields("date_of_birth must be YYYY-MM-DD", "date_of_birth")
	}
	age := ageAt(dob, time.Now().UTC())
	if age < minEnrollmentAge || age > maxEnrollmentAge {
		return nil, appErrors.WithFields("student age must be between 2 and 18 years", "date_of_birth")
	}

	parentPhone, ok := normalizeGhanaPhone(req.ParentPhone)
	if !ok {
		return nil, appErrors.WithFields("parent_phone must be a valid Ghana phone number", "parent_phone")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load class")
	}
	if !class.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class is not accepting enrollments")
	}
	enrolled, err := s.students.CountActiveInClass(ctx, class.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not check class capacity")
	}
	if enrolled >= class.MaxStudents {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class is at maximum capacity")
	}

	student := &models.Student{
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		MiddleName:     req.MiddleName,
		DateOfBirth:    dob,
		Gender:         req.Gender,
		ClassID:        req.ClassID,
		EnrollmentDate: time.Now().UTC(),
		Photo:          req.Photo,
		Address:        req.Address,
		Phone:          req.Phone,
		Email:          req.Email,

		ParentName:       strings.TrimSpace(req.ParentName),
		ParentPhone:      parentPhone,
		ParentEmail:      req.ParentEmail,
		ParentOccupation: req.ParentOccupation,

		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,

		MedicalConditions: req.MedicalConditions,
		Allergies:         req.Allergies,
		BloodGroup:        req.BloodGroup,
		SpecialNeeds:      req.SpecialNeeds,

		PreviousSchool: req.PreviousSchool,
		AdmissionScore: req.AdmissionScore,
		Status:         models.StudentActive,
		Notes:          req.Notes,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not enroll student")
	}

	s.logger.Info("student enrolled",
		zap.Int64("id", student.ID),
		zap.String("student_id", student.StudentID),
		zap.Int64("class_id", student.ClassID))
	return student, nil
}

// List returns students matching the filter with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list students")
	}
	if students == nil {
		students = []models.StudentDetail{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a student with the class name joined in.
func (s *StudentService) Get(ctx context.Context, id int64) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load student")
	}
	return student, nil
}

// Update applies the provided fields onto the stored record. The admission
// number and enrollment date are immutable.
func (s *StudentService) Update(ctx context.Context, id int64, req models.UpdateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.WithFields("invalid student payload", validationFields(err)...)
	}

	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student := detail.Student

	if req.FirstName != nil {
		student.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		student.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.MiddleName != nil {
		student.MiddleName = req.MiddleName
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, appErrors.WithFields("date_of_birth must be YYYY-MM-DD", "date_of_birth")
		}
		student.DateOfBirth = dob
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.ClassID != nil {
		if _, err := s.classes.FindByID(ctx, *req.ClassID); err != nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		student.ClassID = *req.ClassID
	}
	if req.Photo != nil {
		student.Photo = req.Photo
	}
	if req.Address != nil {
		student.Address = req.Address
	}
	if req.Phone != nil {
		student.Phone = req.Phone
	}
	if req.Email != nil {
		student.Email = req.Email
	}
	if req.ParentName != nil {
		student.ParentName = strings.TrimSpace(*req.ParentName)
	}
	if req.ParentPhone != nil {
		phone, ok := normalizeGhanaPhone(*req.ParentPhone)
		if !ok {
			return nil, appErrors.WithFields("parent_phone must be a valid Ghana phone number", "parent_phone")
		}
		student.ParentPhone = phone
	}
	if req.ParentEmail != nil {
		student.ParentEmail = req.ParentEmail
	}
	if req.ParentOccupation != nil {
		student.ParentOccupation = req.ParentOccupation
	}
	if req.EmergencyContactName != nil {
		student.EmergencyContactName = req.EmergencyContactName
	}
	if req.EmergencyContactPhone != nil {
		student.EmergencyContactPhone = req.EmergencyContactPhone
	}
	if req.MedicalConditions != nil {
		student.MedicalConditions = req.MedicalConditions
	}
	if req.Allergies != nil {
		student.Allergies = req.Allergies
	}
	if req.BloodGroup != nil {
		student.BloodGroup = req.BloodGroup
	}
	if req.SpecialNeeds != nil {
		student.SpecialNeeds = req.SpecialNeeds
	}
	if req.PreviousSchool != nil {
		student.PreviousSchool = req.PreviousSchool
	}
	if req.Status != nil {
		student.Status = *req.Status
	}
	if req.Notes != nil {
		student.Notes = req.Notes
	}

	if err := s.students.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not update student")
	}
	return s.Get(ctx, id)
}

// Deactivate marks a student inactive. Records are never hard-deleted.
func (s *StudentService) Deactivate(ctx context.Context, id int64) error {
	if err := s.students.UpdateStatus(ctx, id, models.StudentInactive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not deactivate student")
	}
	s.logger.Info("student deactivated", zap.Int64("id", id))
	return nil
}

// Promote moves a student to the next class level, or marks them graduated
// when no higher class exists.
func (s *StudentService) Promote(ctx context.Context, id int64) (*models.StudentDetail, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if detail.Status != models.StudentActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only active students can be promoted")
	}

	current, err := s.classes.FindByID(ctx, detail.ClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load class")
	}

	next, err := s.classes.NextLevelClass(ctx, current.Level)
	if errors.Is(err, sql.ErrNoRows) {
		if err := s.students.UpdateStatus(ctx, id, models.StudentGraduated); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not graduate student")
		}
		s.logger.Info("student graduated", zap.Int64("id", id))
		return s.Get(ctx, id)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not resolve next class")
	}

	if err := s.students.Promote(ctx, id, next.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not promote student")
	}
	s.logger.Info("student promoted", zap.Int64("id", id), zap.Int64("class_id", next.ID))
	return s.Get(ctx, id)
}

// ageAt computes whole years between birth and the reference date.
func ageAt(birth, at time.Time) int {
	years := at.Year() - birth.Year()
	if at.YearDay() < birth.YearDay() {
		years--
	}
	return years
}
