package models

// CreateTeacherRequest creates a teacher account.
type CreateTeacherRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Name     string  `json:"name" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// UpdateTeacherRequest edits teacher profile fields.
type UpdateTeacherRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Name     *string `json:"name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// ResetPasswordRequest sets a new password for a user.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ClassRequest creates or updates a class.
type ClassRequest struct {
	Name        string  `json:"name" validate:"required"`
	DisplayName string  `json:"display_name" validate:"required"`
	Level       int     `json:"level" validate:"required,min=1"`
	Description *string `json:"description,omitempty"`
	MaxStudents int     `json:"max_students" validate:"required,min=1"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// SubjectRequest creates or updates a subject.
type SubjectRequest struct {
	Name        string  `json:"name" validate:"required"`
	Code        string  `json:"code" validate:"required,max=10"`
	Description *string `json:"description,omitempty"`
	IsCore      bool    `json:"is_core"`
}

// EnrollStudentRequest enrolls a new student. The admission number is
// generated server side.
type EnrollStudentRequest struct {
	FirstName   string  `json:"first_name" validate:"required"`
	LastName    string  `json:"last_name" validate:"required"`
	MiddleName  *string `json:"middle_name,omitempty"`
	DateOfBirth string  `json:"date_of_birth" validate:"required"`
	Gender      string  `json:"gender" validate:"required,oneof=male female"`
	ClassID     int64   `json:"class_id" validate:"required"`

	Photo   *string `json:"photo,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`

	ParentName       string  `json:"parent_name" validate:"required"`
	ParentPhone      string  `json:"parent_phone" validate:"required"`
	ParentEmail      *string `json:"parent_email,omitempty" validate:"omitempty,email"`
	ParentOccupation *string `json:"parent_occupation,omitempty"`

	EmergencyContactName  *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `json:"emergency_contact_phone,omitempty"`

	MedicalConditions *string `json:"medical_conditions,omitempty"`
	Allergies         *string `json:"allergies,omitempty"`
	BloodGroup        *string `json:"blood_group,omitempty"`
	SpecialNeeds      *string `json:"special_needs,omitempty"`

	PreviousSchool *string  `json:"previous_school,omitempty"`
	AdmissionScore *float64 `json:"admission_score,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

// UpdateStudentRequest edits an existing student. Absent fields are left
// unchanged.
type UpdateStudentRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	MiddleName  *string `json:"middle_name,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	Gender      *string `json:"gender,omitempty" validate:"omitempty,oneof=male female"`
	ClassID     *int64  `json:"class_id,omitempty"`

	Photo   *string `json:"photo,omitempty"`
	Address *string `json:"address,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`

	ParentName       *string `json:"parent_name,omitempty"`
	ParentPhone      *string `json:"parent_phone,omitempty"`
	ParentEmail      *string `json:"parent_email,omitempty" validate:"omitempty,email"`
	ParentOccupation *string `json:"parent_occupation,omitempty"`

	EmergencyContactName  *string `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `json:"emergency_contact_phone,omitempty"`

	MedicalConditions *string `json:"medical_conditions,omitempty"`
	Allergies         *string `json:"allergies,omitempty"`
	BloodGroup        *string `json:"blood_group,omitempty"`
	SpecialNeeds      *string `json:"special_needs,omitempty"`

	PreviousSchool *string        `json:"previous_school,omitempty"`
	Status         *StudentStatus `json:"status,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
}

// GradeRequest submits one assessment score.
type GradeRequest struct {
	StudentID      int64   `json:"student_id" validate:"required"`
	SubjectID      int64   `json:"subject_id" validate:"required"`
	Term           string  `json:"term" validate:"required"`
	AcademicYear   int     `json:"academic_year" validate:"required,min=2000"`
	AssessmentType string  `json:"assessment_type" validate:"required"`
	Score          float64 `json:"score" validate:"min=0"`
	MaxScore       float64 `json:"max_score" validate:"omitempty,gt=0"`
	Remarks        *string `json:"remarks,omitempty"`
}

// BatchGradeRequest submits several scores in one call. Items are applied in
// order; a failure stops processing but already applied items stand.
type BatchGradeRequest struct {
	Grades []GradeRequest `json:"grades" validate:"required,min=1,dive"`
}

// BatchGradeResult reports the per-item outcome of a batch submission.
type BatchGradeResult struct {
	Processed int           `json:"processed"`
	Results   []GradeResult `json:"results"`
	FailedAt  *int          `json:"failed_at,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// UpdateGradeRequest rewrites the score of an existing grade.
type UpdateGradeRequest struct {
	Score    float64 `json:"score" validate:"min=0"`
	MaxScore float64 `json:"max_score" validate:"required,gt=0"`
	Remarks  *string `json:"remarks,omitempty"`
}

// SetClassAssignmentsRequest replaces a teacher's class set.
type SetClassAssignmentsRequest struct {
	ClassIDs []int64 `json:"class_ids" validate:"required"`
}

// BulkAssignRequest replaces several teachers' class sets at once.
type BulkAssignRequest struct {
	Assignments []BulkAssignment `json:"assignments" validate:"required,min=1,dive"`
}

// AssignSubjectRequest links a teacher to a subject within a class.
type AssignSubjectRequest struct {
	TeacherID int64 `json:"teacher_id" validate:"required"`
	SubjectID int64 `json:"subject_id" validate:"required"`
	ClassID   int64 `json:"class_id" validate:"required"`
}

// AttendanceEntry is one student's mark within an attendance submission.
type AttendanceEntry struct {
	StudentID int64   `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required"`
	TimeIn    *string `json:"time_in,omitempty"`
	TimeOut   *string `json:"time_out,omitempty"`
	Remarks   *string `json:"remarks,omitempty"`
}

// MarkAttendanceRequest records a class register for one day.
type MarkAttendanceRequest struct {
	ClassID int64             `json:"class_id" validate:"required"`
	Date    string            `json:"date" validate:"required"`
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// FeeRequest creates or updates a fee item.
type FeeRequest struct {
	ClassID     int64   `json:"class_id" validate:"required"`
	FeeType     string  `json:"fee_type" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Frequency   string  `json:"frequency" validate:"required,oneof=termly yearly one_time"`
	Description *string `json:"description,omitempty"`
}

// PaymentRequest records a fee payment.
type PaymentRequest struct {
	StudentID       int64   `json:"student_id" validate:"required"`
	FeeID           int64   `json:"fee_id" validate:"required"`
	AmountPaid      float64 `json:"amount_paid" validate:"required,gt=0"`
	PaymentMethod   string  `json:"payment_method" validate:"required,oneof=cash mobile_money bank_transfer cheque"`
	ReferenceNumber *string `json:"reference_number,omitempty"`
	Term            string  `json:"term" validate:"required"`
	AcademicYear    int     `json:"academic_year" validate:"required,min=2000"`
	Notes           *string `json:"notes,omitempty"`
}

// SettingRequest upserts one configuration value.
type SettingRequest struct {
	Key         string  `json:"key" validate:"required"`
	Value       *string `json:"value,omitempty"`
	Type        string  `json:"type" validate:"required,oneof=string number boolean json"`
	Description *string `json:"description,omitempty"`
	IsPublic    bool    `json:"is_public"`
}
