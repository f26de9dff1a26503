package models

import "time"

// StudentStatus enumerates the lifecycle states of a student record.
type StudentStatus string

const (
	StudentActive      StudentStatus = "active"
	StudentInactive    StudentStatus = "inactive"
	StudentGraduated   StudentStatus = "graduated"
	StudentTransferred StudentStatus = "transferred"
)

// Student represents a learner enrolled at the school. StudentID follows the
// FA<year><sequence> admission number format.
type Student struct {
	ID             int64     `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	MiddleName     *string   `db:"middle_name" json:"middle_name,omitempty"`
	DateOfBirth    time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender         string    `db:"gender" json:"gender"`
	ClassID        int64     `db:"class_id" json:"class_id"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
	Photo          *string   `db:"photo" json:"photo,omitempty"`
	Address        *string   `db:"address" json:"address,omitempty"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Email          *string   `db:"email" json:"email,omitempty"`

	ParentName       string  `db:"parent_name" json:"parent_name"`
	ParentPhone      string  `db:"parent_phone" json:"parent_phone"`
	ParentEmail      *string `db:"parent_email" json:"parent_email,omitempty"`
	ParentOccupation *string `db:"parent_occupation" json:"parent_occupation,omitempty"`

	EmergencyContactName  *string `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`

	MedicalConditions *string `db:"medical_conditions" json:"medical_conditions,omitempty"`
	Allergies         *string `db:"allergies" json:"allergies,omitempty"`
	BloodGroup        *string `db:"blood_group" json:"blood_group,omitempty"`
	SpecialNeeds      *string `db:"special_needs" json:"special_needs,omitempty"`

	PreviousSchool *string  `db:"previous_school" json:"previous_school,omitempty"`
	AdmissionScore *float64 `db:"admission_score" json:"admission_score,omitempty"`

	Status    StudentStatus `db:"status" json:"status"`
	Notes     *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentDetail includes the class name for display.
type StudentDetail struct {
	Student
	ClassName string `db:"class_name" json:"class_name"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search   string
	ClassID  int64
	Status   StudentStatus
	Page     int
	PageSize int
}
