package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
	"github.com/fredora-academy/school-api/pkg/response"
)

// Capability is a named permission checked at the route level. Capabilities
// are typed so a misspelled permission fails to compile instead of silently
// granting nothing.
type Capability string

const (
	CapManageUsers       Capability = "manage_users"
	CapManageStudents    Capability = "manage_students"
	CapManageClasses     Capability = "manage_classes"
	CapManageSubjects    Capability = "manage_subjects"
	CapManageAssignments Capability = "manage_assignments"
	CapManageFees        Capability = "manage_fees"
	CapManageSettings    Capability = "manage_settings"
	CapRecordGrades      Capability = "record_grades"
	CapMarkAttendance    Capability = "mark_attendance"
	CapViewReports       Capability = "view_reports"
	CapViewDashboard     Capability = "view_dashboard"
)

// roleCapabilities maps each role to what it may do. Admins hold every
// capability; teachers only the classroom ones.
var roleCapabilities = map[models.UserRole]map[Capability]bool{
	models.RoleAdmin: {
		CapManageUsers:       true,
		CapManageStudents:    true,
		CapManageClasses:     true,
		CapManageSubjects:    true,
		CapManageAssignments: true,
		CapManageFees:        true,
		CapManageSettings:    true,
		CapRecordGrades:      true,
		CapMarkAttendance:    true,
		CapViewReports:       true,
		CapViewDashboard:     true,
	},
	models.RoleTeacher: {
		CapRecordGrades:   true,
		CapMarkAttendance: true,
		CapViewReports:    true,
	},
}

// HasCapability reports whether a role carries the capability.
func HasCapability(role models.UserRole, cap Capability) bool {
	return roleCapabilities[role][cap]
}

// RequireCapability rejects requests from users whose role lacks the
// capability. Must run after Auth.
func RequireCapability(cap Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !HasCapability(user.Role, cap) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRoles rejects requests from users outside the allowed roles. Must
// run after Auth.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !allowed[user.Role] {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
