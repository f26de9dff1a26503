package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator struct {
	user *models.User
	err  error
}

func (s *stubAuthenticator) Authenticate(_ context.Context, _ string) (*models.User, error) {
	return s.user, s.err
}

func performAs(t *testing.T, user *models.User, handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	chain := make([]gin.HandlerFunc, 0, len(handlers)+2)
	chain = append(chain, func(c *gin.Context) {
		if user != nil {
			c.Set(ContextUserKey, user)
		}
	})
	chain = append(chain, handlers...)
	chain = append(chain, func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/probe", chain...)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHasCapability(t *testing.T) {
	assert.True(t, HasCapability(models.RoleAdmin, CapManageUsers))
	assert.True(t, HasCapability(models.RoleAdmin, CapRecordGrades))
	assert.True(t, HasCapability(models.RoleTeacher, CapRecordGrades))
	assert.True(t, HasCapability(models.RoleTeacher, CapMarkAttendance))
	assert.True(t, HasCapability(models.RoleTeacher, CapViewReports))
	assert.False(t, HasCapability(models.RoleTeacher, CapManageUsers))
	assert.False(t, HasCapability(models.RoleTeacher, CapManageFees))
	assert.False(t, HasCapability(models.RoleTeacher, CapViewDashboard))
	assert.False(t, HasCapability("visitor", CapViewReports))
}

func TestRequireCapability(t *testing.T) {
	teacher := &models.User{ID: 9, Role: models.RoleTeacher}

	w := performAs(t, teacher, RequireCapability(CapRecordGrades))
	assert.Equal(t, http.StatusOK, w.Code)

	w = performAs(t, teacher, RequireCapability(CapManageUsers))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performAs(t, nil, RequireCapability(CapRecordGrades))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	teacher := &models.User{ID: 9, Role: models.RoleTeacher}

	w := performAs(t, admin, RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)

	w = performAs(t, teacher, RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	router := gin.New()
	router.GET("/probe", Auth(&stubAuthenticator{user: &models.User{ID: 1}}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRejectsInactiveAccount(t *testing.T) {
	router := gin.New()
	router.GET("/probe", Auth(&stubAuthenticator{err: appErrors.ErrInactiveAccount}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthStoresCurrentUser(t *testing.T) {
	user := &models.User{ID: 5, Role: models.RoleTeacher}
	router := gin.New()
	router.GET("/probe", Auth(&stubAuthenticator{user: user}), func(c *gin.Context) {
		current, ok := CurrentUser(c)
		assert.True(t, ok)
		assert.Equal(t, int64(5), current.ID)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
