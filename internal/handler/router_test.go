package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/fredora-academy/school-api/internal/models"
	"github.com/fredora-academy/school-api/pkg/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routeAuthenticator struct {
	user *models.User
}

func (a *routeAuthenticator) Authenticate(_ context.Context, _ string) (*models.User, error) {
	return a.user, nil
}

func newTestRouter(user *models.User) *gin.Engine {
	cfg := &config.Config{Env: "test", APIPrefix: "/api"}
	return NewRouter(cfg, zap.NewNop(), &routeAuthenticator{user: user}, nil, nil, Handlers{})
}

func TestRouterRegistersContractRoutes(t *testing.T) {
	router := newTestRouter(nil)

	registered := make(map[string]bool)
	for _, route := range router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/users/teachers/:id/classes",
		"GET /api/subjects/assignments/teacher/:id",
		"GET /api/users/my-classes",
		"GET /api/reports/academic/:studentId",
		"GET /api/reports/class/:classId",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
	assert.False(t, registered["PUT /api/users/teachers/:id/classes"])
}

func TestMyClassesRejectsAdmins(t *testing.T) {
	adminUser := &models.User{ID: 1, Name: "Head Admin", Role: models.RoleAdmin}
	router := newTestRouter(adminUser)

	req := httptest.NewRequest(http.MethodGet, "/api/users/my-classes", nil)
	req.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
