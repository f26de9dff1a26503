package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fredora-academy/school-api/internal/middleware"
	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
	"github.com/fredora-academy/school-api/pkg/response"
)

// mustCurrentUser fetches the authenticated user or writes a 401. Handlers
// behind the auth middleware can rely on the boolean.
func mustCurrentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return user, true
}

// pathID parses a positive integer path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, appErrors.WithFields("invalid "+name, name))
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(c *gin.Context, name string) int {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return value
}

// queryInt64 parses an optional int64 query parameter.
func queryInt64(c *gin.Context, name string) int64 {
	value, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

// bindJSON binds the request body, translating binding failures to the
// validation error shape.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "malformed request body"))
		return false
	}
	return true
}
