package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fredora-academy/school-api/internal/models"
	appErrors "github.com/fredora-academy/school-api/pkg/errors"
	"github.com/fredora-academy/school-api/pkg/response"
)

// ContextUserKey is the gin context key holding the authenticated user.
const ContextUserKey = "currentUser"

// Authenticator resolves a bearer token to the current user record.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Auth extracts the bearer token, verifies it and loads the current user.
// The user row is re-read on every request so deactivation takes effect
// immediately, without a token denylist.
func Auth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
