package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-dashboard/internal/gateway"
	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/logger"
	"github.com/noah-isme/gym-dashboard/pkg/response"
)

// ContextSessionKey is the gin context key storing the authenticated session.
const ContextSessionKey = "currentSession"

type sessionValidator interface {
	Validate(token string) (*models.Session, error)
}

// Session requires a valid dashboard token. The token is forwarded to the
// backend through the request context; rejected requests point at loginURL.
func Session(sessions sessionValidator, loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortToLogin(c, appErrors.ErrUnauthorized, loginURL)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortToLogin(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"), loginURL)
			return
		}

		session, err := sessions.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			abortToLogin(c, err, loginURL)
			return
		}

		c.Set(ContextSessionKey, session)
		c.Set(logger.ContextUserIDKey, session.UserID)
		c.Request = c.Request.WithContext(gateway.WithToken(c.Request.Context(), session.Token))
		c.Next()
	}
}

// SessionFrom returns the session stored by Session, or nil.
func SessionFrom(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}

func abortToLogin(c *gin.Context, err error, loginURL string) {
	meta := map[string]interface{}{}
	if loginURL != "" {
		meta["login_url"] = loginURL
	}
	response.ErrorWithMeta(c, err, meta)
	c.Abort()
}
