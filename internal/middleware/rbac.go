package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-dashboard/internal/models"
	"github.com/noah-isme/gym-dashboard/internal/service"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/response"
)

// RBAC enforces role-based access control for routes.
func RBAC(allowed ...models.UserRole) gin.HandlerFunc {
	allowedRoles := make(map[models.UserRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedRoles[role] = struct{}{}
	}
	return requireRole(func(role models.UserRole) bool {
		_, ok := allowedRoles[role]
		return ok
	})
}

// RequireDashboardRole admits the roles allowed to manage gym records.
func RequireDashboardRole() gin.HandlerFunc {
	return requireRole(service.CanManage)
}

func requireRole(allow func(models.UserRole) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !allow(session.Role) {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
