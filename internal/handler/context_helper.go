package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-dashboard/internal/middleware"
	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/response"
)

// sessionFromContext returns the request's session, writing a 401 when absent.
func sessionFromContext(c *gin.Context) (models.Session, bool) {
	session := middleware.SessionFrom(c)
	if session == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Session{}, false
	}
	return *session, true
}

// withMeta merges the middleware's response metadata with extra values.
func withMeta(c *gin.Context, extra map[string]interface{}) map[string]interface{} {
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	for key, value := range extra {
		meta[key] = value
	}
	return meta
}
