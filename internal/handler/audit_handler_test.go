package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-dashboard/internal/middleware"
	"github.com/noah-isme/gym-dashboard/internal/models"
)

type fakeAuditService struct {
	gymID  int64
	filter models.AuditFilter
}

func (f *fakeAuditService) List(_ context.Context, gymID int64, filter models.AuditFilter) ([]models.AuditLog, error) {
	f.gymID, f.filter = gymID, filter
	return []models.AuditLog{{ID: "a-1", GymID: gymID, Action: models.AuditActionUpdate, Resource: "events", ResourceID: 4}}, nil
}

func TestAuditHandlerListScopesToSessionGym(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeAuditService{}
	handler := NewAuditHandler(svc)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit-logs?resource=events&actor_id=7&limit=10", nil)
	c.Set(middleware.ContextSessionKey, &models.Session{UserID: 7, GymID: 3, Role: models.RoleOwner})

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), svc.gymID)
	assert.Equal(t, models.AuditFilter{ActorID: 7, Resource: "events", Limit: 10}, svc.filter)
}

func TestAuditHandlerRequiresSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/audit-logs", nil)

	NewAuditHandler(&fakeAuditService{}).List(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
