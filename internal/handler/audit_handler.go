package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-dashboard/internal/dto"
	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/response"
)

type auditService interface {
	List(ctx context.Context, gymID int64, filter models.AuditFilter) ([]models.AuditLog, error)
}

// AuditHandler exposes the mutation audit trail of the caller's gym.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(service auditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// List godoc
// @Summary List recent dashboard mutations
// @Tags Audit
// @Produce json
// @Param resource query string false "Resource, e.g. events"
// @Param actor_id query int false "Acting user"
// @Param limit query int false "Maximum entries (default 50, max 500)"
// @Success 200 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var query dto.AuditLogQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid audit log query"))
		return
	}
	logs, err := h.service.List(c.Request.Context(), session.GymID, models.AuditFilter{
		ActorID:  query.ActorID,
		Resource: strings.TrimSpace(query.Resource),
		Limit:    query.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil, withMeta(c, map[string]interface{}{"count": len(logs)}))
}
