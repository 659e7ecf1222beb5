package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/gym-dashboard/internal/models"
)

// AuditSchema creates the audit table when it does not exist yet.
const AuditSchema = `CREATE TABLE IF NOT EXISTS dashboard_audit_logs (
	id UUID PRIMARY KEY,
	actor_id BIGINT NOT NULL,
	gym_id BIGINT NOT NULL,
	action TEXT NOT NULL,
	resource TEXT NOT NULL,
	resource_id BIGINT NOT NULL,
	changes JSONB,
	screen_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

const defaultAuditLimit = 50

// AuditRepository persists the dashboard's mutation trail.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// EnsureSchema creates the audit table if missing.
func (r *AuditRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, AuditSchema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

// Create stores an audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO dashboard_audit_logs (id, actor_id, gym_id, action, resource, resource_id, changes, screen_id, created_at) VALUES (:id, :actor_id, :gym_id, :action, :resource, :resource_id, :changes, :screen_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List returns the newest audit entries of a gym matching filter.
func (r *AuditRepository) List(ctx context.Context, gymID int64, filter models.AuditFilter) ([]models.AuditLog, error) {
	conditions := []string{"gym_id = ?"}
	args := []interface{}{gymID}
	if filter.ActorID > 0 {
		conditions = append(conditions, "actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.Resource != "" {
		conditions = append(conditions, "resource = ?")
		args = append(args, filter.Resource)
	}
	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = defaultAuditLimit
	}
	args = append(args, limit)

	query := fmt.Sprintf(`SELECT id, actor_id, gym_id, action, resource, resource_id, changes, screen_id, created_at FROM dashboard_audit_logs WHERE %s ORDER BY created_at DESC LIMIT ?`, strings.Join(conditions, " AND "))
	query = r.db.Rebind(query)

	var logs []models.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
