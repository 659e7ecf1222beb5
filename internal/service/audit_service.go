package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/jobs"
)

const auditJobType = "dashboard_audit"

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, gymID int64, filter models.AuditFilter) ([]models.AuditLog, error)
}

// AuditConfig sizes the audit worker pool.
type AuditConfig struct {
	Enabled    bool
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// AuditService writes committed mutations to the audit trail in the background.
// Write failures are logged and counted; they never reach the user.
type AuditService struct {
	repo    auditRepository
	queue   *jobs.Queue
	metrics *MetricsService
	logger  *zap.Logger
	enabled bool
}

// NewAuditService builds the service and its worker queue. Call Start before use.
func NewAuditService(repo auditRepository, metrics *MetricsService, cfg AuditConfig, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AuditService{repo: repo, metrics: metrics, logger: logger, enabled: cfg.Enabled && repo != nil}
	svc.queue = jobs.NewQueue("audit", svc.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		DeadLetter: func(job jobs.Job, err error) { svc.metrics.RecordAuditWrite(false) },
		Logger:     logger,
	})
	return svc
}

// Enabled reports whether mutations are being recorded.
func (s *AuditService) Enabled() bool { return s != nil && s.enabled }

// Start launches the workers.
func (s *AuditService) Start(ctx context.Context) {
	if s.Enabled() {
		s.queue.Start(ctx)
	}
}

// Stop flushes buffered entries and stops the workers.
func (s *AuditService) Stop() {
	if s.Enabled() {
		s.queue.Stop()
	}
}

// Recorder returns the recorder for one mounted screen, or nil when auditing is off.
func (s *AuditService) Recorder(session models.Session, screenID string) MutationRecorder {
	if !s.Enabled() {
		return nil
	}
	return &screenAuditRecorder{svc: s, actorID: session.UserID, gymID: session.GymID, screenID: screenID}
}

// List returns recent audit entries for the caller's gym.
func (s *AuditService) List(ctx context.Context, gymID int64, filter models.AuditFilter) ([]models.AuditLog, error) {
	if !s.Enabled() {
		return []models.AuditLog{}, nil
	}
	logs, err := s.repo.List(ctx, gymID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Kind, appErrors.ErrInternal.Status, "failed to load audit trail")
	}
	return logs, nil
}

func (s *AuditService) enqueue(entry *models.AuditLog) {
	if err := s.queue.TryEnqueue(jobs.Job{Type: auditJobType, Payload: entry}); err != nil {
		s.metrics.RecordAuditWrite(false)
		s.logger.Warn("audit entry dropped",
			zap.String("resource", entry.Resource),
			zap.Int64("resource_id", entry.ResourceID),
			zap.Error(err),
		)
	}
}

func (s *AuditService) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(*models.AuditLog)
	if !ok {
		return fmt.Errorf("unexpected audit payload %T", job.Payload)
	}
	start := time.Now()
	err := s.repo.Create(ctx, entry)
	s.metrics.ObserveDBQuery("audit_insert", time.Since(start))
	if err != nil {
		return err
	}
	s.metrics.RecordAuditWrite(true)
	return nil
}

type screenAuditRecorder struct {
	svc      *AuditService
	actorID  int64
	gymID    int64
	screenID string
}

func (r *screenAuditRecorder) RecordMutation(_ context.Context, m Mutation) {
	var changes []byte
	if len(m.Changes) > 0 {
		raw, err := json.Marshal(redact(m.Changes))
		if err != nil {
			r.svc.logger.Warn("audit changes not encodable", zap.Error(err))
		}
		changes = raw
	}
	r.svc.enqueue(&models.AuditLog{
		ActorID:    r.actorID,
		GymID:      r.gymID,
		Action:     m.Action,
		Resource:   string(m.Resource),
		ResourceID: m.RecordID,
		Changes:    changes,
		ScreenID:   r.screenID,
		CreatedAt:  time.Now().UTC(),
	})
}

// redact drops credential fields before they are persisted.
func redact(changes map[string]any) map[string]any {
	if _, ok := changes["password"]; !ok {
		return changes
	}
	out := make(map[string]any, len(changes))
	for key, value := range changes {
		if key == "password" {
			value = "[redacted]"
		}
		out[key] = value
	}
	return out
}
