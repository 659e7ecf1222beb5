package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-dashboard/internal/models"
)

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditLog
	failing bool
}

func (f *fakeAuditRepo) Create(ctx context.Context, log *models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("insert failed")
	}
	f.entries = append(f.entries, *log)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, gymID int64, filter models.AuditFilter) ([]models.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.AuditLog(nil), f.entries...), nil
}

func (f *fakeAuditRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func TestAuditServiceRecordsMutations(t *testing.T) {
	repo := &fakeAuditRepo{}
	metrics := NewMetricsService()
	svc := NewAuditService(repo, metrics, AuditConfig{Enabled: true, Workers: 1, Retries: 1}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	recorder := svc.Recorder(models.Session{UserID: 9, GymID: 4}, "screen-1")
	require.NotNil(t, recorder)
	recorder.RecordMutation(context.Background(), Mutation{
		Action:   models.AuditActionUpdate,
		Resource: models.ResourceUsers,
		RecordID: 12,
		Changes:  map[string]any{"full_name": "New", "password": "hunter22"},
	})

	assert.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, 5*time.Millisecond)
	entry := repo.entries[0]
	assert.Equal(t, int64(9), entry.ActorID)
	assert.Equal(t, "users", entry.Resource)
	var changes map[string]any
	require.NoError(t, json.Unmarshal(entry.Changes, &changes))
	assert.Equal(t, "[redacted]", changes["password"])
	assert.Eventually(t, func() bool { return metrics.Snapshot().AuditWrites == 1 }, time.Second, 5*time.Millisecond)
}

func TestAuditServiceFailuresAreCounted(t *testing.T) {
	repo := &fakeAuditRepo{failing: true}
	metrics := NewMetricsService()
	svc := NewAuditService(repo, metrics, AuditConfig{Enabled: true, Retries: 1, RetryDelay: time.Millisecond}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Recorder(models.Session{UserID: 1, GymID: 1}, "s").RecordMutation(context.Background(), Mutation{Action: models.AuditActionDelete, RecordID: 3})
	assert.Eventually(t, func() bool { return metrics.Snapshot().AuditFailures == 1 }, time.Second, 5*time.Millisecond)
}

func TestAuditServiceDisabled(t *testing.T) {
	svc := NewAuditService(&fakeAuditRepo{}, nil, AuditConfig{}, nil)
	assert.Nil(t, svc.Recorder(models.Session{UserID: 1}, "s"))
	logs, err := svc.List(context.Background(), 1, models.AuditFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
