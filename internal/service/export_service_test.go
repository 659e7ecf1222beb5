package service

import (
	"io"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/export"
	"github.com/noah-isme/gym-dashboard/pkg/storage"
	"github.com/noah-isme/gym-dashboard/pkg/timezone"
)

func TestBuildDatasetRendersLocalTimes(t *testing.T) {
	start := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)
	events := []models.Event{{ID: 3, Title: "Yoga", Status: models.EventScheduled, StartsAt: start, EndsAt: start.Add(time.Hour)}}

	data := BuildDataset("Events", []string{"title", "starts_at", "missing"}, events, timezone.New("Asia/Jakarta"))

	assert.Equal(t, []string{"id", "title", "starts_at", "missing"}, data.Headers)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "3", data.Rows[0]["id"])
	assert.Equal(t, "2024-05-01T18:00", data.Rows[0]["starts_at"])
	assert.Empty(t, data.Rows[0]["missing"])
}

func TestBuildDatasetPlainRecords(t *testing.T) {
	hours := []models.GymHours{{ID: 1, DayOfWeek: "MONDAY", OpensAt: "06:00", ClosesAt: "22:00"}}

	data := BuildDataset("Opening hours", []string{"day_of_week", "closed"}, hours, timezone.New(""))

	assert.Equal(t, "MONDAY", data.Rows[0]["day_of_week"])
	assert.Equal(t, "false", data.Rows[0]["closed"])
}

func newTestArchive(t *testing.T, clock clockwork.Clock) *ExportArchive {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour, clock.Now)
	return NewExportArchive(store, signer, clock, nil)
}

func TestExportArchivePublishAndOpen(t *testing.T) {
	manager, _, _ := newTestManager(t)
	session := adminSession(1)
	screen, err := manager.Mount(authed(), session, models.ResourceEvents)
	require.NoError(t, err)

	archive := newTestArchive(t, clockwork.NewFakeClockAt(time.Now()))
	link, err := archive.Publish(authed(), session, screen, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "csv", link.Format)
	assert.Contains(t, link.Filename, "events-")

	file, name, err := archive.Open(link.Token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, link.Filename, name)
	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Yoga Night")

	_, _, err = archive.Open(link.Token + "x")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestExportArchiveSweepRemovesExpiredFiles(t *testing.T) {
	manager, _, _ := newTestManager(t)
	session := adminSession(1)
	screen, err := manager.Mount(authed(), session, models.ResourceEvents)
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(time.Now())
	archive := newTestArchive(t, clock)
	link, err := archive.Publish(authed(), session, screen, export.FormatCSV)
	require.NoError(t, err)

	assert.Zero(t, archive.Sweep())
	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, archive.Sweep())

	_, _, err = archive.Open(link.Token)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
