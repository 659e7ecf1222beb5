package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
	"github.com/noah-isme/gym-dashboard/pkg/export"
	"github.com/noah-isme/gym-dashboard/pkg/storage"
	"github.com/noah-isme/gym-dashboard/pkg/timezone"
)

// BuildDataset flattens records into export rows. Instants are rendered in the
// gym's local time and every other column comes from the editable fields.
func BuildDataset[T models.Record](title string, columns []string, records []T, tz *timezone.Converter) export.Dataset {
	headers := append([]string{"id"}, columns...)
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		fields := record.EditableFields()
		var instants map[string]time.Time
		if temporal, ok := any(record).(models.Temporal); ok {
			instants = temporal.Instants()
		}
		row := map[string]string{"id": strconv.FormatInt(record.RecordID(), 10)}
		for _, col := range columns {
			if instant, ok := instants[col]; ok {
				row[col] = tz.ToLocal(instant)
				continue
			}
			if value, ok := fields[col]; ok && value != nil {
				row[col] = fmt.Sprint(value)
			}
		}
		rows = append(rows, row)
	}
	return export.Dataset{Title: title, Headers: headers, Rows: rows}
}

// ExportArchive stores rendered exports on disk and hands out signed links to them.
type ExportArchive struct {
	store  *storage.LocalStorage
	signer *storage.SignedURLSigner
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewExportArchive wires an archive. Files outlive their links by one sweep at most.
func NewExportArchive(store *storage.LocalStorage, signer *storage.SignedURLSigner, clock clockwork.Clock, logger *zap.Logger) *ExportArchive {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportArchive{store: store, signer: signer, clock: clock, logger: logger}
}

// Publish renders the screen's filtered collection and stores it for download.
func (a *ExportArchive) Publish(ctx context.Context, session models.Session, screen Screen, format export.Format) (*models.ExportLink, error) {
	data, err := screen.Export(ctx, format)
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("%s-%s.%s", screen.Resource(), a.clock.Now().UTC().Format("20060102-150405"), format)
	relPath := path.Join(strconv.FormatInt(session.UserID, 10), uuid.NewString(), filename)
	if _, err := a.store.Save(relPath, data); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Kind, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := a.signer.Generate(session.UserID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfiguration.Code, appErrors.ErrConfiguration.Kind, appErrors.ErrConfiguration.Status, "export signing is not configured")
	}
	a.logger.Info("export published",
		zap.String("screen_id", screen.ID()),
		zap.String("file", relPath),
		zap.Int("bytes", len(data)),
	)
	return &models.ExportLink{Token: token, Filename: filename, Format: string(format), ExpiresAt: expiresAt}, nil
}

// Open resolves a download token to the stored file. Invalid or expired tokens are not found.
func (a *ExportArchive) Open(token string) (*os.File, string, error) {
	_, relPath, err := a.signer.Parse(token)
	if err != nil {
		a.logger.Debug("export token rejected", zap.Error(err))
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export link is invalid or has expired")
	}
	file, err := a.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer exists")
	}
	return file, path.Base(relPath), nil
}

// Sweep deletes files whose links have expired.
func (a *ExportArchive) Sweep() int {
	deleted, err := a.store.CleanupOlderThan(a.clock.Now().Add(-a.signer.TTL()))
	if err != nil {
		a.logger.Warn("export cleanup failed", zap.Error(err))
	}
	if len(deleted) > 0 {
		a.logger.Info("expired exports removed", zap.Int("count", len(deleted)))
	}
	return len(deleted)
}

// Run sweeps expired exports until ctx is cancelled.
func (a *ExportArchive) Run(ctx context.Context) {
	ticker := a.clock.NewTicker(a.signer.TTL())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			a.Sweep()
		}
	}
}
