package workers

import (
	"context"
	"errors"
	"time"

	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/models"
)

// SyncWorker syncs the local collection every interval. A failed sync is
// logged and retried on the next tick; only a sync that needs a full sync
// stops the worker, since repeating it cannot succeed.
type SyncWorker struct {
	syncer   Syncer
	interval time.Duration
	logger   *logger.Logger

	// onResult receives every outcome. Used for CLI output.
	onResult func(models.SyncOutput, error)
}

// NewSyncWorker returns a worker syncing every interval (default 5 minutes).
func NewSyncWorker(syncer Syncer, interval time.Duration, log *logger.Logger, onResult func(models.SyncOutput, error)) *SyncWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncWorker{syncer: syncer, interval: interval, logger: log, onResult: onResult}
}

func (w *SyncWorker) Run(ctx context.Context) error {
	t := time.NewTicker(w.interval)
	defer t.Stop()

	for {
		out, err := w.syncer.Sync(ctx)
		if w.onResult != nil {
			w.onResult(out, err)
		}

		var syncErr *models.SyncError
		switch {
		case err == nil && out.Required == models.FullSyncRequired:
			w.logger.Warn().Msg("full sync required, stopping periodic sync")
			return nil
		case errors.As(err, &syncErr) && syncErr.RequiresFullSync():
			w.logger.Warn().Err(err).Msg("full sync required, stopping periodic sync")
			return nil
		case err != nil && ctx.Err() == nil:
			w.logger.Err(err).Msg("periodic sync failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
