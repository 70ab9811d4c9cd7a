// Package workers provides the background jobs of the sync server and the
// sync client, a Workers aggregate that runs them together, and a bounded
// Pool for CPU-heavy work that must not block the sync loop.
package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-collection-sync/models"
)

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks until ctx is cancelled or the worker fails. Returning nil after
// cancellation is the normal shutdown path.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run(ctx context.Context) error {
//	    <-ctx.Done()
//	    return nil
//	}
type Worker interface {
	Run(ctx context.Context) error
}

// Syncer runs one normal sync of the local collection.
type Syncer interface {
	Sync(ctx context.Context) (models.SyncOutput, error)
}

// IdleSessionSweeper aborts sync sessions that saw no request since before
// the given instant.
type IdleSessionSweeper interface {
	SweepIdleSessions(now time.Time) int
}
