package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-collection-sync/internal/adapter"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/utils"
	"github.com/MKhiriev/go-collection-sync/internal/workers"
	"github.com/MKhiriev/go-collection-sync/models"
)

// NormalSyncer runs one incremental sync. All local changes happen inside a
// single transaction that is committed only after the server finished.
type NormalSyncer struct {
	col    *store.Collection
	remote adapter.SyncProtocol
	state  models.ClientSyncState

	chunkSize int
	pool      *workers.Pool
	progress  models.ProgressFn
	stats     models.NormalSyncProgress

	logger *logger.Logger
}

// NewNormalSyncer prepares a sync for state, which must require a normal
// sync. chunkSize <= 0 selects models.DefaultChunkSize; progress may be nil.
func NewNormalSyncer(
	col *store.Collection,
	remote adapter.SyncProtocol,
	state models.ClientSyncState,
	chunkSize int,
	pool *workers.Pool,
	progress models.ProgressFn,
	logger *logger.Logger,
) *NormalSyncer {
	if chunkSize <= 0 {
		chunkSize = models.DefaultChunkSize
	}

	return &NormalSyncer{
		col:       col,
		remote:    remote,
		state:     state,
		chunkSize: chunkSize,
		pool:      pool,
		progress:  progress,
		logger:    logger,
	}
}

// Sync runs every stage under a fresh session key. On failure the local
// transaction is rolled back and the server session aborted; the returned
// error is always a *models.SyncError.
func (n *NormalSyncer) Sync(ctx context.Context) error {
	n.remote.SetSessionKey(utils.NewSessionKey())

	if err := n.col.Begin(ctx); err != nil {
		return mapSyncError(err)
	}

	err := n.run(ctx)
	if err == nil {
		n.logger.Info().
			Int("local_update", n.stats.LocalUpdate).
			Int("local_remove", n.stats.LocalRemove).
			Int("remote_update", n.stats.RemoteUpdate).
			Int("remote_remove", n.stats.RemoteRemove).
			Msg("normal sync completed")
		return nil
	}

	err = mapSyncError(err)
	n.logger.Err(err).Str("stage", n.stats.Stage.String()).Msg("normal sync failed, rolling back")

	if rbErr := n.col.Rollback(); rbErr != nil {
		n.logger.Err(rbErr).Msg("local rollback failed")
	}

	// the caller's context may be the reason we are here
	abortCtx := context.WithoutCancel(ctx)
	if abortErr := n.remote.Abort(abortCtx); abortErr != nil {
		n.logger.Warn().Err(abortErr).Msg("server abort failed")
	}

	if models.IsSyncErrorKind(err, models.SyncErrorSanityCheckFailed) {
		// force a one-way sync next time
		if schemaErr := n.col.SetSchemaModified(abortCtx, n.col.Now().UnixMilli()); schemaErr != nil {
			n.logger.Err(schemaErr).Msg("marking schema modified failed")
		}
	}

	return err
}

func (n *NormalSyncer) run(ctx context.Context) error {
	stages := []func(context.Context) error{
		n.startAndProcessDeletions,
		n.processUnchunkedChanges,
		n.processChunksFromServer,
		n.sendChunksToServer,
		n.sanityCheck,
		n.finalize,
	}

	for _, stage := range stages {
		if err := stage(ctx); err != nil {
			return err
		}
	}
	return nil
}

// checkpoint reports progress and stops the sync when the caller asked to.
func (n *NormalSyncer) checkpoint(ctx context.Context, stage models.SyncStage) error {
	n.stats.Stage = stage
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.progress != nil && !n.progress(n.stats) {
		return models.NewSyncError(models.SyncErrorInterrupted, "sync cancelled")
	}
	return nil
}

func (n *NormalSyncer) startAndProcessDeletions(ctx context.Context) error {
	if err := n.checkpoint(ctx, models.StageConnecting); err != nil {
		return err
	}

	remoteGraves, err := n.remote.Start(ctx, models.StartRequest{
		ClientUsn:    n.state.UsnAtLastSync,
		LocalIsNewer: n.state.LocalIsNewer,
	})
	if err != nil {
		return err
	}

	local, err := n.col.PendingGraves(ctx, models.PendingUsn)
	if err != nil {
		return err
	}
	if err = n.col.UpdatePendingGraveUsns(ctx, n.state.ServerUsn); err != nil {
		return err
	}

	for batch := local.TakeChunk(n.chunkSize); batch != nil; batch = local.TakeChunk(n.chunkSize) {
		if err = n.remote.ApplyGraves(ctx, models.ApplyGravesRequest{Chunk: *batch}); err != nil {
			return err
		}
		n.stats.RemoteRemove += batch.Len()
		if err = n.checkpoint(ctx, models.StageGraves); err != nil {
			return err
		}
	}

	if err = n.col.ApplyGraves(ctx, &remoteGraves, n.state.ServerUsn); err != nil {
		return err
	}
	n.stats.LocalRemove += remoteGraves.Len()

	return n.checkpoint(ctx, models.StageGraves)
}

func (n *NormalSyncer) processUnchunkedChanges(ctx context.Context) error {
	serverUsn := n.state.ServerUsn
	local, err := n.col.PendingUnchunkedChanges(ctx, models.PendingUsn, &serverUsn, n.state.LocalIsNewer)
	if err != nil {
		return err
	}

	remote, err := n.remote.ApplyChanges(ctx, models.ApplyChangesRequest{Changes: *local})
	if err != nil {
		return err
	}
	n.stats.RemoteUpdate += unchunkedLen(local)

	if err = n.col.ApplyUnchunkedChanges(ctx, &remote, n.state.ServerUsn); err != nil {
		return err
	}
	n.stats.LocalUpdate += unchunkedLen(&remote)

	return n.checkpoint(ctx, models.StageUnchunkedChanges)
}

func (n *NormalSyncer) processChunksFromServer(ctx context.Context) error {
	for {
		chunk, err := n.remote.Chunk(ctx)
		if err != nil {
			return err
		}

		if err = n.col.ApplyChunk(ctx, &chunk, models.PendingUsn); err != nil {
			return err
		}
		n.stats.LocalUpdate += chunk.Len()

		if err = n.checkpoint(ctx, models.StageChunksFromServer); err != nil {
			return err
		}
		if chunk.Done {
			return nil
		}
	}
}

func (n *NormalSyncer) sendChunksToServer(ctx context.Context) error {
	cursor, err := n.col.ChunkableIDs(ctx, models.PendingUsn)
	if err != nil {
		return err
	}

	serverUsn := n.state.ServerUsn
	for {
		chunk, err := n.col.TakeChunk(ctx, cursor, n.chunkSize, &serverUsn)
		if err != nil {
			return err
		}

		if err = n.remote.ApplyChunk(ctx, models.ApplyChunkRequest{Chunk: *chunk}); err != nil {
			return err
		}
		n.stats.RemoteUpdate += chunk.Len()

		if err = n.checkpoint(ctx, models.StageChunksToServer); err != nil {
			return err
		}
		if chunk.Done {
			return nil
		}
	}
}

func (n *NormalSyncer) sanityCheck(ctx context.Context) error {
	col := n.col
	counts, err := workers.Do(ctx, n.pool, func() (models.SanityCheckCounts, error) {
		return col.SanityCheckInfo(ctx)
	})
	if err != nil {
		return err
	}

	resp, err := n.remote.SanityCheck(ctx, models.SanityCheckRequest{Client: counts})
	if err != nil {
		return err
	}

	if resp.Status != models.SanityCheckOk {
		return &models.SyncError{
			Kind:   models.SyncErrorSanityCheckFailed,
			Info:   "client and server counts differ",
			Client: resp.Client,
			Server: resp.Server,
		}
	}

	return n.checkpoint(ctx, models.StageSanityCheck)
}

func (n *NormalSyncer) finalize(ctx context.Context) error {
	if err := n.checkpoint(ctx, models.StageFinalizing); err != nil {
		return err
	}

	modified, err := n.remote.Finish(ctx)
	if err != nil {
		return err
	}

	if err = n.col.SetUsn(ctx, n.state.ServerUsn+1); err != nil {
		return err
	}
	if err = n.col.SetModified(ctx, modified); err != nil {
		return err
	}
	if err = n.col.SetLastSync(ctx, modified); err != nil {
		return err
	}
	if err = n.col.Commit(); err != nil {
		return fmt.Errorf("committing sync: %w", err)
	}

	return nil
}

func unchunkedLen(c *models.UnchunkedChanges) int {
	return len(c.Notetypes) + len(c.Decks) + len(c.DeckConfig) + len(c.Tags)
}
