package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/utils"
	"github.com/MKhiriev/go-collection-sync/internal/workers"
	"github.com/MKhiriev/go-collection-sync/models"
)

func (s *clientSyncService) FullUpload(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col := s.storages.Collection
	path, clock := col.Path(), col.Now

	if err = col.PrepareForFullUpload(ctx); err != nil {
		return mapSyncError(err)
	}
	if err = col.Close(); err != nil {
		return mapSyncError(err)
	}
	defer func() {
		if reopenErr := s.reopen(ctx, path, clock); reopenErr != nil && err == nil {
			err = mapSyncError(reopenErr)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return mapSyncError(fmt.Errorf("reading collection: %w", err))
	}
	if limit := s.syncCfg.MaxUncompressedBytes(); limit > 0 && int64(len(data)) > limit {
		return models.NewSyncError(models.SyncErrorUploadTooLarge,
			fmt.Sprintf("collection is %d bytes, the limit is %d", len(data), limit))
	}

	compressed, err := workers.Do(ctx, s.pool, func() ([]byte, error) {
		return utils.Gzip(data)
	})
	if err != nil {
		return mapSyncError(err)
	}
	if limit := s.syncCfg.MaxCompressedBytes(); limit > 0 && int64(len(compressed)) > limit {
		return models.NewSyncError(models.SyncErrorUploadTooLarge,
			fmt.Sprintf("compressed collection is %d bytes, the limit is %d", len(compressed), limit))
	}

	reply, err := s.remote.Upload(ctx, compressed)
	if err != nil {
		return err
	}
	if reply != models.UploadOK {
		return models.NewSyncError(models.SyncErrorServerMessage, reply)
	}

	s.logger.Info().Int("bytes", len(data)).Int("compressed", len(compressed)).Msg("full upload completed")
	return nil
}

func (s *clientSyncService) FullDownload(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.remote.Download(ctx)
	if err != nil {
		return err
	}

	path, clock := s.storages.Collection.Path(), s.storages.Collection.Now
	tmp, err := writeTempFile(filepath.Dir(path), "download-*.db", data)
	if err != nil {
		return mapSyncError(err)
	}

	if err = store.CheckCollectionFile(ctx, tmp, s.logger); err != nil {
		_ = os.Remove(tmp)
		s.logger.Err(err).Msg("downloaded collection is corrupt")
		return models.WrapSyncError(models.SyncErrorOther, err)
	}

	if err = s.storages.Collection.Close(); err != nil {
		_ = os.Remove(tmp)
		return mapSyncError(err)
	}
	defer func() {
		if reopenErr := s.reopen(ctx, path, clock); reopenErr != nil && err == nil {
			err = mapSyncError(reopenErr)
		}
	}()

	if err = os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return mapSyncError(fmt.Errorf("replacing collection: %w", err))
	}

	s.logger.Info().Int("bytes", len(data)).Msg("full download completed")
	return nil
}

// reopen replaces the closed collection handle with a fresh one at path,
// keeping the clock of the old one.
func (s *clientSyncService) reopen(ctx context.Context, path string, clock func() time.Time) error {
	col, err := store.OpenCollection(context.WithoutCancel(ctx), path, false, s.logger, store.WithClock(clock))
	if err != nil {
		return errors.Join(store.ErrCorruptCollection, err)
	}
	s.storages.Collection = col
	return nil
}
