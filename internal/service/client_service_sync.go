// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-collection-sync/internal/adapter"
	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/workers"
	"github.com/MKhiriev/go-collection-sync/models"
)

// clientSyncService drives syncs of the local collection. Operations are
// serialized: the collection handle is owned by one sync at a time.
type clientSyncService struct {
	mu sync.Mutex

	storages *store.ClientStorages
	remote   adapter.SyncProtocol

	clientVersion string
	syncCfg       config.Sync
	pool          *workers.Pool
	progress      models.ProgressFn
	now           func() time.Time

	logger *logger.Logger
}

// NewClientSyncService wires the local collection in storages to remote.
// clientVersion is reported to the server in meta requests.
func NewClientSyncService(
	storages *store.ClientStorages,
	remote adapter.SyncProtocol,
	clientVersion string,
	syncCfg config.Sync,
	pool *workers.Pool,
	logger *logger.Logger,
) ClientSyncService {
	return &clientSyncService{
		storages:      storages,
		remote:        remote,
		clientVersion: clientVersion,
		syncCfg:       syncCfg,
		pool:          pool,
		now:           time.Now,
		logger:        logger,
	}
}

func (s *clientSyncService) SetProgressFn(fn models.ProgressFn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = fn
}

func (s *clientSyncService) SyncStatus(ctx context.Context) (models.SyncOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.syncState(ctx)
	if err != nil {
		return models.SyncOutput{}, err
	}
	return state.Output(), nil
}

func (s *clientSyncService) Sync(ctx context.Context) (models.SyncOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.syncState(ctx)
	if err != nil {
		return models.SyncOutput{}, err
	}

	log := s.logger.With().Str("required", state.Required.String()).Logger()
	switch state.Required {
	case models.NoChanges:
		log.Debug().Msg("collections already in sync")
		return state.Output(), nil
	case models.FullSyncRequired:
		log.Info().Bool("upload_ok", state.UploadOK).Bool("download_ok", state.DownloadOK).Msg("full sync required")
		return state.Output(), nil
	}

	syncer := NewNormalSyncer(s.storages.Collection, s.remote, state, s.syncCfg.ChunkSize, s.pool, s.progress, s.logger)
	if err = syncer.Sync(ctx); err != nil {
		return state.Output(), err
	}

	return state.Output(), nil
}

// syncState fetches both metas and compares them.
func (s *clientSyncService) syncState(ctx context.Context) (models.ClientSyncState, error) {
	remote, err := s.remote.Meta(ctx, models.MetaRequest{
		SyncVersion:   models.SyncVersionMax,
		ClientVersion: s.clientVersion,
	})
	if err != nil {
		return models.ClientSyncState{}, err
	}

	if err = CheckRemoteMeta(remote, s.now(), s.syncCfg.MaxClockSkew); err != nil {
		return models.ClientSyncState{}, err
	}

	local, err := s.localMeta(ctx)
	if err != nil {
		return models.ClientSyncState{}, mapSyncError(err)
	}

	state := CompareSyncMeta(local, remote)
	s.logger.Debug().
		Str("required", state.Required.String()).
		Int64("local_mod", local.Modified).
		Int64("remote_mod", remote.Modified).
		Int("local_usn", int(local.Usn)).
		Int("remote_usn", int(remote.Usn)).
		Msg("sync state computed")

	return state, nil
}

func (s *clientSyncService) localMeta(ctx context.Context) (models.SyncMeta, error) {
	col := s.storages.Collection

	stamps, err := col.Stamps(ctx)
	if err != nil {
		return models.SyncMeta{}, err
	}
	hasCards, err := col.HaveAtLeastOneCard(ctx)
	if err != nil {
		return models.SyncMeta{}, err
	}

	return models.SyncMeta{
		Modified:       stamps.Modified,
		Schema:         stamps.Schema,
		Created:        stamps.Created,
		Usn:            stamps.Usn,
		CurrentTime:    s.now().Unix(),
		ShouldContinue: true,
		Empty:          !hasCards,
	}, nil
}
