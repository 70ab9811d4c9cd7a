// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/workers"
	"github.com/MKhiriev/go-collection-sync/models"
)

const collectionFileName = "collection.db"

// serverSyncState is the server side of one normal sync. It lives between
// Start and Finish/Abort and owns the collection transaction.
type serverSyncState struct {
	key           string
	serverUsn     models.Usn
	clientUsn     models.Usn
	clientIsNewer bool
	// cursor is filled by ApplyChanges and drained by Chunk.
	cursor *models.ChunkableIDs
}

// serverUser holds one account's collection handle and its session. mu
// serializes every request of the account.
type serverUser struct {
	mu       sync.Mutex
	login    string
	folder   string
	col      *store.Collection
	session  *serverSyncState
	lastSeen time.Time

	logger *logger.Logger
}

type syncServer struct {
	mu    sync.Mutex
	users map[string]*serverUser

	baseDir string
	cfg     config.Sync
	pool    *workers.Pool
	now     func() time.Time

	logger *logger.Logger
}

// SyncServerOption customises a SyncServer.
type SyncServerOption func(*syncServer)

// WithServerClock overrides the wall clock used for stamps and idle checks.
func WithServerClock(now func() time.Time) SyncServerOption {
	return func(s *syncServer) {
		s.now = now
	}
}

// NewSyncServer returns a SyncServer keeping one collection per account under
// baseDir/<login>/collection.db.
func NewSyncServer(baseDir string, cfg config.Sync, pool *workers.Pool, logger *logger.Logger, opts ...SyncServerOption) SyncServer {
	s := &syncServer{
		users:   make(map[string]*serverUser),
		baseDir: baseDir,
		cfg:     cfg,
		pool:    pool,
		now:     time.Now,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *syncServer) user(login string) (*serverUser, error) {
	if err := ValidateLogin(login); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[login]; ok {
		return u, nil
	}

	folder := filepath.Join(s.baseDir, login)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("error creating user folder: %w", err)
	}

	u := &serverUser{
		login:  login,
		folder: folder,
		logger: s.logger.WithUser(login),
	}
	s.users[login] = u
	return u, nil
}

// lockedUser returns the account with its mutex held; the caller unlocks.
func (s *syncServer) lockedUser(login string) (*serverUser, error) {
	u, err := s.user(login)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	return u, nil
}

func (u *serverUser) collectionPath() string {
	return filepath.Join(u.folder, collectionFileName)
}

func (u *serverUser) open(ctx context.Context, s *syncServer) (*store.Collection, error) {
	if u.col != nil {
		return u.col, nil
	}

	col, err := store.OpenCollection(ctx, u.collectionPath(), true, u.logger, store.WithClock(s.now))
	if err != nil {
		return nil, err
	}
	u.col = col
	return col, nil
}

// dropSession rolls back and forgets the active session.
func (u *serverUser) dropSession() {
	if u.session == nil {
		return
	}
	if u.col != nil {
		if err := u.col.Rollback(); err != nil {
			u.logger.Err(err).Str("func", "*serverUser.dropSession").Msg("rollback failed")
		}
	}
	u.session = nil
}

// closeCollection drops the session and releases the collection handle.
func (u *serverUser) closeCollection() {
	u.dropSession()
	if u.col == nil {
		return
	}
	if err := u.col.Close(); err != nil {
		u.logger.Err(err).Str("func", "*serverUser.closeCollection").Msg("closing collection failed")
	}
	u.col = nil
}

func (s *syncServer) expireIdle(u *serverUser, now time.Time) bool {
	if u.session == nil || s.cfg.SessionIdleTimeout <= 0 {
		return false
	}
	if now.Sub(u.lastSeen) <= s.cfg.SessionIdleTimeout {
		return false
	}

	u.logger.Info().Str("session", u.session.key).Msg("aborting idle sync session")
	u.dropSession()
	return true
}

// withSession runs fn under the account lock with the session named by key.
// An error from fn discards the session and the collection handle.
func (s *syncServer) withSession(ctx context.Context, login, key string, fn func(u *serverUser, st *serverSyncState) error) error {
	u, err := s.lockedUser(login)
	if err != nil {
		return err
	}
	defer u.mu.Unlock()

	now := s.now()
	s.expireIdle(u, now)

	if u.session == nil || u.session.key != key {
		u.logger.Warn().Str("session", key).Msg("request does not match the active session")
		return ErrSessionConflict
	}
	u.lastSeen = now

	if err = fn(u, u.session); err != nil {
		u.logger.Err(err).Msg("sync request failed, discarding session")
		u.closeCollection()
		return err
	}

	return nil
}

func (s *syncServer) chunkSize() int {
	if s.cfg.ChunkSize > 0 {
		return s.cfg.ChunkSize
	}
	return models.DefaultChunkSize
}

func (s *syncServer) Meta(ctx context.Context, login string, req models.MetaRequest) (models.SyncMeta, error) {
	if req.SyncVersion < models.SyncVersionMin || req.SyncVersion > models.SyncVersionMax {
		return models.SyncMeta{}, fmt.Errorf("%w: %d", ErrClientTooOld, req.SyncVersion)
	}

	u, err := s.lockedUser(login)
	if err != nil {
		return models.SyncMeta{}, err
	}
	defer u.mu.Unlock()

	// a new sync attempt supersedes whatever the previous one left behind
	u.dropSession()

	meta, err := s.meta(ctx, u)
	if err != nil {
		u.closeCollection()
		return models.SyncMeta{}, err
	}

	u.logger.Debug().Str("client", req.ClientVersion).Int("usn", int(meta.Usn)).Msg("meta served")
	return meta, nil
}

func (s *syncServer) meta(ctx context.Context, u *serverUser) (models.SyncMeta, error) {
	col, err := u.open(ctx, s)
	if err != nil {
		return models.SyncMeta{}, err
	}

	stamps, err := col.Stamps(ctx)
	if err != nil {
		return models.SyncMeta{}, err
	}
	hasCards, err := col.HaveAtLeastOneCard(ctx)
	if err != nil {
		return models.SyncMeta{}, err
	}

	now := s.now()
	if limit := s.cfg.MaxUncompressedBytes(); limit > 0 {
		if info, statErr := os.Stat(col.Path()); statErr == nil && info.Size() > limit {
			// too big to sync incrementally forever; make the client pick a side
			stamps.Schema = now.UnixMilli()
			if err = col.SetSchemaModified(ctx, stamps.Schema); err != nil {
				return models.SyncMeta{}, err
			}
			u.logger.Warn().Int64("size", info.Size()).Msg("collection exceeds the upload limit, forcing a full sync")
		}
	}

	return models.SyncMeta{
		Modified:       stamps.Modified,
		Schema:         stamps.Schema,
		Created:        stamps.Created,
		Usn:            stamps.Usn,
		CurrentTime:    now.Unix(),
		ShouldContinue: true,
		Empty:          !hasCards,
	}, nil
}

func (s *syncServer) Start(ctx context.Context, login, sessionKey string, req models.StartRequest) (models.Graves, error) {
	if sessionKey == "" {
		return models.Graves{}, fmt.Errorf("%w: empty session key", ErrInvalidDataProvided)
	}

	u, err := s.lockedUser(login)
	if err != nil {
		return models.Graves{}, err
	}
	defer u.mu.Unlock()

	if u.session != nil {
		u.logger.Info().Str("previous", u.session.key).Str("session", sessionKey).Msg("new session supersedes the active one")
	}
	u.dropSession()

	graves, err := s.start(ctx, u, sessionKey, req)
	if err != nil {
		u.closeCollection()
		return models.Graves{}, err
	}

	return graves, nil
}

func (s *syncServer) start(ctx context.Context, u *serverUser, sessionKey string, req models.StartRequest) (models.Graves, error) {
	col, err := u.open(ctx, s)
	if err != nil {
		return models.Graves{}, err
	}
	if err = col.Begin(ctx); err != nil {
		return models.Graves{}, err
	}

	serverUsn, err := col.Usn(ctx)
	if err != nil {
		return models.Graves{}, err
	}

	graves, err := col.PendingGraves(ctx, req.ClientUsn)
	if err != nil {
		return models.Graves{}, err
	}

	if req.Graves != nil {
		if err = col.ApplyGraves(ctx, req.Graves, serverUsn); err != nil {
			return models.Graves{}, err
		}
	}

	u.session = &serverSyncState{
		key:           sessionKey,
		serverUsn:     serverUsn,
		clientUsn:     req.ClientUsn,
		clientIsNewer: req.LocalIsNewer,
	}
	u.lastSeen = s.now()

	u.logger.Info().
		Str("session", sessionKey).
		Int("server_usn", int(serverUsn)).
		Int("client_usn", int(req.ClientUsn)).
		Int("graves", graves.Len()).
		Msg("sync session started")

	return *graves, nil
}

func (s *syncServer) ApplyGraves(ctx context.Context, login, sessionKey string, req models.ApplyGravesRequest) error {
	return s.withSession(ctx, login, sessionKey, func(u *serverUser, st *serverSyncState) error {
		return u.col.ApplyGraves(ctx, &req.Chunk, st.serverUsn)
	})
}

func (s *syncServer) ApplyChanges(ctx context.Context, login, sessionKey string, req models.ApplyChangesRequest) (models.UnchunkedChanges, error) {
	var local *models.UnchunkedChanges

	err := s.withSession(ctx, login, sessionKey, func(u *serverUser, st *serverSyncState) error {
		// collected before the client's changes land, so they are not echoed
		var err error
		local, err = u.col.PendingUnchunkedChanges(ctx, st.clientUsn, nil, !st.clientIsNewer)
		if err != nil {
			return err
		}

		if err = u.col.ApplyUnchunkedChanges(ctx, &req.Changes, st.serverUsn); err != nil {
			return err
		}

		st.cursor, err = u.col.ChunkableIDs(ctx, st.clientUsn)
		return err
	})
	if err != nil {
		return models.UnchunkedChanges{}, err
	}

	return *local, nil
}

func (s *syncServer) Chunk(ctx context.Context, login, sessionKey string) (models.Chunk, error) {
	var chunk *models.Chunk

	err := s.withSession(ctx, login, sessionKey, func(u *serverUser, st *serverSyncState) error {
		var err error
		if st.cursor == nil {
			if st.cursor, err = u.col.ChunkableIDs(ctx, st.clientUsn); err != nil {
				return err
			}
		}

		chunk, err = u.col.TakeChunk(ctx, st.cursor, s.chunkSize(), nil)
		return err
	})
	if err != nil {
		return models.Chunk{}, err
	}

	return *chunk, nil
}

func (s *syncServer) ApplyChunk(ctx context.Context, login, sessionKey string, req models.ApplyChunkRequest) error {
	return s.withSession(ctx, login, sessionKey, func(u *serverUser, st *serverSyncState) error {
		return u.col.ApplyChunk(ctx, &req.Chunk, st.clientUsn)
	})
}

func (s *syncServer) SanityCheck(ctx context.Context, login, sessionKey string, req models.SanityCheckRequest) (models.SanityCheckResponse, error) {
	var resp models.SanityCheckResponse

	err := s.withSession(ctx, login, sessionKey, func(u *serverUser, st *serverSyncState) error {
		col := u.col
		server, err := workers.Do(ctx, s.pool, func() (models.SanityCheckCounts, error) {
			return col.SanityCheckInfo(ctx)
		})
		if err != nil {
			return err
		}

		client := req.Client
		resp = models.SanityCheckResponse{Status: models.SanityCheckOk, Client: &client, Server: &server}

		if !SanityCountsMatch(client, server) {
			u.logger.Warn().Any("client", client).Any("server", server).Msg("sanity check failed")
			resp.Status = models.SanityCheckBad
			u.closeCollection()
		}
		return nil
	})

	return resp, err
}

// SanityCountsMatch compares two snapshots ignoring the due buckets and the
// grave totals, which legitimately differ between the sides.
func SanityCountsMatch(a, b models.SanityCheckCounts) bool {
	a.Counts, b.Counts = models.DueCounts{}, models.DueCounts{}
	a.Graves, b.Graves = 0, 0
	return a == b
}

func (s *syncServer) Finish(ctx context.Context, login, sessionKey string) (int64, error) {
	var modified int64

	err := s.withSession(ctx, login, sessionKey, func(u *serverUser, st *serverSyncState) error {
		modified = s.now().UnixMilli()

		if err := u.col.SetModified(ctx, modified); err != nil {
			return err
		}
		if err := u.col.SetLastSync(ctx, modified); err != nil {
			return err
		}
		if err := u.col.IncrementUsn(ctx); err != nil {
			return err
		}
		if err := u.col.Commit(); err != nil {
			return err
		}

		u.session = nil
		u.logger.Info().Str("session", st.key).Int64("mod", modified).Msg("sync session finished")
		return nil
	})

	return modified, err
}

func (s *syncServer) Abort(ctx context.Context, login, sessionKey string) error {
	u, err := s.lockedUser(login)
	if err != nil {
		return err
	}
	defer u.mu.Unlock()

	if u.session == nil || u.session.key != sessionKey {
		return nil
	}

	u.logger.Info().Str("session", sessionKey).Msg("sync session aborted by client")
	u.dropSession()
	return nil
}

func (s *syncServer) Upload(ctx context.Context, login string, data []byte) (string, error) {
	if limit := s.cfg.MaxUncompressedBytes(); limit > 0 && int64(len(data)) > limit {
		return "", fmt.Errorf("%w: %d bytes", ErrCollectionTooLarge, len(data))
	}

	u, err := s.lockedUser(login)
	if err != nil {
		return "", err
	}
	defer u.mu.Unlock()

	tmp, err := writeTempFile(u.folder, "upload-*.db", data)
	if err != nil {
		return "", err
	}

	if err = store.CheckCollectionFile(ctx, tmp, u.logger); err != nil {
		u.logger.Warn().Err(err).Msg("rejecting corrupt upload")
		_ = os.Remove(tmp)
		return models.CorruptCollectionMessage, nil
	}

	u.closeCollection()
	if err = os.Rename(tmp, u.collectionPath()); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("error replacing collection: %w", err)
	}

	u.logger.Info().Int("bytes", len(data)).Msg("collection replaced by full upload")
	return models.UploadOK, nil
}

func (s *syncServer) Download(ctx context.Context, login string) ([]byte, error) {
	u, err := s.lockedUser(login)
	if err != nil {
		return nil, err
	}
	defer u.mu.Unlock()

	// make sure there is a file to send, then let go of it
	if _, err = u.open(ctx, s); err != nil {
		return nil, err
	}
	u.closeCollection()

	data, err := os.ReadFile(u.collectionPath())
	if err != nil {
		return nil, fmt.Errorf("error reading collection: %w", err)
	}

	u.logger.Info().Int("bytes", len(data)).Msg("collection sent for full download")
	return data, nil
}

func (s *syncServer) SweepIdleSessions(now time.Time) int {
	s.mu.Lock()
	users := make([]*serverUser, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.Unlock()

	swept := 0
	for _, u := range users {
		// a busy user is by definition not idle
		if !u.mu.TryLock() {
			continue
		}
		if s.expireIdle(u, now) {
			swept++
		}
		u.mu.Unlock()
	}

	return swept
}

func (s *syncServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		u.mu.Lock()
		u.closeCollection()
		u.mu.Unlock()
	}
	return nil
}

// writeTempFile writes data to a new file in dir and returns its path.
func writeTempFile(dir, pattern string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", fmt.Errorf("error creating temp file: %w", err)
	}

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("error writing temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("error closing temp file: %w", err)
	}

	return f.Name(), nil
}
