package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/mock"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/models"
)

var clientTestNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClientCollection(t *testing.T) *store.Collection {
	t.Helper()

	// every stamp is one millisecond later than the previous one
	var tick atomic.Int64
	clock := func() time.Time { return clientTestNow.Add(time.Duration(tick.Add(1)) * time.Millisecond) }

	col, err := store.OpenCollection(context.Background(), filepath.Join(t.TempDir(), "collection.db"), false,
		logger.Nop(), store.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { col.Close() })

	return col
}

func newTestClientSyncService(t *testing.T, col *store.Collection, remote *mock.MockSyncProtocol) *clientSyncService {
	t.Helper()

	svc := NewClientSyncService(&store.ClientStorages{Collection: col}, remote, "test,1.0,linux",
		config.Sync{ChunkSize: 2}, nil, logger.Nop()).(*clientSyncService)
	svc.now = func() time.Time { return clientTestNow }
	return svc
}

// remoteMetaFor returns a server meta sharing the collection's identity.
func remoteMetaFor(t *testing.T, col *store.Collection) models.SyncMeta {
	t.Helper()

	stamps, err := col.Stamps(context.Background())
	require.NoError(t, err)
	return models.SyncMeta{
		Modified:       stamps.Modified,
		Schema:         stamps.Schema,
		Created:        stamps.Created,
		Usn:            stamps.Usn,
		CurrentTime:    clientTestNow.Unix(),
		ShouldContinue: true,
	}
}

func addPendingCard(t *testing.T, col *store.Collection, id int64) {
	t.Helper()
	require.NoError(t, col.AddCard(context.Background(), models.CardEntry{ID: id, NoteID: id, DeckID: 1}))
}

// ─────────────────────────────────────────────
// Sync decisions
// ─────────────────────────────────────────────

func TestClientSync_NoChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)

	remote.EXPECT().Meta(gomock.Any(), gomock.Any()).Return(remoteMetaFor(t, col), nil)

	out, err := svc.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.NoChanges, out.Required)
}

func TestClientSync_FullSyncRequiredDoesNotStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)

	meta := remoteMetaFor(t, col)
	meta.Modified++
	meta.Schema++
	meta.Empty = true
	remote.EXPECT().Meta(gomock.Any(), gomock.Any()).Return(meta, nil)

	out, err := svc.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.FullSyncRequired, out.Required)
	assert.True(t, out.UploadOK)
}

func TestClientSync_SendsProtocolVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)

	remote.EXPECT().
		Meta(gomock.Any(), models.MetaRequest{SyncVersion: models.SyncVersionMax, ClientVersion: "test,1.0,linux"}).
		Return(remoteMetaFor(t, col), nil)

	_, err := svc.SyncStatus(context.Background())
	assert.NoError(t, err)
}

func TestClientSync_ServerMessageStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)

	meta := remoteMetaFor(t, col)
	meta.ShouldContinue = false
	meta.ServerMessage = "down for maintenance"
	remote.EXPECT().Meta(gomock.Any(), gomock.Any()).Return(meta, nil)

	_, err := svc.Sync(context.Background())

	require.True(t, models.IsSyncErrorKind(err, models.SyncErrorServerMessage))
	assert.Contains(t, err.Error(), "down for maintenance")
}

func TestClientSync_MetaErrorPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)

	remote.EXPECT().Meta(gomock.Any(), gomock.Any()).
		Return(models.SyncMeta{}, models.NewSyncError(models.SyncErrorAuthFailed, "forbidden"))

	_, err := svc.Sync(context.Background())

	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorAuthFailed))
}

// ─────────────────────────────────────────────
// Normal sync
// ─────────────────────────────────────────────

func expectNormalSyncUntilChunks(remote *mock.MockSyncProtocol) {
	remote.EXPECT().SetSessionKey(gomock.Any())
	remote.EXPECT().Start(gomock.Any(), gomock.Any()).Return(models.Graves{}, nil)
	remote.EXPECT().ApplyChanges(gomock.Any(), gomock.Any()).Return(models.UnchunkedChanges{}, nil)
	remote.EXPECT().Chunk(gomock.Any()).Return(models.Chunk{Done: true}, nil)
}

func TestNormalSync_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)

	addPendingCard(t, col, 1)
	meta := remoteMetaFor(t, col)
	meta.Modified--
	meta.Usn = 7

	var pushed []models.CardEntry
	finished := clientTestNow.Add(time.Minute).UnixMilli()

	gomock.InOrder(
		remote.EXPECT().Meta(gomock.Any(), gomock.Any()).Return(meta, nil),
		remote.EXPECT().SetSessionKey(gomock.Any()),
		remote.EXPECT().Start(gomock.Any(), models.StartRequest{ClientUsn: 0, LocalIsNewer: true}).Return(models.Graves{}, nil),
		remote.EXPECT().ApplyChanges(gomock.Any(), gomock.Any()).Return(models.UnchunkedChanges{}, nil),
		remote.EXPECT().Chunk(gomock.Any()).Return(models.Chunk{Done: true}, nil),
		remote.EXPECT().ApplyChunk(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req models.ApplyChunkRequest) error {
				pushed = append(pushed, req.Chunk.Cards...)
				return nil
			}),
		remote.EXPECT().SanityCheck(gomock.Any(), gomock.Any()).Return(models.SanityCheckResponse{Status: models.SanityCheckOk}, nil),
		remote.EXPECT().Finish(gomock.Any()).Return(finished, nil),
	)

	out, err := svc.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.NormalSyncRequired, out.Required)
	require.Len(t, pushed, 1)
	assert.Equal(t, models.Usn(7), pushed[0].Usn)

	stamps, err := col.Stamps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Usn(8), stamps.Usn)
	assert.Equal(t, finished, stamps.Modified)

	card, _, err := col.Card(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.Usn(7), card.Usn)
}

func TestNormalSync_ServerErrorRollsBackAndAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)

	addPendingCard(t, col, 1)
	meta := remoteMetaFor(t, col)
	meta.Modified--

	remote.EXPECT().Meta(gomock.Any(), gomock.Any()).Return(meta, nil)
	expectNormalSyncUntilChunks(remote)
	remote.EXPECT().ApplyChunk(gomock.Any(), gomock.Any()).Return(models.NewSyncError(models.SyncErrorServer, "boom"))
	remote.EXPECT().Abort(gomock.Any()).Return(nil)

	_, err := svc.Sync(context.Background())

	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorDatabaseCheckRequired), "got %v", err)
	card, _, err := col.Card(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.PendingUsn, card.Usn, "local changes must be rolled back")
	assert.False(t, col.InTransaction())
}

func TestNormalSync_SanityFailureForcesFullSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)

	addPendingCard(t, col, 1)
	meta := remoteMetaFor(t, col)
	meta.Modified--
	schemaBefore := meta.Schema

	remote.EXPECT().Meta(gomock.Any(), gomock.Any()).Return(meta, nil)
	expectNormalSyncUntilChunks(remote)
	remote.EXPECT().ApplyChunk(gomock.Any(), gomock.Any()).Return(nil)
	remote.EXPECT().SanityCheck(gomock.Any(), gomock.Any()).Return(models.SanityCheckResponse{
		Status: models.SanityCheckBad,
		Client: &models.SanityCheckCounts{Cards: 1},
		Server: &models.SanityCheckCounts{Cards: 2},
	}, nil)
	remote.EXPECT().Abort(gomock.Any()).Return(nil)

	_, err := svc.Sync(context.Background())

	var syncErr *models.SyncError
	require.True(t, errors.As(err, &syncErr))
	assert.Equal(t, models.SyncErrorSanityCheckFailed, syncErr.Kind)
	require.NotNil(t, syncErr.Server)
	assert.Equal(t, int64(2), syncErr.Server.Cards)

	stamps, err := col.Stamps(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, schemaBefore, stamps.Schema)
}

func TestNormalSync_ProgressCanCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)

	meta := remoteMetaFor(t, col)
	meta.Modified--

	remote.EXPECT().Meta(gomock.Any(), gomock.Any()).Return(meta, nil)
	remote.EXPECT().SetSessionKey(gomock.Any())
	remote.EXPECT().Abort(gomock.Any()).Return(nil)

	var stages []models.SyncStage
	svc.SetProgressFn(func(p models.NormalSyncProgress) bool {
		stages = append(stages, p.Stage)
		return false
	})

	_, err := svc.Sync(context.Background())

	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorInterrupted))
	assert.Equal(t, []models.SyncStage{models.StageConnecting}, stages)
}

func TestNormalSync_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)

	meta := remoteMetaFor(t, col)
	meta.Modified--

	ctx, cancel := context.WithCancel(context.Background())
	remote.EXPECT().Meta(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, models.MetaRequest) (models.SyncMeta, error) {
			cancel()
			return meta, nil
		})
	// depending on where the cancellation is noticed the session may not
	// have been opened yet
	remote.EXPECT().SetSessionKey(gomock.Any()).AnyTimes()
	remote.EXPECT().Abort(gomock.Any()).Return(nil).AnyTimes()

	_, err := svc.Sync(ctx)

	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorInterrupted))
}

// ─────────────────────────────────────────────
// Full sync
// ─────────────────────────────────────────────

func TestFullUpload_ServerRejects(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)

	remote.EXPECT().Upload(gomock.Any(), gomock.Any()).Return(models.CorruptCollectionMessage, nil)

	err := svc.FullUpload(context.Background())

	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorServerMessage))
	_, err = svc.storages.Collection.Stamps(context.Background())
	assert.NoError(t, err, "collection must be reopened")
}

func TestFullDownload_CorruptKeepsLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	col := newTestClientCollection(t)
	svc := newTestClientSyncService(t, col, remote)
	addPendingCard(t, col, 1)

	remote.EXPECT().Download(gomock.Any()).Return([]byte("this is not sqlite"), nil)

	err := svc.FullDownload(context.Background())

	require.Error(t, err)
	card, found, err := svc.storages.Collection.Card(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1), card.ID)
}

// ─────────────────────────────────────────────
// Login
// ─────────────────────────────────────────────

func TestClientLogin_StoresHostKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)

	gomock.InOrder(
		remote.EXPECT().HostKey(gomock.Any(), models.HostKeyRequest{Username: "alice", Password: "secret"}).
			Return(models.HostKeyResponse{Key: "hk"}, nil),
		remote.EXPECT().SetHostKey("hk"),
	)

	require.NoError(t, NewClientAuthService(remote, logger.Nop()).Login(context.Background(), "alice", "secret"))
}

func TestClientLogin_Failures(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockSyncProtocol(ctrl)
	svc := NewClientAuthService(remote, logger.Nop())

	err := svc.Login(context.Background(), "", "secret")
	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorAuthFailed))

	remote.EXPECT().HostKey(gomock.Any(), gomock.Any()).Return(models.HostKeyResponse{}, nil)
	err = svc.Login(context.Background(), "alice", "secret")
	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorAuthFailed))

	remote.EXPECT().HostKey(gomock.Any(), gomock.Any()).
		Return(models.HostKeyResponse{}, models.NewSyncError(models.SyncErrorAuthFailed, "forbidden"))
	err = svc.Login(context.Background(), "alice", "wrong")
	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorAuthFailed))
}

// ─────────────────────────────────────────────
// mapSyncError
// ─────────────────────────────────────────────

func TestMapSyncError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.SyncErrorKind
	}{
		{"server error", models.NewSyncError(models.SyncErrorServer, "500"), models.SyncErrorDatabaseCheckRequired},
		{"sync error passes", models.NewSyncError(models.SyncErrorConflict, "409"), models.SyncErrorConflict},
		{"schema changed", store.ErrNotetypeSchemaChanged, models.SyncErrorResyncRequired},
		{"notetype missing", store.ErrNotetypeMissing, models.SyncErrorDatabaseCheckRequired},
		{"corrupt", store.ErrCorruptCollection, models.SyncErrorDatabaseCheckRequired},
		{"cancelled", context.Canceled, models.SyncErrorInterrupted},
		{"other", errors.New("boom"), models.SyncErrorOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, models.IsSyncErrorKind(mapSyncError(tt.err), tt.want))
		})
	}
	assert.NoError(t, mapSyncError(nil))
}
