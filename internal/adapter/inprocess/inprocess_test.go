package inprocess

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/service"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/utils"
	"github.com/MKhiriev/go-collection-sync/models"
)

func newTestClient(t *testing.T, limits config.Sync) *client {
	t.Helper()

	auth := service.NewAuthService(store.NewMemoryAccountRepository(), config.App{
		TokenSignKey:  "test-key",
		TokenIssuer:   "test",
		TokenDuration: time.Hour,
	}, logger.Nop())
	require.NoError(t, auth.SeedUsers(context.Background(), []string{"alice:secret"}))

	server := service.NewSyncServer(t.TempDir(), config.Sync{}, nil, logger.Nop())
	t.Cleanup(func() { _ = server.Close() })

	return New(server, auth, limits, logger.Nop()).(*client)
}

func loggedIn(t *testing.T, c *client) *client {
	t.Helper()
	resp, err := c.HostKey(context.Background(), models.HostKeyRequest{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Key)
	c.SetHostKey(resp.Key)
	return c
}

func TestMeta_RequiresHostKey(t *testing.T) {
	c := newTestClient(t, config.Sync{})

	_, err := c.Meta(context.Background(), models.MetaRequest{SyncVersion: models.SyncVersionMax})

	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorAuthFailed), "got %v", err)
}

func TestMeta_LoggedIn(t *testing.T) {
	c := loggedIn(t, newTestClient(t, config.Sync{}))

	meta, err := c.Meta(context.Background(), models.MetaRequest{SyncVersion: models.SyncVersionMax})

	require.NoError(t, err)
	assert.True(t, meta.ShouldContinue)
	assert.True(t, meta.Empty)
}

func TestMeta_ClientTooOld(t *testing.T) {
	c := loggedIn(t, newTestClient(t, config.Sync{}))

	_, err := c.Meta(context.Background(), models.MetaRequest{SyncVersion: models.SyncVersionMin - 1})

	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorClientTooOld), "got %v", err)
}

func TestHostKey_WrongPassword(t *testing.T) {
	c := newTestClient(t, config.Sync{})

	_, err := c.HostKey(context.Background(), models.HostKeyRequest{Username: "alice", Password: "nope"})

	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorAuthFailed), "got %v", err)
}

func TestCancelledContext(t *testing.T) {
	c := loggedIn(t, newTestClient(t, config.Sync{}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Meta(ctx, models.MetaRequest{SyncVersion: models.SyncVersionMax})

	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorInterrupted), "got %v", err)
}

func TestSession_ChunkWithoutStart(t *testing.T) {
	c := loggedIn(t, newTestClient(t, config.Sync{}))
	c.SetSessionKey("s1")

	_, err := c.Chunk(context.Background())

	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorConflict), "got %v", err)
}

func TestSession_StartThenAbort(t *testing.T) {
	c := loggedIn(t, newTestClient(t, config.Sync{}))
	ctx := context.Background()
	c.SetSessionKey("s1")
	assert.Equal(t, "s1", c.SessionKey())

	graves, err := c.Start(ctx, models.StartRequest{})
	require.NoError(t, err)
	assert.Zero(t, graves.Len())

	require.NoError(t, c.Abort(ctx))

	_, err = c.Chunk(ctx)
	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorConflict), "got %v", err)
}

func TestUpload(t *testing.T) {
	tests := []struct {
		name      string
		limits    config.Sync
		payload   func(t *testing.T) []byte
		wantReply string
		wantKind  models.SyncErrorKind
	}{
		{
			name: "corrupt collection",
			payload: func(t *testing.T) []byte {
				b, err := utils.Gzip([]byte("not a database"))
				require.NoError(t, err)
				return b
			},
			wantReply: models.CorruptCollectionMessage,
		},
		{
			name: "not gzip",
			payload: func(*testing.T) []byte {
				return []byte("plain")
			},
			wantKind: models.SyncErrorOther,
		},
		{
			name:   "compressed too large",
			limits: config.Sync{MaxUploadMegsCompressed: 1},
			payload: func(*testing.T) []byte {
				return make([]byte, 1024*1024+1)
			},
			wantKind: models.SyncErrorUploadTooLarge,
		},
		{
			name:   "uncompressed too large",
			limits: config.Sync{MaxUploadMegsUncompressed: 1},
			payload: func(t *testing.T) []byte {
				b, err := utils.Gzip(make([]byte, 2*1024*1024))
				require.NoError(t, err)
				return b
			},
			wantKind: models.SyncErrorUploadTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loggedIn(t, newTestClient(t, tt.limits))

			reply, err := c.Upload(context.Background(), tt.payload(t))

			if tt.wantReply != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantReply, reply)
				return
			}
			assert.True(t, models.IsSyncErrorKind(err, tt.wantKind), "got %v", err)
		})
	}
}

func TestDownload_ThenUpload(t *testing.T) {
	c := loggedIn(t, newTestClient(t, config.Sync{}))
	ctx := context.Background()

	data, err := c.Download(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	gz, err := utils.Gzip(data)
	require.NoError(t, err)
	reply, err := c.Upload(ctx, gz)

	require.NoError(t, err)
	assert.Equal(t, models.UploadOK, reply)
}

func TestMapError(t *testing.T) {
	passthrough := models.NewSyncError(models.SyncErrorResyncRequired, "resync")

	tests := []struct {
		name string
		err  error
		want models.SyncErrorKind
	}{
		{"sync error kept", passthrough, models.SyncErrorResyncRequired},
		{"canceled", fmt.Errorf("wrapped: %w", context.Canceled), models.SyncErrorInterrupted},
		{"deadline", context.DeadlineExceeded, models.SyncErrorNetwork},
		{"conflict", service.ErrSessionConflict, models.SyncErrorConflict},
		{"too old", service.ErrClientTooOld, models.SyncErrorClientTooOld},
		{"wrong password", service.ErrWrongPassword, models.SyncErrorAuthFailed},
		{"too large", utils.ErrPayloadTooLarge, models.SyncErrorUploadTooLarge},
		{"schema changed", store.ErrNotetypeSchemaChanged, models.SyncErrorResyncRequired},
		{"unknown", errors.New("boom"), models.SyncErrorServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			assert.True(t, models.IsSyncErrorKind(got, tt.want), "got %v", got)
		})
	}

	assert.NoError(t, mapError(nil))
	assert.Same(t, passthrough, mapError(passthrough))
}

func TestApplyChunk_InvalidPayload(t *testing.T) {
	c := loggedIn(t, newTestClient(t, config.Sync{}))
	ctx := context.Background()
	c.SetSessionKey("s1")
	_, err := c.Start(ctx, models.StartRequest{})
	require.NoError(t, err)

	err = c.ApplyChunk(ctx, models.ApplyChunkRequest{Chunk: models.Chunk{
		Cards: []models.CardEntry{{ID: 0, NoteID: 1, DeckID: 1}},
	}})

	assert.True(t, models.IsSyncErrorKind(err, models.SyncErrorOther), "got %v", err)
}
