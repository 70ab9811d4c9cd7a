package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-collection-sync/models"
)

// AuthService manages sync accounts and the host keys issued to them.
type AuthService interface {
	RegisterUser(ctx context.Context, login, password string) (models.User, error)
	// HostKey checks the credentials and issues a signed host key.
	HostKey(ctx context.Context, req models.HostKeyRequest) (models.HostKey, error)
	// ParseHostKey verifies key and returns the account login it was issued
	// for.
	ParseHostKey(ctx context.Context, key string) (string, error)
	// SeedUsers registers "login:password" pairs, skipping logins that
	// already exist.
	SeedUsers(ctx context.Context, pairs []string) error
}

// SyncServer is the server half of the protocol. Every method is scoped to
// one account; requests of the same account are serialized.
//
// Session-scoped methods fail with ErrSessionConflict when no session with
// sessionKey is active. Any other error they return discards the session.
type SyncServer interface {
	Meta(ctx context.Context, login string, req models.MetaRequest) (models.SyncMeta, error)
	Start(ctx context.Context, login, sessionKey string, req models.StartRequest) (models.Graves, error)
	ApplyGraves(ctx context.Context, login, sessionKey string, req models.ApplyGravesRequest) error
	ApplyChanges(ctx context.Context, login, sessionKey string, req models.ApplyChangesRequest) (models.UnchunkedChanges, error)
	Chunk(ctx context.Context, login, sessionKey string) (models.Chunk, error)
	ApplyChunk(ctx context.Context, login, sessionKey string, req models.ApplyChunkRequest) error
	SanityCheck(ctx context.Context, login, sessionKey string, req models.SanityCheckRequest) (models.SanityCheckResponse, error)
	Finish(ctx context.Context, login, sessionKey string) (int64, error)
	// Abort is a no-op unless sessionKey names the active session.
	Abort(ctx context.Context, login, sessionKey string) error

	// Upload replaces the account's collection with data, an uncompressed
	// collection file. A file that fails validation is rejected with
	// models.CorruptCollectionMessage and a nil error.
	Upload(ctx context.Context, login string, data []byte) (string, error)
	Download(ctx context.Context, login string) ([]byte, error)

	// SweepIdleSessions aborts sessions idle for longer than the configured
	// timeout and returns how many were aborted.
	SweepIdleSessions(now time.Time) int

	Close() error
}

// AppInfoService reports the server build and protocol range.
type AppInfoService interface {
	GetAppInfo(ctx context.Context) AppInfo
}
