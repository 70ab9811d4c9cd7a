package service

import (
	"context"

	"github.com/MKhiriev/go-collection-sync/models"
)

// ClientAuthService obtains the host key the client presents on every sync
// request.
type ClientAuthService interface {
	// Login exchanges username and password for a host key and hands it to
	// the transport. Returns a *models.SyncError of kind AuthFailed when the
	// server rejects the credentials.
	Login(ctx context.Context, username, password string) error
}

// ClientSyncService is the client half of the protocol.
type ClientSyncService interface {
	// SyncStatus asks the server for its meta and reports what kind of sync
	// would run, without opening a session.
	SyncStatus(ctx context.Context) (models.SyncOutput, error)

	// Sync runs a normal sync when one is possible. When a full sync is
	// required it returns without touching anything and the output tells
	// which directions are allowed.
	Sync(ctx context.Context) (models.SyncOutput, error)

	// FullUpload replaces the server collection with the local one.
	FullUpload(ctx context.Context) error

	// FullDownload replaces the local collection with the server one.
	FullDownload(ctx context.Context) error

	// SetProgressFn installs the callback receiving normal sync progress.
	SetProgressFn(fn models.ProgressFn)
}
