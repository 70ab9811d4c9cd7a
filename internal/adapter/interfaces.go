// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for talking to a
// collection sync server.
//
// The primary abstraction is [SyncProtocol], which decouples the client
// services from the wire. The package ships an HTTP implementation
// ([NewHTTPSyncClient]); package inprocess offers one that calls a server
// directly, used by tests and by embedded setups.
//
// Every failure is surfaced as a *models.SyncError. HTTP statuses are mapped
// by [ErrorFromStatus] so callers can match on the error kind regardless of
// the transport.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-collection-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/sync_protocol_mock.go -package=mock

// SyncProtocol is the client's view of the sync server. Each method maps to
// one endpoint. The session key set via SetSessionKey travels with every
// request made after it.
type SyncProtocol interface {
	// HostKey exchanges credentials for a host key. It is the only method
	// that may be called without one.
	HostKey(ctx context.Context, req models.HostKeyRequest) (models.HostKeyResponse, error)

	// SetHostKey stores the host key attached to all later requests.
	SetHostKey(key string)

	// SessionKey returns the current session key, or "" before a sync.
	SessionKey() string

	// SetSessionKey replaces the session key. A new key is chosen for every
	// sync attempt.
	SetSessionKey(key string)

	Meta(ctx context.Context, req models.MetaRequest) (models.SyncMeta, error)
	Start(ctx context.Context, req models.StartRequest) (models.Graves, error)
	ApplyGraves(ctx context.Context, req models.ApplyGravesRequest) error
	ApplyChanges(ctx context.Context, req models.ApplyChangesRequest) (models.UnchunkedChanges, error)
	Chunk(ctx context.Context) (models.Chunk, error)
	ApplyChunk(ctx context.Context, req models.ApplyChunkRequest) error
	SanityCheck(ctx context.Context, req models.SanityCheckRequest) (models.SanityCheckResponse, error)

	// Finish commits the server side and returns the new modification stamp
	// in milliseconds.
	Finish(ctx context.Context) (int64, error)

	// Abort discards the server session. It is safe to call without one.
	Abort(ctx context.Context) error

	// Upload replaces the server collection with the gzip-compressed file
	// body. It returns the server's reply, [models.UploadOK] on success.
	Upload(ctx context.Context, gzipped []byte) (string, error)

	// Download returns the server's collection file.
	Download(ctx context.Context) ([]byte, error)
}
