// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package inprocess provides a SyncProtocol that calls a SyncServer in the
// same process. Payloads still go through JSON and errors through the HTTP
// status mapping, so a client sees exactly what it would see over the wire.
package inprocess

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-collection-sync/internal/adapter"
	"github.com/MKhiriev/go-collection-sync/internal/config"
	httpx "github.com/MKhiriev/go-collection-sync/internal/handler/http"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/service"
	"github.com/MKhiriev/go-collection-sync/internal/utils"
	"github.com/MKhiriev/go-collection-sync/internal/validators"
	"github.com/MKhiriev/go-collection-sync/models"
)

type client struct {
	server service.SyncServer
	auth   service.AuthService
	limits config.Sync
	valid  validators.Validator

	mu         sync.RWMutex
	hostKey    string
	sessionKey string

	logger *logger.Logger
}

// New returns a SyncProtocol bound to server. auth resolves host keys the
// same way the HTTP handler does.
func New(server service.SyncServer, auth service.AuthService, limits config.Sync, logger *logger.Logger) adapter.SyncProtocol {
	return &client{
		server: server,
		auth:   auth,
		limits: limits,
		valid:  validators.NewSyncRequestValidator(0),
		logger: logger,
	}
}

func (c *client) SetHostKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hostKey = key
}

func (c *client) SessionKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionKey
}

func (c *client) SetSessionKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionKey = key
}

// login resolves the current host key and returns it with the session key.
func (c *client) login(ctx context.Context) (string, string, error) {
	c.mu.RLock()
	hostKey, sessionKey := c.hostKey, c.sessionKey
	c.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return "", "", mapError(err)
	}

	login, err := c.auth.ParseHostKey(ctx, hostKey)
	if err != nil {
		return "", "", mapError(err)
	}
	return login, sessionKey, nil
}

// mapError turns a service error into the *models.SyncError an HTTP client
// would have produced for the same failure.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var syncErr *models.SyncError
	if errors.As(err, &syncErr) {
		return syncErr
	}
	switch {
	case errors.Is(err, context.Canceled):
		return models.WrapSyncError(models.SyncErrorInterrupted, err)
	case errors.Is(err, context.DeadlineExceeded):
		return models.WrapSyncError(models.SyncErrorNetwork, err)
	}

	status := httpx.StatusFromError(err)
	return adapter.ErrorFromStatus(status, err.Error())
}

// request copies req as roundTrip does and validates it the way the HTTP
// handler would.
func request[T any](ctx context.Context, v validators.Validator, req T) (T, error) {
	out, err := roundTrip(req)
	if err != nil {
		return out, err
	}
	if err = v.Validate(ctx, out); err != nil {
		return out, mapError(fmt.Errorf("%w: %w", httpx.ErrInvalidBody, err))
	}
	return out, nil
}

// roundTrip copies v through its JSON form so neither side shares memory
// with the other.
func roundTrip[T any](v T) (T, error) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, models.WrapSyncError(models.SyncErrorOther, fmt.Errorf("encode: %w", err))
	}
	if err = json.Unmarshal(raw, &out); err != nil {
		return out, models.WrapSyncError(models.SyncErrorOther, fmt.Errorf("decode: %w", err))
	}
	return out, nil
}

func (c *client) HostKey(ctx context.Context, req models.HostKeyRequest) (models.HostKeyResponse, error) {
	key, err := c.auth.HostKey(ctx, req)
	if err != nil {
		return models.HostKeyResponse{}, mapError(err)
	}
	return models.HostKeyResponse{Key: key.SignedString}, nil
}

func (c *client) Meta(ctx context.Context, req models.MetaRequest) (models.SyncMeta, error) {
	login, _, err := c.login(ctx)
	if err != nil {
		return models.SyncMeta{}, err
	}
	meta, err := c.server.Meta(ctx, login, req)
	if err != nil {
		return models.SyncMeta{}, mapError(err)
	}
	return roundTrip(meta)
}

func (c *client) Start(ctx context.Context, req models.StartRequest) (models.Graves, error) {
	login, session, err := c.login(ctx)
	if err != nil {
		return models.Graves{}, err
	}
	if req, err = request(ctx, c.valid, req); err != nil {
		return models.Graves{}, err
	}
	graves, err := c.server.Start(ctx, login, session, req)
	if err != nil {
		return models.Graves{}, mapError(err)
	}
	return roundTrip(graves)
}

func (c *client) ApplyGraves(ctx context.Context, req models.ApplyGravesRequest) error {
	login, session, err := c.login(ctx)
	if err != nil {
		return err
	}
	if req, err = request(ctx, c.valid, req); err != nil {
		return err
	}
	return mapError(c.server.ApplyGraves(ctx, login, session, req))
}

func (c *client) ApplyChanges(ctx context.Context, req models.ApplyChangesRequest) (models.UnchunkedChanges, error) {
	login, session, err := c.login(ctx)
	if err != nil {
		return models.UnchunkedChanges{}, err
	}
	if req, err = request(ctx, c.valid, req); err != nil {
		return models.UnchunkedChanges{}, err
	}
	changes, err := c.server.ApplyChanges(ctx, login, session, req)
	if err != nil {
		return models.UnchunkedChanges{}, mapError(err)
	}
	return roundTrip(changes)
}

func (c *client) Chunk(ctx context.Context) (models.Chunk, error) {
	login, session, err := c.login(ctx)
	if err != nil {
		return models.Chunk{}, err
	}
	chunk, err := c.server.Chunk(ctx, login, session)
	if err != nil {
		return models.Chunk{}, mapError(err)
	}
	return roundTrip(chunk)
}

func (c *client) ApplyChunk(ctx context.Context, req models.ApplyChunkRequest) error {
	login, session, err := c.login(ctx)
	if err != nil {
		return err
	}
	if req, err = request(ctx, c.valid, req); err != nil {
		return err
	}
	return mapError(c.server.ApplyChunk(ctx, login, session, req))
}

func (c *client) SanityCheck(ctx context.Context, req models.SanityCheckRequest) (models.SanityCheckResponse, error) {
	login, session, err := c.login(ctx)
	if err != nil {
		return models.SanityCheckResponse{}, err
	}
	if req, err = request(ctx, c.valid, req); err != nil {
		return models.SanityCheckResponse{}, err
	}
	resp, err := c.server.SanityCheck(ctx, login, session, req)
	if err != nil {
		return models.SanityCheckResponse{}, mapError(err)
	}
	return roundTrip(resp)
}

func (c *client) Finish(ctx context.Context) (int64, error) {
	login, session, err := c.login(ctx)
	if err != nil {
		return 0, err
	}
	modified, err := c.server.Finish(ctx, login, session)
	return modified, mapError(err)
}

func (c *client) Abort(ctx context.Context) error {
	login, session, err := c.login(ctx)
	if err != nil {
		return err
	}
	return mapError(c.server.Abort(ctx, login, session))
}

func (c *client) Upload(ctx context.Context, gzipped []byte) (string, error) {
	login, _, err := c.login(ctx)
	if err != nil {
		return "", err
	}
	if limit := c.limits.MaxCompressedBytes(); limit > 0 && int64(len(gzipped)) > limit {
		return "", mapError(utils.ErrPayloadTooLarge)
	}

	data, err := utils.Gunzip(bytes.NewReader(gzipped), c.limits.MaxUncompressedBytes())
	if err != nil {
		if errors.Is(err, utils.ErrPayloadTooLarge) {
			return "", mapError(err)
		}
		return "", models.WrapSyncError(models.SyncErrorOther, err)
	}

	reply, err := c.server.Upload(ctx, login, data)
	if err != nil {
		return "", mapError(err)
	}
	c.logger.Debug().Int("bytes", len(data)).Str("reply", reply).Msg("in-process upload")
	return reply, nil
}

func (c *client) Download(ctx context.Context) ([]byte, error) {
	login, _, err := c.login(ctx)
	if err != nil {
		return nil, err
	}
	data, err := c.server.Download(ctx, login)
	if err != nil {
		return nil, mapError(err)
	}
	return data, nil
}

var _ adapter.SyncProtocol = (*client)(nil)
