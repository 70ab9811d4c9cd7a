package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/utils"
	"github.com/MKhiriev/go-collection-sync/models"
)

const syncPathPrefix = "/sync/"

type httpSyncClient struct {
	client *utils.HTTPClient

	mu            sync.RWMutex
	hostKey       string
	sessionKey    string
	clientVersion string

	requestTimeout  time.Duration
	transferTimeout time.Duration

	logger *logger.Logger
}

// NewHTTPSyncClient constructs the HTTP implementation of [SyncProtocol].
// Request bodies are gzip-compressed JSON posted to /sync/<method>, with the
// sync header carried in [models.SyncHeaderName]. clientVersion is reported
// in every header.
//
// Returns an error if cfg.HTTPAddress is empty or cannot be parsed as a URL.
func NewHTTPSyncClient(cfg config.ClientAdapter, clientVersion string, logger *logger.Logger) (SyncProtocol, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpSyncClient{
		client:          utils.NewHTTPClient(baseURL, cfg.ConnectTimeout),
		clientVersion:   clientVersion,
		requestTimeout:  cfg.RequestTimeout,
		transferTimeout: cfg.TransferTimeout,
		logger:          logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyAddress
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", ErrAddressInvalid
	}

	return strings.TrimRight(u.String(), "/"), nil
}

func (h *httpSyncClient) SetHostKey(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hostKey = strings.TrimSpace(key)
}

func (h *httpSyncClient) SessionKey() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessionKey
}

func (h *httpSyncClient) SetSessionKey(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessionKey = key
}

func (h *httpSyncClient) header() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	raw, err := json.Marshal(models.SyncHeader{
		SyncVersion:   models.SyncVersionMax,
		HostKey:       h.hostKey,
		ClientVersion: h.clientVersion,
		SessionKey:    h.sessionKey,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// post sends an already encoded body and returns the raw response body.
func (h *httpSyncClient) post(ctx context.Context, method string, timeout time.Duration, body []byte, contentType string) ([]byte, error) {
	header, err := h.header()
	if err != nil {
		return nil, models.WrapSyncError(models.SyncErrorOther, err)
	}

	reqCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := h.client.R().
		SetContext(reqCtx).
		SetHeader(models.SyncHeaderName, header).
		SetHeader("Content-Type", contentType).
		SetHeader("Content-Encoding", "gzip").
		SetBody(body).
		Post(syncPathPrefix + method)
	if err != nil {
		h.logger.Debug().Err(err).Str("method", method).Msg("sync request failed")
		return nil, mapTransportError(ctx, err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Debug().Err(err).Str("method", method).Int("status", resp.StatusCode()).Msg("sync request rejected")
		return nil, err
	}

	return resp.Body(), nil
}

// call JSON encodes and gzips req, posts it, and decodes the reply into out
// when out is non-nil.
func (h *httpSyncClient) call(ctx context.Context, method string, req any, out any) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return models.WrapSyncError(models.SyncErrorOther, fmt.Errorf("encode %s request: %w", method, err))
	}
	body, err := utils.Gzip(raw)
	if err != nil {
		return models.WrapSyncError(models.SyncErrorOther, err)
	}

	reply, err := h.post(ctx, method, h.requestTimeout, body, "application/json")
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}

	if err = json.Unmarshal(reply, out); err != nil {
		return models.WrapSyncError(models.SyncErrorOther, fmt.Errorf("decode %s response: %w", method, err))
	}
	return nil
}

func (h *httpSyncClient) HostKey(ctx context.Context, req models.HostKeyRequest) (models.HostKeyResponse, error) {
	var resp models.HostKeyResponse
	err := h.call(ctx, models.MethodHostKey, req, &resp)
	return resp, err
}

func (h *httpSyncClient) Meta(ctx context.Context, req models.MetaRequest) (models.SyncMeta, error) {
	var meta models.SyncMeta
	err := h.call(ctx, models.MethodMeta, req, &meta)
	return meta, err
}

func (h *httpSyncClient) Start(ctx context.Context, req models.StartRequest) (models.Graves, error) {
	var graves models.Graves
	err := h.call(ctx, models.MethodStart, req, &graves)
	return graves, err
}

func (h *httpSyncClient) ApplyGraves(ctx context.Context, req models.ApplyGravesRequest) error {
	return h.call(ctx, models.MethodApplyGraves, req, nil)
}

func (h *httpSyncClient) ApplyChanges(ctx context.Context, req models.ApplyChangesRequest) (models.UnchunkedChanges, error) {
	var changes models.UnchunkedChanges
	err := h.call(ctx, models.MethodApplyChanges, req, &changes)
	return changes, err
}

func (h *httpSyncClient) Chunk(ctx context.Context) (models.Chunk, error) {
	var chunk models.Chunk
	err := h.call(ctx, models.MethodChunk, models.EmptyRequest{}, &chunk)
	return chunk, err
}

func (h *httpSyncClient) ApplyChunk(ctx context.Context, req models.ApplyChunkRequest) error {
	return h.call(ctx, models.MethodApplyChunk, req, nil)
}

func (h *httpSyncClient) SanityCheck(ctx context.Context, req models.SanityCheckRequest) (models.SanityCheckResponse, error) {
	var resp models.SanityCheckResponse
	err := h.call(ctx, models.MethodSanityCheck, req, &resp)
	return resp, err
}

func (h *httpSyncClient) Finish(ctx context.Context) (int64, error) {
	var modified int64
	err := h.call(ctx, models.MethodFinish, models.EmptyRequest{}, &modified)
	return modified, err
}

func (h *httpSyncClient) Abort(ctx context.Context) error {
	return h.call(ctx, models.MethodAbort, models.EmptyRequest{}, nil)
}

func (h *httpSyncClient) Upload(ctx context.Context, gzipped []byte) (string, error) {
	reply, err := h.post(ctx, models.MethodUpload, h.transferTimeout, gzipped, "application/octet-stream")
	if err != nil {
		return "", err
	}

	var msg string
	if err = json.Unmarshal(reply, &msg); err != nil {
		// older servers answer with plain text
		msg = strings.TrimSpace(string(reply))
	}
	return msg, nil
}

func (h *httpSyncClient) Download(ctx context.Context) ([]byte, error) {
	body, err := utils.Gzip([]byte("{}"))
	if err != nil {
		return nil, models.WrapSyncError(models.SyncErrorOther, err)
	}
	return h.post(ctx, models.MethodDownload, h.transferTimeout, body, "application/json")
}

var _ SyncProtocol = (*httpSyncClient)(nil)
