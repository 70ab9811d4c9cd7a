package http

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/service"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/utils"
	"github.com/MKhiriev/go-collection-sync/models"
)

func newBareHandler(limits config.Sync) *Handler {
	return NewHandler(nil, limits, logger.Nop())
}

// captureSyncRequest runs withSyncRequest and returns what it stored.
func captureSyncRequest(t *testing.T, h *Handler, req *http.Request) (*syncRequest, *httptest.ResponseRecorder) {
	t.Helper()

	var got *syncRequest
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sr, ok := syncRequestFromContext(r.Context())
		require.True(t, ok)
		got = sr
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	h.withSyncRequest(next).ServeHTTP(rec, req)
	return got, rec
}

func multipartRequest(t *testing.T, fields map[string]string, data []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if data != nil {
		fw, err := mw.CreateFormFile("data", "data")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/sync/meta", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// ── gzip ──────────────────────────────────────────────────────────────────────

func TestWithGZip_InflatesRequest(t *testing.T) {
	var got string
	h := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		assert.Empty(t, r.Header.Get("Content-Encoding"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(gzipBytes(t, []byte(`{"a":1}`))))
	req.Header.Set("Content-Encoding", "gzip")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, `{"a":1}`, got)
}

func TestWithGZip_InvalidBody(t *testing.T) {
	h := withGZip(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("next must not run")
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("plain"))
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWithGZip_CompressesResponse(t *testing.T) {
	h := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestWithGZip_PlainResponseWithoutAcceptEncoding(t *testing.T) {
	h := withGZip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("hello"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "hello", rec.Body.String())
}

// ── body limit ────────────────────────────────────────────────────────────────

func TestWithBodyLimit(t *testing.T) {
	tests := []struct {
		name    string
		limit   int64
		body    string
		wantErr bool
	}{
		{name: "under limit", limit: 10, body: "12345"},
		{name: "exact limit", limit: 5, body: "12345"},
		{name: "over limit", limit: 4, body: "12345", wantErr: true},
		{name: "disabled", limit: 0, body: strings.Repeat("x", 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var readErr error
			h := withBodyLimit(tt.limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, readErr = io.ReadAll(r.Body)
			}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))

			if tt.wantErr {
				var maxErr *http.MaxBytesError
				assert.ErrorAs(t, readErr, &maxErr)
				assert.Equal(t, http.StatusRequestEntityTooLarge, StatusFromError(readErr))
				return
			}
			assert.NoError(t, readErr)
		})
	}
}

// ── sync request envelope ─────────────────────────────────────────────────────

func TestWithSyncRequest_JSONHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/sync/meta", strings.NewReader(`{"v":11}`))
	req.Header.Set(models.SyncHeaderName, `{"v":11,"k":"key","c":"cv","s":"sess"}`)

	sr, rec := captureSyncRequest(t, newBareHandler(config.Sync{}), req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.SyncHeader{SyncVersion: 11, HostKey: "key", ClientVersion: "cv", SessionKey: "sess"}, sr.header)
	assert.JSONEq(t, `{"v":11}`, string(sr.body))
}

func TestWithSyncRequest_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/sync/chunk", nil)

	sr, _ := captureSyncRequest(t, newBareHandler(config.Sync{}), req)

	assert.Equal(t, "{}", string(sr.body))
	assert.Equal(t, models.SyncHeader{}, sr.header)
}

func TestWithSyncRequest_InvalidHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/sync/meta", nil)
	req.Header.Set(models.SyncHeaderName, "[1,2")

	sr, rec := captureSyncRequest(t, newBareHandler(config.Sync{}), req)

	assert.Nil(t, sr)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWithSyncRequest_Multipart(t *testing.T) {
	req := multipartRequest(t, map[string]string{"k": "key", "s": "sess", "v": "10", "c": "0"}, []byte(`{"minUsn":3}`))

	sr, rec := captureSyncRequest(t, newBareHandler(config.Sync{}), req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "key", sr.header.HostKey)
	assert.Equal(t, "sess", sr.header.SessionKey)
	assert.Equal(t, 10, sr.header.SyncVersion)
	assert.JSONEq(t, `{"minUsn":3}`, string(sr.body))
}

func TestWithSyncRequest_MultipartCompressed(t *testing.T) {
	req := multipartRequest(t, map[string]string{"k": "key", "c": "1"}, gzipBytes(t, []byte(`{"u":"a","p":"b"}`)))

	sr, rec := captureSyncRequest(t, newBareHandler(config.Sync{}), req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.JSONEq(t, `{"u":"a","p":"b"}`, string(sr.body))
}

func TestWithSyncRequest_MultipartBadVersion(t *testing.T) {
	req := multipartRequest(t, map[string]string{"v": "eleven"}, nil)

	_, rec := captureSyncRequest(t, newBareHandler(config.Sync{}), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWithSyncRequest_MultipartTooLarge(t *testing.T) {
	big := bytes.Repeat([]byte("a"), 2*1024*1024)
	req := multipartRequest(t, map[string]string{"c": "1"}, gzipBytes(t, big))

	_, rec := captureSyncRequest(t, newBareHandler(config.Sync{MaxUploadMegsUncompressed: 1}), req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// ── auth ──────────────────────────────────────────────────────────────────────

func TestAuth_StoresLogin(t *testing.T) {
	env := newTestEnv(t, config.Sync{})
	h := NewHandler(env.services, config.Sync{}, logger.Nop())

	var login string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		login, _ = utils.GetUserLoginFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/sync/meta", nil)
	req.Header.Set(models.SyncHeaderName, fmt.Sprintf(`{"k":%q}`, env.hostKey))
	rec := httptest.NewRecorder()
	h.withSyncRequest(h.auth(next)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testLogin, login)
}

func TestAuth_WithoutEnvelope(t *testing.T) {
	h := newBareHandler(config.Sync{})

	rec := httptest.NewRecorder()
	h.auth(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

// ── trace id and logging ──────────────────────────────────────────────────────

func TestWithTraceID_KeepsClientID(t *testing.T) {
	h := newBareHandler(config.Sync{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(traceIDHeader, "trace-1")
	rec := httptest.NewRecorder()
	h.withTraceID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)

	assert.Equal(t, "trace-1", rec.Header().Get(traceIDHeader))
}

func TestWithTraceID_GeneratesID(t *testing.T) {
	h := newBareHandler(config.Sync{})

	rec := httptest.NewRecorder()
	h.withTraceID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get(traceIDHeader))
}

func TestWithLogging_RecordsStatusAndSize(t *testing.T) {
	h := newBareHandler(config.Sync{})

	var lw *responseWriter
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lw = w.(*responseWriter)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("abc"))
	})

	rec := httptest.NewRecorder()
	h.withLogging(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, http.StatusTeapot, lw.status)
	assert.Equal(t, 3, lw.size)
}

func TestRequestLogger_FallsBackToHandlerLogger(t *testing.T) {
	h := newBareHandler(config.Sync{})

	assert.Same(t, h.logger, h.requestLogger(httptest.NewRequest(http.MethodGet, "/", nil)))
}

// ── status mapping ────────────────────────────────────────────────────────────

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidDataProvided, http.StatusBadRequest},
		{fmt.Errorf("%w: details", ErrInvalidBody), http.StatusBadRequest},
		{service.ErrWrongPassword, http.StatusForbidden},
		{service.ErrHostKeyInvalid, http.StatusForbidden},
		{store.ErrNoUserWasFound, http.StatusForbidden},
		{service.ErrSessionConflict, http.StatusConflict},
		{service.ErrClientTooOld, http.StatusNotImplemented},
		{service.ErrCollectionTooLarge, http.StatusRequestEntityTooLarge},
		{utils.ErrPayloadTooLarge, http.StatusRequestEntityTooLarge},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{store.ErrNotetypeSchemaChanged, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
		{context.Canceled, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFromError(tt.err))
		})
	}
}

func TestWriteError_HidesInternalText(t *testing.T) {
	h := newBareHandler(config.Sync{})

	rec := httptest.NewRecorder()
	h.writeError(rec, httptest.NewRequest(http.MethodPost, "/", nil), errors.New("db password leaked"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "leaked")
}
