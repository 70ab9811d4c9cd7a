package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/MKhiriev/go-collection-sync/internal/utils"
	"github.com/MKhiriev/go-collection-sync/models"
)

// syncRequest is the decoded envelope of a /sync call.
type syncRequest struct {
	header models.SyncHeader
	body   []byte
}

type syncRequestCtxKey struct{}

// withSyncRequest decodes the envelope before any handler runs. Current
// clients send the header as JSON in X-Sync-Header and the payload as the
// body; older ones post a multipart form with the fields c, k, s and data.
func (h *Handler) withSyncRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			sr  syncRequest
			err error
		)

		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if mediaType == "multipart/form-data" {
			sr, err = h.readMultipartRequest(r)
		} else {
			sr, err = h.readHeaderRequest(r)
		}
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		if len(bytes.TrimSpace(sr.body)) == 0 {
			sr.body = []byte("{}")
		}

		ctx := context.WithValue(r.Context(), syncRequestCtxKey{}, &sr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) readHeaderRequest(r *http.Request) (syncRequest, error) {
	var sr syncRequest

	if raw := r.Header.Get(models.SyncHeaderName); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sr.header); err != nil {
			return sr, fmt.Errorf("%w: %w", ErrInvalidSyncHeader, err)
		}
	}

	body, err := utils.ReadAllLimited(r.Body, h.limits.MaxUncompressedBytes())
	if err != nil {
		return sr, err
	}
	sr.body = body

	return sr, nil
}

func (h *Handler) readMultipartRequest(r *http.Request) (syncRequest, error) {
	var (
		sr         syncRequest
		compressed bool
	)

	mr, err := r.MultipartReader()
	if err != nil {
		return sr, fmt.Errorf("%w: %w", ErrInvalidMultipart, err)
	}

	limit := h.limits.MaxUncompressedBytes()
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sr, multipartError(err)
		}

		value, err := utils.ReadAllLimited(part, limit)
		part.Close()
		if err != nil {
			return sr, multipartError(err)
		}

		switch part.FormName() {
		case "c":
			compressed = string(value) == "1"
		case "k":
			sr.header.HostKey = string(value)
		case "s":
			sr.header.SessionKey = string(value)
		case "v":
			if sr.header.SyncVersion, err = strconv.Atoi(string(value)); err != nil {
				return sr, fmt.Errorf("%w: bad version %q", ErrInvalidMultipart, value)
			}
		case "data":
			sr.body = value
		}
	}

	if compressed && len(sr.body) > 0 {
		if sr.body, err = utils.Gunzip(bytes.NewReader(sr.body), limit); err != nil {
			return sr, multipartError(err)
		}
	}

	return sr, nil
}

// multipartError keeps size errors distinguishable from malformed input.
func multipartError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || errors.Is(err, utils.ErrPayloadTooLarge) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrInvalidMultipart, err)
}

func syncRequestFromContext(ctx context.Context) (*syncRequest, bool) {
	sr, ok := ctx.Value(syncRequestCtxKey{}).(*syncRequest)
	return sr, ok
}
