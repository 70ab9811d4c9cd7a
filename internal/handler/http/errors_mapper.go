package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-collection-sync/internal/service"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/utils"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided: http.StatusBadRequest,
	service.ErrInvalidLogin:        http.StatusBadRequest,
	ErrInvalidSyncHeader:           http.StatusBadRequest,
	ErrInvalidMultipart:            http.StatusBadRequest,
	ErrInvalidBody:                 http.StatusBadRequest,

	service.ErrWrongPassword:      http.StatusForbidden,
	service.ErrHostKeyInvalid:     http.StatusForbidden,
	service.ErrHostKeyNotProvided: http.StatusForbidden,
	store.ErrNoUserWasFound:       http.StatusForbidden,
	ErrNoUser:                     http.StatusForbidden,

	service.ErrSessionConflict: http.StatusConflict,
	service.ErrClientTooOld:    http.StatusNotImplemented,

	service.ErrCollectionTooLarge: http.StatusRequestEntityTooLarge,
	utils.ErrPayloadTooLarge:      http.StatusRequestEntityTooLarge,

	store.ErrNotetypeSchemaChanged: http.StatusUnprocessableEntity,

	store.ErrLoginAlreadyExists: http.StatusConflict,
}

// StatusFromError maps a service or storage error to the HTTP status the
// sync client interprets. Unknown errors are 500.
func StatusFromError(err error) int {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}

	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeError answers with the status of err. Internal errors do not leak
// their text.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFromError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = http.StatusText(status)
	}

	log := h.requestLogger(r)
	if status >= http.StatusInternalServerError {
		log.Err(err).Int("status", status).Msg("sync request failed")
	} else {
		log.Warn().Err(err).Int("status", status).Msg("sync request rejected")
	}

	http.Error(w, msg, status)
}
