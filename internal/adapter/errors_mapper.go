package adapter

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-collection-sync/models"
	"github.com/go-resty/resty/v2"
)

// ErrorFromStatus maps an HTTP status and its body to a *models.SyncError.
// It returns nil for 2xx statuses.
func ErrorFromStatus(status int, body string) error {
	if status >= http.StatusOK && status < http.StatusMultipleChoices {
		return nil
	}

	body = strings.TrimSpace(body)
	if body == "" {
		body = http.StatusText(status)
	}

	switch {
	case status == http.StatusForbidden || status == http.StatusUnauthorized:
		return models.NewSyncError(models.SyncErrorAuthFailed, body)
	case status == http.StatusNotImplemented:
		return models.NewSyncError(models.SyncErrorClientTooOld, body)
	case status == http.StatusConflict:
		return models.NewSyncError(models.SyncErrorConflict, body)
	case status == http.StatusRequestEntityTooLarge:
		return models.NewSyncError(models.SyncErrorUploadTooLarge, body)
	case status == http.StatusUnprocessableEntity:
		return models.NewSyncError(models.SyncErrorResyncRequired, body)
	case status >= http.StatusInternalServerError:
		return models.NewSyncError(models.SyncErrorServer, body)
	default:
		return models.NewSyncError(models.SyncErrorOther, body)
	}
}

func mapHTTPError(resp *resty.Response) error {
	return ErrorFromStatus(resp.StatusCode(), string(resp.Body()))
}

// mapTransportError classifies a failure to get any response at all.
// Cancellation by the caller is reported as an interruption; everything else,
// timeouts included, as a network error.
func mapTransportError(parent context.Context, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return models.WrapSyncError(models.SyncErrorInterrupted, err)
	}
	return models.WrapSyncError(models.SyncErrorNetwork, err)
}
