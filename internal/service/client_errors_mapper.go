// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/models"
)

// mapSyncError translates any failure of a normal sync into a
// *models.SyncError.
func mapSyncError(err error) error {
	if err == nil {
		return nil
	}

	var syncErr *models.SyncError
	if errors.As(err, &syncErr) {
		// a 5xx in the middle of a sync means the server choked on our data
		if syncErr.Kind == models.SyncErrorServer {
			return &models.SyncError{Kind: models.SyncErrorDatabaseCheckRequired, Info: syncErr.Info, Err: syncErr}
		}
		return syncErr
	}

	switch {
	case errors.Is(err, store.ErrNotetypeSchemaChanged):
		return models.WrapSyncError(models.SyncErrorResyncRequired, err)
	case errors.Is(err, store.ErrNotetypeMissing), errors.Is(err, store.ErrCorruptCollection):
		return models.WrapSyncError(models.SyncErrorDatabaseCheckRequired, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return models.WrapSyncError(models.SyncErrorInterrupted, err)
	default:
		return models.WrapSyncError(models.SyncErrorOther, err)
	}
}
