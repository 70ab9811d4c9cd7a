package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
)

// ClientStorages groups the client-side storage. The client owns a single
// collection file.
type ClientStorages struct {
	Collection *Collection
}

// NewClientStorages opens (creating and migrating if needed) the local
// collection at cfg.CollectionPath.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Str("path", cfg.CollectionPath).Msg("opening local collection...")

	col, err := OpenCollection(ctx, cfg.CollectionPath, false, logger)
	if err != nil {
		return nil, fmt.Errorf("error opening local collection: %w", err)
	}

	return &ClientStorages{Collection: col}, nil
}
