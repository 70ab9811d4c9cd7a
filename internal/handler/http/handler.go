package http

import (
	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/service"
	"github.com/MKhiriev/go-collection-sync/internal/validators"
	"github.com/MKhiriev/go-collection-sync/models"
)

type Handler struct {
	services  *service.Services
	limits    config.Sync
	validator validators.Validator

	logger *logger.Logger
}

func NewHandler(services *service.Services, limits config.Sync, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:  services,
		limits:    limits,
		validator: validators.NewSyncRequestValidator(maxChunkRows(limits)),
		logger:    logger,
	}
}

// maxChunkRows leaves room for clients configured with a larger chunk size
// than the server.
func maxChunkRows(limits config.Sync) int {
	return 4 * max(limits.ChunkSize, models.DefaultChunkSize)
}
