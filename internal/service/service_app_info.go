package service

import (
	"context"

	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/models"
)

// AppInfo is served at GET /version.
type AppInfo struct {
	Version        string `json:"version"`
	SyncVersionMin int    `json:"sync_version_min"`
	SyncVersionMax int    `json:"sync_version_max"`
}

type appInfoService struct {
	info AppInfo

	logger *logger.Logger
}

func NewAppInfoService(cfg config.App, logger *logger.Logger) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{
		info: AppInfo{
			Version:        cfg.Version,
			SyncVersionMin: models.SyncVersionMin,
			SyncVersionMax: models.SyncVersionMax,
		},
		logger: logger,
	}, nil
}

func (s *appInfoService) GetAppInfo(ctx context.Context) AppInfo {
	return s.info
}
