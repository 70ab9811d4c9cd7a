package service

import (
	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/workers"
)

type Services struct {
	AuthService    AuthService
	SyncServer     SyncServer
	AppInfoService AppInfoService
}

func NewServices(storages *store.Storages, cfg *config.StructuredConfig, pool *workers.Pool, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		AuthService:    NewAuthService(storages.Accounts, cfg.App, logger),
		SyncServer:     NewSyncServer(cfg.Storage.Collections.BaseDir, cfg.Sync, pool, logger),
		AppInfoService: appInfo,
	}, nil
}
