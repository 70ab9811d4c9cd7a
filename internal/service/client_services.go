package service

import (
	"github.com/MKhiriev/go-collection-sync/internal/adapter"
	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/internal/store"
	"github.com/MKhiriev/go-collection-sync/internal/workers"
	"github.com/MKhiriev/go-collection-sync/models"
)

type ClientServices struct {
	AuthService ClientAuthService
	SyncService ClientSyncService
}

func NewClientServices(storages *store.ClientStorages, remote adapter.SyncProtocol, cfg *config.ClientConfig, pool *workers.Pool, logger *logger.Logger) *ClientServices {
	version := models.NewAppBuildInfo(cfg.App.Version, "", "").ClientVersion()

	return &ClientServices{
		AuthService: NewClientAuthService(remote, logger),
		SyncService: NewClientSyncService(storages, remote, version, cfg.Sync, pool, logger),
	}
}
