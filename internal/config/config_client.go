package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	// Version is reported to the server in every sync header.
	Version string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the sync server endpoint.
	HTTPAddress string
	// RequestTimeout is the default timeout for a protocol request.
	RequestTimeout time.Duration
	// ConnectTimeout bounds dialing the server.
	ConnectTimeout time.Duration
	// TransferTimeout bounds full upload and download.
	TransferTimeout time.Duration
	// Username and Password are exchanged for a host key.
	Username string
	Password string
}

// ClientStorage groups client storage settings.
type ClientStorage struct {
	// CollectionPath is the local collection file.
	CollectionPath string
}

// ClientWorkers contains client background worker settings.
type ClientWorkers struct {
	// SyncInterval defines how often the client syncs. Zero syncs once.
	SyncInterval time.Duration
	// PoolSize bounds concurrent CPU-heavy jobs.
	PoolSize int
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Sync    Sync
	Workers ClientWorkers
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	return NewClientConfig(cfg)
}

// NewClientConfig maps the fields relevant to the client runtime and
// validates the result.
func NewClientConfig(cfg *StructuredConfig) (*ClientConfig, error) {
	clientCfg := &ClientConfig{
		App: ClientApp{
			Version: cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:     cfg.Adapter.HTTPAddress,
			RequestTimeout:  cfg.Adapter.RequestTimeout,
			ConnectTimeout:  cfg.Adapter.ConnectTimeout,
			TransferTimeout: cfg.Adapter.TransferTimeout,
			Username:        cfg.Adapter.Username,
			Password:        cfg.Adapter.Password,
		},
		Storage: ClientStorage{
			CollectionPath: cfg.Storage.Collections.Path,
		},
		Sync: cfg.Sync,
		Workers: ClientWorkers{
			SyncInterval: cfg.Workers.SyncInterval,
			PoolSize:     cfg.Workers.PoolSize,
		},
	}

	if err := clientCfg.validate(); err != nil {
		return nil, err
	}

	return clientCfg, nil
}
