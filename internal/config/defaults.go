package config

import (
	"time"

	"github.com/MKhiriev/go-collection-sync/models"
)

// defaultConfig returns the values used when no source sets a field.
func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   "go-collection-sync",
			TokenDuration: 30 * 24 * time.Hour,
		},
		Storage: Storage{
			Collections: Collections{
				BaseDir: "collections",
				Path:    "collection.db",
			},
		},
		Server: Server{
			HTTPAddress:    "localhost:8080",
			RequestTimeout: 5 * time.Minute,
		},
		Adapter: Adapter{
			RequestTimeout:  60 * time.Second,
			ConnectTimeout:  30 * time.Second,
			TransferTimeout: 300 * time.Second,
		},
		Sync: Sync{
			ChunkSize:                 models.DefaultChunkSize,
			MaxUploadMegsUncompressed: 250,
			MaxUploadMegsCompressed:   100,
			SessionIdleTimeout:        30 * time.Minute,
			MaxClockSkew:              300 * time.Second,
		},
		Workers: Workers{
			SweepInterval: time.Minute,
			PoolSize:      4,
		},
	}
}
