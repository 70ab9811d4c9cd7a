// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

// validate checks the invariants shared by client and server: protocol
// limits must be positive and the compressed ceiling cannot exceed the
// uncompressed one.
func (cfg *StructuredConfig) validate() error {
	s := cfg.Sync
	if s.ChunkSize <= 0 || s.MaxUploadMegsUncompressed <= 0 || s.MaxUploadMegsCompressed <= 0 {
		return ErrInvalidSyncConfigs
	}
	if s.MaxUploadMegsCompressed > s.MaxUploadMegsUncompressed {
		return ErrInvalidSyncConfigs
	}
	if cfg.Workers.SyncInterval < 0 || cfg.Workers.PoolSize < 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

// ValidateServer checks the settings the sync server cannot start without.
func (cfg *StructuredConfig) ValidateServer() error {
	if cfg.App.TokenSignKey == "" || cfg.App.TokenIssuer == "" || cfg.App.TokenDuration <= 0 {
		return ErrInvalidAppConfigs
	}
	if cfg.Storage.Collections.BaseDir == "" {
		return ErrInvalidStorageConfigs
	}
	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}
	if cfg.Storage.DB.DSN == "" && len(cfg.Server.Users) == 0 {
		return ErrInvalidServerConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.CollectionPath == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Adapter.Username == "" || cfg.Adapter.Password == "" {
		return ErrInvalidAdapterConfigs
	}

	return nil
}
