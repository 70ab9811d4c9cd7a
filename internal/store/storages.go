package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-collection-sync/internal/config"
	"github.com/MKhiriev/go-collection-sync/internal/logger"
)

// Storages groups the server-side repositories.
type Storages struct {
	// Accounts is Postgres-backed when a DSN is configured and in-memory
	// otherwise.
	Accounts AccountRepository

	db *DB
}

// NewStorages opens the account storage described by cfg.
func NewStorages(ctx context.Context, cfg config.Storage, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("creating new storages...")

	if cfg.DB.DSN == "" {
		logger.Info().Msg("no account database configured, using in-memory accounts")
		return &Storages{Accounts: NewMemoryAccountRepository()}, nil
	}

	db, err := NewConnectPostgres(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	return &Storages{
		Accounts: NewAccountRepository(db, logger),
		db:       db,
	}, nil
}

// Close releases the account database, if any.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
