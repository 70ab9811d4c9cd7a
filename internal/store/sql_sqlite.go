package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-collection-sync/internal/logger"
)

// NewConnectSQLite opens (creating if needed) the SQLite file at path. The
// pool is limited to one connection so that an open transaction and every
// other statement share the same connection.
func NewConnectSQLite(ctx context.Context, path string, log *logger.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error creating database folder")
		return nil, fmt.Errorf("error creating database folder: %w", err)
	}

	conn, err := sql.Open("sqlite3", sqliteDSN(path, false))
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}
	conn.SetMaxOpenConns(1)

	// ping database
	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Debug().Str("func", "NewConnectSQLite").Str("path", path).Msg("connected to database successfully")

	return &DB{
		DB:     conn,
		logger: log,
	}, nil
}

func sqliteDSN(path string, readOnly bool) string {
	dsn := "file:" + path + "?_busy_timeout=5000&_journal_mode=DELETE"
	if readOnly {
		dsn += "&mode=ro"
	}
	return dsn
}
