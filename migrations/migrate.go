// Package migrations embeds the schema of collection files and of the
// account database and applies it with goose.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed collection/*.sql accounts/*.sql
var embedMigrations embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// MigrateCollection brings a SQLite collection file up to date.
func MigrateCollection(db *sql.DB) error {
	return migrate(db, "sqlite3", "collection")
}

// MigrateAccounts brings the Postgres account database up to date.
func MigrateAccounts(db *sql.DB) error {
	return migrate(db, "pgx", "accounts")
}

func migrate(db *sql.DB, dialect, dir string) error {
	if db == nil {
		return errors.New("migration error: nil database")
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
