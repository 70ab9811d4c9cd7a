package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/models"
)

// CheckCollectionFile opens path read-only and verifies that it is an intact
// collection. Any failure is reported as ErrCorruptCollection.
func CheckCollectionFile(ctx context.Context, path string, log *logger.Logger) error {
	conn, err := sql.Open("sqlite3", sqliteDSN(path, true))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptCollection, err)
	}
	defer conn.Close()

	var result string
	if err = conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		log.Warn().Err(err).Str("func", "CheckCollectionFile").Str("path", path).Msg("integrity check failed")
		return fmt.Errorf("%w: %w", ErrCorruptCollection, err)
	}
	if result != "ok" {
		log.Warn().Str("func", "CheckCollectionFile").Str("path", path).Str("result", result).Msg("integrity check failed")
		return fmt.Errorf("%w: integrity check: %s", ErrCorruptCollection, result)
	}

	query, args, err := sq.Select("count(*)").From("col").ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	var rows int
	if err = conn.QueryRowContext(ctx, query, args...).Scan(&rows); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptCollection, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: missing collection row", ErrCorruptCollection)
	}

	return nil
}

var usnTables = []string{"notetypes", "decks", "deck_config", "tags", "config", "notes", "cards", "revlog"}

// PrepareForFullUpload marks every pending object as synced, drops the
// tombstones and records the modification stamp as the last sync, so the
// file can replace the server copy as-is.
func (c *Collection) PrepareForFullUpload(ctx context.Context) error {
	return c.Transact(ctx, func() error {
		for _, table := range usnTables {
			_, err := c.exec(ctx,
				sq.Update(table).Set("usn", 0).Where(sq.Eq{"usn": models.PendingUsn}),
				"*Collection.PrepareForFullUpload",
			)
			if err != nil {
				return err
			}
		}

		if _, err := c.exec(ctx, sq.Delete("graves"), "*Collection.PrepareForFullUpload"); err != nil {
			return err
		}

		_, err := c.exec(ctx,
			sq.Update("col").Set("ls", sq.Expr("mtime")).Where(sq.Eq{"id": colID}),
			"*Collection.PrepareForFullUpload",
		)
		return err
	})
}
