// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/migrations"
	"github.com/MKhiriev/go-collection-sync/models"
)

// Collection is one collection file. The client and the server use the same
// storage; they differ in the usn stamped on local edits: the client marks
// them pending, the server stamps its current counter.
//
// A Collection is owned by a single goroutine at a time.
type Collection struct {
	db     *DB
	tx     *sql.Tx
	path   string
	server bool
	now    func() time.Time

	logger *logger.Logger
}

// CollectionOption customises a Collection at open time.
type CollectionOption func(*Collection)

// WithClock overrides the wall clock used for stamps.
func WithClock(now func() time.Time) CollectionOption {
	return func(c *Collection) {
		c.now = now
	}
}

// OpenCollection opens the collection file at path, creating and migrating
// it when needed.
func OpenCollection(ctx context.Context, path string, server bool, log *logger.Logger, opts ...CollectionOption) (*Collection, error) {
	db, err := NewConnectSQLite(ctx, path, log)
	if err != nil {
		return nil, err
	}

	if err = migrations.MigrateCollection(db.DB); err != nil {
		db.Close()
		log.Err(err).Str("func", "OpenCollection").Msg("error migrating collection")
		return nil, fmt.Errorf("error migrating collection %s: %w", path, err)
	}

	c := &Collection{
		db:     db,
		path:   path,
		server: server,
		now:    time.Now,
		logger: log,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err = c.ensureColRow(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

func (c *Collection) ensureColRow(ctx context.Context) error {
	now := c.now()
	query, args, err := sq.Insert("col").
		Options("OR IGNORE").
		Columns("id", "crt", "mtime", "scm", "usn", "ls").
		Values(1, now.Unix(), now.UnixMilli(), now.UnixMilli(), 0, 0).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = c.db.ExecContext(ctx, query, args...); err != nil {
		c.logger.Err(err).Str("func", "*Collection.ensureColRow").Msg("error creating collection row")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// Path returns the collection file location.
func (c *Collection) Path() string {
	return c.path
}

// IsServer reports whether local edits are stamped with the server counter.
func (c *Collection) IsServer() bool {
	return c.server
}

// Now returns the collection's wall clock.
func (c *Collection) Now() time.Time {
	return c.now()
}

// Close rolls back any open transaction and closes the file.
func (c *Collection) Close() error {
	if c.db == nil {
		return nil
	}
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}

	err := c.db.Close()
	c.db = nil
	return err
}

// Begin opens the transaction that every following call joins until Commit
// or Rollback.
func (c *Collection) Begin(ctx context.Context) error {
	if c.db == nil {
		return ErrCollectionClosed
	}
	if c.tx != nil {
		return ErrTransactionActive
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		c.logger.Err(err).Str("func", "*Collection.Begin").Msg("error beginning transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}

	c.tx = tx
	return nil
}

// Commit commits the open transaction.
func (c *Collection) Commit() error {
	if c.tx == nil {
		return ErrNoTransaction
	}

	tx := c.tx
	c.tx = nil
	if err := tx.Commit(); err != nil {
		c.logger.Err(err).Str("func", "*Collection.Commit").Msg("error committing transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

// Rollback discards the open transaction. It is a no-op without one.
func (c *Collection) Rollback() error {
	if c.tx == nil {
		return nil
	}

	tx := c.tx
	c.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		c.logger.Err(err).Str("func", "*Collection.Rollback").Msg("error rolling back transaction")
		return err
	}

	return nil
}

// InTransaction reports whether a transaction is open.
func (c *Collection) InTransaction() bool {
	return c.tx != nil
}

// Transact runs fn inside a transaction unless one is already open.
func (c *Collection) Transact(ctx context.Context, fn func() error) error {
	if c.tx != nil {
		return fn()
	}

	if err := c.Begin(ctx); err != nil {
		return err
	}
	if err := fn(); err != nil {
		_ = c.Rollback()
		return err
	}

	return c.Commit()
}

func (c *Collection) q() querier {
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

func (c *Collection) exec(ctx context.Context, b sq.Sqlizer, fn string) (sql.Result, error) {
	if c.db == nil {
		return nil, ErrCollectionClosed
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := c.q().ExecContext(ctx, query, args...)
	if err != nil {
		c.logger.Err(err).Str("func", fn).Msg("error executing statement")
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return res, nil
}

func (c *Collection) query(ctx context.Context, b sq.Sqlizer, fn string) (*sql.Rows, error) {
	if c.db == nil {
		return nil, ErrCollectionClosed
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := c.q().QueryContext(ctx, query, args...)
	if err != nil {
		c.logger.Err(err).Str("func", fn).Msg("error executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return rows, nil
}

// queryRow scans a single row into dest. found is false on sql.ErrNoRows.
func (c *Collection) queryRow(ctx context.Context, b sq.Sqlizer, fn string, dest ...any) (found bool, err error) {
	if c.db == nil {
		return false, ErrCollectionClosed
	}

	query, args, err := b.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	err = c.q().QueryRowContext(ctx, query, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		c.logger.Err(err).Str("func", fn).Msg("error scanning row")
		return false, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return true, nil
}

func (c *Collection) queryIDs(ctx context.Context, b sq.Sqlizer, fn string) ([]int64, error) {
	rows, err := c.query(ctx, b, fn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ids, nil
}

// pendingCondition selects rows the other side has not seen yet.
func pendingCondition(pending models.Usn) sq.Sqlizer {
	if pending == models.PendingUsn {
		return sq.Eq{"usn": models.PendingUsn}
	}
	return sq.GtOrEq{"usn": pending}
}
