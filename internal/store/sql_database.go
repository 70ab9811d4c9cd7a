package store

import (
	"context"
	"database/sql"

	"github.com/MKhiriev/go-collection-sync/internal/logger"
)

// DB wraps a database handle together with the classifier used to decide
// whether a driver error is worth retrying.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// ErrorClassificator decides whether a failed operation may be retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// retryAttempts bounds how often a retryable driver error is retried.
const retryAttempts = 3

// withRetry runs op again while the classifier considers its error
// transient.
func (db *DB) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if db.errorClassificator == nil || db.errorClassificator.Classify(err) != Retryable {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		db.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("retrying database operation")
	}
	return err
}
