package store

import "errors"

// Sentinel errors returned by the collection storage and the account
// repositories. Callers should use [errors.Is] to match against these values.
var (
	// ErrLoginAlreadyExists is returned when an account with the same login
	// already exists.
	ErrLoginAlreadyExists = errors.New("login already exists")

	// ErrNoUserWasFound is returned when no account matches the login.
	ErrNoUserWasFound = errors.New("no user was found")

	// ErrCorruptCollection is returned when a collection file fails the
	// integrity check or lacks the collection row.
	ErrCorruptCollection = errors.New("collection file is corrupt")

	// ErrNotetypeMissing is returned when a note refers to a notetype the
	// collection does not have.
	ErrNotetypeMissing = errors.New("note refers to a missing notetype")

	// ErrNotetypeSchemaChanged is returned when an incoming notetype has a
	// different number of fields or templates than the local copy.
	ErrNotetypeSchemaChanged = errors.New("notetype fields or templates changed")

	// ErrTransactionActive is returned by Begin when a transaction is
	// already open on the collection.
	ErrTransactionActive = errors.New("transaction already active")

	// ErrNoTransaction is returned by Commit and Rollback without Begin.
	ErrNoTransaction = errors.New("no active transaction")

	// ErrCollectionClosed is returned by operations on a closed collection.
	ErrCollectionClosed = errors.New("collection is closed")
)

// Low-level database operation errors, wrapped by storage methods when a
// SQL-level operation fails.
var (
	// ErrBuildingSQLQuery is returned when constructing a SQL query fails.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the driver cannot start a
	// transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing fails. The
	// transaction is considered rolled back at this point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when an INSERT, UPDATE or DELETE
	// fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a single row fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning during multi-row iteration
	// fails.
	ErrScanningRows = errors.New("failed to scan rows")
)
