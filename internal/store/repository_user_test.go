package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/models"
)

func newTestAccountRepo(t *testing.T, classifier ErrorClassificator) (*accountRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l := logger.Nop()
	repo := &accountRepository{
		db:     &DB{DB: db, logger: l, errorClassificator: classifier},
		logger: l,
	}
	return repo, mock
}

func pgError(code string) error {
	return &pgconn.PgError{Code: code}
}

var userColumns = []string{"user_id", "login", "password_hash", "created_at"}

// ── CreateUser ──────────────────────────────────────────────────────────────

func TestCreateUser_Success(t *testing.T) {
	repo, mock := newTestAccountRepo(t, nil)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("john", "hash").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "john", "hash", now))

	created, err := repo.CreateUser(context.Background(), models.User{Login: "john", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.UserID)
	assert.Equal(t, "john", created.Login)
	assert.Equal(t, "hash", created.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_UniqueViolation(t *testing.T) {
	repo, mock := newTestAccountRepo(t, nil)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(pgError(pgerrcode.UniqueViolation))

	_, err := repo.CreateUser(context.Background(), models.User{Login: "john"})
	assert.ErrorIs(t, err, ErrLoginAlreadyExists)
}

func TestCreateUser_UnexpectedDBError(t *testing.T) {
	repo, mock := newTestAccountRepo(t, nil)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("db network error"))

	_, err := repo.CreateUser(context.Background(), models.User{Login: "john"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unexpected DB error"))
}

func TestCreateUser_RetriesTransientError(t *testing.T) {
	repo, mock := newTestAccountRepo(t, NewPostgresErrorClassifier())
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("john", "hash").
		WillReturnError(pgError(pgerrcode.SerializationFailure))
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("john", "hash").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(7, "john", "hash", now))

	created, err := repo.CreateUser(context.Background(), models.User{Login: "john", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── FindUserByLogin ─────────────────────────────────────────────────────────

func TestFindUserByLogin_Success(t *testing.T) {
	repo, mock := newTestAccountRepo(t, nil)

	mock.ExpectQuery("SELECT user_id, login, password_hash, created_at FROM users").
		WithArgs("john").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(1, "john", "hash", time.Now()))

	found, err := repo.FindUserByLogin(context.Background(), "john")
	require.NoError(t, err)
	assert.Equal(t, "john", found.Login)
	assert.Equal(t, "hash", found.PasswordHash)
}

func TestFindUserByLogin_NotFound(t *testing.T) {
	repo, mock := newTestAccountRepo(t, nil)

	mock.ExpectQuery("SELECT user_id").
		WithArgs("john").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindUserByLogin(context.Background(), "john")
	assert.ErrorIs(t, err, ErrNoUserWasFound)
}

func TestFindUserByLogin_UnexpectedError(t *testing.T) {
	repo, mock := newTestAccountRepo(t, nil)

	mock.ExpectQuery("SELECT user_id").
		WithArgs("john").
		WillReturnError(errors.New("db failure"))

	_, err := repo.FindUserByLogin(context.Background(), "john")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected DB error")
}

func TestFindUserByLogin_NonRetryableNotRetried(t *testing.T) {
	repo, mock := newTestAccountRepo(t, NewPostgresErrorClassifier())

	mock.ExpectQuery("SELECT user_id").
		WithArgs("john").
		WillReturnError(pgError(pgerrcode.UndefinedTable))

	_, err := repo.FindUserByLogin(context.Background(), "john")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── In-memory accounts ──────────────────────────────────────────────────────

func TestMemoryAccountRepository_CreateAndFind(t *testing.T) {
	repo := NewMemoryAccountRepository()
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, models.User{Login: "ann", Password: "secret", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.UserID)
	assert.Empty(t, created.Password)

	found, err := repo.FindUserByLogin(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, "h", found.PasswordHash)

	_, err = repo.CreateUser(ctx, models.User{Login: "ann"})
	assert.ErrorIs(t, err, ErrLoginAlreadyExists)

	_, err = repo.FindUserByLogin(ctx, "bob")
	assert.ErrorIs(t, err, ErrNoUserWasFound)
}
