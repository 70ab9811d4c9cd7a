package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("chunk: %w", NewSyncError(SyncErrorConflict, "session superseded"))

	assert.ErrorIs(t, err, &SyncError{Kind: SyncErrorConflict})
	assert.NotErrorIs(t, err, &SyncError{Kind: SyncErrorAuthFailed})
	assert.True(t, IsSyncErrorKind(err, SyncErrorConflict))
}

func TestSyncError_AsExposesCounts(t *testing.T) {
	client := &SanityCheckCounts{Cards: 3}
	server := &SanityCheckCounts{Cards: 4}
	err := fmt.Errorf("sync: %w", &SyncError{Kind: SyncErrorSanityCheckFailed, Client: client, Server: server})

	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	assert.Equal(t, client, syncErr.Client)
	assert.Equal(t, server, syncErr.Server)
	assert.True(t, syncErr.RequiresFullSync())
	assert.False(t, syncErr.Retryable())
}

func TestSyncError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapSyncError(SyncErrorNetwork, cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, err.Retryable())
	assert.Equal(t, "sync: network error: connection reset", err.Error())
}

func TestSyncErrorKind_String(t *testing.T) {
	assert.Equal(t, "clock incorrect", SyncErrorClockIncorrect.String())
	assert.Equal(t, "kind(99)", SyncErrorKind(99).String())
}
