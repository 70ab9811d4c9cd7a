// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
)

// SyncErrorKind is the closed set of failure kinds surfaced by a sync.
type SyncErrorKind int

const (
	SyncErrorOther SyncErrorKind = iota
	SyncErrorNetwork
	SyncErrorAuthFailed
	SyncErrorClientTooOld
	SyncErrorServerMessage
	SyncErrorClockIncorrect
	SyncErrorResyncRequired
	SyncErrorDatabaseCheckRequired
	SyncErrorSanityCheckFailed
	SyncErrorUploadTooLarge
	SyncErrorInterrupted
	SyncErrorConflict
	SyncErrorServer
)

var syncErrorKindNames = map[SyncErrorKind]string{
	SyncErrorOther:                 "other",
	SyncErrorNetwork:               "network error",
	SyncErrorAuthFailed:            "authentication failed",
	SyncErrorClientTooOld:          "client too old",
	SyncErrorServerMessage:         "server message",
	SyncErrorClockIncorrect:        "clock incorrect",
	SyncErrorResyncRequired:        "resync required",
	SyncErrorDatabaseCheckRequired: "database check required",
	SyncErrorSanityCheckFailed:     "sanity check failed",
	SyncErrorUploadTooLarge:        "upload too large",
	SyncErrorInterrupted:           "interrupted",
	SyncErrorConflict:              "conflict",
	SyncErrorServer:                "server error",
}

func (k SyncErrorKind) String() string {
	if name, ok := syncErrorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// SyncError is returned by every sync entry point. Client and Server are only
// set for SyncErrorSanityCheckFailed.
type SyncError struct {
	Kind SyncErrorKind
	Info string

	Client *SanityCheckCounts
	Server *SanityCheckCounts

	Err error
}

// NewSyncError builds a SyncError of the given kind.
func NewSyncError(kind SyncErrorKind, info string) *SyncError {
	return &SyncError{Kind: kind, Info: info}
}

// WrapSyncError classifies err as kind, keeping it in the chain.
func WrapSyncError(kind SyncErrorKind, err error) *SyncError {
	return &SyncError{Kind: kind, Info: err.Error(), Err: err}
}

func (e *SyncError) Error() string {
	if e.Info == "" {
		return "sync: " + e.Kind.String()
	}
	return "sync: " + e.Kind.String() + ": " + e.Info
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Is matches any *SyncError of the same kind, so callers can write
// errors.Is(err, &models.SyncError{Kind: models.SyncErrorConflict}).
func (e *SyncError) Is(target error) bool {
	t, ok := target.(*SyncError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable reports whether retrying the same sync may succeed without user
// action.
func (e *SyncError) Retryable() bool {
	return e.Kind == SyncErrorNetwork
}

// RequiresFullSync reports whether the user must be prompted for a one-way
// sync.
func (e *SyncError) RequiresFullSync() bool {
	switch e.Kind {
	case SyncErrorSanityCheckFailed, SyncErrorDatabaseCheckRequired, SyncErrorResyncRequired:
		return true
	default:
		return false
	}
}

// IsSyncErrorKind reports whether err is a *SyncError of the given kind.
func IsSyncErrorKind(err error, kind SyncErrorKind) bool {
	return errors.Is(err, &SyncError{Kind: kind})
}
