// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors raised while decoding the request envelope. Callers can
// match against them with [errors.Is].
var (
	// ErrInvalidSyncHeader is returned when the X-Sync-Header value is not a
	// JSON object.
	ErrInvalidSyncHeader = errors.New("invalid sync header")

	// ErrInvalidMultipart is returned when a legacy multipart envelope
	// cannot be read.
	ErrInvalidMultipart = errors.New("invalid multipart envelope")

	// ErrInvalidBody is returned when the request body does not decode into
	// the method's request type.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrNoSyncRequest is returned by handlers reached without the envelope
	// middleware.
	ErrNoSyncRequest = errors.New("sync request envelope missing")

	// ErrNoUser is returned by handlers reached without an authenticated
	// account.
	ErrNoUser = errors.New("no authenticated user")
)
