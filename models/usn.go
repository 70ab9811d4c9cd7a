// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Usn is the update sequence number stamped on every mutable row. The server
// owns the counter; a row carrying PendingUsn has been changed locally and has
// not been acknowledged by the server yet.
type Usn int32

// PendingUsn marks a row as locally modified and awaiting sync.
const PendingUsn Usn = -1

// IsPendingSync reports whether a row stamped with u must be sent to the
// other side. On the client pending is PendingUsn and only unsent rows match;
// on the server pending is the client's watermark and every row stamped at or
// after it matches.
func (u Usn) IsPendingSync(pending Usn) bool {
	if pending == PendingUsn {
		return u == PendingUsn
	}
	return u >= pending
}
