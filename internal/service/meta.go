// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-collection-sync/models"
)

// CompareSyncMeta decides what kind of sync local and remote need. It is
// computed once per attempt, before any transaction is opened.
func CompareSyncMeta(local, remote models.SyncMeta) models.ClientSyncState {
	state := models.ClientSyncState{
		LocalIsNewer:  local.Modified > remote.Modified,
		UsnAtLastSync: local.Usn,
		ServerUsn:     remote.Usn,
		PendingUsn:    models.PendingUsn,
		ServerMessage: remote.ServerMessage,
		HostNumber:    remote.HostNumber,
		ServerTime:    remote.CurrentTime,
	}

	switch {
	case remote.Modified == local.Modified:
		state.Required = models.NoChanges
	case remote.Schema != local.Schema, remote.Created != local.Created, local.Usn > remote.Usn:
		// the server was replaced or restored; there is no common base to
		// diff from
		state.Required = models.FullSyncRequired
		state.UploadOK = !local.Empty || remote.Empty
		state.DownloadOK = !remote.Empty || local.Empty
	default:
		state.Required = models.NormalSyncRequired
	}

	return state
}

// CheckRemoteMeta rejects a remote that asked the client to stop or whose
// clock is further than maxSkew from now. maxSkew <= 0 disables the clock
// check.
func CheckRemoteMeta(remote models.SyncMeta, now time.Time, maxSkew time.Duration) error {
	if !remote.ShouldContinue {
		return models.NewSyncError(models.SyncErrorServerMessage, remote.ServerMessage)
	}

	if maxSkew <= 0 {
		return nil
	}

	diff := now.Unix() - remote.CurrentTime
	if diff < 0 {
		diff = -diff
	}
	if diff > int64(maxSkew/time.Second) {
		return models.NewSyncError(models.SyncErrorClockIncorrect,
			fmt.Sprintf("local clock differs from the server by %ds", diff))
	}

	return nil
}
