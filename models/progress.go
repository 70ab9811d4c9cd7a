package models

// SyncStage identifies the NormalSyncer step a progress report belongs to.
type SyncStage int

const (
	StageConnecting SyncStage = iota
	StageGraves
	StageUnchunkedChanges
	StageChunksFromServer
	StageChunksToServer
	StageSanityCheck
	StageFinalizing
)

func (s SyncStage) String() string {
	switch s {
	case StageConnecting:
		return "connecting"
	case StageGraves:
		return "graves"
	case StageUnchunkedChanges:
		return "changes"
	case StageChunksFromServer:
		return "receiving"
	case StageChunksToServer:
		return "sending"
	case StageSanityCheck:
		return "checking"
	case StageFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// NormalSyncProgress counts rows added/removed on each side so far.
type NormalSyncProgress struct {
	Stage        SyncStage
	LocalUpdate  int
	LocalRemove  int
	RemoteUpdate int
	RemoteRemove int
}

// ProgressFn receives progress reports; returning false cancels the sync.
type ProgressFn func(NormalSyncProgress) bool
