package models

// SyncActionRequired is the outcome of comparing local and remote SyncMeta.
type SyncActionRequired int

const (
	NoChanges SyncActionRequired = iota
	FullSyncRequired
	NormalSyncRequired
)

func (a SyncActionRequired) String() string {
	switch a {
	case NoChanges:
		return "no changes"
	case FullSyncRequired:
		return "full sync required"
	case NormalSyncRequired:
		return "normal sync required"
	default:
		return "unknown"
	}
}

// ClientSyncState is computed once per sync attempt, before any transaction
// is opened.
type ClientSyncState struct {
	Required SyncActionRequired
	// UploadOK and DownloadOK are only meaningful for FullSyncRequired.
	UploadOK   bool
	DownloadOK bool

	LocalIsNewer  bool
	UsnAtLastSync Usn
	ServerUsn     Usn
	PendingUsn    Usn

	ServerMessage string
	HostNumber    int32
	ServerTime    int64
}

// SyncOutput is returned to the caller after a sync attempt.
type SyncOutput struct {
	Required      SyncActionRequired
	UploadOK      bool
	DownloadOK    bool
	ServerMessage string
	HostNumber    int32
}

// Output projects the state into what the caller needs to decide whether
// to prompt for a full sync.
func (s ClientSyncState) Output() SyncOutput {
	return SyncOutput{
		Required:      s.Required,
		UploadOK:      s.UploadOK,
		DownloadOK:    s.DownloadOK,
		ServerMessage: s.ServerMessage,
		HostNumber:    s.HostNumber,
	}
}
