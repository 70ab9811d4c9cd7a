package models

// Protocol versions accepted by the server.
const (
	SyncVersionMin = 10
	SyncVersionMax = 11
)

// SyncMeta is the collection snapshot exchanged when a sync starts.
type SyncMeta struct {
	// Modified is the collection modification stamp in milliseconds.
	Modified int64 `json:"mod"`
	// Schema is the schema modification stamp in milliseconds. A mismatch
	// means the two sides diverged structurally.
	Schema int64 `json:"scm"`
	// Created is the collection creation stamp in seconds.
	Created int64 `json:"crt"`
	Usn     Usn   `json:"usn"`
	// CurrentTime is the sender's wall clock in seconds.
	CurrentTime   int64  `json:"ts"`
	ServerMessage string `json:"msg"`
	// ShouldContinue is false when the server refuses to sync; the reason is
	// in ServerMessage.
	ShouldContinue bool  `json:"cont"`
	HostNumber     int32 `json:"hostNum"`
	// Empty is true when the collection holds no cards.
	Empty bool `json:"empty"`
}

// CollectionStamps are the collection-level bookkeeping values kept by the
// storage engine.
type CollectionStamps struct {
	Created  int64
	Modified int64
	Schema   int64
	Usn      Usn
	LastSync int64
}

// MetaRequest opens a sync by asking for the server's SyncMeta.
type MetaRequest struct {
	SyncVersion   int    `json:"v"`
	ClientVersion string `json:"cv"`
}
