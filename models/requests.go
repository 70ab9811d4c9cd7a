package models

// SyncHeaderName is the request header carrying the JSON encoded SyncHeader.
const SyncHeaderName = "X-Sync-Header"

// SyncHeader is the request envelope shared by every method.
type SyncHeader struct {
	SyncVersion   int    `json:"v"`
	HostKey       string `json:"k"`
	ClientVersion string `json:"c"`
	SessionKey    string `json:"s"`
}

// Method names, each served at /sync/<method>.
const (
	MethodHostKey      = "hostKey"
	MethodMeta         = "meta"
	MethodStart        = "start"
	MethodApplyGraves  = "applyGraves"
	MethodApplyChanges = "applyChanges"
	MethodChunk        = "chunk"
	MethodApplyChunk   = "applyChunk"
	MethodSanityCheck  = "sanityCheck2"
	MethodFinish       = "finish"
	MethodAbort        = "abort"
	MethodUpload       = "upload"
	MethodDownload     = "download"
)

type HostKeyRequest struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

type HostKeyResponse struct {
	Key string `json:"key"`
}

// StartRequest opens a session. Graves is only sent by old clients that
// pushed their tombstones along with the start request.
type StartRequest struct {
	ClientUsn    Usn     `json:"minUsn"`
	LocalIsNewer bool    `json:"lnewer"`
	Graves       *Graves `json:"graves,omitempty"`
}

type ApplyGravesRequest struct {
	Chunk Graves `json:"chunk"`
}

type ApplyChangesRequest struct {
	Changes UnchunkedChanges `json:"changes"`
}

type ApplyChunkRequest struct {
	Chunk Chunk `json:"chunk"`
}

type SanityCheckRequest struct {
	Client SanityCheckCounts `json:"client"`
}

// EmptyRequest is the body of methods without a payload.
type EmptyRequest struct{}

// UploadOK is the reply to an accepted full upload.
const UploadOK = "OK"

// CorruptCollectionMessage is the reply to an upload that failed validation.
const CorruptCollectionMessage = "Your upload was corrupt. Please use Check Database, or restore from backup."
