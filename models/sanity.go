package models

// DueCounts are the new, learning and review buckets due today.
type DueCounts struct {
	New    int64 `json:"new"`
	Learn  int64 `json:"learn"`
	Review int64 `json:"review"`
}

// SanityCheckCounts is computed independently on both replicas after all
// changes were exchanged; equality proves the sync converged.
type SanityCheckCounts struct {
	Counts     DueCounts `json:"counts"`
	Cards      int64     `json:"cards"`
	Notes      int64     `json:"notes"`
	Revlog     int64     `json:"revlog"`
	Graves     int64     `json:"graves"`
	Notetypes  int64     `json:"models"`
	Decks      int64     `json:"decks"`
	DeckConfig int64     `json:"deck_config"`
}

// SanityCheckStatus is the server's verdict.
type SanityCheckStatus string

const (
	SanityCheckOk  SanityCheckStatus = "ok"
	SanityCheckBad SanityCheckStatus = "bad"
)

// SanityCheckResponse carries both snapshots when the status is bad.
type SanityCheckResponse struct {
	Status SanityCheckStatus  `json:"status"`
	Client *SanityCheckCounts `json:"c,omitempty"`
	Server *SanityCheckCounts `json:"s,omitempty"`
}
