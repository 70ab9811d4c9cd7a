package models

import "encoding/json"

// CardEntry is the wire form of a card row.
type CardEntry struct {
	ID        int64  `json:"id"`
	NoteID    int64  `json:"nid"`
	DeckID    int64  `json:"did"`
	Ordinal   int    `json:"ord"`
	Mtime     int64  `json:"mod"`
	Usn       Usn    `json:"usn"`
	Type      int    `json:"type"`
	Queue     int    `json:"queue"`
	Due       int64  `json:"due"`
	Interval  int    `json:"ivl"`
	Factor    int    `json:"factor"`
	Reps      int    `json:"reps"`
	Lapses    int    `json:"lapses"`
	Remaining int    `json:"left"`
	OrigDue   int64  `json:"odue"`
	OrigDeck  int64  `json:"odid"`
	Flags     int    `json:"flags"`
	Data      string `json:"data"`
}

// Card queues used by the due-bucket counts.
const (
	QueueNew        = 0
	QueueLearn      = 1
	QueueReview     = 2
	QueueDayLearn   = 3
	QueueSuspended  = -1
	QueueBuriedUser = -3
)

// NoteEntry is the wire form of a note row. Fields are joined with 0x1f.
type NoteEntry struct {
	ID         int64  `json:"id"`
	GUID       string `json:"guid"`
	NotetypeID int64  `json:"mid"`
	Mtime      int64  `json:"mod"`
	Usn        Usn    `json:"usn"`
	Tags       string `json:"tags"`
	Fields     string `json:"flds"`
	Flags      int    `json:"flags"`
	Data       string `json:"data"`
}

// RevlogEntry is the wire form of a review log row. Revlog rows are append
// only.
type RevlogEntry struct {
	ID           int64 `json:"id"`
	CardID       int64 `json:"cid"`
	Usn          Usn   `json:"usn"`
	Ease         int   `json:"ease"`
	Interval     int   `json:"ivl"`
	LastInterval int   `json:"lastIvl"`
	Factor       int   `json:"factor"`
	Taken        int   `json:"time"`
	Kind         int   `json:"type"`
}

// Notetype describes the shape of notes. Field and template counts must
// agree between replicas for an incremental sync to be valid.
type Notetype struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Mtime     int64           `json:"mod"`
	Usn       Usn             `json:"usn"`
	Fields    []string        `json:"flds"`
	Templates []string        `json:"tmpls"`
	Config    json.RawMessage `json:"config,omitempty"`
}

// Deck is a named container of cards.
type Deck struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Mtime    int64           `json:"mod"`
	Usn      Usn             `json:"usn"`
	ConfigID int64           `json:"conf"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// DeckConfig holds scheduling options shared by decks.
type DeckConfig struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Mtime int64           `json:"mod"`
	Usn   Usn             `json:"usn"`
	Data  json.RawMessage `json:"data,omitempty"`
}
