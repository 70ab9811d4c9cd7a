package models

import "encoding/json"

// UnchunkedChanges carries the small tables that are always exchanged in a
// single request each way.
type UnchunkedChanges struct {
	Notetypes  []Notetype   `json:"models"`
	Decks      []Deck       `json:"decks"`
	DeckConfig []DeckConfig `json:"dconf"`
	Tags       []string     `json:"tags"`

	// Config and CreationStamp are only sent by the side whose collection
	// was modified more recently.
	Config        map[string]json.RawMessage `json:"conf,omitempty"`
	CreationStamp *int64                     `json:"crt,omitempty"`
}
