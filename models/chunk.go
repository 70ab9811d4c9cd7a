package models

// DefaultChunkSize bounds the number of rows carried by one Chunk or one
// batch of graves.
const DefaultChunkSize = 250

// Chunk is a bounded slice of revlog, card and note rows.
type Chunk struct {
	Done   bool          `json:"done"`
	Revlog []RevlogEntry `json:"revlog,omitempty"`
	Cards  []CardEntry   `json:"cards,omitempty"`
	Notes  []NoteEntry   `json:"notes,omitempty"`
}

// Len returns the number of rows in the chunk.
func (c *Chunk) Len() int {
	return len(c.Revlog) + len(c.Cards) + len(c.Notes)
}

// ChunkableIDs is the cursor over rows still to be sent. Ids are kept in
// ascending order and consumed from the front.
type ChunkableIDs struct {
	Revlog []int64
	Cards  []int64
	Notes  []int64
}

// Take pops up to limit ids, filling from revlog, then cards, then notes.
// done reports whether the cursor is exhausted afterwards, so it is true
// exactly on the last batch.
func (c *ChunkableIDs) Take(limit int) (revlog, cards, notes []int64, done bool) {
	revlog, c.Revlog, limit = takeIDs(c.Revlog, limit)
	cards, c.Cards, limit = takeIDs(c.Cards, limit)
	notes, c.Notes, _ = takeIDs(c.Notes, limit)

	return revlog, cards, notes, c.Empty()
}

// Empty reports whether no ids remain.
func (c *ChunkableIDs) Empty() bool {
	return len(c.Revlog) == 0 && len(c.Cards) == 0 && len(c.Notes) == 0
}
