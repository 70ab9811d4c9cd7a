package models

// GraveKind identifies the table a tombstone belongs to.
type GraveKind int

const (
	GraveCard GraveKind = iota
	GraveNote
	GraveDeck
)

// Graves is a set of deletion tombstones.
type Graves struct {
	Cards []int64 `json:"cards"`
	Decks []int64 `json:"decks"`
	Notes []int64 `json:"notes"`
}

// Len returns the total number of tombstones.
func (g *Graves) Len() int {
	return len(g.Cards) + len(g.Notes) + len(g.Decks)
}

// Add appends id to the list matching kind.
func (g *Graves) Add(kind GraveKind, id int64) {
	switch kind {
	case GraveCard:
		g.Cards = append(g.Cards, id)
	case GraveNote:
		g.Notes = append(g.Notes, id)
	case GraveDeck:
		g.Decks = append(g.Decks, id)
	}
}

// TakeChunk removes up to limit tombstones from g, draining cards first, then
// notes, then decks. It returns nil once g is empty.
func (g *Graves) TakeChunk(limit int) *Graves {
	if g.Len() == 0 || limit <= 0 {
		return nil
	}

	out := &Graves{}
	out.Cards, g.Cards, limit = takeIDs(g.Cards, limit)
	out.Notes, g.Notes, limit = takeIDs(g.Notes, limit)
	out.Decks, g.Decks, _ = takeIDs(g.Decks, limit)

	return out
}

func takeIDs(ids []int64, limit int) (taken, rest []int64, remaining int) {
	n := min(limit, len(ids))
	if n == 0 {
		return nil, ids, limit
	}
	return ids[:n:n], ids[n:], limit - n
}
