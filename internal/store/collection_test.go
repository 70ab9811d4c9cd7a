package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-collection-sync/internal/logger"
	"github.com/MKhiriev/go-collection-sync/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func openTestCollection(t *testing.T, server bool) *Collection {
	t.Helper()

	path := filepath.Join(t.TempDir(), "collection.db")
	col, err := OpenCollection(context.Background(), path, server, logger.Nop(), WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	t.Cleanup(func() { col.Close() })

	return col
}

func seedNotetype(t *testing.T, col *Collection, id int64) {
	t.Helper()
	require.NoError(t, col.AddNotetype(context.Background(), models.Notetype{
		ID: id, Name: "Basic", Fields: []string{"Front", "Back"}, Templates: []string{"Card 1"},
	}))
}

// ── Open and stamps ─────────────────────────────────────────────────────────

func TestOpenCollection_CreatesColRow(t *testing.T) {
	col := openTestCollection(t, false)

	stamps, err := col.Stamps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testNow.Unix(), stamps.Created)
	assert.Equal(t, testNow.UnixMilli(), stamps.Modified)
	assert.Equal(t, testNow.UnixMilli(), stamps.Schema)
	assert.Equal(t, models.Usn(0), stamps.Usn)
}

func TestOpenCollection_ReopenKeepsStamps(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "collection.db")

	col, err := OpenCollection(ctx, path, false, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, col.SetUsn(ctx, 42))
	require.NoError(t, col.Close())

	col, err = OpenCollection(ctx, path, false, logger.Nop())
	require.NoError(t, err)
	defer col.Close()

	usn, err := col.Usn(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Usn(42), usn)
}

func TestCollection_IncrementUsn(t *testing.T) {
	col := openTestCollection(t, true)
	ctx := context.Background()

	require.NoError(t, col.SetUsn(ctx, 5))
	require.NoError(t, col.IncrementUsn(ctx))

	usn, err := col.Usn(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Usn(6), usn)
}

func TestCollection_ClosedReturnsError(t *testing.T) {
	col := openTestCollection(t, false)
	require.NoError(t, col.Close())

	_, err := col.Stamps(context.Background())
	assert.ErrorIs(t, err, ErrCollectionClosed)
	assert.NoError(t, col.Close())
}

// ── Transactions ────────────────────────────────────────────────────────────

func TestCollection_RollbackDiscardsChanges(t *testing.T) {
	col := openTestCollection(t, false)
	ctx := context.Background()

	require.NoError(t, col.Begin(ctx))
	assert.ErrorIs(t, col.Begin(ctx), ErrTransactionActive)
	require.NoError(t, col.SetUsn(ctx, 9))
	require.NoError(t, col.Rollback())

	usn, err := col.Usn(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Usn(0), usn)
	assert.ErrorIs(t, col.Commit(), ErrNoTransaction)
}

func TestCollection_CommitKeepsChanges(t *testing.T) {
	col := openTestCollection(t, false)
	ctx := context.Background()

	require.NoError(t, col.Begin(ctx))
	require.NoError(t, col.SetUsn(ctx, 9))
	require.NoError(t, col.Commit())

	usn, err := col.Usn(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Usn(9), usn)
}

// ── Local edits ─────────────────────────────────────────────────────────────

func TestCollection_LocalEditsArePendingOnClient(t *testing.T) {
	col := openTestCollection(t, false)
	ctx := context.Background()

	seedNotetype(t, col, 1)
	require.NoError(t, col.AddNote(ctx, models.NoteEntry{ID: 10, GUID: "g", NotetypeID: 1, Tags: "a b"}))
	require.NoError(t, col.AddCard(ctx, models.CardEntry{ID: 100, NoteID: 10, DeckID: 1}))

	card, found, err := col.Card(ctx, 100)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.PendingUsn, card.Usn)
	assert.Equal(t, testNow.Unix(), card.Mtime)

	ids, err := col.ChunkableIDs(ctx, models.PendingUsn)
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, ids.Cards)
	assert.Equal(t, []int64{10}, ids.Notes)

	tags, err := col.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)
}

func TestCollection_LocalEditsUseCounterOnServer(t *testing.T) {
	col := openTestCollection(t, true)
	ctx := context.Background()

	require.NoError(t, col.SetUsn(ctx, 7))
	require.NoError(t, col.AddCard(ctx, models.CardEntry{ID: 1}))

	card, _, err := col.Card(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Usn(7), card.Usn)
}

func TestCollection_AddNoteRequiresNotetype(t *testing.T) {
	col := openTestCollection(t, false)

	err := col.AddNote(context.Background(), models.NoteEntry{ID: 1, NotetypeID: 99})
	assert.ErrorIs(t, err, ErrNotetypeMissing)
}

func TestCollection_NotetypeSchemaChangeBumpsSchema(t *testing.T) {
	later := testNow.Add(time.Hour)
	now := testNow
	path := filepath.Join(t.TempDir(), "collection.db")
	col, err := OpenCollection(context.Background(), path, false, logger.Nop(), WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	defer col.Close()

	seedNotetype(t, col, 1)
	now = later
	require.NoError(t, col.AddNotetype(context.Background(), models.Notetype{
		ID: 1, Name: "Basic", Fields: []string{"Front", "Back", "Extra"}, Templates: []string{"Card 1"},
	}))

	stamps, err := col.Stamps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, later.UnixMilli(), stamps.Schema)
}

// ── Graves ──────────────────────────────────────────────────────────────────

func TestCollection_RemoveNoteLeavesGraves(t *testing.T) {
	col := openTestCollection(t, false)
	ctx := context.Background()

	seedNotetype(t, col, 1)
	require.NoError(t, col.AddNote(ctx, models.NoteEntry{ID: 10, NotetypeID: 1}))
	require.NoError(t, col.AddCard(ctx, models.CardEntry{ID: 100, NoteID: 10}))
	require.NoError(t, col.AddCard(ctx, models.CardEntry{ID: 101, NoteID: 10}))

	require.NoError(t, col.RemoveNote(ctx, 10))

	graves, err := col.PendingGraves(ctx, models.PendingUsn)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 101}, graves.Cards)
	assert.Equal(t, []int64{10}, graves.Notes)

	_, found, err := col.Note(ctx, 10)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCollection_UpdatePendingGraveUsns(t *testing.T) {
	col := openTestCollection(t, false)
	ctx := context.Background()

	require.NoError(t, col.RemoveDeck(ctx, 5))
	require.NoError(t, col.UpdatePendingGraveUsns(ctx, 12))

	pending, err := col.PendingGraves(ctx, models.PendingUsn)
	require.NoError(t, err)
	assert.Equal(t, 0, pending.Len())

	since, err := col.PendingGraves(ctx, 12)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, since.Decks)
}

func TestCollection_ApplyGravesIsIdempotent(t *testing.T) {
	col := openTestCollection(t, true)
	ctx := context.Background()

	require.NoError(t, col.AddCard(ctx, models.CardEntry{ID: 1}))
	graves := &models.Graves{Cards: []int64{1, 2}}

	require.NoError(t, col.ApplyGraves(ctx, graves, 3))
	require.NoError(t, col.ApplyGraves(ctx, graves, 3))

	_, found, err := col.Card(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	info, err := col.SanityCheckInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Graves)
}

// ── Chunks ──────────────────────────────────────────────────────────────────

func TestCollection_TakeChunkRestamps(t *testing.T) {
	col := openTestCollection(t, false)
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, col.AddCard(ctx, models.CardEntry{ID: i}))
	}
	require.NoError(t, col.AddRevlog(ctx, models.RevlogEntry{ID: 50, CardID: 1}))

	cursor, err := col.ChunkableIDs(ctx, models.PendingUsn)
	require.NoError(t, err)

	usn := models.Usn(8)
	first, err := col.TakeChunk(ctx, cursor, 2, &usn)
	require.NoError(t, err)
	assert.False(t, first.Done)
	require.Len(t, first.Revlog, 1)
	require.Len(t, first.Cards, 1)
	assert.Equal(t, usn, first.Cards[0].Usn)

	second, err := col.TakeChunk(ctx, cursor, 2, &usn)
	require.NoError(t, err)
	assert.True(t, second.Done)
	assert.Len(t, second.Cards, 2)

	left, err := col.ChunkableIDs(ctx, models.PendingUsn)
	require.NoError(t, err)
	assert.True(t, left.Empty())
}

func TestCollection_TakeChunkEmpty(t *testing.T) {
	col := openTestCollection(t, true)
	ctx := context.Background()

	cursor, err := col.ChunkableIDs(ctx, 0)
	require.NoError(t, err)

	chunk, err := col.TakeChunk(ctx, cursor, models.DefaultChunkSize, nil)
	require.NoError(t, err)
	assert.True(t, chunk.Done)
	assert.Equal(t, 0, chunk.Len())
}

func TestCollection_ApplyChunkMergeRules(t *testing.T) {
	col := openTestCollection(t, false)
	ctx := context.Background()

	// pending local card, newer than the incoming copy
	require.NoError(t, col.AddCard(ctx, models.CardEntry{ID: 1, Mtime: 200, Due: 1}))
	// pending local card, older than the incoming copy
	require.NoError(t, col.AddCard(ctx, models.CardEntry{ID: 2, Mtime: 100, Due: 1}))

	chunk := &models.Chunk{
		Done: true,
		Cards: []models.CardEntry{
			{ID: 1, Mtime: 150, Usn: 5, Due: 9},
			{ID: 2, Mtime: 150, Usn: 5, Due: 9},
			{ID: 3, Mtime: 150, Usn: 5, Due: 9},
		},
		Revlog: []models.RevlogEntry{{ID: 7, CardID: 1, Usn: 5}},
	}
	require.NoError(t, col.ApplyChunk(ctx, chunk, models.PendingUsn))
	require.NoError(t, col.ApplyChunk(ctx, chunk, models.PendingUsn))

	kept, _, err := col.Card(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), kept.Due)

	replaced, _, err := col.Card(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(9), replaced.Due)
	assert.Equal(t, models.Usn(5), replaced.Usn)

	_, found, err := col.Card(ctx, 3)
	require.NoError(t, err)
	assert.True(t, found)

	info, err := col.SanityCheckInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Revlog)
}

func TestCollection_ApplyChunkMissingNotetype(t *testing.T) {
	col := openTestCollection(t, true)

	err := col.ApplyChunk(context.Background(), &models.Chunk{
		Notes: []models.NoteEntry{{ID: 1, NotetypeID: 42}},
	}, 0)
	assert.ErrorIs(t, err, ErrNotetypeMissing)
}

// ── Unchunked changes ───────────────────────────────────────────────────────

func TestCollection_UnchunkedChangesRoundTrip(t *testing.T) {
	client := openTestCollection(t, false)
	server := openTestCollection(t, true)
	ctx := context.Background()

	seedNotetype(t, client, 1)
	require.NoError(t, client.AddDeck(ctx, models.Deck{ID: 2, Name: "Default"}))
	require.NoError(t, client.AddDeckConfig(ctx, models.DeckConfig{ID: 3, Name: "Default"}))
	require.NoError(t, client.SetConfig(ctx, "curDeck", []byte(`2`)))

	usn := models.Usn(4)
	changes, err := client.PendingUnchunkedChanges(ctx, models.PendingUsn, &usn, true)
	require.NoError(t, err)
	require.Len(t, changes.Notetypes, 1)
	assert.Equal(t, usn, changes.Notetypes[0].Usn)
	require.NotNil(t, changes.CreationStamp)
	assert.JSONEq(t, `2`, string(changes.Config["curDeck"]))

	again, err := client.PendingUnchunkedChanges(ctx, models.PendingUsn, nil, false)
	require.NoError(t, err)
	assert.Empty(t, again.Notetypes)
	assert.Nil(t, again.Config)

	require.NoError(t, server.ApplyUnchunkedChanges(ctx, changes, usn))
	info, err := server.SanityCheckInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.Notetypes)
	assert.Equal(t, int64(1), info.Decks)
	assert.Equal(t, int64(1), info.DeckConfig)

	val, found, err := server.ConfigValue(ctx, "curDeck")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `2`, string(val))
}

func TestCollection_ApplyUnchunkedChangesKeepsNewerLocal(t *testing.T) {
	col := openTestCollection(t, true)
	ctx := context.Background()

	require.NoError(t, col.AddDeck(ctx, models.Deck{ID: 2, Name: "Local", Mtime: 500}))
	require.NoError(t, col.ApplyUnchunkedChanges(ctx, &models.UnchunkedChanges{
		Decks: []models.Deck{{ID: 2, Name: "Remote", Mtime: 400}},
	}, 1))

	changes, err := col.PendingUnchunkedChanges(ctx, 0, nil, false)
	require.NoError(t, err)
	require.Len(t, changes.Decks, 1)
	assert.Equal(t, "Local", changes.Decks[0].Name)
}

func TestCollection_ApplyUnchunkedChangesNotetypeShapeChange(t *testing.T) {
	col := openTestCollection(t, true)
	seedNotetype(t, col, 1)

	err := col.ApplyUnchunkedChanges(context.Background(), &models.UnchunkedChanges{
		Notetypes: []models.Notetype{{ID: 1, Fields: []string{"Only"}, Templates: []string{"Card 1"}, Mtime: testNow.Unix() + 10}},
	}, 1)
	assert.ErrorIs(t, err, ErrNotetypeSchemaChanged)
}

// ── Sanity ──────────────────────────────────────────────────────────────────

func TestCollection_SanityCheckInfoDueCounts(t *testing.T) {
	col := openTestCollection(t, false)
	ctx := context.Background()

	require.NoError(t, col.SetCreationStamp(ctx, testNow.Add(-10*24*time.Hour).Unix()))
	cards := []models.CardEntry{
		{ID: 1, Queue: models.QueueNew},
		{ID: 2, Queue: models.QueueLearn},
		{ID: 3, Queue: models.QueueDayLearn},
		{ID: 4, Queue: models.QueueReview, Due: 10},
		{ID: 5, Queue: models.QueueReview, Due: 11},
		{ID: 6, Queue: models.QueueSuspended},
	}
	for _, c := range cards {
		require.NoError(t, col.AddCard(ctx, c))
	}

	info, err := col.SanityCheckInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DueCounts{New: 1, Learn: 2, Review: 1}, info.Counts)
	assert.Equal(t, int64(6), info.Cards)
}

// ── File helpers ────────────────────────────────────────────────────────────

func TestCheckCollectionFile(t *testing.T) {
	col := openTestCollection(t, false)
	require.NoError(t, col.Close())

	assert.NoError(t, CheckCollectionFile(context.Background(), col.Path(), logger.Nop()))

	garbage := filepath.Join(t.TempDir(), "garbage.db")
	require.NoError(t, os.WriteFile(garbage, []byte("this is not a database file at all, not even close"), 0o600))
	assert.ErrorIs(t, CheckCollectionFile(context.Background(), garbage, logger.Nop()), ErrCorruptCollection)
}

func TestCollection_PrepareForFullUpload(t *testing.T) {
	col := openTestCollection(t, false)
	ctx := context.Background()

	require.NoError(t, col.AddCard(ctx, models.CardEntry{ID: 1}))
	require.NoError(t, col.RemoveDeck(ctx, 9))
	require.NoError(t, col.PrepareForFullUpload(ctx))

	ids, err := col.ChunkableIDs(ctx, models.PendingUsn)
	require.NoError(t, err)
	assert.True(t, ids.Empty())

	info, err := col.SanityCheckInfo(ctx)
	require.NoError(t, err)
	assert.Zero(t, info.Graves)

	stamps, err := col.Stamps(ctx)
	require.NoError(t, err)
	assert.Equal(t, stamps.Modified, stamps.LastSync)
}
