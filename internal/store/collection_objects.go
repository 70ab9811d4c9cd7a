package store

import (
	"context"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-collection-sync/models"
)

var (
	cardColumns = []string{
		"id", "nid", "did", "ord", "mtime", "usn", "ctype", "queue", "due", "ivl",
		"factor", "reps", "lapses", "remaining", "odue", "odid", "flags", "data",
	}
	noteColumns   = []string{"id", "guid", "mid", "mtime", "usn", "tags", "flds", "flags", "data"}
	revlogColumns = []string{"id", "cid", "usn", "ease", "ivl", "lastivl", "factor", "taken", "kind"}
)

// ── Chunkable rows ──────────────────────────────────────────────────────────

// ChunkableIDs collects the ids of revlog, card and note rows matching
// pending, in ascending order.
func (c *Collection) ChunkableIDs(ctx context.Context, pending models.Usn) (*models.ChunkableIDs, error) {
	ids := &models.ChunkableIDs{}
	var err error

	if ids.Revlog, err = c.pendingIDs(ctx, "revlog", pending); err != nil {
		return nil, err
	}
	if ids.Cards, err = c.pendingIDs(ctx, "cards", pending); err != nil {
		return nil, err
	}
	if ids.Notes, err = c.pendingIDs(ctx, "notes", pending); err != nil {
		return nil, err
	}

	return ids, nil
}

func (c *Collection) pendingIDs(ctx context.Context, table string, pending models.Usn) ([]int64, error) {
	return c.queryIDs(ctx,
		sq.Select("id").From(table).Where(pendingCondition(pending)).OrderBy("id"),
		"*Collection.pendingIDs",
	)
}

// TakeChunk pops up to limit ids from cursor and loads their rows. When
// restamp is not nil the rows are re-stamped with that usn both in the file
// and in the returned chunk.
func (c *Collection) TakeChunk(ctx context.Context, cursor *models.ChunkableIDs, limit int, restamp *models.Usn) (*models.Chunk, error) {
	revlogIDs, cardIDs, noteIDs, done := cursor.Take(limit)
	chunk := &models.Chunk{Done: done}
	var err error

	if chunk.Revlog, err = c.revlogByIDs(ctx, revlogIDs); err != nil {
		return nil, err
	}
	if chunk.Cards, err = c.cardsByIDs(ctx, cardIDs); err != nil {
		return nil, err
	}
	if chunk.Notes, err = c.notesByIDs(ctx, noteIDs); err != nil {
		return nil, err
	}

	if restamp == nil {
		return chunk, nil
	}

	usn := *restamp
	for i := range chunk.Revlog {
		chunk.Revlog[i].Usn = usn
	}
	for i := range chunk.Cards {
		chunk.Cards[i].Usn = usn
	}
	for i := range chunk.Notes {
		chunk.Notes[i].Usn = usn
	}
	if err = c.restamp(ctx, "revlog", revlogIDs, usn); err != nil {
		return nil, err
	}
	if err = c.restamp(ctx, "cards", cardIDs, usn); err != nil {
		return nil, err
	}
	if err = c.restamp(ctx, "notes", noteIDs, usn); err != nil {
		return nil, err
	}

	return chunk, nil
}

func (c *Collection) restamp(ctx context.Context, table string, ids []int64, usn models.Usn) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := c.exec(ctx, sq.Update(table).Set("usn", usn).Where(sq.Eq{"id": ids}), "*Collection.restamp")
	return err
}

func (c *Collection) revlogByIDs(ctx context.Context, ids []int64) ([]models.RevlogEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := c.query(ctx,
		sq.Select(revlogColumns...).From("revlog").Where(sq.Eq{"id": ids}).OrderBy("id"),
		"*Collection.revlogByIDs",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RevlogEntry
	for rows.Next() {
		var r models.RevlogEntry
		if err = rows.Scan(&r.ID, &r.CardID, &r.Usn, &r.Ease, &r.Interval, &r.LastInterval, &r.Factor, &r.Taken, &r.Kind); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return out, nil
}

func scanCard(s interface{ Scan(...any) error }) (models.CardEntry, error) {
	var e models.CardEntry
	err := s.Scan(&e.ID, &e.NoteID, &e.DeckID, &e.Ordinal, &e.Mtime, &e.Usn, &e.Type, &e.Queue, &e.Due,
		&e.Interval, &e.Factor, &e.Reps, &e.Lapses, &e.Remaining, &e.OrigDue, &e.OrigDeck, &e.Flags, &e.Data)
	return e, err
}

func (c *Collection) cardsByIDs(ctx context.Context, ids []int64) ([]models.CardEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := c.query(ctx,
		sq.Select(cardColumns...).From("cards").Where(sq.Eq{"id": ids}).OrderBy("id"),
		"*Collection.cardsByIDs",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CardEntry
	for rows.Next() {
		e, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		out = append(out, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return out, nil
}

func scanNote(s interface{ Scan(...any) error }) (models.NoteEntry, error) {
	var e models.NoteEntry
	err := s.Scan(&e.ID, &e.GUID, &e.NotetypeID, &e.Mtime, &e.Usn, &e.Tags, &e.Fields, &e.Flags, &e.Data)
	return e, err
}

func (c *Collection) notesByIDs(ctx context.Context, ids []int64) ([]models.NoteEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := c.query(ctx,
		sq.Select(noteColumns...).From("notes").Where(sq.Eq{"id": ids}).OrderBy("id"),
		"*Collection.notesByIDs",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.NoteEntry
	for rows.Next() {
		e, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		out = append(out, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return out, nil
}

// Card returns a single card; found is false when it does not exist.
func (c *Collection) Card(ctx context.Context, id int64) (models.CardEntry, bool, error) {
	cards, err := c.cardsByIDs(ctx, []int64{id})
	if err != nil || len(cards) == 0 {
		return models.CardEntry{}, false, err
	}
	return cards[0], true, nil
}

// Note returns a single note; found is false when it does not exist.
func (c *Collection) Note(ctx context.Context, id int64) (models.NoteEntry, bool, error) {
	notes, err := c.notesByIDs(ctx, []int64{id})
	if err != nil || len(notes) == 0 {
		return models.NoteEntry{}, false, err
	}
	return notes[0], true, nil
}

// ApplyChunk merges rows received from the other side. Revlog rows are only
// added. A card or note replaces the local row when the local row is absent,
// has no unsent change (per pending), or is older.
func (c *Collection) ApplyChunk(ctx context.Context, chunk *models.Chunk, pending models.Usn) error {
	if chunk == nil {
		return nil
	}

	for _, r := range chunk.Revlog {
		if _, err := c.exec(ctx, insertRevlog(r).Options("OR IGNORE"), "*Collection.ApplyChunk"); err != nil {
			return err
		}
	}

	for _, e := range chunk.Cards {
		replace, err := c.shouldReplace(ctx, "cards", e.ID, e.Mtime, pending)
		if err != nil {
			return err
		}
		if replace {
			if _, err = c.exec(ctx, insertCard(e).Options("OR REPLACE"), "*Collection.ApplyChunk"); err != nil {
				return err
			}
		}
	}

	for _, e := range chunk.Notes {
		ok, err := c.notetypeExists(ctx, e.NotetypeID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: note %d, notetype %d", ErrNotetypeMissing, e.ID, e.NotetypeID)
		}

		replace, err := c.shouldReplace(ctx, "notes", e.ID, e.Mtime, pending)
		if err != nil {
			return err
		}
		if replace {
			if _, err = c.exec(ctx, insertNote(e).Options("OR REPLACE"), "*Collection.ApplyChunk"); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *Collection) shouldReplace(ctx context.Context, table string, id, incomingMtime int64, pending models.Usn) (bool, error) {
	var (
		usn   models.Usn
		mtime int64
	)
	found, err := c.queryRow(ctx,
		sq.Select("usn", "mtime").From(table).Where(sq.Eq{"id": id}),
		"*Collection.shouldReplace", &usn, &mtime,
	)
	if err != nil {
		return false, err
	}

	return !found || !usn.IsPendingSync(pending) || mtime < incomingMtime, nil
}

func (c *Collection) notetypeExists(ctx context.Context, id int64) (bool, error) {
	var one int
	return c.queryRow(ctx, sq.Select("1").From("notetypes").Where(sq.Eq{"id": id}), "*Collection.notetypeExists", &one)
}

func insertRevlog(r models.RevlogEntry) sq.InsertBuilder {
	return sq.Insert("revlog").Columns(revlogColumns...).
		Values(r.ID, r.CardID, r.Usn, r.Ease, r.Interval, r.LastInterval, r.Factor, r.Taken, r.Kind)
}

func insertCard(e models.CardEntry) sq.InsertBuilder {
	return sq.Insert("cards").Columns(cardColumns...).
		Values(e.ID, e.NoteID, e.DeckID, e.Ordinal, e.Mtime, e.Usn, e.Type, e.Queue, e.Due, e.Interval,
			e.Factor, e.Reps, e.Lapses, e.Remaining, e.OrigDue, e.OrigDeck, e.Flags, e.Data)
}

func insertNote(e models.NoteEntry) sq.InsertBuilder {
	return sq.Insert("notes").Columns(noteColumns...).
		Values(e.ID, e.GUID, e.NotetypeID, e.Mtime, e.Usn, e.Tags, e.Fields, e.Flags, e.Data)
}

// ── Unchunked changes ───────────────────────────────────────────────────────

// PendingUnchunkedChanges gathers notetypes, decks, deck configs and tags
// matching pending. When restamp is not nil they are re-stamped with it.
// Config and the creation stamp are added only when includeConfig is set.
func (c *Collection) PendingUnchunkedChanges(ctx context.Context, pending models.Usn, restamp *models.Usn, includeConfig bool) (*models.UnchunkedChanges, error) {
	changes := &models.UnchunkedChanges{}
	var err error

	if changes.Notetypes, err = c.pendingNotetypes(ctx, pending); err != nil {
		return nil, err
	}
	if changes.Decks, err = c.pendingDecks(ctx, pending); err != nil {
		return nil, err
	}
	if changes.DeckConfig, err = c.pendingDeckConfig(ctx, pending); err != nil {
		return nil, err
	}
	if changes.Tags, err = c.pendingTags(ctx, pending); err != nil {
		return nil, err
	}

	if includeConfig {
		if changes.Config, err = c.allConfig(ctx); err != nil {
			return nil, err
		}
		stamps, err := c.Stamps(ctx)
		if err != nil {
			return nil, err
		}
		crt := stamps.Created
		changes.CreationStamp = &crt
	}

	if restamp == nil {
		return changes, nil
	}

	usn := *restamp
	for i := range changes.Notetypes {
		changes.Notetypes[i].Usn = usn
	}
	for i := range changes.Decks {
		changes.Decks[i].Usn = usn
	}
	for i := range changes.DeckConfig {
		changes.DeckConfig[i].Usn = usn
	}
	for _, table := range []string{"notetypes", "decks", "deck_config", "tags", "config"} {
		_, err = c.exec(ctx,
			sq.Update(table).Set("usn", usn).Where(pendingCondition(pending)),
			"*Collection.PendingUnchunkedChanges",
		)
		if err != nil {
			return nil, err
		}
	}

	return changes, nil
}

func (c *Collection) pendingNotetypes(ctx context.Context, pending models.Usn) ([]models.Notetype, error) {
	rows, err := c.query(ctx,
		sq.Select("id", "name", "mtime", "usn", "fields", "templates", "config").
			From("notetypes").Where(pendingCondition(pending)).OrderBy("id"),
		"*Collection.pendingNotetypes",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notetype
	for rows.Next() {
		var (
			nt                     models.Notetype
			fields, tmpls, cfgText string
		)
		if err = rows.Scan(&nt.ID, &nt.Name, &nt.Mtime, &nt.Usn, &fields, &tmpls, &cfgText); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		if err = json.Unmarshal([]byte(fields), &nt.Fields); err != nil {
			return nil, fmt.Errorf("notetype %d fields: %w", nt.ID, err)
		}
		if err = json.Unmarshal([]byte(tmpls), &nt.Templates); err != nil {
			return nil, fmt.Errorf("notetype %d templates: %w", nt.ID, err)
		}
		nt.Config = json.RawMessage(cfgText)
		out = append(out, nt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return out, nil
}

func (c *Collection) pendingDecks(ctx context.Context, pending models.Usn) ([]models.Deck, error) {
	rows, err := c.query(ctx,
		sq.Select("id", "name", "mtime", "usn", "config_id", "data").
			From("decks").Where(pendingCondition(pending)).OrderBy("id"),
		"*Collection.pendingDecks",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Deck
	for rows.Next() {
		var (
			d    models.Deck
			data string
		)
		if err = rows.Scan(&d.ID, &d.Name, &d.Mtime, &d.Usn, &d.ConfigID, &data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		d.Data = json.RawMessage(data)
		out = append(out, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return out, nil
}

func (c *Collection) pendingDeckConfig(ctx context.Context, pending models.Usn) ([]models.DeckConfig, error) {
	rows, err := c.query(ctx,
		sq.Select("id", "name", "mtime", "usn", "data").
			From("deck_config").Where(pendingCondition(pending)).OrderBy("id"),
		"*Collection.pendingDeckConfig",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DeckConfig
	for rows.Next() {
		var (
			dc   models.DeckConfig
			data string
		)
		if err = rows.Scan(&dc.ID, &dc.Name, &dc.Mtime, &dc.Usn, &data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		dc.Data = json.RawMessage(data)
		out = append(out, dc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return out, nil
}

func (c *Collection) pendingTags(ctx context.Context, pending models.Usn) ([]string, error) {
	rows, err := c.query(ctx,
		sq.Select("tag").From("tags").Where(pendingCondition(pending)).OrderBy("tag"),
		"*Collection.pendingTags",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var tag string
		if err = rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		out = append(out, tag)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return out, nil
}

func (c *Collection) allConfig(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := c.query(ctx, sq.Select("key", "val").From("config").OrderBy("key"), "*Collection.allConfig")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var (
			key string
			val []byte
		)
		if err = rows.Scan(&key, &val); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		out[key] = json.RawMessage(val)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return out, nil
}

// ApplyUnchunkedChanges merges changes received from the other side. An
// object replaces the local one when the local copy is absent or not newer.
// Tags and config keys are stamped with usn.
func (c *Collection) ApplyUnchunkedChanges(ctx context.Context, changes *models.UnchunkedChanges, usn models.Usn) error {
	if changes == nil {
		return nil
	}

	for _, nt := range changes.Notetypes {
		if err := c.mergeNotetype(ctx, nt); err != nil {
			return err
		}
	}
	for _, d := range changes.Decks {
		newer, err := c.isIncomingNewer(ctx, "decks", d.ID, d.Mtime)
		if err != nil {
			return err
		}
		if newer {
			if err = c.putDeck(ctx, d); err != nil {
				return err
			}
		}
	}
	for _, dc := range changes.DeckConfig {
		newer, err := c.isIncomingNewer(ctx, "deck_config", dc.ID, dc.Mtime)
		if err != nil {
			return err
		}
		if newer {
			if err = c.putDeckConfig(ctx, dc); err != nil {
				return err
			}
		}
	}
	for _, tag := range changes.Tags {
		if err := c.putTag(ctx, tag, usn); err != nil {
			return err
		}
	}
	for key, val := range changes.Config {
		if err := c.putConfig(ctx, key, val, usn); err != nil {
			return err
		}
	}
	if changes.CreationStamp != nil {
		if err := c.SetCreationStamp(ctx, *changes.CreationStamp); err != nil {
			return err
		}
	}

	return nil
}

func (c *Collection) isIncomingNewer(ctx context.Context, table string, id, incomingMtime int64) (bool, error) {
	var mtime int64
	found, err := c.queryRow(ctx, sq.Select("mtime").From(table).Where(sq.Eq{"id": id}), "*Collection.isIncomingNewer", &mtime)
	if err != nil {
		return false, err
	}
	return !found || mtime <= incomingMtime, nil
}

func (c *Collection) mergeNotetype(ctx context.Context, nt models.Notetype) error {
	var (
		mtime         int64
		fields, tmpls string
	)
	found, err := c.queryRow(ctx,
		sq.Select("mtime", "fields", "templates").From("notetypes").Where(sq.Eq{"id": nt.ID}),
		"*Collection.mergeNotetype", &mtime, &fields, &tmpls,
	)
	if err != nil {
		return err
	}

	if found {
		var localFields, localTmpls []string
		if err = json.Unmarshal([]byte(fields), &localFields); err != nil {
			return fmt.Errorf("notetype %d fields: %w", nt.ID, err)
		}
		if err = json.Unmarshal([]byte(tmpls), &localTmpls); err != nil {
			return fmt.Errorf("notetype %d templates: %w", nt.ID, err)
		}
		if len(localFields) != len(nt.Fields) || len(localTmpls) != len(nt.Templates) {
			return fmt.Errorf("%w: notetype %d", ErrNotetypeSchemaChanged, nt.ID)
		}
		if mtime > nt.Mtime {
			return nil
		}
	}

	return c.putNotetype(ctx, nt)
}

func (c *Collection) putNotetype(ctx context.Context, nt models.Notetype) error {
	fields, err := json.Marshal(nonNil(nt.Fields))
	if err != nil {
		return err
	}
	tmpls, err := json.Marshal(nonNil(nt.Templates))
	if err != nil {
		return err
	}

	_, err = c.exec(ctx,
		sq.Insert("notetypes").Options("OR REPLACE").
			Columns("id", "name", "mtime", "usn", "fields", "templates", "config").
			Values(nt.ID, nt.Name, nt.Mtime, nt.Usn, string(fields), string(tmpls), rawOrEmpty(nt.Config)),
		"*Collection.putNotetype",
	)
	return err
}

func (c *Collection) putDeck(ctx context.Context, d models.Deck) error {
	_, err := c.exec(ctx,
		sq.Insert("decks").Options("OR REPLACE").
			Columns("id", "name", "mtime", "usn", "config_id", "data").
			Values(d.ID, d.Name, d.Mtime, d.Usn, d.ConfigID, rawOrEmpty(d.Data)),
		"*Collection.putDeck",
	)
	return err
}

func (c *Collection) putDeckConfig(ctx context.Context, dc models.DeckConfig) error {
	_, err := c.exec(ctx,
		sq.Insert("deck_config").Options("OR REPLACE").
			Columns("id", "name", "mtime", "usn", "data").
			Values(dc.ID, dc.Name, dc.Mtime, dc.Usn, rawOrEmpty(dc.Data)),
		"*Collection.putDeckConfig",
	)
	return err
}

func (c *Collection) putTag(ctx context.Context, tag string, usn models.Usn) error {
	_, err := c.exec(ctx,
		sq.Insert("tags").Options("OR REPLACE").Columns("tag", "usn").Values(tag, usn),
		"*Collection.putTag",
	)
	return err
}

func (c *Collection) putConfig(ctx context.Context, key string, val json.RawMessage, usn models.Usn) error {
	_, err := c.exec(ctx,
		sq.Insert("config").Options("OR REPLACE").
			Columns("key", "usn", "mtime", "val").
			Values(key, usn, c.now().UnixMilli(), []byte(val)),
		"*Collection.putConfig",
	)
	return err
}

// ConfigValue returns a raw config value; found is false when unset.
func (c *Collection) ConfigValue(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var val []byte
	found, err := c.queryRow(ctx, sq.Select("val").From("config").Where(sq.Eq{"key": key}), "*Collection.ConfigValue", &val)
	if err != nil || !found {
		return nil, found, err
	}
	return json.RawMessage(val), true, nil
}

// Tags lists every known tag.
func (c *Collection) Tags(ctx context.Context) ([]string, error) {
	rows, err := c.query(ctx, sq.Select("tag").From("tags").OrderBy("tag"), "*Collection.Tags")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var tag string
		if err = rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		out = append(out, tag)
	}
	return out, rows.Err()
}

func rawOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

