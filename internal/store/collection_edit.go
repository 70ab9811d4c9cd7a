package store

import (
	"context"
	"encoding/json"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-collection-sync/models"
)

// Local edits. Each one stamps the object with the local usn, fills a
// missing modification time and bumps the collection modification stamp.

// AddNotetype inserts or replaces a notetype. Changing the number of fields
// or templates of an existing notetype also bumps the schema stamp.
func (c *Collection) AddNotetype(ctx context.Context, nt models.Notetype) error {
	return c.Transact(ctx, func() error {
		var (
			err           error
			fields, tmpls string
		)
		found, err := c.queryRow(ctx,
			sq.Select("fields", "templates").From("notetypes").Where(sq.Eq{"id": nt.ID}),
			"*Collection.AddNotetype", &fields, &tmpls,
		)
		if err != nil {
			return err
		}
		if found && schemaChanged(fields, tmpls, nt) {
			if err = c.SetSchemaModified(ctx, c.now().UnixMilli()); err != nil {
				return err
			}
		}

		if nt.Usn, err = c.localUsn(ctx); err != nil {
			return err
		}
		nt.Mtime = c.mtimeOr(nt.Mtime)
		if err = c.putNotetype(ctx, nt); err != nil {
			return err
		}

		return c.MarkModified(ctx)
	})
}

func schemaChanged(fields, tmpls string, nt models.Notetype) bool {
	var localFields, localTmpls []string
	if json.Unmarshal([]byte(fields), &localFields) != nil || json.Unmarshal([]byte(tmpls), &localTmpls) != nil {
		return true
	}
	return len(localFields) != len(nt.Fields) || len(localTmpls) != len(nt.Templates)
}

// AddDeck inserts or replaces a deck.
func (c *Collection) AddDeck(ctx context.Context, d models.Deck) error {
	return c.Transact(ctx, func() error {
		var err error
		if d.Usn, err = c.localUsn(ctx); err != nil {
			return err
		}
		d.Mtime = c.mtimeOr(d.Mtime)
		if err = c.putDeck(ctx, d); err != nil {
			return err
		}
		return c.MarkModified(ctx)
	})
}

// AddDeckConfig inserts or replaces a deck config.
func (c *Collection) AddDeckConfig(ctx context.Context, dc models.DeckConfig) error {
	return c.Transact(ctx, func() error {
		var err error
		if dc.Usn, err = c.localUsn(ctx); err != nil {
			return err
		}
		dc.Mtime = c.mtimeOr(dc.Mtime)
		if err = c.putDeckConfig(ctx, dc); err != nil {
			return err
		}
		return c.MarkModified(ctx)
	})
}

// AddNote inserts or replaces a note and registers its tags.
func (c *Collection) AddNote(ctx context.Context, n models.NoteEntry) error {
	return c.Transact(ctx, func() error {
		usn, err := c.localUsn(ctx)
		if err != nil {
			return err
		}
		ok, err := c.notetypeExists(ctx, n.NotetypeID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotetypeMissing
		}

		n.Usn = usn
		n.Mtime = c.mtimeOr(n.Mtime)
		if _, err = c.exec(ctx, insertNote(n).Options("OR REPLACE"), "*Collection.AddNote"); err != nil {
			return err
		}
		for _, tag := range strings.Fields(n.Tags) {
			if err = c.putTag(ctx, tag, usn); err != nil {
				return err
			}
		}

		return c.MarkModified(ctx)
	})
}

// AddCard inserts or replaces a card.
func (c *Collection) AddCard(ctx context.Context, e models.CardEntry) error {
	return c.Transact(ctx, func() error {
		var err error
		if e.Usn, err = c.localUsn(ctx); err != nil {
			return err
		}
		e.Mtime = c.mtimeOr(e.Mtime)
		if _, err = c.exec(ctx, insertCard(e).Options("OR REPLACE"), "*Collection.AddCard"); err != nil {
			return err
		}
		return c.MarkModified(ctx)
	})
}

// AddRevlog records a review.
func (c *Collection) AddRevlog(ctx context.Context, r models.RevlogEntry) error {
	return c.Transact(ctx, func() error {
		var err error
		if r.Usn, err = c.localUsn(ctx); err != nil {
			return err
		}
		if _, err = c.exec(ctx, insertRevlog(r), "*Collection.AddRevlog"); err != nil {
			return err
		}
		return c.MarkModified(ctx)
	})
}

// SetConfig stores a raw config value under key.
func (c *Collection) SetConfig(ctx context.Context, key string, val json.RawMessage) error {
	return c.Transact(ctx, func() error {
		usn, err := c.localUsn(ctx)
		if err != nil {
			return err
		}
		if err = c.putConfig(ctx, key, val, usn); err != nil {
			return err
		}
		return c.MarkModified(ctx)
	})
}

func (c *Collection) mtimeOr(mtime int64) int64 {
	if mtime != 0 {
		return mtime
	}
	return c.now().Unix()
}
