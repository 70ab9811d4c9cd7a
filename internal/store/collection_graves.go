package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-collection-sync/models"
)

var graveTables = map[models.GraveKind]string{
	models.GraveCard: "cards",
	models.GraveNote: "notes",
	models.GraveDeck: "decks",
}

// PendingGraves returns the tombstones matching pending (see
// [models.Usn.IsPendingSync]).
func (c *Collection) PendingGraves(ctx context.Context, pending models.Usn) (*models.Graves, error) {
	rows, err := c.query(ctx,
		sq.Select("oid", "kind").From("graves").Where(pendingCondition(pending)).OrderBy("kind", "oid"),
		"*Collection.PendingGraves",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	graves := &models.Graves{}
	for rows.Next() {
		var (
			oid  int64
			kind models.GraveKind
		)
		if err = rows.Scan(&oid, &kind); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		graves.Add(kind, oid)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return graves, nil
}

// UpdatePendingGraveUsns stamps every pending tombstone with usn.
func (c *Collection) UpdatePendingGraveUsns(ctx context.Context, usn models.Usn) error {
	_, err := c.exec(ctx,
		sq.Update("graves").Set("usn", usn).Where(sq.Eq{"usn": models.PendingUsn}),
		"*Collection.UpdatePendingGraveUsns",
	)
	return err
}

// ApplyGraves deletes every object named in graves and records the
// tombstones under usn. Applying the same graves twice is harmless.
func (c *Collection) ApplyGraves(ctx context.Context, graves *models.Graves, usn models.Usn) error {
	if graves == nil {
		return nil
	}

	apply := func(kind models.GraveKind, ids []int64) error {
		for _, id := range ids {
			if err := c.removeWithGrave(ctx, kind, id, usn); err != nil {
				return err
			}
		}
		return nil
	}

	if err := apply(models.GraveCard, graves.Cards); err != nil {
		return err
	}
	if err := apply(models.GraveNote, graves.Notes); err != nil {
		return err
	}
	return apply(models.GraveDeck, graves.Decks)
}

func (c *Collection) removeWithGrave(ctx context.Context, kind models.GraveKind, id int64, usn models.Usn) error {
	table, ok := graveTables[kind]
	if !ok {
		return fmt.Errorf("unknown grave kind %d", kind)
	}

	if _, err := c.exec(ctx, sq.Delete(table).Where(sq.Eq{"id": id}), "*Collection.removeWithGrave"); err != nil {
		return err
	}

	return c.addGrave(ctx, kind, id, usn)
}

func (c *Collection) addGrave(ctx context.Context, kind models.GraveKind, id int64, usn models.Usn) error {
	_, err := c.exec(ctx,
		sq.Insert("graves").Options("OR REPLACE").Columns("oid", "kind", "usn").Values(id, kind, usn),
		"*Collection.addGrave",
	)
	return err
}

// RemoveCard deletes a card locally and leaves a tombstone for the next sync.
func (c *Collection) RemoveCard(ctx context.Context, id int64) error {
	return c.removeLocal(ctx, models.GraveCard, []int64{id})
}

// RemoveNote deletes a note with all of its cards.
func (c *Collection) RemoveNote(ctx context.Context, id int64) error {
	return c.Transact(ctx, func() error {
		cardIDs, err := c.queryIDs(ctx,
			sq.Select("id").From("cards").Where(sq.Eq{"nid": id}).OrderBy("id"),
			"*Collection.RemoveNote",
		)
		if err != nil {
			return err
		}
		if err = c.removeLocal(ctx, models.GraveCard, cardIDs); err != nil {
			return err
		}
		return c.removeLocal(ctx, models.GraveNote, []int64{id})
	})
}

// RemoveDeck deletes a deck. Its cards are left in place.
func (c *Collection) RemoveDeck(ctx context.Context, id int64) error {
	return c.removeLocal(ctx, models.GraveDeck, []int64{id})
}

func (c *Collection) removeLocal(ctx context.Context, kind models.GraveKind, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	usn, err := c.localUsn(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err = c.removeWithGrave(ctx, kind, id, usn); err != nil {
			return err
		}
	}

	return c.MarkModified(ctx)
}
