package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-collection-sync/models"
)

// SanityCheckInfo counts the rows that both replicas must agree on after a
// sync.
func (c *Collection) SanityCheckInfo(ctx context.Context) (models.SanityCheckCounts, error) {
	var out models.SanityCheckCounts

	today, err := c.DaysElapsed(ctx)
	if err != nil {
		return out, err
	}

	due := []struct {
		dest *int64
		cond sq.Sqlizer
	}{
		{&out.Counts.New, sq.Eq{"queue": models.QueueNew}},
		{&out.Counts.Learn, sq.Eq{"queue": []int{models.QueueLearn, models.QueueDayLearn}}},
		{&out.Counts.Review, sq.And{sq.Eq{"queue": models.QueueReview}, sq.LtOrEq{"due": today}}},
	}
	for _, d := range due {
		if err = c.count(ctx, sq.Select("count(*)").From("cards").Where(d.cond), d.dest); err != nil {
			return out, err
		}
	}

	tables := []struct {
		dest  *int64
		table string
	}{
		{&out.Cards, "cards"},
		{&out.Notes, "notes"},
		{&out.Revlog, "revlog"},
		{&out.Graves, "graves"},
		{&out.Notetypes, "notetypes"},
		{&out.Decks, "decks"},
		{&out.DeckConfig, "deck_config"},
	}
	for _, t := range tables {
		if err = c.count(ctx, sq.Select("count(*)").From(t.table), t.dest); err != nil {
			return out, err
		}
	}

	return out, nil
}

func (c *Collection) count(ctx context.Context, b sq.SelectBuilder, dest *int64) error {
	_, err := c.queryRow(ctx, b, "*Collection.count", dest)
	return err
}
