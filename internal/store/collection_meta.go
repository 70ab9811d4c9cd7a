package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-collection-sync/models"
)

const colID = 1

// Stamps reads the collection-level bookkeeping row.
func (c *Collection) Stamps(ctx context.Context) (models.CollectionStamps, error) {
	var s models.CollectionStamps
	found, err := c.queryRow(ctx,
		sq.Select("crt", "mtime", "scm", "usn", "ls").From("col").Where(sq.Eq{"id": colID}),
		"*Collection.Stamps",
		&s.Created, &s.Modified, &s.Schema, &s.Usn, &s.LastSync,
	)
	if err != nil {
		return s, err
	}
	if !found {
		return s, ErrCorruptCollection
	}

	return s, nil
}

// Usn returns the collection counter: the generation the next change will be
// stamped with on the server.
func (c *Collection) Usn(ctx context.Context) (models.Usn, error) {
	s, err := c.Stamps(ctx)
	return s.Usn, err
}

func (c *Collection) setCol(ctx context.Context, column string, value any, fn string) error {
	_, err := c.exec(ctx, sq.Update("col").Set(column, value).Where(sq.Eq{"id": colID}), fn)
	return err
}

// SetModified sets the modification stamp (ms).
func (c *Collection) SetModified(ctx context.Context, ms int64) error {
	return c.setCol(ctx, "mtime", ms, "*Collection.SetModified")
}

// SetSchemaModified sets the schema stamp (ms), forcing the next sync to be a
// full one.
func (c *Collection) SetSchemaModified(ctx context.Context, ms int64) error {
	return c.setCol(ctx, "scm", ms, "*Collection.SetSchemaModified")
}

// SetLastSync sets the last successful sync stamp (ms).
func (c *Collection) SetLastSync(ctx context.Context, ms int64) error {
	return c.setCol(ctx, "ls", ms, "*Collection.SetLastSync")
}

// SetUsn overwrites the collection counter.
func (c *Collection) SetUsn(ctx context.Context, usn models.Usn) error {
	return c.setCol(ctx, "usn", usn, "*Collection.SetUsn")
}

// SetCreationStamp sets the creation stamp (s).
func (c *Collection) SetCreationStamp(ctx context.Context, secs int64) error {
	return c.setCol(ctx, "crt", secs, "*Collection.SetCreationStamp")
}

// IncrementUsn advances the collection counter by one.
func (c *Collection) IncrementUsn(ctx context.Context) error {
	_, err := c.exec(ctx,
		sq.Update("col").Set("usn", sq.Expr("usn + 1")).Where(sq.Eq{"id": colID}),
		"*Collection.IncrementUsn",
	)
	return err
}

// MarkModified bumps the modification stamp to the current time.
func (c *Collection) MarkModified(ctx context.Context) error {
	return c.SetModified(ctx, c.now().UnixMilli())
}

// HaveAtLeastOneCard reports whether the collection has any cards. A
// collection without cards is considered empty for full sync decisions.
func (c *Collection) HaveAtLeastOneCard(ctx context.Context) (bool, error) {
	var one int
	return c.queryRow(ctx, sq.Select("1").From("cards").Limit(1), "*Collection.HaveAtLeastOneCard", &one)
}

// DaysElapsed is the scheduler day index: whole days since the creation
// stamp.
func (c *Collection) DaysElapsed(ctx context.Context) (int64, error) {
	s, err := c.Stamps(ctx)
	if err != nil {
		return 0, err
	}

	days := (c.now().Unix() - s.Created) / 86400
	if days < 0 {
		days = 0
	}
	return days, nil
}

// localUsn is the stamp given to local edits.
func (c *Collection) localUsn(ctx context.Context) (models.Usn, error) {
	if !c.server {
		return models.PendingUsn, nil
	}

	usn, err := c.Usn(ctx)
	if err != nil {
		return 0, fmt.Errorf("error reading collection usn: %w", err)
	}
	return usn, nil
}
