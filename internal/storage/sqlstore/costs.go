package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"costs/internal/core"
)

// InsertCost stores c and returns it with the generated row id.
func (s *Store) InsertCost(ctx context.Context, c core.Cost) (core.Cost, error) {
	if err := c.Validate(); err != nil {
		return core.Cost{}, err
	}

	var id int64
	err := s.sb.Insert("costs").
		Columns("description", "category", "user_id", "amount", "spent_at_ms").
		Values(c.Description, string(c.Category), c.UserID, c.Sum, c.Date.UnixMilli()).
		Suffix("RETURNING id").
		QueryRowContext(ctx).
		Scan(&id)
	if err != nil {
		return core.Cost{}, storeErr("insert cost", err)
	}

	c.ID = strconv.FormatInt(id, 10)
	// Report what was stored: the column keeps milliseconds only.
	c.Date = time.UnixMilli(c.Date.UnixMilli()).In(c.Date.Location())
	slog.DebugContext(ctx, "Cost saved to SQL store",
		"id", id,
		"user_id", c.UserID,
		"category", string(c.Category))
	return c, nil
}

// ListCosts returns the user's costs whose instant falls inside w.
func (s *Store) ListCosts(ctx context.Context, userID int64, w core.Window) ([]core.Cost, error) {
	rows, err := s.sb.Select("id", "description", "category", "user_id", "amount", "spent_at_ms").
		From("costs").
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.GtOrEq{"spent_at_ms": w.Start.UnixMilli()},
			sq.LtOrEq{"spent_at_ms": w.End.UnixMilli()},
		}).
		OrderBy("spent_at_ms", "id").
		QueryContext(ctx)
	if err != nil {
		return nil, storeErr("list costs", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.WarnContext(ctx, "Failed to close rows", "error", cerr)
		}
	}()

	out := make([]core.Cost, 0)
	for rows.Next() {
		var (
			c        core.Cost
			id, ms   int64
			category string
		)
		if err := rows.Scan(&id, &c.Description, &category, &c.UserID, &c.Sum, &ms); err != nil {
			return nil, storeErr("scan cost", err)
		}
		c.ID = strconv.FormatInt(id, 10)
		c.Category = core.Category(category)
		c.Date = time.UnixMilli(ms).UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate costs", err)
	}
	return out, nil
}

// SumCosts totals every cost ever recorded for the user.
func (s *Store) SumCosts(ctx context.Context, userID int64) (float64, error) {
	var sum float64
	err := s.sb.Select("COALESCE(SUM(amount), 0)").
		From("costs").
		Where(sq.Eq{"user_id": userID}).
		QueryRowContext(ctx).
		Scan(&sum)
	if err != nil {
		return 0, storeErr(fmt.Sprintf("sum costs of user %d", userID), err)
	}
	return sum, nil
}
