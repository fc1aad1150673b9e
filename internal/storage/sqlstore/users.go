package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"costs/internal/core"
)

func (s *Store) GetUser(ctx context.Context, id int64) (core.User, error) {
	var (
		u        core.User
		birthday sql.NullInt64
	)
	err := s.sb.Select("id", "first_name", "last_name", "birthday_ms", "marital_status", "total_cost").
		From("users").
		Where(sq.Eq{"id": id}).
		QueryRowContext(ctx).
		Scan(&u.ID, &u.FirstName, &u.LastName, &birthday, &u.MaritalStatus, &u.Total)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, storeErr("get user", err)
	}
	if birthday.Valid {
		u.Birthday = time.UnixMilli(birthday.Int64).UTC()
	}
	return u, nil
}

// IncrementTotal adds delta in a single UPDATE so concurrent calls never
// lose an update.
func (s *Store) IncrementTotal(ctx context.Context, id int64, delta float64) error {
	res, err := s.sb.Update("users").
		Set("total_cost", sq.Expr("total_cost + ?", delta)).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return storeErr("increment total", err)
	}
	return requireRow(res, id)
}

func (s *Store) SetTotal(ctx context.Context, id int64, total float64) error {
	res, err := s.sb.Update("users").
		Set("total_cost", total).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return storeErr("set total", err)
	}
	return requireRow(res, id)
}

// UpsertUser inserts u or refreshes its profile columns. total_cost is only
// written on insert.
func (s *Store) UpsertUser(ctx context.Context, u core.User) error {
	var birthday any
	if !u.Birthday.IsZero() {
		birthday = u.Birthday.UnixMilli()
	}
	_, err := s.sb.Insert("users").
		Columns("id", "first_name", "last_name", "birthday_ms", "marital_status", "total_cost").
		Values(u.ID, u.FirstName, u.LastName, birthday, u.MaritalStatus, u.Total).
		Suffix("ON CONFLICT (id) DO UPDATE SET " +
			"first_name = excluded.first_name, " +
			"last_name = excluded.last_name, " +
			"birthday_ms = excluded.birthday_ms, " +
			"marital_status = excluded.marital_status").
		ExecContext(ctx)
	if err != nil {
		return storeErr("upsert user", err)
	}
	return nil
}

func (s *Store) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.sb.Select("id").From("users").OrderBy("id").QueryContext(ctx)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan user id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate users", err)
	}
	return ids, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if n == 0 {
		return fmt.Errorf("user %d: %w", id, core.ErrNotFound)
	}
	return nil
}
