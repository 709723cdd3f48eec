package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// attemptRepo implements AttemptRepo. Each key holds one row that is
// replaced on every save.
type attemptRepo struct {
	db *sql.DB
}

func (r *attemptRepo) Get(ctx context.Context, key string) ([]byte, error) {
	query, args := builder().Select("data").
		From(entsql.Table(AttemptsTable.Name)).
		Where(entsql.EQ("key", key)).
		Query()

	var data []byte
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt %q: %w", key, err)
	}
	return data, nil
}

func (r *attemptRepo) Put(ctx context.Context, key string, data []byte) error {
	query, args := builder().Insert(AttemptsTable.Name).
		Columns("key", "data", "updated_at").
		Values(key, data, time.Now().UTC()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save attempt %q: %w", key, err)
	}
	return nil
}

func (r *attemptRepo) Delete(ctx context.Context, key string) error {
	query, args := builder().Delete(AttemptsTable.Name).
		Where(entsql.EQ("key", key)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete attempt %q: %w", key, err)
	}
	return nil
}

func (r *attemptRepo) List(ctx context.Context) ([]AttemptRecord, error) {
	query, args := builder().Select("key", "data", "updated_at").
		From(entsql.Table(AttemptsTable.Name)).
		OrderBy(entsql.Desc("updated_at"), "key").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptRecord
	for rows.Next() {
		var a AttemptRecord
		if err := rows.Scan(&a.Key, &a.Data, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
