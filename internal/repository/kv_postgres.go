package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/port"
)

const (
	getValueSQL    = `SELECT value FROM local_storage WHERE key = $1`
	upsertValueSQL = `INSERT INTO local_storage (key, value, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	deleteValueSQL = `DELETE FROM local_storage WHERE key = $1`
)

type postgresKV struct {
	q    querier
	pool *pgxpool.Pool
}

func NewPostgresKV(pool *pgxpool.Pool) port.KVStore {
	return &postgresKV{
		q:    pool,
		pool: pool,
	}
}

func NewPostgresKVWithTx(tx pgx.Tx) port.KVStore {
	return &postgresKV{
		q:    tx,
		pool: nil, // use provided transaction instead
	}
}

func (s *postgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	var value string
	err := s.q.QueryRow(ctx, getValueSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("q.QueryRow: %w", err)
	}

	return []byte(value), nil
}

func (s *postgresKV) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if _, err := s.q.Exec(ctx, upsertValueSQL, key, string(value)); err != nil {
		return fmt.Errorf("q.Exec: %w", err)
	}

	return nil
}

// Delete removes all keys atomically.
func (s *postgresKV) Delete(ctx context.Context, keys ...string) error {
	_, err := withTx(ctx, s.pool, s.q, func(q querier) (int64, error) {
		var deleted int64
		for _, key := range keys {
			tag, err := q.Exec(ctx, deleteValueSQL, key)
			if err != nil {
				return 0, fmt.Errorf("q.Exec[%s]: %w", key, err)
			}
			deleted += tag.RowsAffected()
		}
		return deleted, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}
