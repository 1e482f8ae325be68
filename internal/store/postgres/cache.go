package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/regpulse-io/regpulse/pkg/types"
)

// GetCacheEntry returns the cache row for key, or nil when absent. Expiry is
// the caller's concern; rows are returned as stored.
func (s *Store) GetCacheEntry(ctx context.Context, key string) (*types.CacheEntry, error) {
	var e types.CacheEntry
	err := s.pool.QueryRow(ctx, `
		SELECT cache_key, query, result_data, expires_at
		FROM search_cache
		WHERE cache_key = $1
	`, key).Scan(&e.CacheKey, &e.Query, &e.ResultData, &e.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// PutCacheEntry upserts a cache row, replacing any entry with the same key.
func (s *Store) PutCacheEntry(ctx context.Context, entry types.CacheEntry) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO search_cache (cache_key, query, result_data, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cache_key) DO UPDATE SET
			query       = EXCLUDED.query,
			result_data = EXCLUDED.result_data,
			expires_at  = EXCLUDED.expires_at
	`, entry.CacheKey, entry.Query, entry.ResultData, entry.ExpiresAt)
	return err
}

// DeleteCacheEntry removes one cache row. Deleting an absent key is not an
// error.
func (s *Store) DeleteCacheEntry(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM search_cache WHERE cache_key = $1`, key)
	return err
}

// SweepCache bulk-deletes rows that expired before now, returning the count
// removed.
func (s *Store) SweepCache(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM search_cache WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
