package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/regpulse-io/regpulse/pkg/types"
)

// Sorted-set trim limits and scan windows.
const (
	adminOpIndexMax  = 500
	runningScanLimit = 100
)

// RunningSyncCount counts RUNNING sync logs among the most recent entries,
// optionally filtered by trigger type. The sync worker owns these records;
// this store only inspects the recent window it maintains.
func (s *Store) RunningSyncCount(ctx context.Context, trigger types.TriggerType) (int, error) {
	logs, err := s.RecentSyncLogs(ctx, runningScanLimit)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, l := range logs {
		if l.Status != types.SyncRunning {
			continue
		}
		if trigger != types.TriggerAny && l.TriggerType != trigger {
			continue
		}
		count++
	}
	return count, nil
}

// RecentSyncLogs returns recent sync log entries, newest first.
func (s *Store) RecentSyncLogs(ctx context.Context, limit int) ([]types.SyncLog, error) {
	if limit <= 0 {
		limit = 20
	}
	members, err := s.client.ZRangeArgs(ctx, goredis.ZRangeArgs{
		Key:   s.syncLogIndexKey(),
		Start: 0,
		Stop:  int64(limit - 1),
		Rev:   true,
	}).Result()
	if err != nil {
		return nil, err
	}

	var logs []types.SyncLog
	for _, m := range members {
		var l types.SyncLog
		if err := json.Unmarshal([]byte(m), &l); err != nil {
			continue
		}
		logs = append(logs, l)
	}
	return logs, nil
}

// AppendAdminOperation appends one audit entry to the sorted-set trail,
// trimming the oldest entries beyond the retention limit.
func (s *Store) AppendAdminOperation(ctx context.Context, op types.AdminOperation) error {
	data, err := json.Marshal(op)
	if err != nil {
		return err
	}
	score := float64(op.CreatedAt.UnixMilli())

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, s.adminOpIndexKey(), goredis.Z{Score: score, Member: string(data)})
	pipe.ZRemRangeByRank(ctx, s.adminOpIndexKey(), 0, -(adminOpIndexMax + 1))
	_, err = pipe.Exec(ctx)
	return err
}

// ListAdminOperations returns recent audit entries, newest first.
func (s *Store) ListAdminOperations(ctx context.Context, limit int) ([]types.AdminOperation, error) {
	if limit <= 0 {
		limit = 50
	}
	members, err := s.client.ZRangeArgs(ctx, goredis.ZRangeArgs{
		Key:   s.adminOpIndexKey(),
		Start: 0,
		Stop:  int64(limit - 1),
		Rev:   true,
	}).Result()
	if err != nil {
		return nil, err
	}

	var ops []types.AdminOperation
	for _, m := range members {
		var op types.AdminOperation
		if err := json.Unmarshal([]byte(m), &op); err != nil {
			continue
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// GetCacheEntry returns the cache row for key, or nil when absent.
func (s *Store) GetCacheEntry(ctx context.Context, key string) (*types.CacheEntry, error) {
	data, err := s.client.Get(ctx, s.cacheKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e types.CacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// PutCacheEntry stores a cache row with a native TTL matching its expiry.
// The index set lets SweepCache report what Redis has already evicted.
func (s *Store) PutCacheEntry(ctx context.Context, entry types.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	ttl := time.Until(entry.ExpiresAt)
	if ttl <= 0 {
		return s.DeleteCacheEntry(ctx, entry.CacheKey)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.cacheKey(entry.CacheKey), data, ttl)
	pipe.ZAdd(ctx, s.cacheIndexKey(), goredis.Z{
		Score:  float64(entry.ExpiresAt.UnixMilli()),
		Member: entry.CacheKey,
	})
	_, err = pipe.Exec(ctx)
	return err
}

// DeleteCacheEntry removes one cache row and its index member.
func (s *Store) DeleteCacheEntry(ctx context.Context, key string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.cacheKey(key))
	pipe.ZRem(ctx, s.cacheIndexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

// SweepCache removes index members whose expiry passed, deleting any value
// keys Redis has not yet expired on its own.
func (s *Store) SweepCache(ctx context.Context, now time.Time) (int, error) {
	// expires_at < now, exclusive upper bound.
	max := "(" + strconv.FormatInt(now.UnixMilli(), 10)
	expired, err := s.client.ZRangeByScore(ctx, s.cacheIndexKey(), &goredis.ZRangeBy{
		Min: "-inf",
		Max: max,
	}).Result()
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	pipe := s.client.Pipeline()
	for _, key := range expired {
		pipe.Del(ctx, s.cacheKey(key))
	}
	pipe.ZRemRangeByScore(ctx, s.cacheIndexKey(), "-inf", max)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return len(expired), nil
}
