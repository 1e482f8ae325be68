// Package testutil provides shared test utilities for regpulse.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/regpulse-io/regpulse/internal/store"
	"github.com/regpulse-io/regpulse/pkg/types"
)

// Compile-time interface satisfaction check.
var _ store.Store = (*MockStore)(nil)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu       sync.Mutex
	syncLogs []types.SyncLog
	adminOps []types.AdminOperation
	cache    map[string]types.CacheEntry

	// FailCache makes every cache operation return an error, for exercising
	// the cache's swallow-and-miss policy.
	FailCache bool
}

// NewMockStore creates a new in-memory mock store.
func NewMockStore() *MockStore {
	return &MockStore{cache: make(map[string]types.CacheEntry)}
}

// AddSyncLog seeds a sync log row, as the external sync worker would.
func (m *MockStore) AddSyncLog(log types.SyncLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncLogs = append(m.syncLogs, log)
}

func (m *MockStore) RunningSyncCount(_ context.Context, trigger types.TriggerType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, l := range m.syncLogs {
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

func (m *MockStore) RecentSyncLogs(_ context.Context, limit int) ([]types.SyncLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}
	logs := make([]types.SyncLog, len(m.syncLogs))
	copy(logs, m.syncLogs)
	sort.Slice(logs, func(i, j int) bool { return logs[i].CreatedAt.After(logs[j].CreatedAt) })
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (m *MockStore) AppendAdminOperation(_ context.Context, op types.AdminOperation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adminOps = append(m.adminOps, op)
	return nil
}

func (m *MockStore) ListAdminOperations(_ context.Context, limit int) ([]types.AdminOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	ops := make([]types.AdminOperation, len(m.adminOps))
	copy(ops, m.adminOps)
	if len(ops) > limit {
		ops = ops[len(ops)-limit:]
	}
	return ops, nil
}

// AdminOperations returns a copy of all appended audit entries.
func (m *MockStore) AdminOperations() []types.AdminOperation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.AdminOperation, len(m.adminOps))
	copy(out, m.adminOps)
	return out
}

func (m *MockStore) GetCacheEntry(_ context.Context, key string) (*types.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCache {
		return nil, fmt.Errorf("mock cache failure")
	}
	e, ok := m.cache[key]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *MockStore) PutCacheEntry(_ context.Context, entry types.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCache {
		return fmt.Errorf("mock cache failure")
	}
	m.cache[entry.CacheKey] = entry
	return nil
}

func (m *MockStore) DeleteCacheEntry(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCache {
		return fmt.Errorf("mock cache failure")
	}
	delete(m.cache, key)
	return nil
}

func (m *MockStore) SweepCache(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailCache {
		return 0, fmt.Errorf("mock cache failure")
	}
	removed := 0
	for k, e := range m.cache {
		if e.ExpiresAt.Before(now) {
			delete(m.cache, k)
			removed++
		}
	}
	return removed, nil
}

// CacheLen returns the number of live cache entries.
func (m *MockStore) CacheLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cache)
}

func (m *MockStore) Ping(_ context.Context) error { return nil }

func (m *MockStore) Close() {}
