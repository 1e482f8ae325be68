// Package store defines the table store interface over the hosted shared
// tables: sync_logs, admin_operations, and search_cache.
package store

import (
	"context"
	"time"

	"github.com/regpulse-io/regpulse/pkg/types"
)

// Store is the table store interface. Postgres is the primary backend;
// Redis serves deployments that keep operational state out of the database.
type Store interface {
	// Sync logs — written by the external sync worker, read-only here.
	RunningSyncCount(ctx context.Context, trigger types.TriggerType) (int, error)
	RecentSyncLogs(ctx context.Context, limit int) ([]types.SyncLog, error)

	// Admin operations — append-only audit trail.
	AppendAdminOperation(ctx context.Context, op types.AdminOperation) error
	ListAdminOperations(ctx context.Context, limit int) ([]types.AdminOperation, error)

	// Search cache rows.
	GetCacheEntry(ctx context.Context, key string) (*types.CacheEntry, error)
	PutCacheEntry(ctx context.Context, entry types.CacheEntry) error
	DeleteCacheEntry(ctx context.Context, key string) error
	SweepCache(ctx context.Context, now time.Time) (int, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close()
}
