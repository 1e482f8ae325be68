// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	RPCCalls          = expvar.NewInt("rpc_calls_total")
	RPCErrors         = expvar.NewInt("rpc_errors")
	SyncTriggers      = expvar.NewInt("sync_triggers")
	BackfillTriggers  = expvar.NewInt("backfill_triggers")
	DedupeRuns        = expvar.NewInt("dedupe_runs")
	CacheHits         = expvar.NewInt("cache_hits")
	CacheMisses       = expvar.NewInt("cache_misses")
	CacheEvictions    = expvar.NewInt("cache_evictions")
	NoticesDispatched = expvar.NewInt("notices_dispatched")
	NoticesFailed     = expvar.NewInt("notices_failed")
	AuthRejections    = expvar.NewInt("auth_rejections")
)
