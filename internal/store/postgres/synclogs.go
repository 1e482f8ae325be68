package postgres

import (
	"context"
	"encoding/json"

	"github.com/regpulse-io/regpulse/pkg/types"
)

// RunningSyncCount counts sync_logs rows in RUNNING state, optionally
// filtered by trigger type.
func (s *Store) RunningSyncCount(ctx context.Context, trigger types.TriggerType) (int, error) {
	var count int
	if trigger == types.TriggerAny {
		err := s.pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM sync_logs WHERE status = 'RUNNING'
		`).Scan(&count)
		return count, err
	}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM sync_logs WHERE status = 'RUNNING' AND trigger_type = $1
	`, string(trigger)).Scan(&count)
	return count, err
}

// RecentSyncLogs returns recent sync log rows, newest first.
func (s *Store) RecentSyncLogs(ctx context.Context, limit int) ([]types.SyncLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, status, trigger_type, details, created_at, completed_at
		FROM sync_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []types.SyncLog
	for rows.Next() {
		var l types.SyncLog
		var details []byte
		if err := rows.Scan(&l.ID, &l.Status, &l.TriggerType, &details, &l.CreatedAt, &l.CompletedAt); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &l.Details)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
