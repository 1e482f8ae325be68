// Package postgres implements the table store over the hosted Postgres
// database shared with the sync worker.
package postgres

const schemaDDL = `
CREATE TABLE IF NOT EXISTS sync_logs (
    id           TEXT PRIMARY KEY,
    status       TEXT NOT NULL,
    trigger_type TEXT NOT NULL,
    details      JSONB,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    completed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_sync_logs_status ON sync_logs (status, trigger_type);
CREATE INDEX IF NOT EXISTS idx_sync_logs_created_at ON sync_logs (created_at);

CREATE TABLE IF NOT EXISTS admin_operations (
    id             BIGSERIAL PRIMARY KEY,
    operation_type TEXT NOT NULL,
    performed_by   TEXT NOT NULL,
    details        JSONB,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_admin_operations_created_at ON admin_operations (created_at);

CREATE TABLE IF NOT EXISTS search_cache (
    cache_key   VARCHAR(255) PRIMARY KEY,
    query       VARCHAR(500) NOT NULL,
    result_data JSONB NOT NULL,
    expires_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_cache_expires_at ON search_cache (expires_at);
`
