package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "regpulse.yaml"), []byte(content), 0o644))
	return dir
}

const validYAML = `
server:
  addr: ":4000"
  apiKey: secret
backend:
  url: https://example.backend.co
  serviceKey: service-key
  timeout: 15s
store:
  driver: postgres
  postgres:
    dsn: postgres://localhost/regpulse
cache:
  ttl: 10m
notify:
  - type: console
  - type: webhook
    url: https://hooks.example.com/ops
`

func TestLoad_Valid(t *testing.T) {
	dir := writeConfig(t, validYAML)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.Addr())
	assert.Equal(t, "secret", cfg.Server.APIKey)
	assert.Equal(t, "https://example.backend.co", cfg.Backend.URL)
	assert.Equal(t, 15*time.Second, cfg.BackendTimeout())
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL())
	assert.Len(t, cfg.Notify, 2)
}

func TestLoad_Defaults(t *testing.T) {
	dir := writeConfig(t, `
backend:
  url: https://example.backend.co
  serviceKey: service-key
store:
  driver: redis
  redis:
    addr: localhost:6379
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Addr())
	assert.Equal(t, DefaultTimeout, cfg.BackendTimeout())
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL())
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			"missing backend url",
			"backend:\n  serviceKey: k\nstore:\n  driver: redis\n  redis:\n    addr: localhost:6379\n",
			"backend.url is required",
		},
		{
			"missing service key",
			"backend:\n  url: https://b\nstore:\n  driver: redis\n  redis:\n    addr: localhost:6379\n",
			"backend.serviceKey is required",
		},
		{
			"missing driver",
			"backend:\n  url: https://b\n  serviceKey: k\nstore: {}\n",
			"store.driver is required",
		},
		{
			"unknown driver",
			"backend:\n  url: https://b\n  serviceKey: k\nstore:\n  driver: dynamo\n",
			"unknown store driver",
		},
		{
			"postgres without dsn",
			"backend:\n  url: https://b\n  serviceKey: k\nstore:\n  driver: postgres\n",
			"store.postgres.dsn is required",
		},
		{
			"webhook without url",
			"backend:\n  url: https://b\n  serviceKey: k\nstore:\n  driver: redis\n  redis:\n    addr: a\nnotify:\n  - type: webhook\n",
			"webhook URL required",
		},
		{
			"bad cache ttl",
			"backend:\n  url: https://b\n  serviceKey: k\nstore:\n  driver: redis\n  redis:\n    addr: a\ncache:\n  ttl: soon\n",
			"cache.ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.yaml)
			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, validYAML)

	t.Setenv("REGPULSE_BACKEND_URL", "https://override.backend.co")
	t.Setenv("REGPULSE_BACKEND_SERVICE_KEY", "env-service-key")
	t.Setenv("REGPULSE_API_KEY", "env-api-key")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://override.backend.co", cfg.Backend.URL)
	assert.Equal(t, "env-service-key", cfg.Backend.ServiceKey)
	assert.Equal(t, "env-api-key", cfg.Server.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}
