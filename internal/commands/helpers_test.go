package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regpulse-io/regpulse/internal/config"
)

func TestNewStore_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}

	_, err := newStore(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestNewBackend_FromConfig(t *testing.T) {
	cfg := &config.Config{
		Backend: config.BackendConfig{
			URL:        "https://platform.example.com",
			ServiceKey: "service-key",
			Timeout:    "5s",
		},
	}

	bc, err := newBackend(cfg)
	require.NoError(t, err)
	assert.NotNil(t, bc)
}

func TestNewBackend_MissingKey(t *testing.T) {
	cfg := &config.Config{
		Backend: config.BackendConfig{URL: "https://platform.example.com"},
	}

	_, err := newBackend(cfg)
	require.Error(t, err)
}
