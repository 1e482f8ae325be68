// Package commands implements the CLI subcommands for the regpulse binary.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/regpulse-io/regpulse/internal/backend"
	"github.com/regpulse-io/regpulse/internal/config"
	"github.com/regpulse-io/regpulse/internal/store"
	pgstore "github.com/regpulse-io/regpulse/internal/store/postgres"
	redisstore "github.com/regpulse-io/regpulse/internal/store/redis"
)

// loadConfig reads .env (when present) and then regpulse.yaml from the
// working directory.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newStore creates the configured table store.
func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := pgstore.New(ctx, cfg.Store.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return st, nil
	case "redis":
		st := redisstore.New(cfg.Store.Redis)
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// newBackend creates the RPC client for the hosted platform.
func newBackend(cfg *config.Config) (*backend.Client, error) {
	return backend.New(backend.Config{
		URL:        cfg.Backend.URL,
		ServiceKey: cfg.Backend.ServiceKey,
		Timeout:    cfg.BackendTimeout(),
	})
}

// connectTimeout bounds store and backend probes from the CLI.
const connectTimeout = 10 * time.Second
