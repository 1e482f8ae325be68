// Package redis implements the table store using Redis/Valkey. Cache rows
// use native key TTLs; sync logs and audit rows are JSON members of sorted
// sets scored by timestamp.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/regpulse-io/regpulse/internal/config"
	"github.com/regpulse-io/regpulse/internal/store"
)

// Compile-time interface satisfaction check.
var _ store.Store = (*Store)(nil)

// Store implements the table store backed by Redis/Valkey.
type Store struct {
	client *goredis.Client
	prefix string
}

// New creates a new redis Store.
func New(cfg *config.RedisConfig) *Store {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "regpulse:"
	}

	return &Store{client: client, prefix: prefix}
}

// NewFromClient creates a Store from an existing client (useful for testing).
func NewFromClient(client *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "regpulse:"
	}
	return &Store{client: client, prefix: prefix}
}

// Ping checks connectivity to the Redis server.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the client connection.
func (s *Store) Close() {
	_ = s.client.Close()
}

func (s *Store) cacheKey(key string) string {
	return s.prefix + "cache:" + key
}

func (s *Store) cacheIndexKey() string {
	return s.prefix + "cache:keys"
}

func (s *Store) syncLogIndexKey() string {
	return s.prefix + "synclogs"
}

func (s *Store) adminOpIndexKey() string {
	return s.prefix + "adminops"
}
