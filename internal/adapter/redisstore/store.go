// Package redisstore implements the KVStore port on a Redis-compatible
// server (Redis, Dragonfly, Valkey). All state the control plane owns lives
// here; the process keeps nothing in memory between iterations.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

// Store wraps one logical Redis DB.
type Store struct {
	client *redis.Client
}

// Options for connecting to one logical DB.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// New connects a Store. The connection is verified lazily; call Ping to
// check it eagerly.
func New(opts Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &Store{client: client}
}

// NewWithClient wraps an existing client, mainly for tests.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get returns the raw value at key, or domain.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get %s: %w", key, domain.ErrKeyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return val, nil
}

// Set writes a value with no expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// SetTTL writes a value that expires after ttl.
func (s *Store) SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Del removes a key. Deleting a missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// LPush prepends values to a list. Combined with RPop this gives FIFO order.
func (s *Store) LPush(ctx context.Context, key string, values ...[]byte) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	if err := s.client.LPush(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("lpush %s: %w", key, err)
	}
	return nil
}

// RPop removes and returns the oldest list element, or domain.ErrQueueEmpty.
func (s *Store) RPop(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.RPop(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("rpop %s: %w", key, domain.ErrQueueEmpty)
	}
	if err != nil {
		return nil, fmt.Errorf("rpop %s: %w", key, err)
	}
	return val, nil
}

// LLen returns the list length; missing keys count as empty.
func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	n, err := s.client.LLen(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", key, err)
	}
	return n, nil
}

// LRange returns list elements between start and stop inclusive, newest
// first, without removing them.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	vals, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ domain.KVStore = (*Store)(nil)
