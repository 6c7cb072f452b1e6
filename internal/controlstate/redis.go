package controlstate

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one plain "0"/"1" key per flag. Redis SET is already
// a last-write-wins register, which is exactly the contract; keys never
// expire.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing redis client. prefix namespaces the
// flag keys (e.g. "nodewatch:flag:").
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

// Get returns the flag value; a key that was never written reads false.
func (s *RedisStore) Get(ctx context.Context, name string) (bool, error) {
	val, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return val == "1", nil
}

// Set unconditionally overwrites the flag.
func (s *RedisStore) Set(ctx context.Context, name string, value bool) error {
	val := "0"
	if value {
		val = "1"
	}
	if err := s.client.Set(ctx, s.key(name), val, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
