package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStorage persists session keys in Redis. Intended for kiosk and
// shared-host deployments where the client process has no stable home
// directory. Keys are namespaced by a per-install prefix so several clients
// can share one Redis.
//
// RedisStorage instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage describes the newredisstorage operation and its observable behavior.
//
// NewRedisStorage may return an error when input validation, dependency calls, or security checks fail.
// NewRedisStorage does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisStorage(client *redis.Client, prefix string) (*RedisStorage, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return &RedisStorage{
		client: client,
		prefix: prefix,
	}, nil
}

func (s *RedisStorage) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return value, nil
}

// Set describes the set operation and its observable behavior.
//
// Set may return an error when input validation, dependency calls, or security checks fail.
// Set does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStorage) Set(ctx context.Context, values map[string]string) error {
	pipe := s.client.TxPipeline()
	for key, value := range values {
		pipe.Set(ctx, s.key(key), value, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	namespaced := make([]string, 0, len(keys))
	for _, key := range keys {
		namespaced = append(namespaced, s.key(key))
	}
	if err := s.client.Del(ctx, namespaced...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
