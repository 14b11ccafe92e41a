package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/invoicely/internal/domain/repository"
)

type redisKVStore struct {
	client *redis.Client
	prefix string
}

// NewRedisKVStore creates a key-value store on Redis. Keys are stored without
// expiry under prefix+key.
func NewRedisKVStore(client *redis.Client, prefix string) repository.KeyValueStore {
	return &redisKVStore{client: client, prefix: prefix}
}

func (r *redisKVStore) key(k string) string {
	return r.prefix + k
}

func (r *redisKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (r *redisKVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// SetMany writes all entries in one MULTI/EXEC transaction
func (r *redisKVStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range entries {
			pipe.Set(ctx, r.key(k), v, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis multi-set: %w", err)
	}
	return nil
}
