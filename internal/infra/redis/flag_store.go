package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// FlagStore keeps flags as plain Redis keys with no expiry: SET flag:{key} 1
type FlagStore struct {
	client *redis.Client
}

func NewFlagStore(client *redis.Client) *FlagStore {
	return &FlagStore{client: client}
}

func (s *FlagStore) Get(ctx context.Context, key string) (bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get flag: %w", err)
	}
	return v == "1", nil
}

func (s *FlagStore) Set(ctx context.Context, key string) error {
	if err := s.client.Set(ctx, s.key(key), "1", 0).Err(); err != nil {
		return fmt.Errorf("redis set flag: %w", err)
	}
	return nil
}

func (s *FlagStore) key(key string) string {
	return "flag:" + key
}
