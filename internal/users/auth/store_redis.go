// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/compatdex/compatdex/internal/platform/apperr"
)

// sessionKeyPrefix namespaces refresh-token sessions in Redis.
const sessionKeyPrefix = "auth:session:%s"

// RedisSessionRepository implements [SessionRepository] using Redis.
//
// Expiry is delegated to Redis TTLs, so a stale session simply stops
// resolving; no sweeper is needed.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a new Redis-backed SessionRepository.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func (repository *RedisSessionRepository) Set(ctx context.Context, tokenHash, userID string, ttl time.Duration) error {
	key := fmt.Sprintf(sessionKeyPrefix, tokenHash)
	if err := repository.client.Set(ctx, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

func (repository *RedisSessionRepository) Get(ctx context.Context, tokenHash string) (string, error) {
	key := fmt.Sprintf(sessionKeyPrefix, tokenHash)
	userID, err := repository.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Session")
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return userID, nil
}

func (repository *RedisSessionRepository) Delete(ctx context.Context, tokenHash string) error {
	key := fmt.Sprintf(sessionKeyPrefix, tokenHash)
	if err := repository.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
