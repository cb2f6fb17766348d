// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package trust

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/compatdex/compatdex/internal/platform/constants"
)

// RedisScoreCache implements [ScoreCache] using Redis.
//
// Keys live under the trust:score: prefix with a TTL, so even a missed
// invalidation self-heals within one cache lifetime.
type RedisScoreCache struct {
	client *redis.Client
}

// NewRedisScoreCache creates a new Redis-backed score cache.
func NewRedisScoreCache(client *redis.Client) *RedisScoreCache {
	return &RedisScoreCache{client: client}
}

/*
Get retrieves the cached score for a user.

Description: A missing key is a normal cache miss, not an error.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int: Cached score
  - bool: false on miss
  - error: Connectivity errors
*/
func (cache *RedisScoreCache) Get(context context.Context, userID string) (int, bool, error) {
	key := constants.RedisPrefixTrustScore + userID

	raw, err := cache.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("trust: score cache get failed: %w", err)
	}

	score, err := strconv.Atoi(raw)
	if err != nil {
		// A corrupt value is treated as a miss; the next Set overwrites it.
		return 0, false, nil
	}

	return score, true, nil
}

/*
Set stores a freshly aggregated score with a TTL.

Parameters:
  - context: context.Context
  - userID: string
  - score: int (Must come from a ledger aggregate, never an increment)
  - ttl: time.Duration

Returns:
  - error: Connectivity errors
*/
func (cache *RedisScoreCache) Set(context context.Context, userID string, score int, ttl time.Duration) error {
	key := constants.RedisPrefixTrustScore + userID

	if err := cache.client.Set(context, key, strconv.Itoa(score), ttl).Err(); err != nil {
		return fmt.Errorf("trust: score cache set failed: %w", err)
	}

	return nil
}

/*
Invalidate drops the cached score after a ledger insert.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Connectivity errors
*/
func (cache *RedisScoreCache) Invalidate(context context.Context, userID string) error {
	key := constants.RedisPrefixTrustScore + userID

	if err := cache.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("trust: score cache invalidate failed: %w", err)
	}

	return nil
}

var _ ScoreCache = (*RedisScoreCache)(nil)
