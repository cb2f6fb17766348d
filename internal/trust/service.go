// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package trust

import (
	"context"
	"log/slog"
	"time"

	"github.com/compatdex/compatdex/internal/platform/apperr"
)

// scoreCacheTTL bounds how stale a cached score can get even if an
// invalidation is lost.
const scoreCacheTTL = 10 * time.Minute

// # Service Layer

// Service orchestrates ledger writes and derived score reads.
type Service struct {
	repo   Repository
	cache  ScoreCache
	logger *slog.Logger
}

// NewService constructs a new trust [Service].
//
// cache may be nil; every read then falls through to the ledger aggregate.
func NewService(repo Repository, cache ScoreCache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// # Ledger Writes

/*
LogAction appends one ledger entry for a standalone reputation event.

Description: The weight comes from the static action table; unknown actions
are rejected before any write. Events coupled to another mutation (report
resolution, bans) do not pass through here — their repositories write the
ledger row via [InsertTx] inside their own transaction.

Parameters:
  - context: context.Context
  - userID: string (The credited/debited user)
  - action: Action
  - targetUserID: string (Optional other party, "" for none)
  - metadata: map[string]any (Optional linkage data)

Returns:
  - *Entry: The persisted entry
  - error: Validation or persistence failures
*/
func (service *Service) LogAction(context context.Context, userID string, action Action, targetUserID string, metadata map[string]any) (*Entry, error) {
	entry, known := NewEntry(userID, action)
	if !known {
		return nil, apperr.ValidationError("Unknown trust action")
	}

	if targetUserID != "" {
		entry.WithTarget(targetUserID)
	}
	entry.WithMetadata(metadata)

	if err := service.repo.Insert(context, entry); err != nil {
		return nil, err
	}

	service.invalidateCache(context, userID)

	service.logger.Info("trust_action_logged",
		slog.String("user_id", userID),
		slog.String("action", string(action)),
		slog.Int("weight", entry.Weight),
	)

	return entry, nil
}

// OnLedgerWrite invalidates the cached score after a sibling repository has
// committed ledger rows inside its own transaction.
//
// Called by the ban and moderation services post-commit; a failure here is
// logged and swallowed because the TTL self-heals the cache.
func (service *Service) OnLedgerWrite(context context.Context, userIDs ...string) {
	for _, userID := range userIDs {
		if userID != "" {
			service.invalidateCache(context, userID)
		}
	}
}

// # Derived Reads

/*
GetScore returns the user's current score.

Description: Cache-aside read — on a hit the cached value is returned, on a
miss (or cache failure) the ledger is replayed and the fresh aggregate is
stored back. The ledger is always the authority.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int: Current score
  - error: Database retrieval failures
*/
func (service *Service) GetScore(context context.Context, userID string) (int, error) {
	if service.cache != nil {
		score, hit, err := service.cache.Get(context, userID)
		if err != nil {
			// Cache trouble only costs a SUM query.
			service.logger.Warn("trust_score_cache_unavailable", slog.Any("error", err))
		} else if hit {
			return score, nil
		}
	}

	score, err := service.repo.SumByUser(context, userID)
	if err != nil {
		return 0, err
	}

	if service.cache != nil {
		if err := service.cache.Set(context, userID, score, scoreCacheTTL); err != nil {
			service.logger.Warn("trust_score_cache_set_failed", slog.Any("error", err))
		}
	}

	return score, nil
}

/*
GetStanding returns the user's derived score and level.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Standing: Score plus threshold-derived level
  - error: Database retrieval failures
*/
func (service *Service) GetStanding(context context.Context, userID string) (*Standing, error) {
	score, err := service.GetScore(context, userID)
	if err != nil {
		return nil, err
	}

	return &Standing{
		UserID: userID,
		Score:  score,
		Level:  LevelOf(score),
	}, nil
}

/*
GetHistory returns the user's ledger entries, newest first.

Parameters:
  - context: context.Context
  - userID: string
  - limit, offset: int

Returns:
  - []*Entry: Ledger history
  - int: Total entry count
  - error: Database retrieval failures
*/
func (service *Service) GetHistory(context context.Context, userID string, limit, offset int) ([]*Entry, int, error) {
	return service.repo.ListByUser(context, userID, limit, offset)
}

// invalidateCache drops the user's cached score, logging failures only.
func (service *Service) invalidateCache(context context.Context, userID string) {
	if service.cache == nil {
		return
	}
	if err := service.cache.Invalidate(context, userID); err != nil {
		service.logger.Warn("trust_score_cache_invalidate_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}
