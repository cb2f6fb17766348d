// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

/*
Package notify implements the fire-and-forget notification dispatcher.

Moderation outcomes (a ban issued, a report resolved, a listing processed)
are published to a Redis pub/sub channel for downstream consumers: mailers,
websocket fanout, the admin activity feed. Delivery is best-effort and
happens strictly after the moderation transaction has committed — a dead
Redis never rolls back a ban.
*/
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/compatdex/compatdex/internal/platform/constants"
)

// # Event Types

const (
	EventBanCreated      = "ban.created"
	EventBanLifted       = "ban.lifted"
	EventReportResolved  = "report.resolved"
	EventListingApproved = "listing.approved"
	EventListingRejected = "listing.rejected"
	EventListingVerified = "listing.verified"
)

// Event is the payload published for one moderation outcome.
type Event struct {
	Type         string         `json:"type"`
	ActorID      string         `json:"actor_id"`
	TargetUserID string         `json:"target_user_id,omitempty"`
	EntityID     string         `json:"entity_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	OccurredAt   time.Time      `json:"occurred_at"`
}

// publishTimeout bounds the publish call so a stalled Redis cannot hold
// a request goroutine.
const publishTimeout = 2 * time.Second

// # Dispatcher

// Dispatcher publishes moderation events to Redis pub/sub.
//
// Publish never returns an error: failures are logged and dropped. Callers
// must only invoke it after their own transaction has committed.
type Dispatcher struct {
	client *redis.Client
	logger *slog.Logger
}

// NewDispatcher constructs a dispatcher over an established Redis client.
func NewDispatcher(client *redis.Client, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{client: client, logger: logger}
}

// Publish sends one event to the notification channel, best-effort.
func (dispatcher *Dispatcher) Publish(ctx context.Context, event Event) {
	if dispatcher == nil || dispatcher.client == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		dispatcher.logger.Error("notify_marshal_failed",
			slog.String("type", event.Type),
			slog.Any("error", err),
		)
		return
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := dispatcher.client.Publish(publishCtx, constants.RedisChannelNotify, payload).Err(); err != nil {
		dispatcher.logger.Warn("notify_publish_failed",
			slog.String("type", event.Type),
			slog.String("entity_id", event.EntityID),
			slog.Any("error", err),
		)
	}
}
