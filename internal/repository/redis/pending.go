package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gamingty/storefront/internal/domain"
)

const pendingKeyPrefix = "gamingty-wishlist-pending:"

// PendingRepository is the durable single-slot store for deferred wishlist
// actions. The slot survives process restarts so an add attempted before
// login still replays when the session arrives on another instance.
type PendingRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPendingRepository creates a new Redis-backed pending-action store.
func NewPendingRepository(client *redis.Client, ttl time.Duration) *PendingRepository {
	return &PendingRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get returns the parked action for a client, or nil when the slot is empty.
// A corrupt slot is cleared and reported as empty.
func (r *PendingRepository) Get(ctx context.Context, clientID string) (*domain.PendingAction, error) {
	key := pendingKeyPrefix + clientID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get pending action: %w", err)
	}

	var action domain.PendingAction
	if err := json.Unmarshal(data, &action); err != nil {
		_ = r.client.Del(ctx, key).Err()
		return nil, nil
	}

	return &action, nil
}

// Put parks an action, replacing any previous one.
func (r *PendingRepository) Put(ctx context.Context, clientID string, action domain.PendingAction) error {
	key := pendingKeyPrefix + clientID

	data, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("marshal pending action: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set pending action: %w", err)
	}

	return nil
}

// Clear empties the slot.
func (r *PendingRepository) Clear(ctx context.Context, clientID string) error {
	key := pendingKeyPrefix + clientID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del pending action: %w", err)
	}

	return nil
}
