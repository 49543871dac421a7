package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gamingty/storefront/internal/domain"
	apperrors "github.com/gamingty/storefront/pkg/errors"
)

const wishlistKeyPrefix = "gamingty-wishlist:"

// WishlistRepository mirrors each user's server-side wishlist in Redis so a
// fresh page load does not need a platform round-trip.
type WishlistRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewWishlistRepository creates a new Redis-backed wishlist mirror.
func NewWishlistRepository(client *redis.Client, ttl time.Duration) *WishlistRepository {
	return &WishlistRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves the mirrored wishlist for a user. The stored snapshot is
// re-normalized on read so a corrupt entry degrades to the empty state
// instead of surfacing malformed data.
func (r *WishlistRepository) Get(ctx context.Context, userID string) (domain.Wishlist, error) {
	key := wishlistKeyPrefix + userID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("wishlist", userID)
		}
		return nil, fmt.Errorf("redis get wishlist: %w", err)
	}

	return domain.NormalizeWishlist(data), nil
}

// Save replaces the mirrored wishlist for a user.
func (r *WishlistRepository) Save(ctx context.Context, userID string, wl domain.Wishlist) error {
	key := wishlistKeyPrefix + userID

	data, err := json.Marshal(wl)
	if err != nil {
		return fmt.Errorf("marshal wishlist: %w", err)
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set wishlist: %w", err)
	}

	return nil
}

// Delete drops the mirror for a user.
func (r *WishlistRepository) Delete(ctx context.Context, userID string) error {
	key := wishlistKeyPrefix + userID

	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del wishlist: %w", err)
	}

	return nil
}
