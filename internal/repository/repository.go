package repository

import (
	"context"

	"github.com/gamingty/storefront/internal/domain"
)

// CartRepository defines the interface for cart persistence operations.
type CartRepository interface {
	// Get retrieves a cart by client ID.
	Get(ctx context.Context, clientID string) (*domain.Cart, error)

	// Save persists a cart, overwriting any existing one for the client.
	Save(ctx context.Context, cart *domain.Cart) error

	// SaveIfVersion persists the cart only when the stored version still
	// matches expectedVersion, incrementing the version on success.
	// Returns false (and no error) when a concurrent writer won.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error)

	// Delete removes a cart by client ID.
	Delete(ctx context.Context, clientID string) error
}

// WishlistRepository stores the local mirror of each user's server-side
// wishlist. The mirror is a cache: the platform API is the source of truth
// and every successful mutation overwrites the whole snapshot.
type WishlistRepository interface {
	// Get retrieves the mirrored wishlist for a user.
	Get(ctx context.Context, userID string) (domain.Wishlist, error)

	// Save replaces the mirrored wishlist for a user.
	Save(ctx context.Context, userID string, wl domain.Wishlist) error

	// Delete drops the mirror for a user.
	Delete(ctx context.Context, userID string) error
}

// PendingRepository is the durable single-slot store for deferred wishlist
// actions, keyed by client ID. Put overwrites any existing slot.
type PendingRepository interface {
	// Get returns the parked action for a client, or nil when the slot is empty.
	Get(ctx context.Context, clientID string) (*domain.PendingAction, error)

	// Put parks an action, replacing any previous one.
	Put(ctx context.Context, clientID string, action domain.PendingAction) error

	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear(ctx context.Context, clientID string) error
}
