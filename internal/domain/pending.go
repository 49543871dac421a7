package domain

import "time"

// PendingKind tags the type of a deferred wishlist operation. Only one kind
// exists today; the tag is kept explicit so persisted actions stay readable.
type PendingKind string

// PendingAddToWishlist is an add attempted while logged out, parked until the
// client authenticates.
const PendingAddToWishlist PendingKind = "ADD_TO_WISHLIST"

// PendingAction is a single deferred wishlist mutation. At most one exists
// per client at a time; a newer action overwrites any prior one. It is
// consumed exactly once after login and discarded unconditionally on logout.
type PendingAction struct {
	Kind      PendingKind  `json:"kind"`
	Product   WishlistItem `json:"product"`
	Category  string       `json:"category"`
	CreatedAt time.Time    `json:"created_at"`
}

// NewPendingAdd builds a deferred add for the given product. An empty
// category defaults to General.
func NewPendingAdd(product WishlistItem, category string) PendingAction {
	if category == "" {
		category = GeneralCategory
	}
	return PendingAction{
		Kind:      PendingAddToWishlist,
		Product:   product,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
}
