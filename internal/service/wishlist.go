package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gamingty/storefront/internal/domain"
	"github.com/gamingty/storefront/internal/repository"
	apperrors "github.com/gamingty/storefront/pkg/errors"
)

var wishlistPendingReplaysTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wishlist_pending_replays_total",
		Help: "Total number of deferred wishlist adds replayed after login",
	},
	[]string{"result"},
)

// PlatformAPI is the slice of the remote platform client used by the
// wishlist service. Every mutation returns the server's full wishlist
// payload, which replaces the local mirror wholesale.
type PlatformAPI interface {
	GetWishlist(ctx context.Context, token string) (json.RawMessage, error)
	AddProduct(ctx context.Context, token, productID, category string) (json.RawMessage, error)
	RemoveProduct(ctx context.Context, token, category, productID string) (json.RawMessage, error)
	MoveProduct(ctx context.Context, token, productID, from, to string) (json.RawMessage, error)
	AddCategory(ctx context.Context, token, name string) (json.RawMessage, error)
	EditCategory(ctx context.Context, token, oldName, newName string) (json.RawMessage, error)
	DeleteCategory(ctx context.Context, token, name string) (json.RawMessage, error)
}

// Session identifies the caller for wishlist operations. A session with a
// token is authenticated; everything else is a guest.
type Session struct {
	UserID   string
	ClientID string
	Token    string
}

// Authenticated reports whether the session may perform remote mutations.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// WishlistService keeps a local mirror of the platform-side wishlist in
// sync. The platform is the source of truth: every successful mutation
// overwrites the whole mirror with the server's returned map, never merging.
// Adds attempted by guests are parked in a single-slot pending store and
// replayed once when the session authenticates.
type WishlistService struct {
	platform PlatformAPI
	mirror   repository.WishlistRepository
	pending  repository.PendingRepository
	logger   *slog.Logger
}

// NewWishlistService creates a new wishlist service.
func NewWishlistService(platform PlatformAPI, mirror repository.WishlistRepository, pending repository.PendingRepository, logger *slog.Logger) *WishlistService {
	return &WishlistService{
		platform: platform,
		mirror:   mirror,
		pending:  pending,
		logger:   logger,
	}
}

// Sync refreshes the mirror from the platform and returns it.
//
// Guests short-circuit to the empty state without a network call; this is
// deliberate, not an error. A failed fetch also resets the mirror to empty —
// stale data cannot be trusted after a fetch that may reflect a server-side
// change — and the failure is returned alongside the reset state.
func (s *WishlistService) Sync(ctx context.Context, session Session) (domain.Wishlist, error) {
	if !session.Authenticated() {
		return domain.EmptyWishlist(), nil
	}

	data, err := s.platform.GetWishlist(ctx, session.Token)
	if err != nil {
		s.logger.WarnContext(ctx, "wishlist fetch failed, resetting mirror",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
		s.saveMirror(ctx, session.UserID, domain.EmptyWishlist())
		return domain.EmptyWishlist(), err
	}

	wl := domain.NormalizeWishlist(data)
	s.saveMirror(ctx, session.UserID, wl)
	return wl, nil
}

// Get returns the mirrored wishlist without a platform round-trip. A missing
// mirror falls back to a full Sync.
func (s *WishlistService) Get(ctx context.Context, session Session) (domain.Wishlist, error) {
	if !session.Authenticated() {
		return domain.EmptyWishlist(), nil
	}

	wl, err := s.mirror.Get(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.Sync(ctx, session)
		}
		return nil, fmt.Errorf("get wishlist mirror: %w", err)
	}
	return wl, nil
}

// AddProduct saves a product into the given category (General when empty).
//
// Guests do not reach the network: the attempt is parked as the client's
// single pending action — overwriting any earlier one — and a login-required
// error is returned. Authenticated callers first discard any stale pending
// action, then perform the remote add and adopt the server's returned map.
func (s *WishlistService) AddProduct(ctx context.Context, session Session, product domain.WishlistItem, category string) (domain.Wishlist, error) {
	if product.ID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if category == "" {
		category = domain.GeneralCategory
	}

	if !session.Authenticated() {
		if err := s.pending.Put(ctx, session.ClientID, domain.NewPendingAdd(product, category)); err != nil {
			return nil, fmt.Errorf("park pending add: %w", err)
		}
		s.logger.InfoContext(ctx, "wishlist add parked until login",
			slog.String("client_id", session.ClientID),
			slog.String("product_id", product.ID),
			slog.String("category", category),
		)
		return nil, apperrors.LoginRequired("")
	}

	// A fresh authenticated add supersedes whatever was parked before.
	if err := s.pending.Clear(ctx, session.ClientID); err != nil {
		s.logger.WarnContext(ctx, "failed to clear stale pending action",
			slog.String("client_id", session.ClientID),
			slog.String("error", err.Error()),
		)
	}

	data, err := s.platform.AddProduct(ctx, session.Token, product.ID, category)
	if err != nil {
		return nil, err
	}

	wl := domain.NormalizeWishlist(data)
	s.saveMirror(ctx, session.UserID, wl)

	s.logger.InfoContext(ctx, "product added to wishlist",
		slog.String("user_id", session.UserID),
		slog.String("product_id", product.ID),
		slog.String("category", category),
	)
	return wl, nil
}

// RemoveProduct deletes a product from a category and adopts the server's map.
func (s *WishlistService) RemoveProduct(ctx context.Context, session Session, category, productID string) (domain.Wishlist, error) {
	if !session.Authenticated() {
		return nil, apperrors.LoginRequired("")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	data, err := s.platform.RemoveProduct(ctx, session.Token, category, productID)
	if err != nil {
		return nil, err
	}

	wl := domain.NormalizeWishlist(data)
	s.saveMirror(ctx, session.UserID, wl)
	return wl, nil
}

// MoveProduct relocates a product between categories and adopts the server's
// map verbatim; no local patching happens even when the server's answer
// disagrees with the expected move.
func (s *WishlistService) MoveProduct(ctx context.Context, session Session, productID, from, to string) (domain.Wishlist, error) {
	if !session.Authenticated() {
		return nil, apperrors.LoginRequired("")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if from == "" || to == "" {
		return nil, apperrors.InvalidInput("source and destination categories are required")
	}

	data, err := s.platform.MoveProduct(ctx, session.Token, productID, from, to)
	if err != nil {
		return nil, err
	}

	wl := domain.NormalizeWishlist(data)
	s.saveMirror(ctx, session.UserID, wl)
	return wl, nil
}

// AddCategory creates a new category.
func (s *WishlistService) AddCategory(ctx context.Context, session Session, name string) (domain.Wishlist, error) {
	if !session.Authenticated() {
		return nil, apperrors.LoginRequired("")
	}
	if name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}

	data, err := s.platform.AddCategory(ctx, session.Token, name)
	if err != nil {
		return nil, err
	}

	wl := domain.NormalizeWishlist(data)
	s.saveMirror(ctx, session.UserID, wl)
	return wl, nil
}

// EditCategory renames a category.
func (s *WishlistService) EditCategory(ctx context.Context, session Session, oldName, newName string) (domain.Wishlist, error) {
	if !session.Authenticated() {
		return nil, apperrors.LoginRequired("")
	}
	if oldName == "" || newName == "" {
		return nil, apperrors.InvalidInput("both category names are required")
	}

	data, err := s.platform.EditCategory(ctx, session.Token, oldName, newName)
	if err != nil {
		return nil, err
	}

	wl := domain.NormalizeWishlist(data)
	s.saveMirror(ctx, session.UserID, wl)
	return wl, nil
}

// DeleteCategory removes a category and its contents.
func (s *WishlistService) DeleteCategory(ctx context.Context, session Session, name string) (domain.Wishlist, error) {
	if !session.Authenticated() {
		return nil, apperrors.LoginRequired("")
	}
	if name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}

	data, err := s.platform.DeleteCategory(ctx, session.Token, name)
	if err != nil {
		return nil, err
	}

	wl := domain.NormalizeWishlist(data)
	s.saveMirror(ctx, session.UserID, wl)
	return wl, nil
}

// Contains reports whether the user's mirrored wishlist holds the product.
func (s *WishlistService) Contains(ctx context.Context, session Session, productID string) (bool, error) {
	wl, err := s.Get(ctx, session)
	if err != nil {
		return false, err
	}
	return wl.Contains(productID), nil
}

// CategoryOf returns the category holding the product, or "" when absent.
func (s *WishlistService) CategoryOf(ctx context.Context, session Session, productID string) (string, error) {
	wl, err := s.Get(ctx, session)
	if err != nil {
		return "", err
	}
	return wl.CategoryOf(productID), nil
}

// HandleLogin reacts to a session becoming authenticated. If the client has
// a parked pending action it is replayed exactly once through the same path
// as an authenticated add, then the slot is cleared no matter the outcome. A
// failed replay is logged and counted but never retried.
func (s *WishlistService) HandleLogin(ctx context.Context, userID, clientID, token string) error {
	action, err := s.pending.Get(ctx, clientID)
	if err != nil {
		return fmt.Errorf("read pending slot: %w", err)
	}
	if action == nil {
		return nil
	}

	if err := s.pending.Clear(ctx, clientID); err != nil {
		return fmt.Errorf("clear pending slot: %w", err)
	}

	session := Session{UserID: userID, ClientID: clientID, Token: token}
	if _, err := s.AddProduct(ctx, session, action.Product, action.Category); err != nil {
		wishlistPendingReplaysTotal.WithLabelValues("failure").Inc()
		s.logger.WarnContext(ctx, "pending wishlist add replay failed",
			slog.String("client_id", clientID),
			slog.String("product_id", action.Product.ID),
			slog.String("error", err.Error()),
		)
		return nil
	}

	wishlistPendingReplaysTotal.WithLabelValues("success").Inc()
	s.logger.InfoContext(ctx, "pending wishlist add replayed",
		slog.String("client_id", clientID),
		slog.String("product_id", action.Product.ID),
		slog.String("category", action.Category),
	)
	return nil
}

// HandleLogout clears the client's pending slot and drops the user's mirror
// so nothing replays or leaks under a different identity later.
func (s *WishlistService) HandleLogout(ctx context.Context, userID, clientID string) error {
	if err := s.pending.Clear(ctx, clientID); err != nil {
		return fmt.Errorf("clear pending slot: %w", err)
	}

	if userID != "" {
		if err := s.mirror.Delete(ctx, userID); err != nil {
			return fmt.Errorf("drop wishlist mirror: %w", err)
		}
	}

	return nil
}

// saveMirror best-effort persists the mirror; the platform remains the
// source of truth, so a failed save only costs a future refetch.
func (s *WishlistService) saveMirror(ctx context.Context, userID string, wl domain.Wishlist) {
	if userID == "" {
		return
	}
	if err := s.mirror.Save(ctx, userID, wl); err != nil {
		s.logger.WarnContext(ctx, "failed to save wishlist mirror",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
