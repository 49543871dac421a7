package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gamingty/storefront/internal/domain"
	"github.com/gamingty/storefront/internal/event"
	"github.com/gamingty/storefront/internal/repository"
	apperrors "github.com/gamingty/storefront/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart line.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct lines allowed in a cart.
	MaxItemsPerCart = 50
	// MaxPriceMinor is the maximum item price in minor currency units.
	MaxPriceMinor = 100_000_00
)

var cartTypeConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "cart_type_conflicts_total",
	Help: "Total number of cart adds rejected by the single-type rule",
})

// CartService implements the business logic for cart operations. Carts are
// keyed by client ID so guests and authenticated users get the same
// behavior; mutations never require a platform round-trip.
type CartService struct {
	repo     repository.CartRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service. Snapshot expiry is owned by the
// repository, which applies its TTL on every save.
func NewCartService(repo repository.CartRepository, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a client. If no cart exists, returns an
// empty cart without persisting it.
func (s *CartService) GetCart(ctx context.Context, clientID string) (*domain.Cart, error) {
	if clientID == "" {
		return nil, apperrors.InvalidInput("client id is required")
	}

	cart, err := s.repo.Get(ctx, clientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.NewCart(clientID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// AddItem adds a product to the client's cart. Adding a product whose type
// differs from the cart's current meta type is rejected with a conflict; the
// cart is left untouched. Adding an already-present product increments its
// quantity by one. Uses optimistic locking against concurrent tabs.
func (s *CartService) AddItem(ctx context.Context, clientID string, item domain.CartItem) (*domain.Cart, error) {
	if clientID == "" {
		return nil, apperrors.InvalidInput("client id is required")
	}
	if item.ID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if item.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if item.Price > MaxPriceMinor {
		return nil, apperrors.InvalidInput(fmt.Sprintf("price must not exceed %d", MaxPriceMinor))
	}
	if item.Type != "" && !item.Type.Valid() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown cart item type %q", item.Type))
	}

	cart, err := s.GetCart(ctx, clientID)
	if err != nil {
		return nil, err
	}

	expectedVersion := cart.Version

	if idx := indexOf(cart.Items, item.ID); idx < 0 && len(cart.Items) >= MaxItemsPerCart {
		return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
	} else if idx >= 0 && cart.Items[idx].Quantity >= MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	if ok := cart.AddItem(item); !ok {
		cartTypeConflictsTotal.Inc()
		s.logger.InfoContext(ctx, "cart add rejected by type rule",
			slog.String("client_id", clientID),
			slog.String("cart_type", string(cart.MetaType)),
			slog.String("item_type", string(item.EffectiveType())),
		)
		return nil, typeConflict(cart.MetaType, item.EffectiveType())
	}

	if err := s.saveAndPublish(ctx, cart, expectedVersion); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("client_id", clientID),
		slog.String("product_id", item.ID),
		slog.String("type", string(cart.MetaType)),
	)

	return cart, nil
}

// UpdateQuantity sets the quantity of a cart line. A quantity of zero or
// less removes the line entirely, including the empty-cart meta type reset.
func (s *CartService) UpdateQuantity(ctx context.Context, clientID, productID string, quantity int) (*domain.Cart, error) {
	if clientID == "" {
		return nil, apperrors.InvalidInput("client id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	cart, err := s.GetCart(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if quantity > 0 && indexOf(cart.Items, productID) < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}

	expectedVersion := cart.Version
	cart.UpdateQuantity(productID, quantity)

	if err := s.saveAndPublish(ctx, cart, expectedVersion); err != nil {
		return nil, err
	}

	return cart, nil
}

// RemoveItem deletes a cart line. Removing an absent line is a no-op.
func (s *CartService) RemoveItem(ctx context.Context, clientID, productID string) (*domain.Cart, error) {
	if clientID == "" {
		return nil, apperrors.InvalidInput("client id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.GetCart(ctx, clientID)
	if err != nil {
		return nil, err
	}

	expectedVersion := cart.Version
	cart.RemoveItem(productID)

	if err := s.saveAndPublish(ctx, cart, expectedVersion); err != nil {
		return nil, err
	}

	return cart, nil
}

// ClearCart drops the client's cart entirely.
func (s *CartService) ClearCart(ctx context.Context, clientID string) error {
	if clientID == "" {
		return apperrors.InvalidInput("client id is required")
	}

	if err := s.repo.Delete(ctx, clientID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	if err := s.producer.PublishCartCleared(ctx, clientID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.cleared event",
			slog.String("client_id", clientID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart cleared", slog.String("client_id", clientID))
	return nil
}

// saveAndPublish persists the cart under optimistic locking and emits a
// cart.updated event. Publish failures are logged, never returned: the
// snapshot store is the source of truth.
func (s *CartService) saveAndPublish(ctx context.Context, cart *domain.Cart, expectedVersion int) error {
	ok, err := s.repo.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return apperrors.Conflict("cart was modified concurrently, please retry")
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("client_id", cart.ClientID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

func indexOf(items []domain.CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// typeConflict builds the conflict error returned when the single-type rule
// rejects an add.
func typeConflict(current, incoming domain.CartItemType) *apperrors.AppError {
	return &apperrors.AppError{
		Code:    "CART_TYPE_CONFLICT",
		Message: fmt.Sprintf("cart holds %s items and cannot accept %s; clear the cart first", current, incoming),
		Status:  http.StatusConflict,
		Err:     apperrors.ErrConflict,
	}
}
