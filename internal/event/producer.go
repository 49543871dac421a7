package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gamingty/storefront/internal/domain"
	pkgkafka "github.com/gamingty/storefront/pkg/kafka"
)

// Kafka topics for storefront state events.
const (
	TopicCartUpdated = "gamingty.cart.updated"
	TopicCartCleared = "gamingty.cart.cleared"
)

// Aggregate type constant.
const AggregateTypeCart = "cart"

// Source identifier for events originating from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	ClientID            string              `json:"client_id"`
	MetaType            domain.CartItemType `json:"metaType,omitempty"`
	Items               []CartItemData      `json:"items"`
	PaymentRestrictions []string            `json:"paymentRestrictions"`
	TotalItems          int                 `json:"total_items"`
	TotalAmount         int64               `json:"total_amount"`
}

// CartItemData is the item payload within cart events.
type CartItemData struct {
	ProductID string              `json:"product_id"`
	Title     string              `json:"title"`
	Slug      string              `json:"slug"`
	Price     int64               `json:"price"`
	Quantity  int                 `json:"quantity"`
	Type      domain.CartItemType `json:"type"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	ClientID string `json:"client_id"`
}

// Producer publishes cart state events to Kafka. Downstream consumers
// (analytics, abandoned-cart reminders) track carts through these events
// instead of polling the snapshot store.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	items := make([]CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemData{
			ProductID: item.ID,
			Title:     item.Title,
			Slug:      item.Slug,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Type:      item.Type,
		}
	}

	data := CartUpdatedData{
		ClientID:            cart.ClientID,
		MetaType:            cart.MetaType,
		Items:               items,
		PaymentRestrictions: cart.PaymentRestrictions,
		TotalItems:          cart.TotalItems(),
		TotalAmount:         cart.TotalAmount(),
	}

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cart.ClientID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("client_id", cart.ClientID),
		slog.Int("total_items", cart.TotalItems()),
	)

	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, clientID string) error {
	data := CartClearedData{ClientID: clientID}

	event, err := pkgkafka.NewEvent(TopicCartCleared, clientID, AggregateTypeCart, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create cart.cleared event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartCleared, event); err != nil {
		return fmt.Errorf("publish cart.cleared event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.cleared event",
		slog.String("client_id", clientID),
	)

	return nil
}
