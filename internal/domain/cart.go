package domain

import "time"

// CartItemType classifies the single kind of product a cart may hold.
// Wallet loads, digital pins, and top-up pins are fulfilled by different
// payment pipelines and must never share a checkout.
type CartItemType string

const (
	TypeWalletLoad  CartItemType = "WALLET_LOAD"
	TypeDigitalPins CartItemType = "DIGITAL_PINS"
	TypeTopupPins   CartItemType = "TOPUP_PINS"
)

// DefaultCartItemType is assumed when a product carries no explicit type.
const DefaultCartItemType = TypeDigitalPins

// Valid reports whether t is a known cart item type.
func (t CartItemType) Valid() bool {
	switch t {
	case TypeWalletLoad, TypeDigitalPins, TypeTopupPins:
		return true
	}
	return false
}

// CartItem represents a single line in the cart. JSON field names follow the
// upstream catalog API contract, which uses Mongo-style identifiers.
type CartItem struct {
	ID            string       `json:"_id"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Price         int64        `json:"price"`
	OriginalPrice int64        `json:"originalPrice,omitempty"`
	Image         string       `json:"image,omitempty"`
	Quantity      int          `json:"quantity"`
	Type          CartItemType `json:"type,omitempty"`

	// AllowedPaymentMethods lists the payment methods this product may be
	// bought with. nil means the product declared no list at all, which
	// collapses the cart-wide restriction set to empty.
	AllowedPaymentMethods []string `json:"allowedPaymentMethods,omitempty"`
}

// EffectiveType returns the item's type, falling back to DefaultCartItemType
// when the catalog entry omits one.
func (i CartItem) EffectiveType() CartItemType {
	if i.Type == "" {
		return DefaultCartItemType
	}
	return i.Type
}

// Cart is the per-client cart aggregate. MetaType is empty iff Items is
// empty; every item in a non-empty cart shares MetaType. The invariant is
// enforced at insertion time, never by post-hoc validation.
type Cart struct {
	ClientID            string       `json:"client_id"`
	Items               []CartItem   `json:"items"`
	MetaType            CartItemType `json:"metaType,omitempty"`
	PaymentRestrictions []string     `json:"paymentRestrictions"`
	Version             int          `json:"version"`
	UpdatedAt           time.Time    `json:"updated_at"`
}

// NewCart returns an empty cart for the given client.
func NewCart(clientID string) *Cart {
	return &Cart{
		ClientID:            clientID,
		Items:               []CartItem{},
		PaymentRestrictions: []string{},
		UpdatedAt:           time.Now().UTC(),
	}
}

// AddItem adds a product to the cart, enforcing the single-type rule.
//
// If the cart already holds a different type the call is rejected and the
// cart is left untouched. If an item with the same ID is already present its
// quantity increments by one; the stored price and metadata are NOT updated.
// Otherwise the item is appended with quantity 1. Payment restrictions are
// recomputed after a successful mutation.
//
// Returns true when the cart was modified.
func (c *Cart) AddItem(item CartItem) bool {
	incoming := item.EffectiveType()

	if c.MetaType != "" && c.MetaType != incoming {
		return false
	}

	if idx := c.findItem(item.ID); idx >= 0 {
		c.Items[idx].Quantity++
	} else {
		item.Type = incoming
		item.Quantity = 1
		c.Items = append(c.Items, item)
	}

	c.MetaType = incoming
	c.PaymentRestrictions = intersectRestrictions(c.Items)
	c.UpdatedAt = time.Now().UTC()
	return true
}

// RemoveItem deletes the line with the given ID. Removing the last item
// resets MetaType and collapses the restriction set.
func (c *Cart) RemoveItem(id string) {
	idx := c.findItem(id)
	if idx < 0 {
		return
	}

	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	if len(c.Items) == 0 {
		c.MetaType = ""
	}
	c.PaymentRestrictions = intersectRestrictions(c.Items)
	c.UpdatedAt = time.Now().UTC()
}

// UpdateQuantity sets the quantity for the matching item. A quantity of zero
// or less removes the item, including the empty-cart MetaType reset.
// Quantity-only changes do not recompute payment restrictions: the
// restriction set depends on which items are present, not how many.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(id)
		return
	}

	idx := c.findItem(id)
	if idx < 0 {
		return
	}

	c.Items[idx].Quantity = quantity
	c.UpdatedAt = time.Now().UTC()
}

// Clear resets items, meta type, and restrictions in one step.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.MetaType = ""
	c.PaymentRestrictions = []string{}
	c.UpdatedAt = time.Now().UTC()
}

// TotalItems returns the sum of all line quantities.
func (c *Cart) TotalItems() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// TotalAmount returns the cart total in minor currency units.
func (c *Cart) TotalAmount() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// findItem returns the index of the item with the given ID, or -1.
func (c *Cart) findItem(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// intersectRestrictions computes the ordered intersection of every item's
// allowed payment methods. The accumulator is seeded from the first item and
// filtered against each subsequent list, so the result preserves the first
// item's ordering. An item without a list contributes an empty set, which
// collapses the intersection permanently: "no common restriction" is the
// conservative reading of a product that declares none.
func intersectRestrictions(items []CartItem) []string {
	if len(items) == 0 {
		return []string{}
	}

	acc := items[0].AllowedPaymentMethods
	if acc == nil {
		return []string{}
	}
	// Copy so later filtering never aliases an item's own slice.
	acc = append([]string(nil), acc...)

	for _, item := range items[1:] {
		if len(acc) == 0 {
			break
		}
		allowed := make(map[string]struct{}, len(item.AllowedPaymentMethods))
		for _, m := range item.AllowedPaymentMethods {
			allowed[m] = struct{}{}
		}
		filtered := acc[:0]
		for _, m := range acc {
			if _, ok := allowed[m]; ok {
				filtered = append(filtered, m)
			}
		}
		acc = filtered
	}

	if acc == nil {
		acc = []string{}
	}
	return acc
}
