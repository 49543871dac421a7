package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

// GeneralCategory is the wishlist category every client starts with. It can
// never be removed: normalization re-creates it whenever it is missing.
const GeneralCategory = "General"

// WishlistItem is a saved product. Only the identifier is interpreted by this
// layer; the rest of the product shape (title, image, prices) is carried as an
// opaque payload and round-tripped to the client untouched.
type WishlistItem struct {
	ID  string
	Raw json.RawMessage
}

// UnmarshalJSON keeps the full payload and extracts the _id field when the
// element is an object. Malformed elements are preserved verbatim with an
// empty ID so they never match membership queries.
func (i *WishlistItem) UnmarshalJSON(data []byte) error {
	i.Raw = append(json.RawMessage(nil), data...)
	i.ID = ""

	var probe struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &probe); err == nil {
		i.ID = probe.ID
	}
	return nil
}

// MarshalJSON emits the original payload unchanged. Items constructed in code
// without a payload serialize as a minimal object carrying only the ID.
func (i WishlistItem) MarshalJSON() ([]byte, error) {
	if len(i.Raw) > 0 {
		return i.Raw, nil
	}
	return json.Marshal(struct {
		ID string `json:"_id"`
	}{ID: i.ID})
}

// Wishlist maps category names to saved products. Invariant: the General
// category is always present, possibly empty.
type Wishlist map[string][]WishlistItem

// EmptyWishlist returns the normalized empty state.
func EmptyWishlist() Wishlist {
	return Wishlist{GeneralCategory: {}}
}

// NormalizeWishlist coerces arbitrary server JSON into a valid Wishlist.
//
// Any payload that is not a JSON object becomes the empty state. Within an
// object, a value that is not an array of items is coerced to an empty array.
// Normalization never fails and is idempotent: feeding the serialized result
// back in produces an equal map.
func NormalizeWishlist(data json.RawMessage) Wishlist {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return EmptyWishlist()
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return EmptyWishlist()
	}

	wl := make(Wishlist, len(raw)+1)
	for category, value := range raw {
		var items []WishlistItem
		if err := json.Unmarshal(value, &items); err != nil || items == nil {
			items = []WishlistItem{}
		}
		wl[category] = items
	}

	if _, ok := wl[GeneralCategory]; !ok {
		wl[GeneralCategory] = []WishlistItem{}
	}
	return wl
}

// Contains reports whether any category holds an item with the given product ID.
func (w Wishlist) Contains(productID string) bool {
	return w.CategoryOf(productID) != ""
}

// CategoryOf returns the category holding the given product, or "" if absent.
// General is checked first, then the remaining categories in lexical order,
// so repeated lookups are deterministic.
func (w Wishlist) CategoryOf(productID string) string {
	if productID == "" {
		return ""
	}

	if containsItem(w[GeneralCategory], productID) {
		return GeneralCategory
	}

	names := make([]string, 0, len(w))
	for name := range w {
		if name != GeneralCategory {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if containsItem(w[name], productID) {
			return name
		}
	}
	return ""
}

// Categories returns all category names, General first and the rest sorted.
func (w Wishlist) Categories() []string {
	names := make([]string, 0, len(w))
	for name := range w {
		if name != GeneralCategory {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]string, 0, len(w))
	if _, ok := w[GeneralCategory]; ok {
		out = append(out, GeneralCategory)
	}
	return append(out, names...)
}

// TotalItems returns the number of saved products across all categories.
func (w Wishlist) TotalItems() int {
	var n int
	for _, items := range w {
		n += len(items)
	}
	return n
}

func containsItem(items []WishlistItem, productID string) bool {
	for _, item := range items {
		if item.ID == productID {
			return true
		}
	}
	return false
}
