package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWishlist_DegenerateInputs(t *testing.T) {
	inputs := map[string]string{
		"null":         `null`,
		"empty object": `{}`,
		"array":        `[]`,
		"string":       `"hello"`,
		"number":       `42`,
		"empty bytes":  ``,
		"garbage":      `{invalid`,
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			wl := NormalizeWishlist(json.RawMessage(input))
			require.Len(t, wl, 1)
			items, ok := wl[GeneralCategory]
			require.True(t, ok)
			assert.Empty(t, items)
		})
	}
}

func TestNormalizeWishlist_CoercesNonArrayValues(t *testing.T) {
	payload := json.RawMessage(`{
		"General": [{"_id": "p1", "title": "Steam Card"}],
		"Favorites": "not-an-array",
		"Later": {"nested": true},
		"Empty": null
	}`)

	wl := NormalizeWishlist(payload)

	require.Len(t, wl, 4)
	assert.Len(t, wl["General"], 1)
	assert.Equal(t, "p1", wl["General"][0].ID)
	assert.Empty(t, wl["Favorites"])
	assert.Empty(t, wl["Later"])
	assert.Empty(t, wl["Empty"])
}

func TestNormalizeWishlist_AddsMissingGeneral(t *testing.T) {
	wl := NormalizeWishlist(json.RawMessage(`{"Favorites": [{"_id": "p9"}]}`))

	items, ok := wl[GeneralCategory]
	require.True(t, ok)
	assert.Empty(t, items)
	assert.Len(t, wl["Favorites"], 1)
}

func TestNormalizeWishlist_Idempotent(t *testing.T) {
	// Payloads are pre-compacted because json.Marshal compacts RawMessage
	// output; idempotence is over the serialized form, not raw whitespace.
	payloads := []string{
		`{}`,
		`null`,
		`{"General":[{"_id":"p1","title":"Card","price":12.5}],"Gifts":[{"_id":"p2"}]}`,
		`{"Favorites":"broken","General":[{"_id":"p3"}]}`,
	}

	for _, payload := range payloads {
		once := NormalizeWishlist(json.RawMessage(payload))

		serialized, err := json.Marshal(once)
		require.NoError(t, err)
		twice := NormalizeWishlist(serialized)

		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("normalization not idempotent for %s (-once +twice):\n%s", payload, diff)
		}
	}
}

func TestWishlistItem_RoundTripsOpaquePayload(t *testing.T) {
	original := `{"_id":"p1","title":"Steam Card","prices":{"usd":10,"eur":9}}`

	var item WishlistItem
	require.NoError(t, json.Unmarshal([]byte(original), &item))
	assert.Equal(t, "p1", item.ID)

	out, err := json.Marshal(item)
	require.NoError(t, err)
	assert.JSONEq(t, original, string(out))
}

func TestWishlistItem_MalformedElementNeverMatches(t *testing.T) {
	wl := NormalizeWishlist(json.RawMessage(`{"General": ["just-a-string", {"_id": "p1"}]}`))

	require.Len(t, wl["General"], 2)
	assert.Empty(t, wl["General"][0].ID)
	assert.True(t, wl.Contains("p1"))
	assert.False(t, wl.Contains(""))
}

func TestWishlist_Contains(t *testing.T) {
	wl := NormalizeWishlist(json.RawMessage(`{
		"General": [{"_id": "p1"}],
		"Gifts": [{"_id": "p2"}, {"_id": "p3"}]
	}`))

	assert.True(t, wl.Contains("p1"))
	assert.True(t, wl.Contains("p3"))
	assert.False(t, wl.Contains("p4"))
}

func TestWishlist_CategoryOf(t *testing.T) {
	wl := NormalizeWishlist(json.RawMessage(`{
		"Zebra": [{"_id": "dup"}],
		"Alpha": [{"_id": "dup"}, {"_id": "a1"}],
		"General": [{"_id": "g1"}]
	}`))

	assert.Equal(t, "General", wl.CategoryOf("g1"))
	assert.Equal(t, "Alpha", wl.CategoryOf("a1"))
	// Duplicates resolve to the lexically first non-General category.
	assert.Equal(t, "Alpha", wl.CategoryOf("dup"))
	assert.Equal(t, "", wl.CategoryOf("missing"))
}

func TestWishlist_CategoryOf_GeneralWins(t *testing.T) {
	wl := NormalizeWishlist(json.RawMessage(`{
		"Alpha": [{"_id": "dup"}],
		"General": [{"_id": "dup"}]
	}`))

	assert.Equal(t, "General", wl.CategoryOf("dup"))
}

func TestWishlist_Categories(t *testing.T) {
	wl := NormalizeWishlist(json.RawMessage(`{"Zeta": [], "Alpha": [], "General": []}`))
	assert.Equal(t, []string{"General", "Alpha", "Zeta"}, wl.Categories())
}

func TestWishlist_TotalItems(t *testing.T) {
	wl := NormalizeWishlist(json.RawMessage(`{
		"General": [{"_id": "p1"}, {"_id": "p2"}],
		"Gifts": [{"_id": "p3"}]
	}`))
	assert.Equal(t, 3, wl.TotalItems())

	assert.Equal(t, 0, EmptyWishlist().TotalItems())
}
