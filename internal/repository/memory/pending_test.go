package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamingty/storefront/internal/domain"
)

func TestPendingStore_SingleSlotSemantics(t *testing.T) {
	store := NewPendingStore()
	ctx := context.Background()

	action, err := store.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.Nil(t, action)

	first := domain.NewPendingAdd(domain.WishlistItem{ID: "p1"}, "General")
	second := domain.NewPendingAdd(domain.WishlistItem{ID: "p2"}, "Gifts")

	require.NoError(t, store.Put(ctx, "client-1", first))
	require.NoError(t, store.Put(ctx, "client-1", second))

	action, err = store.Get(ctx, "client-1")
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, "p2", action.Product.ID)
	assert.Equal(t, "Gifts", action.Category)
}

func TestPendingStore_ClearAndIsolation(t *testing.T) {
	store := NewPendingStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "client-a", domain.NewPendingAdd(domain.WishlistItem{ID: "p1"}, "General")))

	action, err := store.Get(ctx, "client-b")
	require.NoError(t, err)
	assert.Nil(t, action)

	require.NoError(t, store.Clear(ctx, "client-a"))
	action, err = store.Get(ctx, "client-a")
	require.NoError(t, err)
	assert.Nil(t, action)

	require.NoError(t, store.Clear(ctx, "client-a"))
}
