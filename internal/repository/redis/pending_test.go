package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamingty/storefront/internal/domain"
)

func samplePending(productID, category string) domain.PendingAction {
	item := domain.WishlistItem{}
	raw, _ := json.Marshal(map[string]string{"_id": productID, "title": "Steam Card"})
	_ = json.Unmarshal(raw, &item)
	return domain.NewPendingAdd(item, category)
}

func TestPendingRepository_EmptySlot(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewPendingRepository(client, time.Hour)

	action, err := repo.Get(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Nil(t, action)
}

func TestPendingRepository_PutAndGet(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewPendingRepository(client, time.Hour)

	require.NoError(t, repo.Put(context.Background(), "client-1", samplePending("p1", "Gifts")))

	action, err := repo.Get(context.Background(), "client-1")
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, domain.PendingAddToWishlist, action.Kind)
	assert.Equal(t, "p1", action.Product.ID)
	assert.Equal(t, "Gifts", action.Category)
}

func TestPendingRepository_PutOverwrites(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewPendingRepository(client, time.Hour)

	require.NoError(t, repo.Put(context.Background(), "client-1", samplePending("p1", "General")))
	require.NoError(t, repo.Put(context.Background(), "client-1", samplePending("p2", "General")))

	action, err := repo.Get(context.Background(), "client-1")
	require.NoError(t, err)
	require.NotNil(t, action)
	assert.Equal(t, "p2", action.Product.ID)
}

func TestPendingRepository_Clear(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewPendingRepository(client, time.Hour)

	require.NoError(t, repo.Put(context.Background(), "client-1", samplePending("p1", "General")))
	require.NoError(t, repo.Clear(context.Background(), "client-1"))

	action, err := repo.Get(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Nil(t, action)

	// Clearing an empty slot is fine.
	require.NoError(t, repo.Clear(context.Background(), "client-1"))
}

func TestPendingRepository_CorruptSlotReportedEmpty(t *testing.T) {
	client, mr := setupTestRedis(t)
	repo := NewPendingRepository(client, time.Hour)

	require.NoError(t, mr.Set("gamingty-wishlist-pending:client-1", "{broken"))

	action, err := repo.Get(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Nil(t, action)
}

func TestPendingRepository_SlotsAreIsolatedPerClient(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewPendingRepository(client, time.Hour)

	require.NoError(t, repo.Put(context.Background(), "client-a", samplePending("p1", "General")))

	action, err := repo.Get(context.Background(), "client-b")
	require.NoError(t, err)
	assert.Nil(t, action)
}
