package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMemory(t *testing.T) *MemoryRepository {
	repo := NewMemoryRepository()
	t.Cleanup(func() { repo.Close() })
	return repo
}

func product(id string) domain.CartItem {
	return domain.CartItem{ID: id, Name: "Product " + id, Price: 2500, DefaultPriceID: "price_" + id}
}

func TestMemory_GetCart_NotFound(t *testing.T) {
	repo := setupMemory(t)

	cart, err := repo.GetCart(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestMemory_AddItem_CreatesCart(t *testing.T) {
	repo := setupMemory(t)
	ctx := context.Background()

	added, err := repo.AddItem(ctx, "s1", product("p1"))
	require.NoError(t, err)
	assert.True(t, added)

	cart, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", cart.SessionID)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "p1", cart.Items[0].ID)
}

func TestMemory_AddItem_Duplicate_IsNoop(t *testing.T) {
	repo := setupMemory(t)
	ctx := context.Background()

	_, err := repo.AddItem(ctx, "s1", product("p1"))
	require.NoError(t, err)
	added, err := repo.AddItem(ctx, "s1", product("p1"))
	require.NoError(t, err)
	assert.False(t, added)

	cart, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestMemory_GetCart_ReturnsCopy(t *testing.T) {
	repo := setupMemory(t)
	ctx := context.Background()
	_, _ = repo.AddItem(ctx, "s1", product("p1"))

	cart, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	cart.Items[0].Name = "mutated"
	cart.Add(product("p2"))

	again, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, again.Items, 1)
	assert.Equal(t, "Product p1", again.Items[0].Name)
}

func TestMemory_RemoveItem(t *testing.T) {
	repo := setupMemory(t)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := repo.AddItem(ctx, "s1", product(id))
		require.NoError(t, err)
	}

	require.NoError(t, repo.RemoveItem(ctx, "s1", "b"))
	require.NoError(t, repo.RemoveItem(ctx, "s1", "missing"))

	cart, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "a", cart.Items[0].ID)
	assert.Equal(t, "c", cart.Items[1].ID)

	assert.ErrorIs(t, repo.RemoveItem(ctx, "other", "a"), ErrCartNotFound)
}

func TestMemory_DeleteCart(t *testing.T) {
	repo := setupMemory(t)
	ctx := context.Background()
	_, _ = repo.AddItem(ctx, "s1", product("a"))

	require.NoError(t, repo.DeleteCart(ctx, "s1"))
	_, err := repo.GetCart(ctx, "s1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	assert.ErrorIs(t, repo.DeleteCart(ctx, "s1"), ErrCartNotFound)
}

func TestMemory_SessionsAreIsolated(t *testing.T) {
	repo := setupMemory(t)
	ctx := context.Background()
	_, _ = repo.AddItem(ctx, "s1", product("a"))
	_, _ = repo.AddItem(ctx, "s2", product("b"))

	c1, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	c2, err := repo.GetCart(ctx, "s2")
	require.NoError(t, err)

	assert.True(t, c1.Contains("a"))
	assert.False(t, c1.Contains("b"))
	assert.True(t, c2.Contains("b"))
}

func TestMemory_ConcurrentAdds_NoDuplicates(t *testing.T) {
	repo := setupMemory(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.AddItem(ctx, "s1", product(fmt.Sprintf("p%d", i%5)))
		}(i)
	}
	wg.Wait()

	cart, err := repo.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 5)
}

func TestMemory_ExpireIdleCarts(t *testing.T) {
	repo := newMemoryRepository(time.Hour, time.Hour)
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()

	_, _ = repo.AddItem(ctx, "stale", product("a"))
	_, _ = repo.AddItem(ctx, "fresh", product("b"))

	repo.expireIdleCarts(time.Now().Add(2 * time.Hour))

	_, err := repo.GetCart(ctx, "stale")
	assert.ErrorIs(t, err, ErrCartNotFound)
	_, err = repo.GetCart(ctx, "fresh")
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, _ = repo.AddItem(ctx, "fresh", product("b"))
	repo.expireIdleCarts(time.Now())
	_, err = repo.GetCart(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemory_BackgroundCleanup(t *testing.T) {
	repo := newMemoryRepository(time.Millisecond, 5*time.Millisecond)
	t.Cleanup(func() { repo.Close() })
	ctx := context.Background()

	_, _ = repo.AddItem(ctx, "s1", product("a"))

	require.Eventually(t, func() bool {
		_, err := repo.GetCart(ctx, "s1")
		return err != nil
	}, time.Second, 10*time.Millisecond, "idle cart was not expired")
}
