package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	cache := NewRedisCache(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return cache, mr, cleanup
}

func testCart(sessionID string, ids ...string) *domain.Cart {
	cart := domain.NewCart(sessionID)
	for _, id := range ids {
		cart.Add(domain.CartItem{ID: id, Name: "product " + id, Price: 1000, DefaultPriceID: "price_" + id})
	}
	return cart
}

func TestGet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	sessionID := "session123"

	data, err := domain.EncodeCart(testCart(sessionID, "prod_1", "prod_2"))
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey(sessionID), string(data)))

	result, err := cache.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, sessionID, result.SessionID)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "prod_1", result.Items[0].ID)
	assert.Equal(t, "prod_2", result.Items[1].ID)
}

func TestGet_CacheMiss(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	result, err := cache.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, result)
}

func TestGet_InvalidJSON(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	sessionID := "session123"
	data, err := domain.EncodeCart(testCart(sessionID, "prod_10"))
	require.NoError(t, err)
	require.NoError(t, mr.Set(cacheKey(sessionID), string(data[0:10])))

	_, cacheError := cache.Get(context.Background(), sessionID)
	require.ErrorContains(t, cacheError, "unmarshal cart failed")
}

func TestSet_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	sessionID := "session456"
	err := cache.Set(context.Background(), sessionID, testCart(sessionID, "prod_10"))
	require.NoError(t, err)

	stored, err := mr.Get(cacheKey(sessionID))
	require.NoError(t, err)
	assert.NotEmpty(t, stored)

	storedCart, err := domain.DecodeCart([]byte(stored))
	require.NoError(t, err)
	assert.Equal(t, sessionID, storedCart.SessionID)
	assert.Len(t, storedCart.Items, 1)
}

func TestSet_WithTTL(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	sessionID := "session789"
	err := cache.Set(context.Background(), sessionID, testCart(sessionID))
	require.NoError(t, err)

	ttl := mr.TTL(cacheKey(sessionID))
	assert.True(t, ttl >= 15*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl < 20*time.Minute, "TTL should be below base + max jitter")
}

func TestDelete_Success(t *testing.T) {
	cache, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	sessionID := "session999"
	require.NoError(t, mr.Set(cacheKey(sessionID), `{"session_id":"session999"}`))
	assert.True(t, mr.Exists(cacheKey(sessionID)))

	err := cache.Delete(context.Background(), sessionID)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cacheKey(sessionID)))
}

func TestDelete_NonExistentKey(t *testing.T) {
	cache, _, cleanup := setupTestRedis(t)
	defer cleanup()

	err := cache.Delete(context.Background(), "nonexistent")
	assert.NoError(t, err)
}

func TestCacheKey_Format(t *testing.T) {
	assert.Equal(t, "cart:test123", cacheKey("test123"))
}
