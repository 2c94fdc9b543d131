package repository

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	// IdleCartTTL mirrors the retention of the MongoDB TTL index
	IdleCartTTL = cartRetention

	// CleanupInterval is how often the background cleanup runs
	CleanupInterval = 10 * time.Minute
)

// MemoryRepository implements CartRepository in process memory. Writes are
// serialized by a single mutex, and carts are handed out as copies.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart // sessionID -> cart
	ttl   time.Duration

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewMemoryRepository() *MemoryRepository {
	return newMemoryRepository(IdleCartTTL, CleanupInterval)
}

func newMemoryRepository(ttl, cleanupEvery time.Duration) *MemoryRepository {
	r := &MemoryRepository{
		carts:       make(map[string]*domain.Cart),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	r.wg.Add(1)
	go r.cleanupLoop(cleanupEvery)

	return r
}

func (r *MemoryRepository) cleanupLoop(every time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.expireIdleCarts(time.Now())
		case <-r.stopCleanup:
			return
		}
	}
}

// expireIdleCarts drops carts that have not been written to within the TTL
func (r *MemoryRepository) expireIdleCarts(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for sessionID, cart := range r.carts {
		if now.Sub(cart.UpdatedAt) > r.ttl {
			delete(r.carts, sessionID)
		}
	}
}

func (r *MemoryRepository) GetCart(_ context.Context, sessionID string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[sessionID]
	if !ok {
		return nil, ErrCartNotFound
	}
	return cart.Clone(), nil
}

func (r *MemoryRepository) AddItem(_ context.Context, sessionID string, item domain.CartItem) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[sessionID]
	if !ok {
		cart = domain.NewCart(sessionID)
		r.carts[sessionID] = cart
	}
	return cart.Add(item), nil
}

func (r *MemoryRepository) RemoveItem(_ context.Context, sessionID string, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[sessionID]
	if !ok {
		return ErrCartNotFound
	}
	cart.Remove(itemID)
	return nil
}

func (r *MemoryRepository) DeleteCart(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[sessionID]; !ok {
		return ErrCartNotFound
	}
	delete(r.carts, sessionID)
	return nil
}

// Close stops the background cleanup
func (r *MemoryRepository) Close() error {
	close(r.stopCleanup)
	r.wg.Wait()
	return nil
}
