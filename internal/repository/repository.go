package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("item not found in cart")
)

// CartRepository defines the interface for cart data operations
// Consumers define this interface, not the MongoDB implementation
type CartRepository interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	// AddItem stores item unless the cart already holds its ID and reports
	// whether the cart changed.
	AddItem(ctx context.Context, sessionID string, item domain.CartItem) (bool, error)
	RemoveItem(ctx context.Context, sessionID string, itemID string) error
	DeleteCart(ctx context.Context, sessionID string) error
}
