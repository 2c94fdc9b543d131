package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const EventTypeCheckoutCompleted = "checkout.completed"

// ErrInvalidEvent marks payloads that can never be processed, however often they are retried.
var ErrInvalidEvent = errors.New("invalid checkout event")

// CheckoutCompletedEvent is emitted once the provider confirms a paid checkout.
// SessionID is the storefront cart session that started the checkout.
type CheckoutCompletedEvent struct {
	CheckoutID  string    `json:"checkout_id"`
	SessionID   string    `json:"session_id"`
	CompletedAt time.Time `json:"completed_at"`
}

func (e CheckoutCompletedEvent) Validate() error {
	if e.SessionID == "" {
		return fmt.Errorf("checkout %q: missing session_id", e.CheckoutID)
	}
	return nil
}

func decodeCheckoutCompleted(b []byte) (CheckoutCompletedEvent, error) {
	var ev CheckoutCompletedEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return ev, fmt.Errorf("%w: unmarshal failed: %v", ErrInvalidEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	return ev, nil
}

// CheckoutSink receives completed checkouts from the webhook.
type CheckoutSink interface {
	CheckoutCompleted(ctx context.Context, ev CheckoutCompletedEvent) error
}

// CartClearer is the part of the cart service the consumers need.
type CartClearer interface {
	ClearCart(ctx context.Context, sessionID string) error
}

// ClearOnCheckout clears the cart in-process. Used when no broker is configured.
type ClearOnCheckout struct {
	Carts CartClearer
}

func (c ClearOnCheckout) CheckoutCompleted(ctx context.Context, ev CheckoutCompletedEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	return c.Carts.ClearCart(ctx, ev.SessionID)
}
