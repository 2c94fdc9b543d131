package checkout

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stripe/stripe-go/v81"
)

// SessionCreator opens a hosted checkout session.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type Creator struct {
	provider SessionCreator
	baseURL  string
}

func NewCreator(provider SessionCreator, baseURL string) *Creator {
	return &Creator{provider: provider, baseURL: baseURL}
}

// Create opens a payment-mode checkout for the cart items and returns the
// hosted page URL. The cart session id travels as client_reference_id so the
// completion webhook can find the cart again.
func (c *Creator) Create(ctx context.Context, sessionID string, items []domain.CartItem) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(items))
	for _, item := range items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(item.DefaultPriceID),
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		SuccessURL:        stripe.String(c.baseURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:         stripe.String(c.baseURL + "/"),
		ClientReferenceID: stripe.String(sessionID),
	}

	cs, err := c.provider.CreateCheckoutSession(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return cs.URL, nil
}
