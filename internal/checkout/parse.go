package checkout

import (
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/stripe/stripe-go/v81"
)

// ParseSession validates a checkout session fetched with line items and
// products expanded, and projects it into the success page summary.
// Missing customer details or a missing name, and empty image lists, are tolerated.
func ParseSession(cs *stripe.CheckoutSession) (*domain.OrderSummary, error) {
	if cs == nil {
		return nil, fmt.Errorf("%w: nil session", ErrMalformedSession)
	}
	if cs.LineItems == nil {
		return nil, fmt.Errorf("%w: line_items not present", ErrMalformedSession)
	}

	summary := &domain.OrderSummary{
		Products: make([]domain.PurchasedProduct, 0, len(cs.LineItems.Data)),
	}

	if cs.CustomerDetails != nil && cs.CustomerDetails.Name != "" {
		name := cs.CustomerDetails.Name
		summary.CustomerName = &name
	}

	for i, li := range cs.LineItems.Data {
		if li == nil || li.Price == nil {
			return nil, fmt.Errorf("%w: line item %d has no price", ErrMalformedSession, i)
		}
		p := li.Price.Product
		if !productExpanded(p) {
			return nil, fmt.Errorf("%w: line item %d product not expanded", ErrMalformedSession, i)
		}

		var imageURL string
		if len(p.Images) > 0 {
			imageURL = p.Images[0]
		}

		summary.Products = append(summary.Products, domain.PurchasedProduct{
			ID:       p.ID,
			Name:     p.Name,
			ImageURL: imageURL,
			Quantity: li.Quantity,
		})
	}

	return summary, nil
}

// an unexpanded product decodes from a bare id string and carries nothing else
func productExpanded(p *stripe.Product) bool {
	return p != nil && p.ID != "" && (p.Object != "" || p.Name != "")
}
