package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/payments"
	"github.com/stripe/stripe-go/v81"
)

// ProductSource reads products with their default price expanded.
type ProductSource interface {
	GetProduct(ctx context.Context, id string) (*stripe.Product, error)
	ListProducts(ctx context.Context) ([]*stripe.Product, error)
}

// ProductResolver builds product page props from the payments provider catalogue
type ProductResolver struct {
	source ProductSource
}

func NewProductResolver(source ProductSource) *ProductResolver {
	return &ProductResolver{source: source}
}

// Resolve returns the product page props. Products without a default price
// cannot be bought and are reported as not found.
func (r *ProductResolver) Resolve(ctx context.Context, id string) (*domain.Product, error) {
	p, err := r.source.GetProduct(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}

	product, ok := toDomain(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no default price", ErrProductNotFound, id)
	}
	return product, nil
}

// List returns the purchasable products in provider order.
func (r *ProductResolver) List(ctx context.Context) ([]domain.Product, error) {
	products, err := r.source.ListProducts(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if product, ok := toDomain(p); ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func toDomain(p *stripe.Product) (*domain.Product, bool) {
	if p == nil || p.DefaultPrice == nil || p.DefaultPrice.ID == "" {
		return nil, false
	}

	var imageURL string
	if len(p.Images) > 0 {
		imageURL = p.Images[0]
	}

	return &domain.Product{
		ID:             p.ID,
		Name:           p.Name,
		ImageURL:       imageURL,
		Price:          p.DefaultPrice.UnitAmount,
		Description:    p.Description,
		DefaultPriceID: p.DefaultPrice.ID,
	}, true
}

func mapError(err error) error {
	if errors.Is(err, payments.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrProductNotFound, err)
	}
	return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}
