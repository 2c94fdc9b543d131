package payments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/circuitbreaker"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/product"
)

// Provider is the slice of the payments API the storefront uses.
type Provider interface {
	GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetProduct(ctx context.Context, id string) (*stripe.Product, error)
	ListProducts(ctx context.Context) ([]*stripe.Product, error)
}

type Config struct {
	SecretKey string
	Timeout   time.Duration
	// BackendURL overrides the API host, used against fake servers
	BackendURL        string
	HTTPClient        *http.Client
	MaxNetworkRetries int64
	Breaker           circuitbreaker.Config
}

func DefaultConfig(secretKey string, timeout time.Duration) Config {
	return Config{
		SecretKey:         secretKey,
		Timeout:           timeout,
		MaxNetworkRetries: 1,
		Breaker:           circuitbreaker.DefaultConfig("stripe"),
	}
}

type StripeClient struct {
	sessions *session.Client
	products *product.Client
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker[any]
	metrics  *metrics.Metrics
}

func NewStripeClient(cfg Config, log logrus.FieldLogger, m *metrics.Metrics) *StripeClient {
	backendCfg := &stripe.BackendConfig{
		LeveledLogger:     log,
		MaxNetworkRetries: stripe.Int64(cfg.MaxNetworkRetries),
	}
	if cfg.BackendURL != "" {
		backendCfg.URL = stripe.String(cfg.BackendURL)
	}
	if cfg.HTTPClient != nil {
		backendCfg.HTTPClient = cfg.HTTPClient
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	breakerCfg := cfg.Breaker
	breakerCfg.Ignore = func(err error) bool { return errors.Is(err, ErrNotFound) }

	return &StripeClient{
		sessions: &session.Client{B: backend, Key: cfg.SecretKey},
		products: &product.Client{B: backend, Key: cfg.SecretKey},
		timeout:  cfg.Timeout,
		breaker:  circuitbreaker.New[any](breakerCfg, log),
		metrics:  m,
	}
}

// GetCheckoutSession fetches a session with its line items and their products expanded.
func (c *StripeClient) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	return call(ctx, c, "get_checkout_session", func(ctx context.Context) (*stripe.CheckoutSession, error) {
		params := &stripe.CheckoutSessionParams{}
		params.Context = ctx
		params.AddExpand("line_items")
		params.AddExpand("line_items.data.price.product")
		return c.sessions.Get(id, params)
	})
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return call(ctx, c, "create_checkout_session", func(ctx context.Context) (*stripe.CheckoutSession, error) {
		params.Context = ctx
		return c.sessions.New(params)
	})
}

func (c *StripeClient) GetProduct(ctx context.Context, id string) (*stripe.Product, error) {
	return call(ctx, c, "get_product", func(ctx context.Context) (*stripe.Product, error) {
		params := &stripe.ProductParams{}
		params.Context = ctx
		params.AddExpand("default_price")
		return c.products.Get(id, params)
	})
}

// ListProducts returns the active products with default prices expanded.
func (c *StripeClient) ListProducts(ctx context.Context) ([]*stripe.Product, error) {
	return call(ctx, c, "list_products", func(ctx context.Context) ([]*stripe.Product, error) {
		params := &stripe.ProductListParams{Active: stripe.Bool(true)}
		params.Context = ctx
		params.AddExpand("data.default_price")

		var out []*stripe.Product
		it := c.products.List(params)
		for it.Next() {
			out = append(out, it.Product())
		}
		return out, it.Err()
	})
}

// call runs fn under the provider timeout and circuit breaker and classifies its error.
func call[T any](ctx context.Context, c *StripeClient, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	v, err := c.breaker.Execute(func() (any, error) {
		res, err := fn(ctx)
		if err != nil {
			return nil, classify(err)
		}
		return res, nil
	})
	c.metrics.ProviderLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		if circuitbreaker.IsOpen(err) {
			return zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return zero, err
	}
	return v.(T), nil
}

func classify(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch {
		case se.HTTPStatusCode == http.StatusNotFound, se.Code == stripe.ErrorCodeResourceMissing:
			return fmt.Errorf("%w: %s", ErrNotFound, se.Msg)
		case se.Type == stripe.ErrorTypeInvalidRequest && se.HTTPStatusCode == http.StatusBadRequest:
			// malformed ids are reported as invalid requests
			return fmt.Errorf("%w: %s", ErrNotFound, se.Msg)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
