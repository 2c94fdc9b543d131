package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/fjod/go_cart/storefront/internal/payments"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
)

// SessionGetter fetches a checkout session with line items and products expanded.
type SessionGetter interface {
	GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error)
}

type Resolver struct {
	provider SessionGetter
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

func NewResolver(provider SessionGetter, log logrus.FieldLogger, m *metrics.Metrics) *Resolver {
	return &Resolver{
		provider: provider,
		log:      log,
		metrics:  m,
	}
}

// Resolve turns a session id from the success page query into page props.
// An empty id redirects home without calling the provider.
func (r *Resolver) Resolve(ctx context.Context, sessionID string) Result {
	res := r.resolve(ctx, sessionID)
	r.metrics.CheckoutResults.WithLabelValues(res.Outcome.String()).Inc()

	if res.Err != nil {
		logger.FromContext(ctx, r.log).WithFields(logrus.Fields{
			"checkout_session": sessionID,
			"outcome":          res.Outcome.String(),
		}).WithError(res.Err).Warn("checkout session not rendered")
	}
	return res
}

func (r *Resolver) resolve(ctx context.Context, sessionID string) Result {
	if sessionID == "" {
		return redirectHome()
	}

	cs, err := r.provider.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payments.ErrNotFound) {
			return failed(OutcomeNotFound, fmt.Errorf("%w: %v", ErrSessionNotFound, err))
		}
		return failed(OutcomeUnavailable, fmt.Errorf("%w: %v", ErrProviderUnavailable, err))
	}

	summary, err := ParseSession(cs)
	if err != nil {
		return failed(OutcomeUnavailable, err)
	}
	return rendered(summary)
}
