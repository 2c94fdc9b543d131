package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/sirupsen/logrus"
)

type CheckoutCreator interface {
	Create(ctx context.Context, sessionID string, items []domain.CartItem) (string, error)
}

type CheckoutHandler struct {
	creator CheckoutCreator
	carts   CartService
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewCheckoutHandler(creator CheckoutCreator, carts CartService, timeout time.Duration, log logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{
		creator: creator,
		carts:   carts,
		timeout: timeout,
		log:     log,
	}
}

type CheckoutResponseDTO struct {
	CheckoutURL string `json:"checkout_url"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sessionID := SessionIDFromContext(r.Context())
	cart, err := h.carts.GetCart(ctx, sessionID)
	if err != nil {
		logger.FromContext(r.Context(), h.log).WithError(err).Error("load cart for checkout failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	url, err := h.creator.Create(ctx, sessionID, cart.Items)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			respondError(w, http.StatusBadRequest, "empty_cart", err.Error())
			return
		}
		logger.FromContext(r.Context(), h.log).WithError(err).Error("create checkout session failed")
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "payments provider unavailable")
		return
	}

	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{CheckoutURL: url})
}
