package http

import (
	"context"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/checkout"
)

type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) checkout.Result
}

// OrdersHandler serves the checkout success page props.
// The resolver applies the provider timeout itself.
type OrdersHandler struct {
	resolver SessionResolver
}

func NewOrdersHandler(resolver SessionResolver) *OrdersHandler {
	return &OrdersHandler{resolver: resolver}
}

// GET /success?session_id=
func (h *OrdersHandler) Success(w http.ResponseWriter, r *http.Request) {
	res := h.resolver.Resolve(r.Context(), r.URL.Query().Get("session_id"))

	switch res.Outcome {
	case checkout.OutcomeRendered:
		respondJSON(w, http.StatusOK, res.Summary)
	case checkout.OutcomeRedirect:
		status := http.StatusFound
		if res.Permanent {
			status = http.StatusPermanentRedirect
		}
		http.Redirect(w, r, res.RedirectTo, status)
	case checkout.OutcomeNotFound:
		respondError(w, http.StatusNotFound, "not_found", "checkout session not found")
	case checkout.OutcomeUnavailable:
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "could not load order")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
