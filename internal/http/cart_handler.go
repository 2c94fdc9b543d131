package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID string, item domain.CartItem) error
	OrderAlreadyExists(ctx context.Context, sessionID string, itemID string) (bool, error)
	RemoveItem(ctx context.Context, sessionID string, itemID string) error
	ClearCart(ctx context.Context, sessionID string) error
}

type CartHandler struct {
	carts    CartService
	validate *validator.Validate
	currency string
	timeout  time.Duration
	log      logrus.FieldLogger
}

func NewCartHandler(carts CartService, currency string, timeout time.Duration, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		carts:    carts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		currency: currency,
		timeout:  timeout,
		log:      log,
	}
}

type CartResponseDTO struct {
	Items          []domain.CartItem `json:"items"`
	Count          int               `json:"count"`
	Total          int64             `json:"total"`
	FormattedTotal string            `json:"formatted_total"`
}

type ExistsResponseDTO struct {
	Exists bool `json:"exists"`
}

func (h *CartHandler) toDTO(cart *domain.Cart) CartResponseDTO {
	return cartDTO(cart, h.currency)
}

func cartDTO(cart *domain.Cart, currency string) CartResponseDTO {
	var total int64
	for _, item := range cart.Items {
		total += item.Price
	}
	items := cart.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartResponseDTO{
		Items:          items,
		Count:          len(items),
		Total:          total,
		FormattedTotal: domain.FormatPrice(total, currency),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	h.respondCart(ctx, w, r, http.StatusOK)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var item domain.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.validate.Struct(item); err != nil {
		var verrs validator.ValidationErrors
		details := err.Error()
		if errors.As(err, &verrs) && len(verrs) > 0 {
			details = verrs[0].Field() + " failed on " + verrs[0].Tag()
		}
		respondErrorDetails(w, http.StatusBadRequest, "invalid_item", "invalid cart item", details)
		return
	}

	if err := h.carts.AddItem(ctx, SessionIDFromContext(r.Context()), item); err != nil {
		h.internalError(w, r, err)
		return
	}

	h.respondCart(ctx, w, r, http.StatusCreated)
}

// GET /api/v1/cart/items/{id}
func (h *CartHandler) ItemExists(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID := chi.URLParam(r, "id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id is required")
		return
	}

	exists, err := h.carts.OrderAlreadyExists(ctx, SessionIDFromContext(r.Context()), itemID)
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, ExistsResponseDTO{Exists: exists})
}

// DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID := chi.URLParam(r, "id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item id is required")
		return
	}

	if err := h.carts.RemoveItem(ctx, SessionIDFromContext(r.Context()), itemID); err != nil {
		h.internalError(w, r, err)
		return
	}

	h.respondCart(ctx, w, r, http.StatusOK)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.carts.ClearCart(ctx, SessionIDFromContext(r.Context())); err != nil {
		h.internalError(w, r, err)
		return
	}

	h.respondCart(ctx, w, r, http.StatusOK)
}

func (h *CartHandler) respondCart(ctx context.Context, w http.ResponseWriter, r *http.Request, status int) {
	cart, err := h.carts.GetCart(ctx, SessionIDFromContext(r.Context()))
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	respondJSON(w, status, h.toDTO(cart))
}

func (h *CartHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context(), h.log).WithError(err).Error("cart operation failed")
	if errors.Is(err, context.DeadlineExceeded) {
		respondError(w, http.StatusGatewayTimeout, "timeout", "cart storage timed out")
		return
	}
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
