package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type ProductCatalog interface {
	Resolve(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

type ProductHandler struct {
	products ProductCatalog
	carts    CartService
	currency string
	timeout  time.Duration
	log      logrus.FieldLogger
}

func NewProductHandler(products ProductCatalog, carts CartService, currency string, timeout time.Duration, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		products: products,
		carts:    carts,
		currency: currency,
		timeout:  timeout,
		log:      log,
	}
}

type ProductDTO struct {
	domain.Product
	FormattedPrice string `json:"formatted_price"`
}

type ProductsResponse struct {
	Products []ProductDTO `json:"products"`
}

type ProductPageResponse struct {
	Product ProductDTO `json:"product"`
	InCart  bool       `json:"in_cart"`
}

func (h *ProductHandler) toDTO(p domain.Product) ProductDTO {
	return ProductDTO{Product: p, FormattedPrice: domain.FormatPrice(p.Price, h.currency)}
}

// GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.products.List(ctx)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}

	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = h.toDTO(p)
	}
	respondJSON(w, http.StatusOK, &ProductsResponse{Products: dtos})
}

// GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id is required")
		return
	}

	product, err := h.products.Resolve(ctx, id)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}

	inCart, err := h.carts.OrderAlreadyExists(ctx, SessionIDFromContext(r.Context()), product.ID)
	if err != nil {
		// render anyway, in_cart stays false
		logger.FromContext(r.Context(), h.log).WithError(err).Warn("cart lookup failed")
	}

	respondJSON(w, http.StatusOK, &ProductPageResponse{
		Product: h.toDTO(*product),
		InCart:  inCart,
	})
}

// POST /api/v1/products/{id}/cart
// Adds the catalogue's current version of the product, so the client never
// supplies prices.
func (h *ProductHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id is required")
		return
	}

	product, err := h.products.Resolve(ctx, id)
	if err != nil {
		h.catalogError(w, r, err)
		return
	}

	sessionID := SessionIDFromContext(r.Context())
	if err := h.carts.AddItem(ctx, sessionID, product.CartItem()); err != nil {
		logger.FromContext(r.Context(), h.log).WithError(err).Error("add product to cart failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	cart, err := h.carts.GetCart(ctx, sessionID)
	if err != nil {
		logger.FromContext(r.Context(), h.log).WithError(err).Error("load cart failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondJSON(w, http.StatusCreated, cartDTO(cart, h.currency))
}

func (h *ProductHandler) catalogError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, catalog.ErrProviderUnavailable):
		logger.FromContext(r.Context(), h.log).WithError(err).Error("catalogue unavailable")
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "product catalogue unavailable")
	default:
		logger.FromContext(r.Context(), h.log).WithError(err).Error("catalogue lookup failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
