package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	Carts     CartService
	Products  ProductCatalog
	Checkouts CheckoutCreator
	Sessions  SessionResolver
	Sink      events.CheckoutSink

	WebhookSecret      string
	Currency           string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	SecureCookies      bool

	Log     logrus.FieldLogger
	Metrics http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	cartHandler := NewCartHandler(cfg.Carts, cfg.Currency, cfg.RequestTimeout, cfg.Log)
	productHandler := NewProductHandler(cfg.Products, cfg.Carts, cfg.Currency, cfg.RequestTimeout, cfg.Log)
	checkoutHandler := NewCheckoutHandler(cfg.Checkouts, cfg.Carts, cfg.RequestTimeout, cfg.Log)
	ordersHandler := NewOrdersHandler(cfg.Sessions)
	webhookHandler := NewWebhookHandler(cfg.WebhookSecret, cfg.Sink, cfg.Log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Get("/success", ordersHandler.Success)

	r.Route("/api/v1", func(r chi.Router) {
		// signature verification needs the raw body
		r.Post("/webhooks/stripe", webhookHandler.Stripe)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Compress(5))
			if cfg.MaxRequestBodySize > 0 {
				r.Use(middleware.RequestSize(cfg.MaxRequestBodySize))
			}
			r.Use(CartSessionMiddleware(cfg.SecureCookies))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.List)
				r.Get("/{id}", productHandler.Get)
				r.Post("/{id}/cart", productHandler.AddToCart)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Get("/items/{id}", cartHandler.ItemExists)
				r.Delete("/items/{id}", cartHandler.RemoveItem)
			})

			r.Post("/checkout", checkoutHandler.CreateCheckout)
		})
	})

	return r
}
