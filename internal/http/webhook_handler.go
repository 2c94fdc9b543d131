package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

const maxWebhookBodyBytes = int64(65536)

type WebhookHandler struct {
	secret string
	sink   events.CheckoutSink
	log    logrus.FieldLogger
}

func NewWebhookHandler(secret string, sink events.CheckoutSink, log logrus.FieldLogger) *WebhookHandler {
	return &WebhookHandler{secret: secret, sink: sink, log: log}
}

// POST /api/v1/webhooks/stripe
func (h *WebhookHandler) Stripe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.log)

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "invalid_request", "could not read body")
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.WithError(err).Warn("webhook signature verification failed")
		respondError(w, http.StatusBadRequest, "invalid_signature", "signature verification failed")
		return
	}

	log = log.WithFields(logrus.Fields{"event_id": event.ID, "event_type": string(event.Type)})

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
	default:
		log.Debug("unhandled event type")
		respondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		log.WithError(err).Error("failed to unmarshal checkout session")
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid event payload")
		return
	}

	// completed but still awaiting an async payment; the succeeded event follows
	if cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		respondJSON(w, http.StatusOK, map[string]string{"status": "pending"})
		return
	}
	if cs.ClientReferenceID == "" {
		log.WithField("checkout_id", cs.ID).Warn("checkout without cart session")
		respondJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	err = h.sink.CheckoutCompleted(r.Context(), events.CheckoutCompletedEvent{
		CheckoutID:  cs.ID,
		SessionID:   cs.ClientReferenceID,
		CompletedAt: time.Unix(event.Created, 0).UTC(),
	})
	if err != nil {
		// non-2xx makes the provider retry the delivery
		log.WithError(err).Error("checkout completion not recorded")
		respondError(w, http.StatusInternalServerError, "internal_error", "could not record checkout")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}
