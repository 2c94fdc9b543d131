package events

import (
	"context"
	"errors"
	"time"

	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	readRetryDelay   = time.Second
	handleRetryDelay = 2 * time.Second
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Poller consumes checkout events and clears the matching carts.
// An offset is committed only once its cart was cleared or the event was
// found unprocessable, so a failing clear is retried rather than lost.
type Poller struct {
	reader     messageReader
	carts      CartClearer
	log        logrus.FieldLogger
	metrics    *metrics.Metrics
	retryDelay time.Duration
}

func NewPoller(carts CartClearer, brokers []string, topic string, log logrus.FieldLogger, m *metrics.Metrics) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  "storefront-cart-cleaner",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{reader: reader, carts: carts, log: log, metrics: m, retryDelay: handleRetryDelay}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := p.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			p.log.WithError(err).Error("fetch checkout event failed")
			select {
			case <-time.After(readRetryDelay):
			case <-ctx.Done():
				return
			}
			continue
		}

		if !p.process(ctx, m) {
			return
		}

		if err := p.reader.CommitMessages(ctx, m); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.WithError(err).WithFields(logrus.Fields{
				"partition": m.Partition,
				"offset":    m.Offset,
			}).Error("commit checkout event failed")
		}
	}
}

// process handles m until it succeeds or turns out to be invalid. It returns
// false when ctx ends first, leaving the message uncommitted.
func (p *Poller) process(ctx context.Context, m kafka.Message) bool {
	for {
		err := p.handleMessage(ctx, m)
		p.metrics.CheckoutEvents.WithLabelValues("consume", metrics.Result(err)).Inc()
		if err == nil {
			return true
		}

		log := p.log.WithError(err).WithFields(logrus.Fields{
			"partition": m.Partition,
			"offset":    m.Offset,
		})
		if errors.Is(err, ErrInvalidEvent) {
			log.Error("dropping invalid checkout event")
			return true
		}
		log.Warn("handle checkout event failed, retrying")

		select {
		case <-time.After(p.retryDelay):
		case <-ctx.Done():
			return false
		}
	}
}

func (p *Poller) handleMessage(ctx context.Context, m kafka.Message) error {
	if t := eventType(m); t != "" && t != EventTypeCheckoutCompleted {
		p.log.WithField("event_type", t).Debug("skipping event")
		return nil
	}

	ev, err := decodeCheckoutCompleted(m.Value)
	if err != nil {
		return err
	}

	if err := p.carts.ClearCart(ctx, ev.SessionID); err != nil {
		return err
	}

	p.log.WithFields(logrus.Fields{
		"checkout_id": ev.CheckoutID,
		"session_id":  ev.SessionID,
	}).Info("cart cleared after checkout")
	return nil
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.log.WithError(err).Warn("error closing reader")
	}
}
