package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes checkout events to Kafka, keyed by cart session.
type Publisher struct {
	writer  messageWriter
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

func NewPublisher(brokers []string, topic string, log logrus.FieldLogger, m *metrics.Metrics) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
	}
	return &Publisher{writer: w, log: log, metrics: m}
}

func (p *Publisher) CheckoutCompleted(ctx context.Context, ev CheckoutCompletedEvent) error {
	err := p.publish(ctx, ev)
	p.metrics.CheckoutEvents.WithLabelValues("publish", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	logger.FromContext(ctx, p.log).WithFields(logrus.Fields{
		"checkout_id": ev.CheckoutID,
		"session_id":  ev.SessionID,
	}).Info("checkout event published")
	return nil
}

func (p *Publisher) publish(ctx context.Context, ev CheckoutCompletedEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal checkout event failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.SessionID), // one partition per cart keeps events ordered
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeCheckoutCompleted)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write checkout event failed: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
