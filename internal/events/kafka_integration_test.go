package events

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/metrics"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

func setupKafka(t *testing.T) (string, func()) {
	if testing.Short() {
		t.Skip("skipping Kafka container test in short mode")
	}
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := testcontainers.TerminateContainer(kafkaContainer); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func createTopic(t *testing.T, brokerAddr, topic string) {
	conn, err := kafkaGo.Dial("tcp", brokerAddr)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkaGo.Dial("tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	require.NoError(t, err)
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafkaGo.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	if err != nil {
		t.Logf("topic creation error (may already exist): %v", err)
	}
}

func TestPublisherToPoller_ClearsCart(t *testing.T) {
	broker, cleanup := setupKafka(t)
	defer cleanup()
	topic := "checkout-completed"
	createTopic(t, broker, topic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	clearer := &mockClearer{}
	poller := NewPoller(clearer, []string{broker}, topic, quietLogger(), m)
	defer poller.Close()
	go poller.Run(ctx)

	publisher := NewPublisher([]string{broker}, topic, quietLogger(), m)
	defer publisher.Close()

	err := publisher.CheckoutCompleted(ctx, CheckoutCompletedEvent{
		CheckoutID:  "cs_test_1",
		SessionID:   "sess-1",
		CompletedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(clearer.clearedSessions()) == 1
	}, 30*time.Second, 500*time.Millisecond)
	assert.Equal(t, []string{"sess-1"}, clearer.clearedSessions())
}
