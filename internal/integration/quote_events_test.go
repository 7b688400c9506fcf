//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	kafkaadapter "github.com/cvneat/delivery-quote-service/internal/adapter/kafka"
	"github.com/cvneat/delivery-quote-service/internal/domain"
	"github.com/cvneat/delivery-quote-service/internal/observability"
)

const testQuoteTopic = "test-delivery-quotes"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka broker in a container and returns
// its bootstrap address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestQuotePublisherRoundTrip verifies that a published quote arrives on
// the topic with the expected key, headers and payload.
func TestQuotePublisherRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testQuoteTopic)

	now := time.Date(2025, 3, 14, 11, 30, 0, 0, time.UTC)
	publisher := kafkaadapter.NewPublisher(
		[]string{broker},
		testQuoteTopic,
		clockwork.NewFakeClockAt(now),
		observability.NewMetricsForTesting(),
		discardLogger(),
	)
	t.Cleanup(func() { _ = publisher.Close() })

	quote := domain.DeliveryQuote{
		Deliverable:       true,
		DistanceKm:        1.8,
		DistanceSource:    domain.SourceRoute,
		FeeEUR:            5.00,
		Zone:              domain.ZoneInnerRing,
		ClientAddressHash: "cafe0123cafe0123cafe0123cafe0123",
	}
	publisher.PublishQuote(ctx, "rest-1", quote)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testQuoteTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from quote topic")

	assert.Equal(t, []byte("cafe0123cafe0123cafe0123cafe0123"), msg.Key)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "true", headers["deliverable"])
	assert.Equal(t, "route", headers["distance_source"])

	var event kafkaadapter.QuoteEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "cafe0123cafe0123cafe0123cafe0123", event.AddressHash)
	assert.True(t, event.Deliverable)
	assert.Equal(t, 1.8, event.DistanceKm)
	assert.Equal(t, 5.00, event.FeeEUR)
	assert.Equal(t, "inner_ring", event.Zone)
	assert.Equal(t, "rest-1", event.RestaurantID)
	assert.Equal(t, "2025-03-14T11:30:00Z", event.QuotedAt)
}
