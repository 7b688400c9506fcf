// Package kafka publishes resolved delivery quotes as events for
// downstream consumers (analytics, order pricing audits).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/cvneat/delivery-quote-service/internal/domain"
	"github.com/cvneat/delivery-quote-service/internal/observability"
)

// QuoteEvent is the wire shape of a published quote.
type QuoteEvent struct {
	AddressHash    string  `json:"address_hash"`
	Deliverable    bool    `json:"deliverable"`
	DistanceKm     float64 `json:"distance_km"`
	DistanceSource string  `json:"distance_source"`
	FeeEUR         float64 `json:"fee_eur"`
	Zone           string  `json:"zone,omitempty"`
	Reason         string  `json:"reason,omitempty"`
	RestaurantID   string  `json:"restaurant_id,omitempty"`
	QuotedAt       string  `json:"quoted_at"`
}

// Publisher produces quote events to a Kafka topic.
type Publisher struct {
	writer  *kafkago.Writer
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Kafka producer for the quote topic.
func NewPublisher(brokers []string, topic string, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, clock: clock, metrics: metrics, logger: logger}
}

// PublishQuote serializes and publishes a resolved quote. Publishing is
// best-effort: failures are logged and counted, never surfaced to the
// caller, so a broker outage cannot block quoting.
func (p *Publisher) PublishQuote(ctx context.Context, restaurantID string, quote domain.DeliveryQuote) {
	msg, err := p.serializeQuote(restaurantID, quote)
	if err != nil {
		p.metrics.EventErrors.Inc()
		p.logger.Warn("serialize quote event", "error", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.metrics.EventErrors.Inc()
		p.logger.Warn("publish quote event", "error", err)
		return
	}
	p.metrics.EventsPublished.Inc()
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) serializeQuote(restaurantID string, quote domain.DeliveryQuote) (kafkago.Message, error) {
	event := QuoteEvent{
		AddressHash:    quote.ClientAddressHash,
		Deliverable:    quote.Deliverable,
		DistanceKm:     quote.DistanceKm,
		DistanceSource: string(quote.DistanceSource),
		FeeEUR:         quote.FeeEUR,
		Zone:           quote.Zone,
		Reason:         quote.Reason,
		RestaurantID:   restaurantID,
		QuotedAt:       p.clock.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize quote event: %w", err)
	}
	deliverable := "false"
	if quote.Deliverable {
		deliverable = "true"
	}
	return kafkago.Message{
		Key:   []byte(quote.ClientAddressHash),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "deliverable", Value: []byte(deliverable)},
			{Key: "distance_source", Value: []byte(quote.DistanceSource)},
		},
	}, nil
}
