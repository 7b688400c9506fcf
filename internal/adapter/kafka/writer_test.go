package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvneat/delivery-quote-service/internal/domain"
	"github.com/cvneat/delivery-quote-service/internal/observability"
)

func TestSerializeQuote(t *testing.T) {
	now := time.Date(2025, 3, 14, 11, 30, 0, 0, time.UTC)
	p := &Publisher{
		clock:   clockwork.NewFakeClockAt(now),
		metrics: observability.NewMetricsForTesting(),
	}

	quote := domain.DeliveryQuote{
		Deliverable:       true,
		DistanceKm:        1.8,
		DistanceSource:    domain.SourceRoute,
		FeeEUR:            5.00,
		Zone:              domain.ZoneInnerRing,
		ClientAddressHash: "abc123",
	}

	msg, err := p.serializeQuote("rest-1", quote)
	require.NoError(t, err)

	assert.Equal(t, []byte("abc123"), msg.Key)

	var event QuoteEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "abc123", event.AddressHash)
	assert.True(t, event.Deliverable)
	assert.Equal(t, 1.8, event.DistanceKm)
	assert.Equal(t, "route", event.DistanceSource)
	assert.Equal(t, 5.00, event.FeeEUR)
	assert.Equal(t, "inner_ring", event.Zone)
	assert.Equal(t, "rest-1", event.RestaurantID)
	assert.Equal(t, "2025-03-14T11:30:00Z", event.QuotedAt)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "deliverable", msg.Headers[0].Key)
	assert.Equal(t, []byte("true"), msg.Headers[0].Value)
	assert.Equal(t, "distance_source", msg.Headers[1].Key)
	assert.Equal(t, []byte("route"), msg.Headers[1].Value)
}

func TestSerializeQuoteUndeliverable(t *testing.T) {
	p := &Publisher{
		clock:   clockwork.NewFakeClock(),
		metrics: observability.NewMetricsForTesting(),
	}

	quote := domain.DeliveryQuote{
		Deliverable:       false,
		DistanceKm:        12.4,
		DistanceSource:    domain.SourceStraightLine,
		ClientAddressHash: "def456",
		Reason:            "Adresse trop éloignée",
	}

	msg, err := p.serializeQuote("", quote)
	require.NoError(t, err)

	var event QuoteEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.False(t, event.Deliverable)
	assert.Equal(t, "vol_oiseau", event.DistanceSource)
	assert.Equal(t, "Adresse trop éloignée", event.Reason)
	assert.Empty(t, event.RestaurantID)
	assert.Equal(t, []byte("false"), msg.Headers[0].Value)
}
