package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the
// delivery-fee engine.
type Metrics struct {
	// Quote outcomes.
	QuotesTotal   *prometheus.CounterVec // labels: outcome={deliverable,excluded,too_far,not_found,invalid,provider_error}
	QuoteDuration prometheus.Histogram

	// Geocoding.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,empty,error}
	GeocodeDuration prometheus.Histogram

	// Cache.
	CacheLookups *prometheus.CounterVec // labels: tier={memory,store}, result={hit,miss,error}

	// Road distance.
	RouteRequests *prometheus.CounterVec // labels: outcome={success,fallback}
	RouteDuration prometheus.Histogram

	// Quote events.
	EventsPublished prometheus.Counter
	EventErrors     prometheus.Counter
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.QuotesTotal,
		m.QuoteDuration,
		m.GeocodeRequests,
		m.GeocodeDuration,
		m.CacheLookups,
		m.RouteRequests,
		m.RouteDuration,
		m.EventsPublished,
		m.EventErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		QuotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delivery_quote",
			Name:      "quotes_total",
			Help:      "Delivery quotes by outcome.",
		}, []string{"outcome"}),
		QuoteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "delivery_quote",
			Name:      "quote_duration_seconds",
			Help:      "End-to-end quote resolution duration.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delivery_quote",
			Name:      "geocode_requests_total",
			Help:      "Geocoding variant attempts by outcome.",
		}, []string{"outcome"}),
		GeocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "delivery_quote",
			Name:      "geocode_duration_seconds",
			Help:      "Geocoding provider request duration.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delivery_quote",
			Name:      "geocache_lookups_total",
			Help:      "Geocode cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		RouteRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "delivery_quote",
			Name:      "route_requests_total",
			Help:      "Road distance requests by outcome.",
		}, []string{"outcome"}),
		RouteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "delivery_quote",
			Name:      "route_duration_seconds",
			Help:      "Routing provider request duration.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delivery_quote",
			Name:      "events_published_total",
			Help:      "Quote events published to the sink topic.",
		}),
		EventErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "delivery_quote",
			Name:      "event_errors_total",
			Help:      "Quote event publish failures.",
		}),
	}
}
