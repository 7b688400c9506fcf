package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cvneat/delivery-quote-service/internal/domain"
	"github.com/cvneat/delivery-quote-service/internal/observability"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// userAgent identifies the service per the Nominatim usage policy.
const userAgent = "CVNeat-Delivery/1.0"

// Client implements domain.Geocoder against the Nominatim search API.
// It tries query variants in order and returns the first match; a
// variant that times out or errors falls through to the next one.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	callTimeout time.Duration
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates a Nominatim client. timeout applies per variant
// call, not to the whole Resolve.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{},
		callTimeout: timeout,
		metrics:     metrics,
		logger:      logger,
	}
}

// Resolve tries each variant sequentially and returns the first hit.
// When every variant misses: domain.ErrProviderUnavailable if at least
// one attempt failed at the transport level, domain.ErrAddressNotFound
// otherwise.
func (c *Client) Resolve(ctx context.Context, variants []string) (domain.GeocodeResult, error) {
	if len(variants) == 0 {
		return domain.GeocodeResult{}, domain.ErrAddressNotFound
	}

	transportFailed := false
	for _, variant := range variants {
		result, err := c.search(ctx, variant)
		if err != nil {
			if ctx.Err() != nil {
				return domain.GeocodeResult{}, fmt.Errorf("geocode canceled: %w", ctx.Err())
			}
			// Timeouts and provider errors are tolerated per variant;
			// the next reduction of the address may still resolve.
			transportFailed = true
			c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
			c.logger.Warn("geocode variant failed", "variant", variant, "error", err)
			continue
		}
		if result == nil {
			c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
			continue
		}
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
		return *result, nil
	}

	if transportFailed {
		return domain.GeocodeResult{}, domain.ErrProviderUnavailable
	}
	return domain.GeocodeResult{}, domain.ErrAddressNotFound
}

// search runs one variant against the provider. A nil result with nil
// error means "no match".
func (c *Client) search(ctx context.Context, query string) (*domain.GeocodeResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	params := url.Values{
		"format":         {"json"},
		"q":              {query},
		"limit":          {"1"},
		"countrycodes":   {"fr"},
		"addressdetails": {"1"},
	}
	reqURL := c.baseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.GeocodeDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("nominatim status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	p := places[0]
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lat %q: %w", p.Lat, err)
	}
	lng, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lon %q: %w", p.Lon, err)
	}
	coord := domain.Coordinate{Lat: lat, Lng: lng}
	if !coord.Valid() {
		return nil, fmt.Errorf("coordinate out of range: %v", coord)
	}

	return &domain.GeocodeResult{
		Coordinate:  coord.Round(),
		DisplayName: p.DisplayName,
		PostalCode:  p.Address.Postcode,
		City:        firstNonEmpty(p.Address.Village, p.Address.Town, p.Address.City),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Nominatim API response types.

type place struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Address     address `json:"address"`
}

type address struct {
	Postcode string `json:"postcode"`
	Village  string `json:"village"`
	Town     string `json:"town"`
	City     string `json:"city"`
}
