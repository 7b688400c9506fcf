package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cvneat/delivery-quote-service/internal/domain"
	"github.com/cvneat/delivery-quote-service/internal/observability"
)

// Client implements domain.RoadRouter against an OSRM routing server.
// Road distance is an accuracy enhancement, never a hard dependency:
// every failure mode degrades to ok=false and the caller bills the
// straight-line distance instead.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	callTimeout time.Duration
	metrics     *observability.Metrics
	logger      *slog.Logger
}

// NewClient creates an OSRM client. An empty baseURL yields an
// unconfigured client whose lookups always report ok=false.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{},
		callTimeout: timeout,
		metrics:     metrics,
		logger:      logger,
	}
}

// DrivingDistanceKm returns the driving distance between two points,
// rounded to 0.1 km. ok=false on any failure: unconfigured client,
// timeout, provider error or malformed payload.
func (c *Client) DrivingDistanceKm(ctx context.Context, origin, destination domain.Coordinate) (float64, bool) {
	if c.baseURL == "" {
		return 0, false
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	// OSRM expects lon,lat pairs.
	reqURL := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		c.baseURL, origin.Lng, origin.Lat, destination.Lng, destination.Lat)

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, reqURL, nil)
	if err != nil {
		return c.fail("create request", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail("route request", err)
	}
	defer resp.Body.Close()
	c.metrics.RouteDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		return c.fail("route status", fmt.Errorf("status %d", resp.StatusCode))
	}

	var osrmResp response
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		return c.fail("decode response", err)
	}
	if osrmResp.Code != "Ok" || len(osrmResp.Routes) == 0 {
		return c.fail("no route", fmt.Errorf("code %q, %d routes", osrmResp.Code, len(osrmResp.Routes)))
	}

	c.metrics.RouteRequests.WithLabelValues("success").Inc()
	return domain.RoundKm(osrmResp.Routes[0].Distance / 1000), true
}

func (c *Client) fail(stage string, err error) (float64, bool) {
	c.metrics.RouteRequests.WithLabelValues("fallback").Inc()
	c.logger.Warn("road distance unavailable, falling back to straight line",
		"stage", stage, "error", err)
	return 0, false
}

// OSRM API response types.

type response struct {
	Code   string  `json:"code"`
	Routes []route `json:"routes"`
}

type route struct {
	Distance float64 `json:"distance"` // meters
}
