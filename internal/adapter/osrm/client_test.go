package osrm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvneat/delivery-quote-service/internal/domain"
	"github.com/cvneat/delivery-quote-service/internal/observability"
)

var (
	ganges  = domain.Coordinate{Lat: 43.9342, Lng: 3.7098}
	laroque = domain.Coordinate{Lat: 43.9188, Lng: 3.7146}
)

func testClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(baseURL, timeout,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestDrivingDistanceKm_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/route/v1/driving/")
		assert.Equal(t, "false", r.URL.Query().Get("overview"))
		require.NoError(t, json.NewEncoder(w).Encode(response{
			Code:   "Ok",
			Routes: []route{{Distance: 2340}},
		}))
	}))
	defer srv.Close()

	km, ok := testClient(srv.URL, 5*time.Second).DrivingDistanceKm(context.Background(), ganges, laroque)
	require.True(t, ok)
	assert.Equal(t, 2.3, km)
}

func TestDrivingDistanceKm_Unconfigured(t *testing.T) {
	_, ok := testClient("", time.Second).DrivingDistanceKm(context.Background(), ganges, laroque)
	assert.False(t, ok)
}

func TestDrivingDistanceKm_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, ok := testClient(srv.URL, 5*time.Second).DrivingDistanceKm(context.Background(), ganges, laroque)
	assert.False(t, ok)
}

func TestDrivingDistanceKm_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(response{Code: "NoRoute"}))
	}))
	defer srv.Close()

	_, ok := testClient(srv.URL, 5*time.Second).DrivingDistanceKm(context.Background(), ganges, laroque)
	assert.False(t, ok)
}

func TestDrivingDistanceKm_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{{{not json"))
	}))
	defer srv.Close()

	_, ok := testClient(srv.URL, 5*time.Second).DrivingDistanceKm(context.Background(), ganges, laroque)
	assert.False(t, ok)
}

func TestDrivingDistanceKm_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(150 * time.Millisecond)
		require.NoError(t, json.NewEncoder(w).Encode(response{Code: "Ok", Routes: []route{{Distance: 1000}}}))
	}))
	defer srv.Close()

	_, ok := testClient(srv.URL, 50*time.Millisecond).DrivingDistanceKm(context.Background(), ganges, laroque)
	assert.False(t, ok)
}
