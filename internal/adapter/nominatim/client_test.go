package nominatim

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

func testClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(baseURL, timeout,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func laroquePlace() []place {
	return []place{{
		Lat:         "43.918843",
		Lon:         "3.714622",
		DisplayName: "Laroque, Hérault, Occitanie, France",
		Address:     address{Postcode: "34190", Village: "Laroque"},
	}}
}

func TestResolve_FirstVariantMatches(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		assert.Equal(t, "fr", r.URL.Query().Get("countrycodes"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "CVNeat-Delivery/1.0", r.Header.Get("User-Agent"))
		require.NoError(t, json.NewEncoder(w).Encode(laroquePlace()))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	result, err := c.Resolve(context.Background(), []string{"28 Lotissement Aubanel, 34190 Laroque, France", "34190, France"})
	require.NoError(t, err)

	assert.Len(t, queries, 1, "stops on first success")
	assert.Equal(t, domain.Coordinate{Lat: 43.919, Lng: 3.715}, result.Coordinate, "rounded to 3 decimals")
	assert.Equal(t, "34190", result.PostalCode)
	assert.Equal(t, "Laroque", result.City)
}

func TestResolve_FallsThroughEmptyResults(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			require.NoError(t, json.NewEncoder(w).Encode([]place{}))
			return
		}
		require.NoError(t, json.NewEncoder(w).Encode(laroquePlace()))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	result, err := c.Resolve(context.Background(), []string{"a, France", "b, France", "c, France"})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "Laroque", result.City)
}

func TestResolve_AllVariantsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]place{}))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.Resolve(context.Background(), []string{"xyzzy", "qwerty"})
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestResolve_TransportFailureSurfacedAsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.Resolve(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestResolve_TimeoutFallsThroughToNextVariant(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			time.Sleep(150 * time.Millisecond)
		}
		require.NoError(t, json.NewEncoder(w).Encode(laroquePlace()))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 50*time.Millisecond)
	result, err := c.Resolve(context.Background(), []string{"slow", "fast"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "Laroque", result.City)
}

func TestResolve_NoVariants(t *testing.T) {
	c := testClient("http://unused.invalid", time.Second)
	_, err := c.Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestResolve_MalformedCoordinateIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]place{{Lat: "not-a-number", Lon: "3.7"}}))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	_, err := c.Resolve(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestResolve_CityFallsBackToTownThenCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]place{{
			Lat: "43.9342", Lon: "3.7098",
			DisplayName: "Ganges, Hérault, France",
			Address:     address{Postcode: "34190", Town: "Ganges"},
		}}))
	}))
	defer srv.Close()

	c := testClient(srv.URL, 5*time.Second)
	result, err := c.Resolve(context.Background(), []string{"Ganges, France"})
	require.NoError(t, err)
	assert.Equal(t, "Ganges", result.City)
}
