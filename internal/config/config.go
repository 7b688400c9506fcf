package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Geocoding provider.
	NominatimBaseURL string
	GeocodeTimeout   time.Duration

	// Routing provider. Empty base URL disables road distance and the
	// engine bills straight-line distance.
	OSRMBaseURL  string
	RouteTimeout time.Duration

	// Geocode cache.
	CacheMaxEntries int
	// DatabaseDSN enables the persistent cache tier and the restaurant
	// directory. Empty means memory-only cache, no directory.
	DatabaseDSN string

	// Quote events. Empty broker list disables publishing.
	KafkaBrokers    []string
	KafkaQuoteTopic string
}

// Load reads configuration from environment variables, applying
// defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "6s")
	if err != nil {
		return nil, err
	}
	routeTimeout, err := parseDuration("ROUTE_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheMax, err := parsePositiveInt("GEOCACHE_MAX_ENTRIES", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NominatimBaseURL: envOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeTimeout:   geocodeTimeout,

		OSRMBaseURL:  os.Getenv("OSRM_BASE_URL"),
		RouteTimeout: routeTimeout,

		CacheMaxEntries: cacheMax,
		DatabaseDSN:     os.Getenv("DATABASE_DSN"),

		KafkaBrokers:    parseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaQuoteTopic: envOrSet("KAFKA_QUOTE_TOPIC", "delivery-quotes"),
	}

	if cfg.NominatimBaseURL == "" {
		return nil, errors.New("NOMINATIM_BASE_URL is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaQuoteTopic == "" {
		return nil, errors.New("KAFKA_QUOTE_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envOrSet applies the fallback only when the variable is absent, so an
// explicit empty value survives to validation.
func envOrSet(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
