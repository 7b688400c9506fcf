// Package geocache is the two-tier geocode cache: a bounded in-process
// map in front of a persistent content-hash-keyed store. For the same
// normalized address, repeated lookups return the same coordinate
// across process restarts, which keeps fees reproducible over time.
package geocache

import (
	"context"
	"log/slog"

	"github.com/jonboulle/clockwork"

	"github.com/cvneat/delivery-quote-service/internal/domain"
	"github.com/cvneat/delivery-quote-service/internal/observability"
)

// TwoTier implements domain.GeoCache.
type TwoTier struct {
	mem     *fifoCache
	store   Store
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// New creates the cache. Pass NullStore for a memory-only cache.
func New(maxEntries int, store Store, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *TwoTier {
	return &TwoTier{
		mem:     newFIFOCache(maxEntries),
		store:   store,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// Lookup checks the in-process tier, then the persistent tier. A
// persistent hit populates the in-process tier and refreshes the
// entry's last-used timestamp best-effort.
func (c *TwoTier) Lookup(ctx context.Context, rawAddress string) (domain.GeocodedAddress, bool) {
	key := domain.CacheKey(rawAddress)
	if key == "" {
		return domain.GeocodedAddress{}, false
	}

	if addr, ok := c.mem.get(key); ok {
		c.metrics.CacheLookups.WithLabelValues("memory", "hit").Inc()
		return addr, true
	}
	c.metrics.CacheLookups.WithLabelValues("memory", "miss").Inc()

	hash := domain.AddressHash(rawAddress)
	addr, found, err := c.store.Get(ctx, hash)
	if err != nil {
		// A broken store must not fail the request; the caller will
		// geocode as if this were a miss.
		c.metrics.CacheLookups.WithLabelValues("store", "error").Inc()
		c.logger.Warn("geocode cache read failed", "address_hash", hash, "error", err)
		return domain.GeocodedAddress{}, false
	}
	if !found {
		c.metrics.CacheLookups.WithLabelValues("store", "miss").Inc()
		return domain.GeocodedAddress{}, false
	}

	c.metrics.CacheLookups.WithLabelValues("store", "hit").Inc()
	addr.LastUsedAt = c.clock.Now().UTC()
	if err := c.store.Touch(ctx, hash, addr.LastUsedAt); err != nil {
		c.logger.Warn("geocode cache touch failed", "address_hash", hash, "error", err)
	}
	c.mem.put(key, addr)
	return addr, true
}

// Store writes the address to both tiers. The persistent write is
// best-effort: on failure the in-process entry still serves subsequent
// calls within this process.
func (c *TwoTier) Store(ctx context.Context, addr domain.GeocodedAddress) {
	key := domain.CacheKey(addr.RawAddress)
	if key == "" || addr.AddressHash == "" {
		return
	}
	if addr.LastUsedAt.IsZero() {
		addr.LastUsedAt = c.clock.Now().UTC()
	}
	addr.Coordinate = addr.Coordinate.Round()

	c.mem.put(key, addr)
	if err := c.store.Put(ctx, addr); err != nil {
		c.logger.Warn("geocode cache write failed", "address_hash", addr.AddressHash, "error", err)
	}
}
