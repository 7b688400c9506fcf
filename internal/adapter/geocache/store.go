package geocache

import (
	"context"
	"time"

	"github.com/cvneat/delivery-quote-service/internal/domain"
)

// Store is the persistent tier of the geocode cache, keyed by the
// address content hash. Entries are immutable once written apart from
// the last-used timestamp; eviction is an external concern.
type Store interface {
	// Get returns the stored address for a hash, or found=false.
	Get(ctx context.Context, addressHash string) (domain.GeocodedAddress, bool, error)
	// Put upserts one entry.
	Put(ctx context.Context, addr domain.GeocodedAddress) error
	// Touch refreshes the last-used timestamp of an entry.
	Touch(ctx context.Context, addressHash string, usedAt time.Time) error
}

// NullStore is a Store backed by nothing, for deployments without a
// database and for tests of the in-process tier alone.
type NullStore struct{}

func (NullStore) Get(context.Context, string) (domain.GeocodedAddress, bool, error) {
	return domain.GeocodedAddress{}, false, nil
}

func (NullStore) Put(context.Context, domain.GeocodedAddress) error { return nil }

func (NullStore) Touch(context.Context, string, time.Time) error { return nil }
