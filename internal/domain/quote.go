package domain

import (
	"context"
	"time"
)

// GeocodedAddress is a resolved address as stored in the geocode cache.
// Identity is AddressHash; entries are immutable once written apart
// from LastUsedAt.
type GeocodedAddress struct {
	AddressHash string     `json:"address_hash"`
	RawAddress  string     `json:"raw_address"`
	Coordinate  Coordinate `json:"coordinate"`
	PostalCode  string     `json:"postal_code,omitempty"`
	City        string     `json:"city,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	LastUsedAt  time.Time  `json:"last_used_at"`
}

// QuoteRequest is one delivery-fee resolution request.
type QuoteRequest struct {
	DeliveryAddress   string
	RestaurantID      string
	RestaurantAddress string
	OrderAmount       float64
}

// DeliveryQuote is the computed result. Ephemeral; the caller persists
// it onto the order if needed.
type DeliveryQuote struct {
	Deliverable          bool           `json:"deliverable"`
	DistanceKm           float64        `json:"distance_km"`
	DistanceSource       DistanceSource `json:"distance_source,omitempty"`
	FeeEUR               float64        `json:"fee_eur"`
	Zone                 string         `json:"zone,omitempty"`
	RestaurantCoordinate Coordinate     `json:"restaurant_coordinate"`
	ClientCoordinate     Coordinate     `json:"client_coordinate"`
	ClientAddressHash    string         `json:"client_address_hash,omitempty"`
	DisplayName          string         `json:"display_name,omitempty"`
	EstimatedMinutes     int            `json:"estimated_minutes,omitempty"`
	OrderAmount          float64        `json:"order_amount,omitempty"`
	Reason               string         `json:"reason,omitempty"`
	Suggestions          []string       `json:"suggestions,omitempty"`
}

// GeocodeResult is what a geocoding provider returns for one query.
type GeocodeResult struct {
	Coordinate  Coordinate
	DisplayName string
	PostalCode  string
	City        string
}

// Geocoder resolves an ordered list of query variants to a coordinate.
// Implementations try variants in order and return the first match, or
// ErrAddressNotFound / ErrProviderUnavailable.
type Geocoder interface {
	Resolve(ctx context.Context, variants []string) (GeocodeResult, error)
}

// RoadRouter returns real driving distance between two coordinates.
// ok=false means "no road distance available, fall back to
// straight-line" and is never an error.
type RoadRouter interface {
	DrivingDistanceKm(ctx context.Context, origin, destination Coordinate) (km float64, ok bool)
}

// Restaurant is a pickup location a quote originates from.
type Restaurant struct {
	ID      string
	Name    string
	Address string
	Center  Coordinate
}

// RestaurantDirectory resolves restaurant identifiers to pickup
// locations, returning ErrRestaurantNotFound for unknown ids.
type RestaurantDirectory interface {
	Lookup(ctx context.Context, id string) (Restaurant, error)
}

// QuotePublisher emits resolved quotes to downstream consumers.
// Publishing is best-effort and must never fail the quote.
type QuotePublisher interface {
	PublishQuote(ctx context.Context, restaurantID string, quote DeliveryQuote)
}

// GeoCache stores resolved addresses across requests and restarts.
// Lookup misses are not errors; Store must never block the response on
// failure.
type GeoCache interface {
	Lookup(ctx context.Context, rawAddress string) (GeocodedAddress, bool)
	Store(ctx context.Context, addr GeocodedAddress)
}
