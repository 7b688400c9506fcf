// Package service orchestrates delivery-fee resolution: address
// normalization, cached geocoding, zone matching and fee computation.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cvneat/delivery-quote-service/internal/domain"
	"github.com/cvneat/delivery-quote-service/internal/observability"
)

// Quote outcome labels for metrics.
const (
	outcomeDeliverable   = "deliverable"
	outcomeExcluded      = "excluded"
	outcomeTooFar        = "too_far"
	outcomeNotFound      = "not_found"
	outcomeInvalid       = "invalid"
	outcomeProviderError = "provider_error"
)

// baseMinutes and minutesPerKm feed the courier ETA estimate shown to
// customers. Crude on purpose: prep time dominates in a small town.
const (
	baseMinutes  = 15.0
	minutesPerKm = 3.0
)

// DeliveryQuoteService resolves delivery addresses to fee quotes.
type DeliveryQuoteService struct {
	geocoder  domain.Geocoder
	router    domain.RoadRouter
	cache     domain.GeoCache
	directory domain.RestaurantDirectory
	publisher domain.QuotePublisher
	logger    *slog.Logger
	metrics   *observability.Metrics

	providerDown atomic.Bool
}

// New creates a DeliveryQuoteService. publisher may be nil when quote
// events are disabled.
func New(
	geocoder domain.Geocoder,
	router domain.RoadRouter,
	cache domain.GeoCache,
	directory domain.RestaurantDirectory,
	publisher domain.QuotePublisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *DeliveryQuoteService {
	return &DeliveryQuoteService{
		geocoder:  geocoder,
		router:    router,
		cache:     cache,
		directory: directory,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil while the geocoding provider is believed
// healthy, or an error after the most recent resolution failed with a
// provider outage.
func (s *DeliveryQuoteService) CheckReadiness(_ context.Context) error {
	if s.providerDown.Load() {
		return errors.New("geocoding provider unavailable")
	}
	return nil
}

// Quote resolves one delivery-fee request. Business outcomes (address
// not found, excluded zone, too far) come back as an undeliverable
// quote with a nil error; only invalid input and provider outages are
// errors.
func (s *DeliveryQuoteService) Quote(ctx context.Context, req domain.QuoteRequest) (domain.DeliveryQuote, error) {
	timer := prometheus.NewTimer(s.metrics.QuoteDuration)
	defer timer.ObserveDuration()

	addr, err := domain.NormalizeAddress(req.DeliveryAddress)
	if err != nil {
		s.metrics.QuotesTotal.WithLabelValues(outcomeInvalid).Inc()
		return domain.DeliveryQuote{}, err
	}

	origin := s.resolveOrigin(ctx, req)

	client, resolved, err := s.resolveClient(ctx, req.DeliveryAddress, addr)
	if err != nil {
		if errors.Is(err, domain.ErrProviderUnavailable) {
			s.providerDown.Store(true)
			s.metrics.QuotesTotal.WithLabelValues(outcomeProviderError).Inc()
		}
		return domain.DeliveryQuote{}, err
	}
	s.providerDown.Store(false)
	if !resolved {
		quote := s.notFoundQuote(addr, origin)
		quote.OrderAmount = req.OrderAmount
		s.metrics.QuotesTotal.WithLabelValues(outcomeNotFound).Inc()
		s.publish(ctx, req.RestaurantID, quote)
		return quote, nil
	}

	town, hasTown := s.matchZone(addr, client.Coordinate)

	distance, source := s.billedDistance(ctx, origin, client.Coordinate)

	decision := domain.ComputeFee(domain.FeeInput{
		Town:       town,
		HasTown:    hasTown,
		DistanceKm: distance,
		Source:     source,
		PostalCode: addr.PostalCode,
	})

	quote := domain.DeliveryQuote{
		Deliverable:          decision.Deliverable,
		DistanceKm:           distance,
		DistanceSource:       source,
		FeeEUR:               decision.FeeEUR,
		Zone:                 decision.Zone,
		RestaurantCoordinate: origin,
		ClientCoordinate:     client.Coordinate,
		ClientAddressHash:    client.AddressHash,
		DisplayName:          client.DisplayName,
		OrderAmount:          req.OrderAmount,
	}

	switch {
	case decision.Deliverable:
		quote.EstimatedMinutes = estimateMinutes(distance)
		s.metrics.QuotesTotal.WithLabelValues(outcomeDeliverable).Inc()
	case hasTown && town.Excluded:
		quote.Reason = fmt.Sprintf("Zone non desservie : nous ne livrons pas à %s", town.Name)
		quote.Suggestions = serviceAreaSuggestions()
		s.metrics.QuotesTotal.WithLabelValues(outcomeExcluded).Inc()
	default:
		quote.Reason = fmt.Sprintf("Adresse trop éloignée : %.1f km (maximum %.0f km)", distance, decision.CeilingKm)
		quote.Suggestions = serviceAreaSuggestions()
		s.metrics.QuotesTotal.WithLabelValues(outcomeTooFar).Inc()
	}

	s.logger.Info("quote resolved",
		"deliverable", quote.Deliverable,
		"distance_km", quote.DistanceKm,
		"source", quote.DistanceSource,
		"fee_eur", quote.FeeEUR,
		"zone", quote.Zone,
	)

	s.publish(ctx, req.RestaurantID, quote)
	return quote, nil
}

// resolveOrigin picks the pickup coordinate: the restaurant directory
// entry when the id resolves, then the explicit restaurant address,
// then the primary town center.
func (s *DeliveryQuoteService) resolveOrigin(ctx context.Context, req domain.QuoteRequest) domain.Coordinate {
	if req.RestaurantID != "" && s.directory != nil {
		r, err := s.directory.Lookup(ctx, req.RestaurantID)
		if err == nil && r.Center.Valid() && !r.Center.IsZero() {
			return r.Center.Round()
		}
		if err != nil && !errors.Is(err, domain.ErrRestaurantNotFound) {
			s.logger.Warn("restaurant lookup failed", "restaurant_id", req.RestaurantID, "error", err)
		}
	}
	if req.RestaurantAddress != "" {
		if addr, err := domain.NormalizeAddress(req.RestaurantAddress); err == nil {
			if geo, ok, err := s.resolveCoordinate(ctx, req.RestaurantAddress, addr); err == nil && ok {
				return geo.Coordinate
			}
		}
	}
	return domain.PrimaryTown().Center
}

// resolveClient resolves the delivery address to a coordinate. A known
// commune with no street detail short-circuits to the commune center
// without touching the geocoder. resolved=false means the address
// could not be placed anywhere (business outcome, not an error).
func (s *DeliveryQuoteService) resolveClient(ctx context.Context, raw string, addr domain.NormalizedAddress) (domain.GeocodedAddress, bool, error) {
	if !domain.HasStreetDetail(addr.Display) {
		if town, ok := domain.MatchTown(addr.Display); ok {
			return domain.GeocodedAddress{
				AddressHash: domain.AddressHash(raw),
				RawAddress:  addr.Display,
				Coordinate:  town.Center,
				PostalCode:  town.PostalCode,
				City:        town.Key,
				DisplayName: town.Name,
			}, true, nil
		}
	}
	return s.resolveCoordinate(ctx, raw, addr)
}

// resolveCoordinate runs the cache-then-geocoder-then-postal-fallback
// ladder shared by client and restaurant addresses.
func (s *DeliveryQuoteService) resolveCoordinate(ctx context.Context, raw string, addr domain.NormalizedAddress) (domain.GeocodedAddress, bool, error) {
	if cached, ok := s.cache.Lookup(ctx, raw); ok {
		return cached, true, nil
	}

	result, err := s.geocoder.Resolve(ctx, domain.QueryVariants(raw))
	if err == nil {
		geo := domain.GeocodedAddress{
			AddressHash: domain.AddressHash(raw),
			RawAddress:  addr.Display,
			Coordinate:  result.Coordinate,
			PostalCode:  firstNonEmpty(result.PostalCode, addr.PostalCode),
			City:        firstNonEmpty(domain.Fold(result.City), addr.City),
			DisplayName: result.DisplayName,
		}
		s.cache.Store(ctx, geo)
		return geo, true, nil
	}
	if !errors.Is(err, domain.ErrAddressNotFound) {
		return domain.GeocodedAddress{}, false, err
	}

	// Geocoder found nothing but the postal code alone places the
	// address in the service area: bill from the commune centroid.
	if center, ok := domain.PostalFallbacks[addr.PostalCode]; ok {
		s.logger.Info("postal fallback", "postal_code", addr.PostalCode)
		return domain.GeocodedAddress{
			AddressHash: domain.AddressHash(raw),
			RawAddress:  addr.Display,
			Coordinate:  center,
			PostalCode:  addr.PostalCode,
			City:        addr.City,
		}, true, nil
	}

	return domain.GeocodedAddress{}, false, nil
}

// matchZone pins the client to a commune: text match first, then
// snapping the geocoded point to the nearest commune center.
func (s *DeliveryQuoteService) matchZone(addr domain.NormalizedAddress, c domain.Coordinate) (domain.TownCenter, bool) {
	if town, ok := domain.MatchTown(addr.Display); ok {
		return town, true
	}
	return domain.SnapToTown(c)
}

// billedDistance prefers real road distance and degrades to
// straight-line when the router is unavailable.
func (s *DeliveryQuoteService) billedDistance(ctx context.Context, origin, client domain.Coordinate) (float64, domain.DistanceSource) {
	if s.router != nil {
		if km, ok := s.router.DrivingDistanceKm(ctx, origin, client); ok {
			return km, domain.SourceRoute
		}
	}
	return domain.HaversineKm(origin, client), domain.SourceStraightLine
}

func (s *DeliveryQuoteService) notFoundQuote(addr domain.NormalizedAddress, origin domain.Coordinate) domain.DeliveryQuote {
	suggestions := []string{"Vérifiez l'orthographe du nom de rue"}
	if addr.PostalCode == "" {
		suggestions = append(suggestions, "Ajoutez le code postal (34190, 34150 ou 34260)")
	}
	suggestions = append(suggestions, "Essayez le format : numéro, rue, code postal, commune")
	return domain.DeliveryQuote{
		Deliverable:          false,
		RestaurantCoordinate: origin,
		Reason:               "Adresse introuvable",
		Suggestions:          suggestions,
	}
}

func serviceAreaSuggestions() []string {
	return []string{
		"Zones desservies : Ganges, Laroque, Saint-Bauzille-de-Putois, Sumène et alentours",
		"Vérifiez le code postal (34190, 34150 ou 34260)",
	}
}

func (s *DeliveryQuoteService) publish(ctx context.Context, restaurantID string, quote domain.DeliveryQuote) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishQuote(ctx, restaurantID, quote)
}

func estimateMinutes(distanceKm float64) int {
	return int(math.Round(distanceKm*minutesPerKm + baseMinutes))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
