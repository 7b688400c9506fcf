package domain

import "errors"

// Failure taxonomy for quote resolution. Business outcomes
// (ErrAddressNotFound) are distinguished from transport faults
// (ErrProviderUnavailable) so callers can map them to user guidance
// versus retries.
var (
	// ErrInvalidAddress rejects input that cannot possibly geocode:
	// empty, shorter than four characters, or without a single letter.
	// Raised before any network call.
	ErrInvalidAddress = errors.New("invalid delivery address")

	// ErrAddressNotFound means every query variant was tried and the
	// geocoder returned no match. A normal outcome of bad user input.
	ErrAddressNotFound = errors.New("address not found")

	// ErrProviderUnavailable means the geocoding provider could not be
	// reached (network failure or 5xx) for the variants that did not
	// otherwise resolve.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")

	// ErrRestaurantNotFound means the requested restaurant id has no
	// directory entry.
	ErrRestaurantNotFound = errors.New("restaurant not found")
)
