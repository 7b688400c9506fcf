package domain

import "math"

// earthRadiusKm is the mean Earth radius used for great-circle distance.
const earthRadiusKm = 6371.0

// Coordinate is a WGS-84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate lies inside the WGS-84 domain.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// IsZero reports whether the coordinate is the zero value. The null
// island point is not a plausible delivery location in metropolitan
// France, so the zero value doubles as "unresolved".
func (c Coordinate) IsZero() bool {
	return c.Lat == 0 && c.Lng == 0
}

// Round truncates the coordinate to three decimals (~100 m). Stored and
// hashed coordinates always go through Round so repeated geocoder calls
// that jitter below the grid resolution produce identical cache rows.
func (c Coordinate) Round() Coordinate {
	return Coordinate{
		Lat: math.Round(c.Lat*1000) / 1000,
		Lng: math.Round(c.Lng*1000) / 1000,
	}
}

// HaversineKm returns the great-circle distance between two coordinates
// in kilometers, rounded to 0.1 km.
func HaversineKm(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return RoundKm(earthRadiusKm * c)
}

// RoundKm rounds a distance to 0.1 km.
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}

// RoundEUR rounds an amount to two decimals.
func RoundEUR(amount float64) float64 {
	return math.Round(amount*100) / 100
}
