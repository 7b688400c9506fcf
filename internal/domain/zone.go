package domain

import "strings"

// SnapRadiusKm is the maximum distance between a geocoded point and a
// commune center for the point to adopt that commune's fee zone.
const SnapRadiusKm = 4.0

// Fee zone keys, cheapest first.
const (
	ZonePrimary   = "ganges"
	ZoneInnerRing = "inner_ring"
	ZoneOuterRing = "outer_ring"
)

// TownCenter is compiled-in reference data for one commune: canonical
// coordinate, fee zone and the folded substrings that identify it in
// free text.
type TownCenter struct {
	Key        string
	Name       string
	Zone       string
	PostalCode string
	Center     Coordinate
	Patterns   []string
	// Excluded marks communes a courier cannot serve even though they
	// may share a postal prefix with the service area.
	Excluded bool
}

// townCenters is ordered excluded-first so exclusion always wins over
// postal-code allow-listing.
var townCenters = []TownCenter{
	{Key: "saint-esteve", Name: "Saint-Estève", Center: Coordinate{Lat: 43.8581, Lng: 3.8331}, Patterns: []string{"saint-esteve", "saint esteve", "st esteve"}, Excluded: true},
	{Key: "perpignan", Name: "Perpignan", Center: Coordinate{Lat: 43.8700, Lng: 3.8400}, Patterns: []string{"perpignan"}, Excluded: true},
	{Key: "canet", Name: "Canet-en-Roussillon", Center: Coordinate{Lat: 43.8500, Lng: 3.8200}, Patterns: []string{"canet"}, Excluded: true},

	{Key: "ganges", Name: "Ganges", Zone: ZonePrimary, PostalCode: "34190", Center: Coordinate{Lat: 43.9342, Lng: 3.7098}, Patterns: []string{"ganges"}},
	{Key: "laroque", Name: "Laroque", Zone: ZoneInnerRing, PostalCode: "34190", Center: Coordinate{Lat: 43.9188, Lng: 3.7146}, Patterns: []string{"laroque"}},
	{Key: "saint-bauzille", Name: "Saint-Bauzille-de-Putois", Zone: ZoneInnerRing, PostalCode: "34190", Center: Coordinate{Lat: 43.9033, Lng: 3.7067}, Patterns: []string{"saint-bauzille", "saint bauzille", "st bauzille", "st-bauzille"}},
	{Key: "moules", Name: "Moulès-et-Baucels", Zone: ZoneInnerRing, PostalCode: "34190", Center: Coordinate{Lat: 43.9400, Lng: 3.7200}, Patterns: []string{"moules-et-baucels", "moules et baucels", "moules", "baucels"}},
	{Key: "montoulieu", Name: "Montoulieu", Zone: ZoneInnerRing, PostalCode: "34190", Center: Coordinate{Lat: 43.9200, Lng: 3.6800}, Patterns: []string{"montoulieu"}},
	{Key: "cazilhac", Name: "Cazilhac", Zone: ZoneInnerRing, PostalCode: "34190", Center: Coordinate{Lat: 43.9290, Lng: 3.7020}, Patterns: []string{"cazilhac"}},
	{Key: "sumene", Name: "Sumène", Zone: ZoneOuterRing, PostalCode: "34260", Center: Coordinate{Lat: 43.8994, Lng: 3.7194}, Patterns: []string{"sumene"}},
	{Key: "pegairolles", Name: "Pégairolles-de-Buèges", Zone: ZoneOuterRing, PostalCode: "34260", Center: Coordinate{Lat: 43.9178, Lng: 3.7428}, Patterns: []string{"pegairolles"}},
	{Key: "agones", Name: "Agonès", Zone: ZoneOuterRing, PostalCode: "34190", Center: Coordinate{Lat: 43.9120, Lng: 3.7090}, Patterns: []string{"agones"}},
}

// AuthorizedPostalCodes is the primary service area.
var AuthorizedPostalCodes = map[string]bool{
	"34190": true,
	"34150": true,
	"34260": true,
}

// PostalFallbacks maps a known postal code to its canonical coordinate,
// used when geocoding fails but the postal code alone places the
// address in the service area.
var PostalFallbacks = map[string]Coordinate{
	"34190": {Lat: 43.9342, Lng: 3.7098}, // Ganges
	"34150": {Lat: 43.9188, Lng: 3.7146}, // Laroque side of the valley
	"34260": {Lat: 43.9086, Lng: 3.7311}, // Sumène/Pégairolles centroid
}

// PrimaryTown returns the Ganges reference entry.
func PrimaryTown() TownCenter {
	return *townByKey("ganges")
}

// TownByKey looks up a commune by its table key.
func TownByKey(key string) (TownCenter, bool) {
	t := townByKey(key)
	if t == nil {
		return TownCenter{}, false
	}
	return *t, true
}

func townByKey(key string) *TownCenter {
	for i := range townCenters {
		if townCenters[i].Key == key {
			return &townCenters[i]
		}
	}
	return nil
}

// MatchTown finds the first commune whose pattern appears in the text.
// Matching is case- and accent-insensitive. Excluded communes are
// listed first in the table, so "Perpignan 34190" is rejected even
// though 34190 is an authorized code.
func MatchTown(text string) (TownCenter, bool) {
	folded := Fold(text)
	for _, town := range townCenters {
		for _, pattern := range town.Patterns {
			if strings.Contains(folded, pattern) {
				return town, true
			}
		}
	}
	return TownCenter{}, false
}

// streetMarkers are folded tokens that indicate the address names an
// actual street rather than a bare commune.
var streetMarkers = []string{
	"rue", "avenue", "boulevard", "chemin", "place", "route",
	"lotissement", "impasse", "allee", "quai", "traverse", "montee",
}

// HasStreetDetail reports whether the text carries a street-level
// component (house number or street-type word). Bare commune names
// short-circuit the geocoder entirely; see ResolveKnownTown.
func HasStreetDetail(text string) bool {
	folded := Fold(text)
	for _, r := range folded {
		if r >= '0' && r <= '9' {
			// A five-digit postal code alone is not street detail.
			if !postalOnlyDigits(folded) {
				return true
			}
			break
		}
	}
	for _, marker := range streetMarkers {
		for _, tok := range strings.FieldsFunc(folded, func(r rune) bool {
			return r == ' ' || r == ',' || r == '-'
		}) {
			if tok == marker {
				return true
			}
		}
	}
	return false
}

// postalOnlyDigits reports whether every digit run in the text is a
// five-digit postal code.
func postalOnlyDigits(folded string) bool {
	run := 0
	for _, r := range folded {
		if r >= '0' && r <= '9' {
			run++
			continue
		}
		if run != 0 && run != 5 {
			return false
		}
		run = 0
	}
	return run == 0 || run == 5
}

// SnapToTown returns the nearest non-excluded commune whose center lies
// within SnapRadiusKm of the coordinate.
func SnapToTown(c Coordinate) (TownCenter, bool) {
	var (
		best     TownCenter
		bestDist = SnapRadiusKm
		found    bool
	)
	for _, town := range townCenters {
		if town.Excluded {
			continue
		}
		d := HaversineKm(c, town.Center)
		if d <= bestDist {
			best, bestDist, found = town, d, true
		}
	}
	return best, found
}
