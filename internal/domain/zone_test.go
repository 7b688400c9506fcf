package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchTown_AccentAndCaseInsensitive(t *testing.T) {
	for _, in := range []string{"Sumène", "SUMENE", "12 rue du Pont, sumene"} {
		town, ok := MatchTown(in)
		require.True(t, ok, in)
		assert.Equal(t, "sumene", town.Key, in)
	}
}

func TestMatchTown_ExcludedBeforePostalAllowList(t *testing.T) {
	// Perpignan carries an authorized postal code here, but the
	// exclusion entry must win.
	town, ok := MatchTown("3 rue des Lilas, 34190 Perpignan")
	require.True(t, ok)
	assert.True(t, town.Excluded)
	assert.Equal(t, "perpignan", town.Key)
}

func TestMatchTown_NoMatch(t *testing.T) {
	_, ok := MatchTown("14 rue Inconnue, 75001 Paris")
	assert.False(t, ok)
}

func TestHasStreetDetail(t *testing.T) {
	cases := map[string]bool{
		"Ganges":                                false,
		"34190 Ganges":                          false,
		"Sumène, France":                        false,
		"28 Lotissement Aubanel, 34190 Laroque": true,
		"rue des Oliviers, Ganges":              true,
		"12 Ganges":                             true,
	}
	for in, want := range cases {
		assert.Equal(t, want, HasStreetDetail(in), in)
	}
}

func TestSnapToTown_WithinRadius(t *testing.T) {
	// ~300 m north of the Laroque center.
	point := Coordinate{Lat: 43.9215, Lng: 3.7146}
	town, ok := SnapToTown(point)
	require.True(t, ok)
	assert.Equal(t, "laroque", town.Key)
}

func TestSnapToTown_TwoPointsSameZone(t *testing.T) {
	// Two distinct street-level points inside the snap radius of the
	// same center must land in the same fee zone.
	a := Coordinate{Lat: 43.9165, Lng: 3.7120}
	b := Coordinate{Lat: 43.9210, Lng: 3.7180}

	townA, okA := SnapToTown(a)
	townB, okB := SnapToTown(b)
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, townA.Zone, townB.Zone)
}

func TestSnapToTown_OutsideRadius(t *testing.T) {
	montpellier := Coordinate{Lat: 43.6108, Lng: 3.8767}
	_, ok := SnapToTown(montpellier)
	assert.False(t, ok)
}

func TestSnapToTown_NeverSnapsToExcluded(t *testing.T) {
	town, ok := SnapToTown(Coordinate{Lat: 43.8581, Lng: 3.8331})
	if ok {
		assert.False(t, town.Excluded)
	}
}

func TestPostalFallbacks_CoverAuthorizedCodes(t *testing.T) {
	for code := range AuthorizedPostalCodes {
		coord, ok := PostalFallbacks[code]
		require.True(t, ok, code)
		assert.True(t, coord.Valid())
		assert.False(t, coord.IsZero())
	}
}

func TestPrimaryTown(t *testing.T) {
	town := PrimaryTown()
	assert.Equal(t, "Ganges", town.Name)
	assert.Equal(t, ZonePrimary, town.Zone)
	assert.InDelta(t, 43.9342, town.Center.Lat, 0.0001)
}
