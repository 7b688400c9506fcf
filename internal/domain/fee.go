package domain

// Fee bounds in euros. Every computed fee is clamped into
// [MinFeeEUR, MaxFeeEUR] as a safety bound against zone-table
// misconfiguration.
const (
	MinFeeEUR = 3.00
	MaxFeeEUR = 10.00
)

// zoneFees is the tiered flat-fee table. Fees are per commune zone,
// deliberately not a function of distance: couriers quote the same
// price anywhere inside a commune.
var zoneFees = map[string]float64{
	ZonePrimary:   3.00,
	ZoneInnerRing: 5.00,
	ZoneOuterRing: 6.00,
}

// fallbackFeeEUR applies to deliverable addresses that match no known
// commune: the highest standard tier.
const fallbackFeeEUR = 6.00

// DistanceSource tells which distance model produced the billed
// distance.
type DistanceSource string

const (
	// SourceRoute is real driving distance from the routing provider.
	SourceRoute DistanceSource = "route"
	// SourceStraightLine is the Haversine fallback ("vol d'oiseau").
	SourceStraightLine DistanceSource = "vol_oiseau"
)

// DistanceCeilingKm returns the maximum deliverable distance for the
// given distance model and service area membership. Road distances get
// a wider ceiling than straight-line ones because routes wander;
// in-area postal codes get a wider ceiling because couriers know the
// primary valley.
func DistanceCeilingKm(source DistanceSource, postalCode string) float64 {
	inArea := AuthorizedPostalCodes[postalCode]
	if source == SourceRoute {
		if inArea {
			return 13.0
		}
		return 10.0
	}
	if inArea {
		return 10.0
	}
	return 8.0
}

// FeeInput collects everything the fee rules consume.
type FeeInput struct {
	// Town is the matched or snapped commune; zero Key when none.
	Town TownCenter
	// HasTown reports whether Town is meaningful.
	HasTown bool
	// DistanceKm is the billed distance between restaurant and client.
	DistanceKm float64
	// Source is the distance model that produced DistanceKm.
	Source DistanceSource
	// PostalCode is the client's extracted postal code, may be empty.
	PostalCode string
}

// FeeDecision is the outcome of the fee state machine.
type FeeDecision struct {
	Deliverable bool
	FeeEUR      float64
	Zone        string
	Reason      string
	CeilingKm   float64
}

// ComputeFee applies the fee rules in order, first match wins:
// exclusion, distance ceiling, primary town flat fee, zone flat fee
// with fallback tier. Fees are rounded to two decimals and clamped.
func ComputeFee(in FeeInput) FeeDecision {
	if in.HasTown && in.Town.Excluded {
		return FeeDecision{
			Deliverable: false,
			Zone:        in.Town.Key,
			Reason:      "zone not served",
		}
	}

	ceiling := DistanceCeilingKm(in.Source, in.PostalCode)
	if in.DistanceKm > ceiling {
		return FeeDecision{
			Deliverable: false,
			Reason:      "too far",
			CeilingKm:   ceiling,
		}
	}

	zone := ""
	fee := fallbackFeeEUR
	if in.HasTown {
		zone = in.Town.Zone
		if f, ok := zoneFees[zone]; ok {
			fee = f
		}
	}

	return FeeDecision{
		Deliverable: true,
		FeeEUR:      clampFee(RoundEUR(fee)),
		Zone:        zone,
		CeilingKm:   ceiling,
	}
}

func clampFee(fee float64) float64 {
	if fee < MinFeeEUR {
		return MinFeeEUR
	}
	if fee > MaxFeeEUR {
		return MaxFeeEUR
	}
	return fee
}
