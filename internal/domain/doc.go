// Package domain models delivery-fee resolution for the CVNEAT
// marketplace around Ganges (Hérault, France).
//
// # Address Conventions
//
// Customer addresses arrive as free text typed on a phone. The usual
// French shapes are:
//
//	"<number> <street type> <street name>, <postal code> <commune>"
//	e.g. "28 Lotissement Aubanel, 34190 Laroque"
//	or just a commune name: "Ganges", "st bauzille"
//
// Street types are commonly abbreviated (av, bd, r, pl, che, rte, lot)
// and accents are typed inconsistently ("Sumène" vs "sumene"). French
// postal codes are exactly five digits; the service area spans the
// codes 34190, 34150 and 34260.
//
// # Zones
//
// Pricing is tiered per commune, not continuous over distance. Each
// served commune carries a canonical center coordinate and a fee zone:
//
//	ganges (primary):   Ganges                              3.00 €
//	inner ring:         Laroque, Saint-Bauzille-de-Putois,
//	                    Moulès-et-Baucels, Montoulieu,
//	                    Cazilhac                            5.00 €
//	outer ring:         Sumène, Pégairolles-de-Buèges,
//	                    Agonès                              6.00 €
//
// A geocoded point within [SnapRadiusKm] of a commune center takes that
// commune's fee zone, while the billed distance is still measured to
// the geocoded point. This keeps the fee stable under geocoder jitter
// without letting genuinely distant addresses through. Communes that
// cannot be reached by a courier (Saint-Estève, Perpignan,
// Canet-en-Roussillon) are explicitly excluded and checked before any
// postal-code allow-listing, since an excluded commune may share a
// postal code with a served one.
//
// # Hashing
//
// Geocoded addresses are identified by a deterministic SHA-256 content
// hash of "postal|commune|folded street text" (truncated, see
// [AddressHash]). The hash survives process restarts, so the same
// normalized address always resolves to the same stored coordinate and
// therefore the same fee. Coordinates are rounded to three decimals
// (~100 m) before hashing and storage for the same reason.
package domain
