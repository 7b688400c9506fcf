package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizedAddress is the canonical form of a raw delivery address.
type NormalizedAddress struct {
	// Query is the cleaned, abbreviation-expanded address used against
	// the geocoder. Accents are preserved.
	Query string
	// Display is the raw text with collapsed whitespace, kept for
	// user-facing echoes.
	Display string
	// PostalCode is the extracted or inferred five-digit code, empty
	// when unknown.
	PostalCode string
	// City is the served commune detected in the text, empty when none
	// matched. Lowercase, accent-folded.
	City string
}

var (
	postalRe     = regexp.MustCompile(`\b(\d{5})\b`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// streetAbbreviations expands the shorthand customers actually type.
// Keys are matched against folded tokens; "st"/"ste" are only expanded
// when followed by another word (Saint-X), never as a trailing token.
var streetAbbreviations = map[string]string{
	"av":   "Avenue",
	"ave":  "Avenue",
	"bd":   "Boulevard",
	"blvd": "Boulevard",
	"r":    "Rue",
	"pl":   "Place",
	"che":  "Chemin",
	"chem": "Chemin",
	"rte":  "Route",
	"lot":  "Lotissement",
	"imp":  "Impasse",
	"st":   "Saint",
	"ste":  "Sainte",
}

// Fold lowercases, trims and strips combining marks, so "Sumène" and
// "sumene" compare equal.
func Fold(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)
	return s
}

// NormalizeAddress canonicalizes a raw delivery address. It returns
// ErrInvalidAddress for input no geocoder could resolve; everything
// else is best-effort and never fails. Normalization is idempotent:
// feeding Query back in yields the same result.
func NormalizeAddress(raw string) (NormalizedAddress, error) {
	display := whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
	if len([]rune(display)) < 4 || !containsLetter(display) {
		return NormalizedAddress{}, ErrInvalidAddress
	}

	addr := NormalizedAddress{Display: display}
	folded := Fold(display)

	if m := postalRe.FindStringSubmatch(display); m != nil {
		addr.PostalCode = m[1]
	}
	if town, ok := MatchTown(folded); ok && !town.Excluded {
		addr.City = town.Key
		if addr.PostalCode == "" {
			addr.PostalCode = town.PostalCode
		}
	}

	query := expandAbbreviations(display)
	if !strings.Contains(Fold(query), "france") {
		query += ", France"
	}
	addr.Query = query

	return addr, nil
}

// CacheKey derives the in-process cache key for a raw address:
// postal code, commune and the truncated folded street text. Distinct
// renderings of the same address (accents, abbreviations, extra
// whitespace) collapse onto the same key.
func CacheKey(raw string) string {
	addr, err := NormalizeAddress(raw)
	if err != nil {
		return ""
	}
	street := Fold(addr.Query)
	if len(street) > 40 {
		street = street[:40]
	}
	return addr.PostalCode + "|" + addr.City + "|" + street
}

// AddressHash is the persistent identity of a geocoded address: the
// first 16 bytes of the SHA-256 of its cache key, hex encoded. Stable
// across processes and deployments.
func AddressHash(raw string) string {
	key := CacheKey(raw)
	if key == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}

// expandAbbreviations rewrites abbreviated street types token by token,
// preserving the rest of the text as typed.
func expandAbbreviations(s string) string {
	tokens := strings.Fields(s)
	for i, tok := range tokens {
		trimmed := strings.TrimRight(tok, ".,")
		suffix := tok[len(trimmed):]
		folded := Fold(trimmed)

		expansion, ok := streetAbbreviations[folded]
		if !ok {
			continue
		}
		// Saint/Sainte only make sense as a prefix of a following word.
		if (folded == "st" || folded == "ste") && i == len(tokens)-1 {
			continue
		}
		tokens[i] = expansion + strings.TrimRight(suffix, ".")
	}
	return strings.Join(tokens, " ")
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
