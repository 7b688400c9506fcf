package domain

import (
	"strings"
	"unicode"
)

// MaxQueryVariants bounds worst-case geocoder cost per address.
const MaxQueryVariants = 10

// QueryVariants produces the ordered, de-duplicated list of query
// strings to try against the geocoder, most specific first. The
// geocoder is intolerant of malformed input; structurally different
// reductions of the same address materially raise the match rate.
func QueryVariants(raw string) []string {
	addr, err := NormalizeAddress(raw)
	if err != nil {
		return nil
	}

	candidates := []string{
		addr.Query,
		addr.Display,
	}

	townName := ""
	if town, ok := TownByKey(addr.City); ok {
		townName = town.Name
	}

	if addr.PostalCode != "" && townName != "" {
		candidates = append(candidates,
			addr.PostalCode+" "+townName+", France",
			townName+", "+addr.PostalCode+", France",
		)
	}
	if addr.PostalCode != "" && AuthorizedPostalCodes[addr.PostalCode] {
		candidates = append(candidates, addr.PostalCode+", France")
	}

	candidates = append(candidates, Fold(addr.Query))

	if num := leadingHouseNumber(addr.Display); num != "" && addr.PostalCode != "" && townName != "" {
		candidates = append(candidates, num+" "+addr.PostalCode+" "+townName+", France")
	}

	seen := make(map[string]bool, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		variants = append(variants, c)
		if len(variants) == MaxQueryVariants {
			break
		}
	}
	return variants
}

// leadingHouseNumber extracts a house number from the start of the
// address, tolerating "28bis" style suffixes.
func leadingHouseNumber(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	first := fields[0]
	if first == "" || !unicode.IsDigit(rune(first[0])) {
		return ""
	}
	// Postal codes are never house numbers.
	if len(first) == 5 && postalRe.MatchString(first) {
		return ""
	}
	return strings.TrimRight(first, ",")
}
