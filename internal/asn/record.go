// Package asn extracts per-country autonomous system listings from whois
// country pages and turns them into flat records.
package asn

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Record is one autonomous system announced for a country, as written to the
// export file.
type Record struct {
	Country     string `json:"country"`
	ASN         int    `json:"asn"`
	Description string `json:"description"`
	NumIPv6s    int    `json:"num_ipv6s"`
}

// Describe builds the description column for an AS name.
func Describe(country, name string) string {
	return fmt.Sprintf("All AS from %s - %s", country, name)
}

// NormalizeCountry validates a two-letter country code and returns it upper-cased.
func NormalizeCountry(country string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(country))
	if len(c) != 2 {
		return "", eris.Errorf("asn: country code must be two letters, got %q", country)
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return "", eris.Errorf("asn: country code must be two letters, got %q", country)
		}
	}
	return c, nil
}
