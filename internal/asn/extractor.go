package asn

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/asn-cli/internal/fetcher"
)

// DefaultBaseURL is the whois site serving the per-country AS listings.
const DefaultBaseURL = "https://whois.ipinsight.io"

// Extractor fetches a country page and extracts its AS listing.
type Extractor struct {
	fetcher fetcher.Fetcher
	baseURL string
	layout  Layout
}

// NewExtractor creates an Extractor. An empty baseURL selects DefaultBaseURL.
func NewExtractor(f fetcher.Fetcher, baseURL string, l Layout) *Extractor {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Extractor{
		fetcher: f,
		baseURL: strings.TrimRight(baseURL, "/"),
		layout:  l,
	}
}

// URL returns the listing page location for a country.
func (e *Extractor) URL(country string) string {
	return e.baseURL + "/countries/" + url.PathEscape(country)
}

// Extract downloads the country page and returns every record with a
// non-zero IPv6 count. Nothing is returned unless the whole table parsed.
func (e *Extractor) Extract(ctx context.Context, country string) ([]Record, error) {
	country, err := NormalizeCountry(country)
	if err != nil {
		return nil, err
	}

	pageURL := e.URL(country)
	zap.L().Info("asn: fetching country listing",
		zap.String("country", country),
		zap.String("url", pageURL),
	)

	body, err := e.fetcher.Download(ctx, pageURL)
	if err != nil {
		return nil, eris.Wrapf(err, "asn: fetch %s", country)
	}
	defer body.Close() //nolint:errcheck

	doc, err := Parse(body)
	if err != nil {
		return nil, err
	}

	table, err := LocateTable(doc, e.layout)
	if err != nil {
		return nil, eris.Wrapf(err, "asn: locate listing for %s", country)
	}

	records, err := ExtractRows(country, table, e.layout)
	if err != nil {
		return nil, eris.Wrapf(err, "asn: extract listing for %s", country)
	}
	return records, nil
}
