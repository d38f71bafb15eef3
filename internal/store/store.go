// Package store persists exported AS listings into the as_filter_list table
// read by the scan seed guard, and answers allow/deny queries against it.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/asn-cli/internal/asn"
)

// ListMode selects how the stored ASNs are interpreted.
type ListMode string

const (
	// ListAllow admits only the stored ASNs.
	ListAllow ListMode = "allow"
	// ListDeny admits every ASN except the stored ones.
	ListDeny ListMode = "deny"
)

// ParseListMode validates a list mode string.
func ParseListMode(s string) (ListMode, error) {
	switch m := ListMode(s); m {
	case ListAllow, ListDeny:
		return m, nil
	default:
		return "", eris.Errorf("store: unknown list mode %q (want allow or deny)", s)
	}
}

// ImportResult describes one SaveEntries call.
type ImportResult struct {
	ID         string    `json:"id"`
	Country    string    `json:"country"`
	Rows       int       `json:"rows"`
	ImportedAt time.Time `json:"imported_at"`
}

// uniqueByASN collapses records sharing an ASN. The last occurrence wins and
// keeps the position of the first.
func uniqueByASN(records []asn.Record) []asn.Record {
	idx := make(map[int]int, len(records))
	out := make([]asn.Record, 0, len(records))
	for _, r := range records {
		if i, ok := idx[r.ASN]; ok {
			out[i] = r
			continue
		}
		idx[r.ASN] = len(out)
		out = append(out, r)
	}
	return out
}

// Store defines the persistence interface for AS filter lists.
type Store interface {
	// SaveEntries replaces every entry of country with records in one transaction.
	// Records repeating an ASN are collapsed to the last one.
	SaveEntries(ctx context.Context, country string, records []asn.Record) (*ImportResult, error)
	// FilterList loads the distinct stored ASNs interpreted according to mode.
	FilterList(ctx context.Context, mode ListMode) (*FilterList, error)
	// CountEntries returns the number of stored entries for country.
	CountEntries(ctx context.Context, country string) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
