package store

import "math"

// FilterList answers whether an ASN may be scanned.
type FilterList struct {
	isDenyList bool
	entries    map[uint32]struct{}
}

// NewFilterList builds a list from raw ASNs. Values outside the 32-bit ASN
// range are ignored.
func NewFilterList(mode ListMode, asns []int64) *FilterList {
	entries := make(map[uint32]struct{}, len(asns))
	for _, a := range asns {
		if a < 0 || a > math.MaxUint32 {
			continue
		}
		entries[uint32(a)] = struct{}{}
	}
	return &FilterList{
		isDenyList: mode == ListDeny,
		entries:    entries,
	}
}

// Allows reports whether asn passes the list.
//
//	contains  deny  allows
//	   no      no     no
//	   no      yes    yes
//	   yes     no     yes
//	   yes     yes    no
func (f *FilterList) Allows(asn uint32) bool {
	_, contains := f.entries[asn]
	return contains != f.isDenyList
}

// Len returns the number of distinct ASNs in the list.
func (f *FilterList) Len() int {
	return len(f.entries)
}
