package asn

// Layout names the structural assumptions made about the country listing table.
type Layout struct {
	TableTag    string // element holding the listing
	MarkerClass string // class attribute identifying the listing table
	RowTag      string
	CellTag     string
	ASNPrefix   string // literal stripped from the AS number token, e.g. "AS" in "AS679"

	ASNCell   int // cell index of the AS number token
	NameCell  int // cell index of the AS name
	CountCell int // cell index of the IPv6 count token
}

// DefaultLayout returns the layout of the ipinsight country pages:
//
//	<table class="table"><tr><td>AS679</td><td>NAME</td><td>…</td><td>1,234</td></tr></table>
func DefaultLayout() Layout {
	return Layout{
		TableTag:    "table",
		MarkerClass: "table",
		RowTag:      "tr",
		CellTag:     "td",
		ASNPrefix:   "AS",
		ASNCell:     0,
		NameCell:    1,
		CountCell:   3,
	}
}

// MinCells is the number of data cells a row needs for every indexed cell to exist.
func (l Layout) MinCells() int {
	m := l.ASNCell
	if l.NameCell > m {
		m = l.NameCell
	}
	if l.CountCell > m {
		m = l.CountCell
	}
	return m + 1
}

// TableSelector is the CSS selector matching the listing table.
func (l Layout) TableSelector() string {
	if l.MarkerClass == "" {
		return l.TableTag
	}
	return l.TableTag + "." + l.MarkerClass
}
