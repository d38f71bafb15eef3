package asn

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const listingHeader = `<tr><th>ASN</th><th>Name</th><th>IPv4</th><th>IPv6</th></tr>`

// listingPage wraps rows in a page resembling the ipinsight country listing.
func listingPage(rows ...string) string {
	return `<!DOCTYPE html><html><head><title>AS in Austria</title></head><body>
<table class="nav"><tr><td>AS1</td><td>menu</td><td>x</td><td>9</td></tr></table>
<table class="table table-striped">` + listingHeader + strings.Join(rows, "\n") + `</table>
</body></html>`
}

func row(asn, name, v4, v6 string) string {
	return `<tr><td><a href="/` + asn + `" title="` + asn + `">` + asn + `</a> </td><td>` +
		name + `</td><td>` + v4 + `</td><td>` + v6 + `</td></tr>`
}

func mustTable(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := Parse(strings.NewReader(html))
	require.NoError(t, err)
	table, err := LocateTable(doc, DefaultLayout())
	require.NoError(t, err)
	return table
}
