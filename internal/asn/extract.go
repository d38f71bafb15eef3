package asn

import (
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Parse builds a navigable document from raw HTML.
func Parse(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "asn: parse html")
	}
	return doc, nil
}

// LocateTable returns the first table carrying the layout's marker class.
func LocateTable(doc *goquery.Document, l Layout) (*goquery.Selection, error) {
	sel := l.TableSelector()
	table := doc.Find(sel).First()
	if table.Length() == 0 {
		return nil, &StructureError{Selector: sel}
	}
	return table, nil
}

// ExtractRows converts the table's rows into records in document order.
// Rows without data cells are skipped, as are rows reporting zero IPv6
// addresses. The first row that cannot be parsed aborts the extraction.
func ExtractRows(country string, table *goquery.Selection, l Layout) ([]Record, error) {
	var (
		records []Record
		skipped int
		rowErr  error
	)
	minCells := l.MinCells()

	table.Find(l.RowTag).EachWithBreak(func(i int, tr *goquery.Selection) bool {
		tds := tr.Find(l.CellTag)
		if tds.Length() == 0 {
			return true
		}
		if tds.Length() < minCells {
			rowErr = &ParseError{
				Field: "row",
				Token: strings.TrimSpace(tr.Text()),
				Row:   i + 1,
				Err:   eris.Errorf("expected at least %d cells, got %d", minCells, tds.Length()),
			}
			return false
		}

		id, err := ParseASN(tds.Eq(l.ASNCell).Text(), l.ASNPrefix)
		if err != nil {
			rowErr = withRow(err, i+1)
			return false
		}
		name := strings.TrimSpace(tds.Eq(l.NameCell).Text())
		count, err := ParseCount(tds.Eq(l.CountCell).Text())
		if err != nil {
			rowErr = withRow(err, i+1)
			return false
		}

		if count == 0 {
			skipped++
			return true
		}

		records = append(records, Record{
			Country:     country,
			ASN:         id,
			Description: Describe(country, name),
			NumIPv6s:    count,
		})
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	zap.L().Debug("asn: extracted rows",
		zap.String("country", country),
		zap.Int("records", len(records)),
		zap.Int("skipped_zero", skipped),
	)
	return records, nil
}

// ParseASN strips whitespace and the prefix from an AS token such as "AS679"
// and returns the number. Whitespace between prefix and number is allowed.
func ParseASN(token, prefix string) (int, error) {
	raw := strings.TrimSpace(token)
	digits, ok := strings.CutPrefix(raw, prefix)
	if !ok {
		return 0, &ParseError{Field: "asn", Token: token, Err: eris.Errorf("missing prefix %q", prefix)}
	}
	n, err := parseDigits(strings.TrimSpace(digits))
	if err != nil {
		return 0, &ParseError{Field: "asn", Token: token, Err: err}
	}
	if n == 0 {
		return 0, &ParseError{Field: "asn", Token: token, Err: eris.New("must be positive")}
	}
	return n, nil
}

// ParseCount parses a digit group that may contain thousands separators, e.g. "1,234".
func ParseCount(token string) (int, error) {
	n, err := parseDigits(strings.ReplaceAll(strings.TrimSpace(token), ",", ""))
	if err != nil {
		return 0, &ParseError{Field: "count", Token: token, Err: err}
	}
	return n, nil
}

// parseDigits accepts only a non-empty run of ASCII digits; strconv alone
// would also take a sign.
func parseDigits(s string) (int, error) {
	if s == "" {
		return 0, eris.New("empty")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, eris.Errorf("invalid digit %q", s[i])
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, eris.Wrap(err, "atoi")
	}
	return n, nil
}

func withRow(err error, row int) error {
	if pe, ok := err.(*ParseError); ok {
		pe.Row = row
	}
	return err
}
