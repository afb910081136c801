// Package htmltable reads HTML table CDR exports into a raw table.
//
// Several gateway and billing portals offer "export" links that are really
// an HTML page with a single <table>. This reader takes the first table in
// the document, its header row from <th> cells (or the first <tr> when the
// table has no <th>), and every following <tr> as a data row.
package htmltable

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"cdrlens/pkg/records"
)

// Read parses the first <table> found in the HTML document from r.
func Read(r io.Reader) (records.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return records.Table{}, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return records.Table{}, fmt.Errorf("no <table> in document")
	}

	var columns []string
	headerSel := table.Find("tr").First()
	ths := table.Find("th")
	if ths.Length() > 0 {
		ths.Each(func(_ int, s *goquery.Selection) {
			columns = append(columns, strings.TrimSpace(s.Text()))
		})
		// When the <th> row is the first <tr>, skip it below.
	} else {
		headerSel.Find("td").Each(func(_ int, s *goquery.Selection) {
			columns = append(columns, strings.TrimSpace(s.Text()))
		})
	}
	if len(columns) == 0 {
		return records.Table{}, fmt.Errorf("table has no header cells")
	}

	tbl := records.Table{Columns: columns}
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return // header or spacer row
		}
		if ths.Length() == 0 && i == 0 {
			return // first <tr> served as the header
		}
		if tds.Length() != len(columns) {
			return // misaligned row, same skip rule as the CSV reader
		}
		row := make(records.Row, len(columns))
		tds.Each(func(j int, td *goquery.Selection) {
			v := strings.TrimSpace(td.Text())
			if v == "" {
				return
			}
			row[columns[j]] = records.Str(v)
		})
		tbl.Rows = append(tbl.Rows, row)
	})

	return tbl, nil
}
