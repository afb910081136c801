// Package excel reads .xlsx CDR exports into a raw table using excelize.
// The first sheet is used, its first row as headers, mirroring how operator
// portals lay out their exports.
package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"cdrlens/pkg/records"
)

// Read opens the workbook at path and converts its first sheet.
func Read(path string) (records.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return records.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return FromFile(f)
}

// ReadFrom converts a workbook streamed from r (e.g. an upload).
func ReadFrom(r io.Reader) (records.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return records.Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return FromFile(f)
}

// FromFile converts the first sheet of an already-open workbook.
//
// Rows wider than the header keep only the header-covered cells; rows
// shorter than the header leave the tail columns missing. excelize already
// returns cells as display strings, so no further typing happens here.
func FromFile(f *excelize.File) (records.Table, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return records.Table{}, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return records.Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return records.Table{}, nil
	}

	columns := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		columns[i] = strings.TrimSpace(h)
	}
	tbl := records.Table{Columns: columns}

	for _, r := range rows[1:] {
		row := make(records.Row, len(columns))
		for i := range columns {
			if i >= len(r) {
				continue
			}
			v := strings.TrimSpace(r[i])
			if v == "" {
				continue
			}
			row[columns[i]] = records.Str(v)
		}
		tbl.Rows = append(tbl.Rows, row)
	}
	return tbl, nil
}
