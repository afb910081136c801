// Package ingest provides file-format detection for the RawTable producers.
// The readers themselves live in the csvfile, excel and htmltable
// subpackages, and the synthetic demo generator in synthetic; all of them
// emit the records.Table shape the resolver consumes.
package ingest

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies a supported input file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatCSV
	FormatExcel
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatExcel:
		return "xlsx"
	case FormatHTML:
		return "html"
	default:
		return "unknown"
	}
}

// xlsxMagic is the ZIP local-file-header signature; .xlsx files are ZIP
// containers.
var xlsxMagic = []byte{'P', 'K', 0x03, 0x04}

// Sniff infers the input format from the file name extension first, then
// from a leading byte sample. Detection is heuristic and intentionally
// conservative: anything that is not recognizably Excel or HTML is CSV,
// because CSV is what CDR exports usually are.
func Sniff(sample []byte, filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		return FormatCSV
	case ".xlsx", ".xls":
		return FormatExcel
	case ".html", ".htm":
		return FormatHTML
	}

	trim := bytes.TrimSpace(sample)
	if len(trim) == 0 {
		return FormatUnknown
	}
	if bytes.HasPrefix(sample, xlsxMagic) {
		return FormatExcel
	}
	if trim[0] == '<' {
		return FormatHTML
	}
	return FormatCSV
}
