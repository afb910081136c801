// Package csvfile reads CSV CDR exports into a raw table.
//
// Reading is best-effort in the same spirit as the rest of the pipeline:
// rows whose field count does not match the header are skipped, empty cells
// become missing, and bytes that are not valid UTF-8 are re-decoded as
// Latin-1 (a common encoding for older switch exports) instead of failing.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"cdrlens/pkg/records"
)

// Options control CSV reading. The zero value is the sensible default.
type Options struct {
	// Comma overrides the field delimiter. Zero means ','.
	Comma rune

	// OnSkip, when set, is called for every skipped row with its 1-based
	// line number and the reason. Skips never fail the read.
	OnSkip func(line int, reason string)
}

// Read parses CSV bytes from r into a raw table. The first record is the
// header row; header cells are trimmed and a leading UTF-8 BOM is stripped.
// Cell values stay strings: deciding what a value means is the normalizer's
// job, not the parser's.
func Read(r io.Reader, opt Options) (records.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return records.Table{}, fmt.Errorf("read input: %w", err)
	}
	if !utf8.Valid(raw) {
		decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
		if err == nil {
			raw = decoded
		}
	}

	comma := opt.Comma
	if comma == 0 {
		comma = ','
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = comma
	cr.FieldsPerRecord = -1 // validated manually against the header
	cr.LazyQuotes = true

	line := 0
	readRec := func() ([]string, error) {
		line++
		return cr.Read()
	}

	hdr, err := readRec()
	if err != nil {
		if err == io.EOF {
			return records.Table{}, nil
		}
		return records.Table{}, fmt.Errorf("read header: %w", err)
	}
	columns := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = strings.TrimSpace(h)
	}

	tbl := records.Table{Columns: columns}
	for {
		rec, err := readRec()
		if err == io.EOF {
			return tbl, nil
		}
		if err != nil {
			if opt.OnSkip != nil {
				opt.OnSkip(line, fmt.Sprintf("csv read: %v", err))
			}
			continue
		}
		if len(rec) != len(columns) {
			if opt.OnSkip != nil {
				opt.OnSkip(line, fmt.Sprintf("field count %d, want %d", len(rec), len(columns)))
			}
			continue
		}

		row := make(records.Row, len(columns))
		for i, v := range rec {
			v = strings.TrimSpace(v)
			if v == "" {
				continue // missing
			}
			row[columns[i]] = records.Str(v)
		}
		tbl.Rows = append(tbl.Rows, row)
	}
}
