// Package normalizer turns a raw table plus a resolved column mapping into
// the canonical CDR table.
//
// Every per-cell operation degrades to "missing" on failure; the only
// row-level rule is terminal: rows without a parseable start_time are
// dropped. The normalizer never returns an error for data-quality problems.
package normalizer

import (
	"strings"
	"time"

	"cdrlens/internal/resolver"
	"cdrlens/internal/schema"
	"cdrlens/internal/timeparse"
	"cdrlens/pkg/records"
)

// Record is one canonical CDR row. String fields are "" when missing;
// optional timestamps are the zero time when missing; optional numbers carry
// an explicit presence flag.
type Record struct {
	StartTime time.Time // never zero in a surviving record
	EndTime   time.Time // zero when missing

	DurationSec float64
	HasDuration bool

	Caller    string
	Callee    string
	Direction string
	Status    string
	Operator  string
	Country   string
	MCC       string
	MNC       string
	CellID    string
	IMSI      string
	IMEI      string

	SetupTimeMS float64
	HasSetup    bool
	Cost        float64
	HasCost     bool

	// Derived from Status.
	Answered bool
	Failed   bool

	// Derived from StartTime.
	Date    time.Time // calendar date at midnight UTC of StartTime's date
	Hour    int
	Weekday string
}

// Stats counts what happened during one normalization pass. Callers feed
// these into metrics; the normalizer itself stays side-effect free.
type Stats struct {
	RowsIn      int
	RowsOut     int
	RowsDropped int

	// UnparseableCells counts, per canonical field, cells that were
	// present in the source but failed type coercion.
	UnparseableCells map[string]int
}

// Keyword families for status classification. Matching is a loose substring
// test against the upper-cased status; the two sets are disjoint, so a
// record is never answered and failed from the same keyword.
var (
	answeredKeywords = []string{"ANSWER", "OK", "200"}
	failedKeywords   = []string{"FAIL", "BUSY", "NO_ANSWER", "486", "480", "503", "CONGEST"}
)

// directionSynonyms maps lower-cased source values onto the canonical
// direction enum. Unknown values pass through unchanged.
var directionSynonyms = map[string]string{
	"in":       "inbound",
	"out":      "outbound",
	"incoming": "inbound",
	"outgoing": "outbound",
}

// Normalize applies the mapping to every raw row and returns the surviving
// canonical records together with pass statistics.
func Normalize(tbl records.Table, m resolver.Mapping) ([]Record, Stats) {
	stats := Stats{
		RowsIn:           len(tbl.Rows),
		UnparseableCells: make(map[string]int),
	}

	idx := resolver.ColumnIndex(tbl)
	lookup := func(row records.Row, field string) (records.Value, bool) {
		norm, ok := m.Source(field)
		if !ok {
			return records.Value{}, false
		}
		raw, ok := idx[norm]
		if !ok {
			return records.Value{}, false
		}
		v := row.Get(raw)
		if v.IsMissing() {
			return records.Value{}, false
		}
		return v, true
	}

	// timeField parses a resolved timestamp cell, counting present-but-
	// unparseable values.
	timeField := func(row records.Row, field string) (time.Time, bool) {
		v, present := lookup(row, field)
		if !present {
			return time.Time{}, false
		}
		t, ok := timeparse.Parse(v.Text())
		if !ok {
			stats.UnparseableCells[field]++
		}
		return t, ok
	}

	numberField := func(row records.Row, field string) (float64, bool) {
		v, present := lookup(row, field)
		if !present {
			return 0, false
		}
		f, ok := v.Float()
		if !ok {
			stats.UnparseableCells[field]++
		}
		return f, ok
	}

	out := make([]Record, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		var rec Record

		start, okStart := timeField(row, schema.FieldStartTime)
		if !okStart {
			stats.RowsDropped++
			continue
		}
		rec.StartTime = start
		rec.EndTime, _ = timeField(row, schema.FieldEndTime)

		if _, direct := m.Source(schema.FieldDurationSec); direct {
			rec.DurationSec, rec.HasDuration = numberField(row, schema.FieldDurationSec)
		} else if m.DeriveDuration && !rec.EndTime.IsZero() {
			rec.DurationSec = rec.EndTime.Sub(rec.StartTime).Seconds()
			rec.HasDuration = true
		}

		rec.Caller = text(lookup(row, schema.FieldCaller))
		rec.Callee = text(lookup(row, schema.FieldCallee))
		rec.Status = text(lookup(row, schema.FieldStatus))
		rec.Operator = text(lookup(row, schema.FieldOperator))
		rec.Country = text(lookup(row, schema.FieldCountry))
		rec.MCC = text(lookup(row, schema.FieldMCC))
		rec.MNC = text(lookup(row, schema.FieldMNC))
		rec.CellID = text(lookup(row, schema.FieldCellID))
		rec.IMSI = text(lookup(row, schema.FieldIMSI))
		rec.IMEI = text(lookup(row, schema.FieldIMEI))

		rec.Direction = canonicalDirection(text(lookup(row, schema.FieldDirection)))

		rec.SetupTimeMS, rec.HasSetup = numberField(row, schema.FieldSetupTimeMS)
		rec.Cost, rec.HasCost = numberField(row, schema.FieldCost)

		upper := strings.ToUpper(rec.Status)
		rec.Answered = containsAny(upper, answeredKeywords)
		rec.Failed = containsAny(upper, failedKeywords)

		y, mo, d := rec.StartTime.Date()
		rec.Date = time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
		rec.Hour = rec.StartTime.Hour()
		rec.Weekday = rec.StartTime.Weekday().String()

		out = append(out, rec)
	}

	stats.RowsOut = len(out)
	return out, stats
}

func text(v records.Value, present bool) string {
	if !present {
		return ""
	}
	return v.Text()
}

func canonicalDirection(s string) string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if canon, ok := directionSynonyms[lower]; ok {
		return canon
	}
	return lower
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
