// Package resolver implements the schema resolution half of the pipeline:
// mapping arbitrary, inconsistently named source columns onto the canonical
// CDR field set.
//
// Resolution is pure and cannot fail. Aliases are tried in catalog priority
// order; when no alias matches start_time, a content-based fallback scans
// timestamp-looking columns. An empty mapping is a valid result: downstream
// normalization then drops every row, which is the observable signal for
// "no usable data".
package resolver

import (
	"strings"

	"cdrlens/internal/schema"
	"cdrlens/internal/timeparse"
	"cdrlens/pkg/records"
)

// DefaultInferMinParseRate is the fraction of non-missing values in a
// candidate column that must parse as timestamps before the column is
// accepted as an inferred start_time. The comparison is strictly greater.
const DefaultInferMinParseRate = 0.6

// Options tune resolution heuristics. The zero value selects defaults.
type Options struct {
	// InferMinParseRate overrides DefaultInferMinParseRate when > 0.
	// Tests use it to probe the selection boundary precisely.
	InferMinParseRate float64
}

func (o Options) minParseRate() float64 {
	if o.InferMinParseRate > 0 {
		return o.InferMinParseRate
	}
	return DefaultInferMinParseRate
}

// Mapping is the resolver's output: canonical field name → normalized source
// column name. Fields with no usable source are absent from the map.
type Mapping struct {
	// Columns maps canonical field → normalized source column.
	Columns map[string]string

	// DeriveDuration marks duration_sec as "compute end−start per row"
	// instead of reading a column. Set only when duration_sec itself did
	// not resolve but both timestamps did, each with at least one
	// parseable value.
	DeriveDuration bool

	// Inferred names the source column selected by content-based
	// inference for start_time, "" when start_time resolved by alias
	// (or not at all). Informational, used by probe reporting.
	Inferred string
}

// Source returns the resolved source column for a canonical field.
func (m Mapping) Source(field string) (string, bool) {
	c, ok := m.Columns[field]
	return c, ok
}

// Resolve builds a column mapping for tbl against the catalog.
//
// Raw column names are normalized (trim, lower-case, spaces→underscores)
// before alias matching, and the normalized name is what the mapping stores.
// When two raw columns normalize to the same name, the first in table order
// wins; later duplicates are unreachable, which keeps resolution
// deterministic.
func Resolve(tbl records.Table, cat schema.Catalog, opts Options) Mapping {
	m := Mapping{Columns: make(map[string]string)}

	// Normalized name → present, preserving first-occurrence semantics.
	normSet := make(map[string]bool, len(tbl.Columns))
	normOrder := make([]string, 0, len(tbl.Columns))
	normToRaw := make(map[string]string, len(tbl.Columns))
	for _, raw := range tbl.Columns {
		n := schema.NormalizeColumn(raw)
		if normSet[n] {
			continue
		}
		normSet[n] = true
		normOrder = append(normOrder, n)
		normToRaw[n] = raw
	}

	for _, f := range cat.Fields() {
		for _, alias := range f.Aliases {
			if normSet[alias] {
				m.Columns[f.Name] = alias
				break
			}
		}
	}

	if _, ok := m.Columns[schema.FieldStartTime]; !ok {
		if col := inferStartTime(tbl, normOrder, normToRaw, opts.minParseRate()); col != "" {
			m.Columns[schema.FieldStartTime] = col
			m.Inferred = col
		}
	}

	if _, ok := m.Columns[schema.FieldDurationSec]; !ok {
		start, okS := m.Columns[schema.FieldStartTime]
		end, okE := m.Columns[schema.FieldEndTime]
		if okS && okE &&
			columnHasParseableTime(tbl, normToRaw[start]) &&
			columnHasParseableTime(tbl, normToRaw[end]) {
			m.DeriveDuration = true
		}
	}

	return m
}

// inferStartTime scans columns whose normalized name contains "time" or
// "date" and selects the first whose non-missing values parse as timestamps
// at a rate strictly above minRate. With zero rows there is nothing to
// parse, so nothing qualifies.
func inferStartTime(tbl records.Table, normOrder []string, normToRaw map[string]string, minRate float64) string {
	for _, n := range normOrder {
		if !containsAny(n, "time", "date") {
			continue
		}
		raw := normToRaw[n]
		var present, parsed int
		for _, row := range tbl.Rows {
			v := row.Get(raw)
			if v.IsMissing() {
				continue
			}
			present++
			if _, ok := timeparse.Parse(v.Text()); ok {
				parsed++
			}
		}
		if present == 0 {
			continue
		}
		if float64(parsed)/float64(present) > minRate {
			return n
		}
	}
	return ""
}

// columnHasParseableTime reports whether at least one value in the raw
// column parses as a timestamp. Guards duration derivation against pairing
// a real start column with a dead end column.
func columnHasParseableTime(tbl records.Table, rawColumn string) bool {
	for _, row := range tbl.Rows {
		v := row.Get(rawColumn)
		if v.IsMissing() {
			continue
		}
		if _, ok := timeparse.Parse(v.Text()); ok {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ColumnIndex maps each distinct normalized column name to the raw column
// that owns it (first occurrence wins, same rule Resolve applies). The
// normalizer uses it to read cell values for a resolved mapping.
func ColumnIndex(tbl records.Table) map[string]string {
	idx := make(map[string]string, len(tbl.Columns))
	for _, raw := range tbl.Columns {
		n := schema.NormalizeColumn(raw)
		if _, ok := idx[n]; ok {
			continue
		}
		idx[n] = raw
	}
	return idx
}
