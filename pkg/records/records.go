// Package records defines the generic tabular shape produced by ingest
// collaborators and consumed by the resolver/normalizer core.
//
// Cell values are a small tagged union: string, number, or missing. File
// parsers decide only whether a cell is present; interpreting a present
// value (timestamp, number, enum) is the normalizer's job.
package records

import "strconv"

// Kind discriminates the Value union.
type Kind int

const (
	// Missing is the zero Kind: an absent or empty cell.
	Missing Kind = iota
	// String is a textual cell value.
	String
	// Number is a numeric cell value (always float64).
	Number
)

// Value is one cell. The zero Value is missing.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Str constructs a string Value. An empty string is still a present value;
// parsers that want "empty means missing" must not call Str("").
func Str(s string) Value { return Value{kind: String, str: s} }

// Num constructs a numeric Value.
func Num(f float64) Value { return Value{kind: Number, num: f} }

// None returns the missing Value.
func None() Value { return Value{} }

// Kind reports which member of the union is set.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell is absent.
func (v Value) IsMissing() bool { return v.kind == Missing }

// Text coerces the value to its string representation. Numbers format with
// the shortest round-trip representation; missing coerces to "".
func (v Value) Text() string {
	switch v.kind {
	case String:
		return v.str
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Float interprets the value as a number. String values are parsed; a parse
// failure or a missing cell reports ok=false.
func (v Value) Float() (f float64, ok bool) {
	switch v.kind {
	case Number:
		return v.num, true
	case String:
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Row maps a source column name to its cell value. Columns absent from the
// map are missing for that row.
type Row map[string]Value

// Get returns the cell for a column, treating absent keys as missing.
func (r Row) Get(column string) Value {
	if r == nil {
		return Value{}
	}
	return r[column]
}

// Table is an ordered raw table: the column order is the first-seen source
// order and is what makes duplicate-name resolution deterministic.
//
// Tables are created once at ingestion and treated as read-only afterwards.
type Table struct {
	Columns []string
	Rows    []Row
}

// Empty reports whether the table has no data rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }
