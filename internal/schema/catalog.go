// Package schema defines the canonical CDR field catalog: the fixed set of
// output fields the normalizer guarantees, each with a priority-ordered list
// of source-column aliases.
//
// The catalog is a plain immutable value constructed once at startup and
// passed explicitly to the resolver. Tests may build alternate catalogs.
package schema

import "strings"

// Canonical field names. Every canonical name is also the first alias for
// its own field, so normalizing an already-canonical table resolves to
// itself.
const (
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
	FieldDurationSec = "duration_sec"
	FieldCaller      = "caller"
	FieldCallee      = "callee"
	FieldDirection   = "direction"
	FieldStatus      = "status"
	FieldOperator    = "operator"
	FieldCountry     = "country"
	FieldMCC         = "mcc"
	FieldMNC         = "mnc"
	FieldCellID      = "cell_id"
	FieldIMSI        = "imsi"
	FieldIMEI        = "imei"
	FieldSetupTimeMS = "setup_time_ms"
	FieldCost        = "cost"
)

// Kind describes how the normalizer interprets a resolved column.
type Kind int

const (
	// Text fields are coerced to their string representation.
	Text Kind = iota
	// Timestamp fields are parsed leniently; unparseable cells go missing.
	Timestamp
	// Number fields are parsed as real numbers; unparseable cells go missing.
	Number
)

// Field is one canonical output field and its acceptable source names.
// Alias order is priority order: the first alias present in the input wins.
type Field struct {
	Name    string
	Kind    Kind
	Aliases []string
}

// Catalog is an ordered list of canonical fields. Resolution iterates in
// catalog order, so the order here is part of the resolver's contract.
type Catalog struct {
	fields []Field
}

// New builds a catalog from a field list. The slice is copied; the catalog
// never mutates it afterwards.
func New(fields []Field) Catalog {
	return Catalog{fields: append([]Field(nil), fields...)}
}

// Fields returns the catalog's fields in resolution order. Callers must not
// modify the returned slice.
func (c Catalog) Fields() []Field { return c.fields }

// Field looks up a canonical field by name.
func (c Catalog) Field(name string) (Field, bool) {
	for _, f := range c.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// NormalizeColumn canonicalizes a raw source column name for alias matching:
// trim surrounding whitespace, lower-case, internal spaces to underscores.
func NormalizeColumn(name string) string {
	s := strings.TrimSpace(name)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, " ", "_")
}

// DefaultCatalog returns the built-in CDR catalog: sixteen canonical fields
// with aliases collected from the operator exports this tool has been fed.
func DefaultCatalog() Catalog {
	return New([]Field{
		{Name: FieldStartTime, Kind: Timestamp, Aliases: []string{
			"start_time", "call_start", "start", "timestamp", "start_datetime",
			"setup_time", "connect_time", "event_time",
		}},
		{Name: FieldEndTime, Kind: Timestamp, Aliases: []string{
			"end_time", "call_end", "end", "release_time", "disconnect_time",
		}},
		{Name: FieldDurationSec, Kind: Number, Aliases: []string{
			"duration_sec", "duration", "call_duration", "bill_sec",
			"billable_seconds", "talk_time", "conversation_time_sec",
		}},
		{Name: FieldCaller, Kind: Text, Aliases: []string{
			"caller", "calling", "calling_party", "a_number", "ani", "msisdn_a",
		}},
		{Name: FieldCallee, Kind: Text, Aliases: []string{
			"callee", "called", "called_party", "b_number", "dnis", "msisdn_b",
		}},
		{Name: FieldDirection, Kind: Text, Aliases: []string{
			"direction", "call_direction", "in_out", "inbound_outbound",
		}},
		{Name: FieldStatus, Kind: Text, Aliases: []string{
			"status", "cause", "release_cause", "disposition", "result",
			"sip_response", "q850_cause",
		}},
		{Name: FieldOperator, Kind: Text, Aliases: []string{
			"operator", "carrier", "vendor", "trunk", "gateway", "route",
		}},
		{Name: FieldCountry, Kind: Text, Aliases: []string{
			"country", "dest_country", "destination_country",
		}},
		{Name: FieldMCC, Kind: Text, Aliases: []string{"mcc"}},
		{Name: FieldMNC, Kind: Text, Aliases: []string{"mnc"}},
		{Name: FieldCellID, Kind: Text, Aliases: []string{
			"cell_id", "cellid", "cell", "lac_cell",
		}},
		{Name: FieldIMSI, Kind: Text, Aliases: []string{"imsi"}},
		{Name: FieldIMEI, Kind: Text, Aliases: []string{"imei"}},
		{Name: FieldSetupTimeMS, Kind: Number, Aliases: []string{
			"setup_time_ms", "post_dial_delay_ms", "pdd_ms", "ring_time_ms",
		}},
		{Name: FieldCost, Kind: Number, Aliases: []string{
			"cost", "charge", "amount", "revenue",
		}},
	})
}
