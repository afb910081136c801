package storage

import (
	"time"

	"cdrlens/internal/normalizer"
)

// Columns is the destination column set, in insert order. Every backend
// writes exactly these columns; keep in sync with RecordArgs.
var Columns = []string{
	"start_time", "end_time", "duration_sec",
	"caller", "callee", "direction", "status",
	"operator", "country", "mcc", "mnc", "cell_id", "imsi", "imei",
	"setup_time_ms", "cost",
	"answered", "failed", "date", "hour", "weekday",
}

// RecordArgs flattens one record into insert arguments matching Columns.
//
// Missing values become nil (SQL NULL): the zero EndTime, absent numeric
// fields, and empty strings. start_time, answered, failed, date, hour and
// weekday are always present in a surviving record.
func RecordArgs(r normalizer.Record) []any {
	return []any{
		r.StartTime,
		nullTime(r.EndTime),
		nullFloat(r.DurationSec, r.HasDuration),
		nullString(r.Caller),
		nullString(r.Callee),
		nullString(r.Direction),
		nullString(r.Status),
		nullString(r.Operator),
		nullString(r.Country),
		nullString(r.MCC),
		nullString(r.MNC),
		nullString(r.CellID),
		nullString(r.IMSI),
		nullString(r.IMEI),
		nullFloat(r.SetupTimeMS, r.HasSetup),
		nullFloat(r.Cost, r.HasCost),
		r.Answered,
		r.Failed,
		r.Date,
		r.Hour,
		r.Weekday,
	}
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullFloat(f float64, has bool) any {
	if !has {
		return nil
	}
	return f
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
