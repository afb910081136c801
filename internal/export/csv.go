// Package export writes the canonical table back out for download or for
// feeding other tools. Only CSV is produced; the canonical column set and
// order are part of the format contract.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"cdrlens/internal/normalizer"
)

// Columns is the exported header, in order. Keep in sync with rowValues.
var Columns = []string{
	"start_time", "end_time", "duration_sec",
	"caller", "callee", "direction", "status",
	"operator", "country", "mcc", "mnc", "cell_id", "imsi", "imei",
	"setup_time_ms", "cost",
	"answered", "failed", "date", "hour", "weekday",
}

// WriteCSV renders recs as CSV on w: RFC 3339 timestamps, empty string for
// missing values, "true"/"false" booleans.
func WriteCSV(w io.Writer, recs []normalizer.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range recs {
		if err := cw.Write(rowValues(r)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func rowValues(r normalizer.Record) []string {
	return []string{
		r.StartTime.Format(time.RFC3339),
		formatTime(r.EndTime),
		formatNumber(r.DurationSec, r.HasDuration),
		r.Caller, r.Callee, r.Direction, r.Status,
		r.Operator, r.Country, r.MCC, r.MNC, r.CellID, r.IMSI, r.IMEI,
		formatNumber(r.SetupTimeMS, r.HasSetup),
		formatNumber(r.Cost, r.HasCost),
		strconv.FormatBool(r.Answered),
		strconv.FormatBool(r.Failed),
		r.Date.Format("2006-01-02"),
		strconv.Itoa(r.Hour),
		r.Weekday,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatNumber(f float64, present bool) string {
	if !present {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
