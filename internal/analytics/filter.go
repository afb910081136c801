// Package analytics computes the derived metrics consumed by reporting
// collaborators: KPI summaries (ASR, ACD, PDD), traffic distributions and
// top-N breakdowns, plus the record-level filters that scope them.
//
// Everything here is a pure function over the canonical table; missing
// values are excluded from means and treated as zero in sums, matching how
// the dashboards these numbers feed have always displayed them.
package analytics

import (
	"time"

	"cdrlens/internal/normalizer"
)

// FilterOptions scope a canonical table. Zero-valued members do not filter:
// empty slices admit everything, zero times leave the range open, and a
// MaxDurationSec of 0 means no cap.
type FilterOptions struct {
	// From/To bound the calendar date of start_time, inclusive.
	From time.Time
	To   time.Time

	Directions []string
	Statuses   []string
	Operators  []string
	Countries  []string

	// Duration bounds in seconds. Records with missing duration are
	// treated as 0 for range checks.
	MinDurationSec float64
	MaxDurationSec float64
}

// Filter returns the records admitted by opt, preserving input order.
func Filter(recs []normalizer.Record, opt FilterOptions) []normalizer.Record {
	dirSet := toSet(opt.Directions)
	statusSet := toSet(opt.Statuses)
	opSet := toSet(opt.Operators)
	ctrySet := toSet(opt.Countries)

	out := make([]normalizer.Record, 0, len(recs))
	for _, r := range recs {
		if !opt.From.IsZero() && r.Date.Before(dateOnly(opt.From)) {
			continue
		}
		if !opt.To.IsZero() && r.Date.After(dateOnly(opt.To)) {
			continue
		}
		if dirSet != nil && !dirSet[r.Direction] {
			continue
		}
		if statusSet != nil && !statusSet[r.Status] {
			continue
		}
		if opSet != nil && !opSet[r.Operator] {
			continue
		}
		if ctrySet != nil && !ctrySet[r.Country] {
			continue
		}

		d := 0.0
		if r.HasDuration {
			d = r.DurationSec
		}
		if d < opt.MinDurationSec {
			continue
		}
		if opt.MaxDurationSec > 0 && d > opt.MaxDurationSec {
			continue
		}

		out = append(out, r)
	}
	return out
}

func toSet(vals []string) map[string]bool {
	if len(vals) == 0 {
		return nil
	}
	s := make(map[string]bool, len(vals))
	for _, v := range vals {
		s[v] = true
	}
	return s
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
