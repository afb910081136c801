package analytics

import (
	"sort"
	"time"

	"cdrlens/internal/normalizer"
)

// DailyStat is one day's traffic: call count and total minutes.
type DailyStat struct {
	Date    time.Time
	Calls   int
	Minutes float64
}

// DailyTraffic buckets records by calendar date, ordered ascending.
func DailyTraffic(recs []normalizer.Record) []DailyStat {
	type acc struct {
		calls   int
		minutes float64
	}
	byDate := map[time.Time]*acc{}
	for _, r := range recs {
		a := byDate[r.Date]
		if a == nil {
			a = &acc{}
			byDate[r.Date] = a
		}
		a.calls++
		if r.HasDuration {
			a.minutes += r.DurationSec / 60
		}
	}

	out := make([]DailyStat, 0, len(byDate))
	for d, a := range byDate {
		out = append(out, DailyStat{Date: d, Calls: a.calls, Minutes: a.minutes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// WeekdayNames is the heatmap row order, Monday first.
var WeekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// Heatmap is a weekday×hour call-count pivot. Rows follow WeekdayNames,
// columns are hours 0–23.
type Heatmap [7][24]int

// HourlyHeatmap counts calls per (weekday, hour) cell.
func HourlyHeatmap(recs []normalizer.Record) Heatmap {
	var hm Heatmap
	idx := map[string]int{}
	for i, name := range WeekdayNames {
		idx[name] = i
	}
	for _, r := range recs {
		i, ok := idx[r.Weekday]
		if !ok || r.Hour < 0 || r.Hour > 23 {
			continue
		}
		hm[i][r.Hour]++
	}
	return hm
}

// EntityCount is one value and how many calls carried it.
type EntityCount struct {
	Value string
	Calls int
}

// TopCallers returns the n most frequent callers, count descending, ties by
// value ascending for deterministic output. Records without a caller are
// excluded.
func TopCallers(recs []normalizer.Record, n int) []EntityCount {
	return topCounts(recs, n, func(r normalizer.Record) string { return r.Caller })
}

// TopCallees is TopCallers for the called party.
func TopCallees(recs []normalizer.Record, n int) []EntityCount {
	return topCounts(recs, n, func(r normalizer.Record) string { return r.Callee })
}

// DirectionSplit counts records per canonical direction. Records without a
// direction are excluded.
func DirectionSplit(recs []normalizer.Record) []EntityCount {
	return topCounts(recs, 0, func(r normalizer.Record) string { return r.Direction })
}

// StatusCounts returns the n most frequent status strings. n <= 0 returns
// all of them.
func StatusCounts(recs []normalizer.Record, n int) []EntityCount {
	return topCounts(recs, n, func(r normalizer.Record) string { return r.Status })
}

func topCounts(recs []normalizer.Record, n int, key func(normalizer.Record) string) []EntityCount {
	counts := map[string]int{}
	for _, r := range recs {
		k := key(r)
		if k == "" {
			continue
		}
		counts[k]++
	}
	out := make([]EntityCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, EntityCount{Value: v, Calls: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Value < out[j].Value
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
