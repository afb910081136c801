// Package synthetic generates a deterministic demo CDR dataset, used when
// no real export is at hand. The distributions mirror a busy consumer
// network: mostly answered calls with exponential talk time, a tail of
// busy/failed attempts, and a handful of operators and destinations.
package synthetic

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"cdrlens/pkg/records"
)

var (
	statuses       = []string{"ANSWERED", "NO_ANSWER", "BUSY", "FAILED"}
	statusWeights  = []float64{0.70, 0.15, 0.10, 0.05}
	directions     = []string{"inbound", "outbound"}
	dirWeights     = []float64{0.45, 0.55}
	operators      = []string{"Jazz", "Telenor", "Zong", "Ufone"}
	countries      = []string{"Pakistan", "UAE", "Saudi Arabia", "UK"}
	countryWeights = []float64{0.80, 0.10, 0.07, 0.03}
)

// Generate builds n raw rows spread over the 30 days before now. The same
// (n, seed, now) always produces the same table. Column names are canonical,
// so resolution is a straight alias pass and the demo exercises the full
// pipeline.
func Generate(n int, seed int64, now time.Time) records.Table {
	rng := rand.New(rand.NewSource(seed))
	day := now.Truncate(24 * time.Hour)

	callers := phonePool(rng, 500)
	callees := phonePool(rng, 800)

	tbl := records.Table{
		Columns: []string{
			"start_time", "duration_sec", "caller", "callee", "direction",
			"status", "operator", "country", "setup_time_ms", "cost",
		},
	}

	for i := 0; i < n; i++ {
		start := day.Add(-time.Duration(rng.Intn(30*24*60)) * time.Minute)
		status := weighted(rng, statuses, statusWeights)

		var durationSec float64
		if status == "ANSWERED" {
			durationSec = math.Floor(rng.ExpFloat64() * 120)
		}

		var setupMS float64
		if status == "ANSWERED" {
			setupMS = rng.NormFloat64()*700 + 2500
		} else {
			setupMS = rng.NormFloat64()*600 + 1800
		}
		setupMS = clamp(setupMS, 200, 10000)

		cost := durationSec / 60 * (0.02 + rng.Float64()*0.06)

		tbl.Rows = append(tbl.Rows, records.Row{
			"start_time":    records.Str(start.Format("2006-01-02 15:04:05")),
			"duration_sec":  records.Num(durationSec),
			"caller":        records.Str(callers[rng.Intn(len(callers))]),
			"callee":        records.Str(callees[rng.Intn(len(callees))]),
			"direction":     records.Str(weighted(rng, directions, dirWeights)),
			"status":        records.Str(status),
			"operator":      records.Str(operators[rng.Intn(len(operators))]),
			"country":       records.Str(weighted(rng, countries, countryWeights)),
			"setup_time_ms": records.Num(math.Floor(setupMS)),
			"cost":          records.Num(cost),
		})
	}
	return tbl
}

func phonePool(rng *rand.Rand, size int) []string {
	pool := make([]string, size)
	for i := range pool {
		pool[i] = fmt.Sprintf("+92%s", strconv.FormatInt(3000000000+rng.Int63n(1000000000), 10))
	}
	return pool
}

func weighted(rng *rand.Rand, values []string, weights []float64) string {
	r := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
